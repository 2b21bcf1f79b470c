/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"

	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/logging"
	"github.com/jacobarthurs/mysqlplan/internal/profile"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
	"github.com/jacobarthurs/mysqlplan/internal/schema/mysql"
	"github.com/jacobarthurs/mysqlplan/internal/schema/postgres"

	"go.uber.org/zap"
)

// openProvider connects a metadata provider for dsn. A failed connection is
// logged and analysis continues without metadata.
func openProvider(ctx context.Context, dsn string) (schema.Provider, func()) {
	if dsn == "" {
		return nil, func() {}
	}

	driver := profile.Driver(dsn)
	log := logger.With(
		zap.String("driver", driver),
		zap.String("dsn", logging.SanitizeDSN(dsn)))

	switch driver {
	case profile.DriverPostgres:
		p, err := postgres.Open(ctx, dsn, logger)
		if err != nil {
			log.Warn("Metadata provider unavailable", zap.String("error", logging.SanitizeError(err)))
			return nil, func() {}
		}
		return p, func() { _ = p.Close() }
	default:
		p, err := mysql.Open(ctx, dsn, logger)
		if err != nil {
			log.Warn("Metadata provider unavailable", zap.String("error", logging.SanitizeError(err)))
			return nil, func() {}
		}
		return p, func() { _ = p.Close() }
	}
}

// explainDSN returns dsn when it can run EXPLAIN; only MySQL can.
func explainDSN(dsn string) string {
	if profile.Driver(dsn) != profile.DriverMySQL {
		return ""
	}
	return dsn
}

func explainContext(parent context.Context) (context.Context, context.CancelFunc) {
	if cfg == nil || cfg.ExplainTimeout == 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, cfg.ExplainTimeout)
}

func analyzerOptions() analyzer.Options {
	opts := analyzer.Options{Logger: logger}
	if cfg != nil {
		opts.Concurrency = cfg.FetchConcurrency
		opts.FetchTimeout = cfg.FetchTimeout
	}
	return opts
}
