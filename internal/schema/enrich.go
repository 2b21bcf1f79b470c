package schema

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jacobarthurs/mysqlplan/internal/logging"
)

type EnrichOptions struct {
	// Concurrency bounds parallel table fetches; <= 0 means unbounded.
	Concurrency int
	// FetchTimeout bounds each table's fetch; 0 leaves it to the provider.
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Enrich fetches metadata for each table into a fresh Cache. A failed fetch is
// logged and leaves the table out of the cache; it never stops other fetches.
func Enrich(ctx context.Context, tables []string, provider Provider, opts EnrichOptions) *Cache {
	cache := NewCache()
	if provider == nil || len(tables) == 0 {
		return cache
	}

	logger := logging.OrNop(opts.Logger)

	// Plain Group: one table failing must not cancel the others.
	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for _, table := range tables {
		g.Go(func() error {
			start := time.Now()
			meta, err := fetchTable(ctx, provider, table, opts.FetchTimeout)
			if err != nil {
				logger.Warn("Table metadata unavailable",
					zap.String("table", table),
					zap.String("error", logging.SanitizeError(err)))
				return nil
			}
			cache.Put(meta)
			logger.Debug("Fetched table metadata",
				zap.String("table", table),
				zap.Int("columns", len(meta.Columns)),
				zap.Int("indexes", len(meta.Indexes)),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}

	_ = g.Wait()
	return cache
}

// Columns are fetched before indexes; index analysis assumes the column list.
func fetchTable(ctx context.Context, provider Provider, table string, timeout time.Duration) (*TableMetadata, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns, err := provider.ListColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", table, err)
	}

	indexes, err := provider.ListIndexes(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("list indexes for %s: %w", table, err)
	}

	return &TableMetadata{
		Table:   table,
		Columns: columns,
		Indexes: indexes,
	}, nil
}
