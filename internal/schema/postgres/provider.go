// Package postgres reads table metadata from a PostgreSQL catalog. Keys are
// reported with MySQL's COLUMN_KEY semantics: PRI, UNI for single-column unique
// indexes, and MUL for foreign key or leading index columns.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jacobarthurs/mysqlplan/internal/logging"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

const columnsQuery = `
	SELECT
		a.attname,
		format_type(a.atttypid, a.atttypmod),
		NOT a.attnotnull,
		CASE
			WHEN EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid AND i.indisprimary AND a.attnum = ANY(i.indkey)
			) THEN 'PRI'
			WHEN EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid AND i.indisunique AND i.indnatts = 1 AND i.indkey[0] = a.attnum
			) THEN 'UNI'
			WHEN EXISTS (
				SELECT 1 FROM pg_constraint f
				WHERE f.conrelid = c.oid AND f.contype = 'f' AND a.attnum = ANY(f.conkey)
			) THEN 'MUL'
			WHEN EXISTS (
				SELECT 1 FROM pg_index i
				WHERE i.indrelid = c.oid AND i.indkey[0] = a.attnum
			) THEN 'MUL'
			ELSE ''
		END,
		pg_get_expr(d.adbin, d.adrelid),
		CASE
			WHEN a.attidentity <> '' THEN 'identity'
			WHEN a.attgenerated <> '' THEN 'generated'
			ELSE ''
		END
	FROM pg_attribute a
	JOIN pg_class c ON c.oid = a.attrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
	WHERE n.nspname = COALESCE($1, current_schema())
	  AND c.relname = $2
	  AND a.attnum > 0
	  AND NOT a.attisdropped
	ORDER BY a.attnum`

// n_distinct < 0 is a fraction of reltuples.
const indexesQuery = `
	SELECT
		ic.relname,
		a.attname,
		k.ord,
		NOT i.indisunique,
		am.amname,
		CASE
			WHEN s.n_distinct IS NULL THEN NULL
			WHEN s.n_distinct >= 0 THEN s.n_distinct::bigint
			ELSE (-s.n_distinct * c.reltuples)::bigint
		END
	FROM pg_index i
	JOIN pg_class c ON c.oid = i.indrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_class ic ON ic.oid = i.indexrelid
	JOIN pg_am am ON am.oid = ic.relam
	CROSS JOIN LATERAL unnest(i.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
	JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
	LEFT JOIN pg_stats s
		ON s.schemaname = n.nspname AND s.tablename = c.relname AND s.attname = a.attname
	WHERE n.nspname = COALESCE($1, current_schema())
	  AND c.relname = $2
	ORDER BY i.indisprimary DESC, ic.relname, k.ord`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Provider implements schema.Provider over a pgx pool.
type Provider struct {
	db     querier
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open creates a pool for dsn and verifies it.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Provider, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Provider{db: pool, pool: pool, logger: logging.OrNop(logger)}, nil
}

func newWithQuerier(db querier, logger *zap.Logger) *Provider {
	return &Provider{db: db, logger: logging.OrNop(logger)}
}

func (p *Provider) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Provider) ListColumns(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	schemaName, tableName := schema.SplitQualified(table)

	rows, err := p.db.Query(ctx, columnsQuery, nullable(schemaName), tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.ColumnInfo
	for rows.Next() {
		var c schema.ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Key, &c.Default, &c.Extra); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: %w", table, schema.ErrTableNotFound)
	}

	p.logger.Debug("Listed columns", zap.String("table", table), zap.Int("count", len(columns)))
	return columns, nil
}

func (p *Provider) ListIndexes(ctx context.Context, table string) ([]schema.IndexStatistics, error) {
	schemaName, tableName := schema.SplitQualified(table)

	rows, err := p.db.Query(ctx, indexesQuery, nullable(schemaName), tableName)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexRows []schema.IndexColumnRow
	for rows.Next() {
		var (
			r   schema.IndexColumnRow
			seq int64
		)
		if err := rows.Scan(&r.IndexName, &r.Column, &seq, &r.NonUnique, &r.Type, &r.Cardinality); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		r.Seq = int(seq)
		indexRows = append(indexRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}

	return schema.GroupIndexRows(indexRows), nil
}

// nil binds as NULL so COALESCE falls back to current_schema().
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
