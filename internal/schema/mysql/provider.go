// Package mysql reads table metadata from a MySQL server's information_schema.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/jacobarthurs/mysqlplan/internal/logging"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

const columnsQuery = `
	SELECT
		COLUMN_NAME,
		COLUMN_TYPE,
		IS_NULLABLE,
		COLUMN_KEY,
		COLUMN_DEFAULT,
		EXTRA
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(?, DATABASE())
	  AND TABLE_NAME = ?
	ORDER BY ORDINAL_POSITION`

// Functional index parts have a NULL COLUMN_NAME; they are skipped.
const indexesQuery = `
	SELECT
		INDEX_NAME,
		COLUMN_NAME,
		SEQ_IN_INDEX,
		NON_UNIQUE,
		INDEX_TYPE,
		CARDINALITY
	FROM information_schema.STATISTICS
	WHERE TABLE_SCHEMA = COALESCE(?, DATABASE())
	  AND TABLE_NAME = ?
	ORDER BY INDEX_NAME = 'PRIMARY' DESC, INDEX_NAME, SEQ_IN_INDEX`

// Provider implements schema.Provider over a database/sql handle.
type Provider struct {
	db     *sql.DB
	owned  bool
	logger *zap.Logger
}

// New wraps an existing handle. The caller keeps ownership of db.
func New(db *sql.DB, logger *zap.Logger) *Provider {
	return &Provider{db: db, logger: logging.OrNop(logger)}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Provider, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	p := New(db, logger)
	p.owned = true
	return p, nil
}

// Close releases the handle if Open created it.
func (p *Provider) Close() error {
	if p.owned {
		return p.db.Close()
	}
	return nil
}

func (p *Provider) ListColumns(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	schemaName, tableName := schema.SplitQualified(table)

	rows, err := p.db.QueryContext(ctx, columnsQuery, nullable(schemaName), tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.ColumnInfo
	for rows.Next() {
		var (
			c          schema.ColumnInfo
			isNullable string
			def        sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Type, &isNullable, &c.Key, &def, &c.Extra); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Nullable = isNullable == "YES"
		if def.Valid {
			c.Default = &def.String
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

	rows, err := p.db.QueryContext(ctx, indexesQuery, nullable(schemaName), tableName)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexRows []schema.IndexColumnRow
	for rows.Next() {
		var (
			r           schema.IndexColumnRow
			column      sql.NullString
			nonUnique   int64
			cardinality sql.NullInt64
		)
		if err := rows.Scan(&r.IndexName, &column, &r.Seq, &nonUnique, &r.Type, &cardinality); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		if !column.Valid {
			continue
		}
		r.Column = column.String
		r.NonUnique = nonUnique != 0
		if cardinality.Valid {
			r.Cardinality = &cardinality.Int64
		}
		indexRows = append(indexRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}

	return schema.GroupIndexRows(indexRows), nil
}

// An unqualified table resolves against the connection's default database.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
