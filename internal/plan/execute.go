package plan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// Execute runs EXPLAIN FORMAT=JSON for sqlText. The statement itself is not executed.
func Execute(ctx context.Context, db *sql.DB, sqlText string) ([]ExplainOutput, error) {
	query := strings.TrimRight(strings.TrimSpace(sqlText), ";")
	if query == "" {
		return nil, fmt.Errorf("empty sql statement")
	}

	var payload string
	if err := db.QueryRowContext(ctx, "EXPLAIN FORMAT=JSON "+query).Scan(&payload); err != nil {
		return nil, fmt.Errorf("executing EXPLAIN: %w", err)
	}

	return ParseJSONPlan([]byte(payload))
}

// ExecuteDSN opens a MySQL connection for a single EXPLAIN.
func ExecuteDSN(ctx context.Context, dsn string, sqlText string) ([]ExplainOutput, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	return Execute(ctx, db, sqlText)
}
