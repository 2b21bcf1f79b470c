package plan

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecute_RunsExplainFormatJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	payload := `{"query_block": {"select_id": 1, "table": {"table_name": "users", "access_type": "const"}}}`
	mock.ExpectQuery(regexp.QuoteMeta("EXPLAIN FORMAT=JSON SELECT * FROM users WHERE id = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"EXPLAIN"}).AddRow(payload))

	plans, err := Execute(context.Background(), db, "SELECT * FROM users WHERE id = 1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plans[0].QueryBlock.Table.TableName != "users" {
		t.Errorf("TableName = %q, want users", plans[0].QueryBlock.Table.TableName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecute_EmptyStatement(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	if _, err := Execute(context.Background(), db, "  ; "); err == nil {
		t.Fatal("expected error for empty statement")
	}
}

func TestExecute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("EXPLAIN FORMAT=JSON").WillReturnError(context.DeadlineExceeded)

	if _, err := Execute(context.Background(), db, "SELECT 1"); err == nil {
		t.Fatal("expected error")
	}
}
