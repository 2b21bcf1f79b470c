package schema

import (
	"context"
	"errors"
	"strings"
)

// ErrTableNotFound is returned by providers when the table has no columns in
// the catalog, usually an alias or a table outside the connected schema.
var ErrTableNotFound = errors.New("table not found")

// Column key flags, as reported by MySQL's COLUMN_KEY.
const (
	KeyPrimary  = "PRI"
	KeyUnique   = "UNI"
	KeyMultiple = "MUL"
)

type ColumnInfo struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Key      string  `json:"key,omitempty"`
	Default  *string `json:"default,omitempty"`
	Extra    string  `json:"extra,omitempty"`
}

type IndexStatistics struct {
	Name        string   `json:"name"`
	Columns     []string `json:"columns"`
	Unique      bool     `json:"unique"`
	Type        string   `json:"type,omitempty"`
	Cardinality int64    `json:"cardinality"`

	ColumnCardinalities map[string]int64 `json:"column_cardinalities,omitempty"`
}

type TableMetadata struct {
	Table   string            `json:"table"`
	Columns []ColumnInfo      `json:"columns"`
	Indexes []IndexStatistics `json:"indexes"`
}

// Provider supplies schema introspection for one table at a time. Each call may
// fail independently; timeouts are the provider's concern.
type Provider interface {
	ListColumns(ctx context.Context, table string) ([]ColumnInfo, error)
	ListIndexes(ctx context.Context, table string) ([]IndexStatistics, error)
}

// ColumnNames returns column names in declaration order.
func (m *TableMetadata) ColumnNames() []string {
	names := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Index looks up an index by name. MySQL index names are case-insensitive.
func (m *TableMetadata) Index(name string) (IndexStatistics, bool) {
	if name == "" {
		return IndexStatistics{}, false
	}
	for _, idx := range m.Indexes {
		if strings.EqualFold(idx.Name, name) {
			return idx, true
		}
	}
	return IndexStatistics{}, false
}

// LeadsAnyIndex reports whether column is the first column of some known index.
func (m *TableMetadata) LeadsAnyIndex(column string) bool {
	for _, idx := range m.Indexes {
		if len(idx.Columns) > 0 && strings.EqualFold(idx.Columns[0], column) {
			return true
		}
	}
	return false
}

// SplitQualified splits "schema.table" into its parts. schema is empty for
// unqualified names.
func SplitQualified(name string) (schemaName, table string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i > 0 && i < len(name)-1 {
		return strings.Trim(name[:i], "`\""), strings.Trim(name[i+1:], "`\"")
	}
	return "", strings.Trim(name, "`\"")
}
