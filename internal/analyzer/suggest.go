package analyzer

import (
	"fmt"
	"strings"

	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

const MaxSuggestedColumns = 3

// SuggestIndexColumns returns the known columns whose names occur in condition,
// in declaration order, at most MaxSuggestedColumns. Matching is plain substring
// containment, so "id" also matches inside "user_id".
func SuggestIndexColumns(condition string, columns []string) []string {
	if condition == "" {
		return nil
	}

	var matched []string
	for _, col := range columns {
		if col == "" || !strings.Contains(condition, col) {
			continue
		}
		matched = append(matched, col)
		if len(matched) == MaxSuggestedColumns {
			break
		}
	}
	return matched
}

// createIndexStatement renders a suggested index for table over cols.
func createIndexStatement(table string, cols []string) string {
	_, name := schema.SplitQualified(table)
	return fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s)",
		name, strings.Join(cols, "_"), table, strings.Join(cols, ", "))
}
