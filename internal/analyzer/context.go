package analyzer

import (
	"math"

	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

// RuleContext is what a rule may read besides the node itself.
type RuleContext struct {
	// Metadata is nil when the table had none this run.
	Metadata *schema.TableMetadata
	// Issues recorded on the node by earlier rules.
	Issues []string
}

func (rc *RuleContext) hasMetadata() bool {
	return rc != nil && rc.Metadata != nil
}

// index resolves name against the table's known indexes.
func (rc *RuleContext) index(name string) (schema.IndexStatistics, bool) {
	if !rc.hasMetadata() {
		return schema.IndexStatistics{}, false
	}
	return rc.Metadata.Index(name)
}

func (rc *RuleContext) columnNames() []string {
	if !rc.hasMetadata() {
		return nil
	}
	return rc.Metadata.ColumnNames()
}

// selectivity approximates cardinality / rows examined. Unknown and zero row
// estimates count as one row.
func selectivity(cardinality int64, node *plan.Node) float64 {
	rows, ok := node.RowsEstimate()
	if !ok {
		rows = 1
	}
	return float64(cardinality) / math.Max(rows, 1)
}
