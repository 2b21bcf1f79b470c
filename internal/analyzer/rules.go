package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

const (
	QueryCostWarning  = 1000.0
	QueryCostCritical = 10000.0

	RangeRowsWarning   = 1000.0
	LargeScanRows      = 10000.0
	PartitioningRows   = 1000000.0
	EfficientIndexRows = 100.0

	LowFilteredPct = 10.0

	FullIndexLowSelectivity = 0.1
	PossibleKeyRejection    = 0.3
)

// Rule inspects one table access node. It reports false when it does not apply.
type Rule func(node *plan.Node, rc *RuleContext) (Verdict, bool)

// Order matters: later rules see the issues recorded by earlier ones.
var defaultRules = []Rule{
	checkFullTableScan,
	checkFullIndexScan,
	checkRangeScan,
	checkIndexLookup,
	checkUnusedPossibleKeys,
	checkLowFilterRatio,
	checkLargeScan,
	checkEfficientIndex,
	checkForeignKeysWithoutIndex,
}

// classifyQueryCost grades the whole query by its total cost estimate.
func classifyQueryCost(node *plan.Node) (Verdict, bool) {
	cost, ok := node.CostEstimate()
	if !ok {
		return Verdict{}, false
	}

	switch {
	case cost > QueryCostCritical:
		return Verdict{
			Severity: plan.SeverityCritical,
			Issues:   []string{fmt.Sprintf("very high query cost (%.2f)", cost)},
		}, true
	case cost > QueryCostWarning:
		return Verdict{
			Severity: plan.SeverityWarning,
			Issues:   []string{fmt.Sprintf("high query cost (%.2f)", cost)},
		}, true
	default:
		return Verdict{Severity: plan.SeverityGood}, true
	}
}

func checkFullTableScan(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if node.AccessType != plan.AccessAll {
		return Verdict{}, false
	}

	v := Verdict{
		Severity: plan.SeverityCritical,
		Issues:   []string{"full table scan — no index used"},
	}

	if cols := SuggestIndexColumns(node.Condition, rc.columnNames()); len(cols) > 0 {
		v.Issues = append(v.Issues, "suggested index: "+createIndexStatement(node.Table, cols))
	} else {
		v.Issues = append(v.Issues, "add an index on WHERE columns")
	}

	return v, true
}

func checkFullIndexScan(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if node.AccessType != plan.AccessIndex {
		return Verdict{}, false
	}

	v := Verdict{
		Severity: plan.SeverityWarning,
		Issues:   []string{"full index scan"},
	}

	idx, ok := rc.index(node.Key)
	if !ok {
		return v, true
	}

	v.Issues = append(v.Issues, fmt.Sprintf("index %s covers (%s), cardinality %d",
		idx.Name, strings.Join(idx.Columns, ", "), idx.Cardinality))

	if sel := selectivity(idx.Cardinality, node); sel < FullIndexLowSelectivity {
		v.Issues = append(v.Issues, fmt.Sprintf("low index selectivity (%.4f): %d distinct values across the scanned rows", sel, idx.Cardinality))
	}

	return v, true
}

func checkRangeScan(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if node.AccessType != plan.AccessRange {
		return Verdict{}, false
	}

	rows, ok := node.RowsEstimate()
	if !ok || rows <= RangeRowsWarning {
		return Verdict{Severity: plan.SeverityGood}, true
	}

	v := Verdict{
		Severity: plan.SeverityWarning,
		Issues:   []string{fmt.Sprintf("range scan examines %.0f rows", rows)},
	}

	if idx, ok := rc.index(node.Key); ok {
		v.Issues = append(v.Issues, fmt.Sprintf("range on index %s (%s); add more selective predicates to narrow it",
			idx.Name, strings.Join(idx.Columns, ", ")))
	}

	return v, true
}

func checkIndexLookup(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	switch node.AccessType {
	case plan.AccessRef, plan.AccessEqRef, plan.AccessConst:
	default:
		return Verdict{}, false
	}

	v := Verdict{Severity: plan.SeverityGood}
	if idx, ok := rc.index(node.Key); ok {
		v.Issues = []string{fmt.Sprintf("efficient %s lookup using index %s (%s)",
			node.AccessType, idx.Name, strings.Join(idx.Columns, ", "))}
	}

	return v, true
}

func checkUnusedPossibleKeys(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if len(node.PossibleKeys) == 0 || node.Key != "" {
		return Verdict{}, false
	}

	v := Verdict{
		Severity: plan.SeverityWarning,
		Issues:   []string{"possible indexes not used: " + strings.Join(node.PossibleKeys, ", ")},
	}

	for _, key := range node.PossibleKeys {
		idx, ok := rc.index(key)
		if !ok {
			continue
		}
		if sel := selectivity(idx.Cardinality, node); sel < PossibleKeyRejection {
			v.Issues = append(v.Issues, fmt.Sprintf("index %s likely rejected for low selectivity (%.4f, cardinality %d)",
				idx.Name, sel, idx.Cardinality))
		} else {
			v.Issues = append(v.Issues, fmt.Sprintf("consider FORCE INDEX (%s)", idx.Name))
		}
	}

	return v, true
}

func checkLowFilterRatio(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	filtered, ok := node.FilteredPercent()
	if !ok || filtered >= LowFilteredPct {
		return Verdict{}, false
	}

	var msg string
	if rows, ok := node.RowsEstimate(); ok {
		matching := int64(math.Floor(rows * filtered / 100))
		msg = fmt.Sprintf("low filter ratio: only %.2f%% of examined rows match (~%d of %.0f rows)", filtered, matching, rows)
	} else {
		msg = fmt.Sprintf("low filter ratio: only %.2f%% of examined rows match", filtered)
	}

	v := Verdict{
		Severity: plan.SeverityWarning,
		Issues:   []string{msg},
	}

	if node.Key == "" {
		if cols := SuggestIndexColumns(node.Condition, rc.columnNames()); len(cols) > 0 {
			v.Issues = append(v.Issues, fmt.Sprintf("consider composite index on (%s)", strings.Join(cols, ", ")))
		}
	}

	return v, true
}

func checkLargeScan(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	rows, ok := node.RowsEstimate()
	if !ok || rows <= LargeScanRows {
		return Verdict{}, false
	}

	v := Verdict{
		Severity: plan.SeverityWarning,
		Issues:   []string{fmt.Sprintf("large scan: %.0f rows examined", rows)},
	}

	if rc.hasMetadata() {
		v.Issues = append(v.Issues, fmt.Sprintf("table %s has %d columns — select only what's needed",
			node.Table, len(rc.Metadata.Columns)))
	}
	if rows > PartitioningRows {
		v.Issues = append(v.Issues, fmt.Sprintf("consider partitioning %s to limit the rows scanned", node.Table))
	}

	return v, true
}

func checkEfficientIndex(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if node.Key == "" || len(rc.Issues) > 0 {
		return Verdict{}, false
	}
	rows, ok := node.RowsEstimate()
	if !ok || rows >= EfficientIndexRows {
		return Verdict{}, false
	}

	return Verdict{
		Severity: plan.SeverityGood,
		Issues:   []string{"efficient index usage: " + node.Key},
	}, true
}

func checkForeignKeysWithoutIndex(node *plan.Node, rc *RuleContext) (Verdict, bool) {
	if node.AccessType != plan.AccessAll || !rc.hasMetadata() {
		return Verdict{}, false
	}

	var unindexed []string
	for _, col := range rc.Metadata.Columns {
		if col.Key == schema.KeyMultiple && !rc.Metadata.LeadsAnyIndex(col.Name) {
			unindexed = append(unindexed, col.Name)
		}
	}
	if len(unindexed) == 0 {
		return Verdict{}, false
	}

	return Verdict{
		Issues: []string{"foreign key column(s) without index: " + strings.Join(unindexed, ", ")},
	}, true
}
