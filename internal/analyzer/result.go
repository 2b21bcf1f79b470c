package analyzer

import (
	"sort"

	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

// Verdict is one rule's contribution to a node's diagnosis.
type Verdict struct {
	Severity plan.Severity
	Issues   []string
}

type Finding struct {
	NodeID   string        `json:"node_id"`
	Kind     plan.NodeKind `json:"kind"`
	Table    string        `json:"table,omitempty"`
	Severity plan.Severity `json:"severity"`
	Issues   []string      `json:"issues,omitempty"`
}

type Result struct {
	RunID string     `json:"run_id"`
	Root  *plan.Node `json:"plan"`

	// Tables lists every resolvable table in the plan, in first-seen order.
	Tables []string `json:"tables"`
	// MissingTables had no metadata available for this run.
	MissingTables   []string `json:"missing_tables,omitempty"`
	PartialMetadata bool     `json:"partial_metadata"`
}

// Findings returns every diagnosed node, most severe first. Nodes of equal
// severity keep tree order.
func (r Result) Findings() []Finding {
	var findings []Finding
	r.Root.Walk(func(node *plan.Node) {
		if node.Severity == plan.SeverityNone && len(node.Issues) == 0 {
			return
		}
		findings = append(findings, Finding{
			NodeID:   node.ID,
			Kind:     node.Kind,
			Table:    node.Table,
			Severity: node.Severity,
			Issues:   node.Issues,
		})
	})

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity > findings[j].Severity
	})

	return findings
}

// Counts tallies diagnosed nodes per severity.
func (r Result) Counts() map[plan.Severity]int {
	counts := make(map[plan.Severity]int)
	r.Root.Walk(func(node *plan.Node) {
		if node.Severity != plan.SeverityNone {
			counts[node.Severity]++
		}
	})
	return counts
}

// Worst is the highest severity anywhere in the tree.
func (r Result) Worst() plan.Severity {
	worst := plan.SeverityNone
	r.Root.Walk(func(node *plan.Node) {
		worst = max(worst, node.Severity)
	})
	return worst
}
