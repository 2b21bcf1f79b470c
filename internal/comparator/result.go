package comparator

import "github.com/jacobarthurs/mysqlplan/internal/plan"

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ChangeType int

const (
	NoChange      ChangeType = 0
	Modified      ChangeType = 1
	Added         ChangeType = 2
	Removed       ChangeType = 3
	AccessChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case AccessChanged:
		return "access_changed"
	default:
		return "no_change"
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// NodeDelta compares the nodes sharing one id. Estimates absent on either side
// leave the matching direction Unchanged.
type NodeDelta struct {
	ID         string        `json:"id"`
	Kind       plan.NodeKind `json:"kind"`
	Table      string        `json:"table,omitempty"`
	ChangeType ChangeType    `json:"change"`

	OldAccessType string `json:"old_access_type,omitempty"`
	NewAccessType string `json:"new_access_type,omitempty"`
	OldKey        string `json:"old_key,omitempty"`
	NewKey        string `json:"new_key,omitempty"`

	OldCost   *float64  `json:"old_cost,omitempty"`
	NewCost   *float64  `json:"new_cost,omitempty"`
	CostDelta float64   `json:"cost_delta"`
	CostPct   float64   `json:"cost_pct"`
	CostDir   Direction `json:"cost_direction"`

	OldRows *float64  `json:"old_rows,omitempty"`
	NewRows *float64  `json:"new_rows,omitempty"`
	RowsPct float64   `json:"rows_pct"`
	RowsDir Direction `json:"rows_direction"`

	OldSeverity plan.Severity `json:"old_severity,omitempty"`
	NewSeverity plan.Severity `json:"new_severity,omitempty"`
	SeverityDir Direction     `json:"severity_direction"`

	// Issues present only in the new plan, and only in the old one.
	IssuesAdded   []string `json:"issues_added,omitempty"`
	IssuesRemoved []string `json:"issues_removed,omitempty"`

	Children []NodeDelta `json:"children,omitempty"`
}

type ComparisonResult struct {
	OldRunID string      `json:"old_run_id"`
	NewRunID string      `json:"new_run_id"`
	Deltas   []NodeDelta `json:"deltas"`
	Summary  Summary     `json:"summary"`
}

type Summary struct {
	OldTotalCost float64   `json:"old_total_cost"`
	NewTotalCost float64   `json:"new_total_cost"`
	CostDelta    float64   `json:"cost_delta"`
	CostPct      float64   `json:"cost_pct"`
	CostDir      Direction `json:"cost_direction"`

	OldWorst      plan.Severity `json:"old_worst,omitempty"`
	NewWorst      plan.Severity `json:"new_worst,omitempty"`
	OldCritical   int           `json:"old_critical"`
	NewCritical   int           `json:"new_critical"`
	OldWarnings   int           `json:"old_warnings"`
	NewWarnings   int           `json:"new_warnings"`
	SeverityDir   Direction     `json:"severity_direction"`
	IssuesFixed   int           `json:"issues_fixed"`
	IssuesIntro   int           `json:"issues_introduced"`
	NodesAdded    int           `json:"nodes_added"`
	NodesRemoved  int           `json:"nodes_removed"`
	NodesModified int           `json:"nodes_modified"`
	AccessChanges int           `json:"access_changes"`

	Verdict string `json:"verdict"`
}
