package plan

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrNoPlanAvailable is returned when the input carries no query_block, e.g. a
// result set from a catalog query rather than EXPLAIN output.
var ErrNoPlanAvailable = errors.New("no query plan available")

const RootID = "root"

type NodeKind int

const (
	KindQuery       NodeKind = 0
	KindTableAccess NodeKind = 1
	KindGroupBy     NodeKind = 2
	KindOrderBy     NodeKind = 3
)

func (k NodeKind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindTableAccess:
		return "table_access"
	case KindGroupBy:
		return "group_by"
	case KindOrderBy:
		return "order_by"
	default:
		return "unknown"
	}
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Severity orders as None < Good < Warning < Critical.
type Severity int

const (
	SeverityNone     Severity = 0
	SeverityGood     Severity = 1
	SeverityWarning  Severity = 2
	SeverityCritical Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityGood:
		return "good"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return ""
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Access types as reported in access_type, lower-cased.
const (
	AccessAll    = "all"
	AccessIndex  = "index"
	AccessRange  = "range"
	AccessRef    = "ref"
	AccessEqRef  = "eq_ref"
	AccessConst  = "const"
	AccessSystem = "system"
)

type Node struct {
	// Core identity
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`

	Cost     *float64 `json:"cost,omitempty"`
	SelectID int      `json:"select_id,omitempty"`
	Message  string   `json:"message,omitempty"`

	// Table access
	Table        string   `json:"table,omitempty"`
	AccessType   string   `json:"access_type,omitempty"`
	PossibleKeys []string `json:"possible_keys,omitempty"`
	Key          string   `json:"key,omitempty"`
	UsedKeyParts []string `json:"used_key_parts,omitempty"`
	Rows         *float64 `json:"rows_examined,omitempty"`
	Filtered     *float64 `json:"filtered,omitempty"`
	ReadCost     *float64 `json:"read_cost,omitempty"`
	UsedColumns  []string `json:"used_columns,omitempty"`
	Condition    string   `json:"condition,omitempty"`

	// Grouping/ordering
	UsingFilesort  bool `json:"using_filesort,omitempty"`
	UsingTemporary bool `json:"using_temporary,omitempty"`

	// Diagnosis, written only by the analyzer
	Severity Severity `json:"severity,omitempty"`
	Issues   []string `json:"issues,omitempty"`

	Children []*Node `json:"children,omitempty"`
}

// RowsEstimate reports the examined-rows estimate and whether it is known.
func (n *Node) RowsEstimate() (float64, bool) {
	if n.Rows == nil || math.IsNaN(*n.Rows) {
		return 0, false
	}
	return *n.Rows, true
}

func (n *Node) CostEstimate() (float64, bool) {
	if n.Cost == nil || math.IsNaN(*n.Cost) {
		return 0, false
	}
	return *n.Cost, true
}

func (n *Node) FilteredPercent() (float64, bool) {
	if n.Filtered == nil || math.IsNaN(*n.Filtered) {
		return 0, false
	}
	return *n.Filtered, true
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(node *Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node) {
		if found == nil && node.ID == id {
			found = node
		}
	})
	return found
}

// Build converts the raw EXPLAIN document into a Query-rooted Node tree.
func Build(output ExplainOutput) (*Node, error) {
	if output.QueryBlock == nil {
		return nil, ErrNoPlanAvailable
	}
	return buildQuery(RootID, output.QueryBlock), nil
}

func buildQuery(id string, qb *QueryBlock) *Node {
	node := &Node{
		ID:       id,
		Kind:     KindQuery,
		SelectID: qb.SelectID,
		Message:  qb.Message,
	}
	if qb.CostInfo != nil {
		node.Cost = qb.CostInfo.QueryCost.Ptr()
	}
	node.Children = buildChildren(id, qb.Table, qb.NestedLoop, qb.GroupingOperation, qb.OrderingOperation)
	return node
}

// Children order: own table, nested loop members, grouping, ordering.
func buildChildren(prefix string, table *TableAccess, nested []NestedLoopMember, grouping, ordering *Operation) []*Node {
	var children []*Node

	if table != nil {
		children = append(children, buildTable(prefix+"-table", table))
	}
	for i, member := range nested {
		if member.Table == nil {
			continue
		}
		children = append(children, buildTable(fmt.Sprintf("%s-nested-%d", prefix, i), member.Table))
	}
	if grouping != nil {
		children = append(children, buildOperation(prefix+"-grouping", KindGroupBy, grouping))
	}
	if ordering != nil {
		children = append(children, buildOperation(prefix+"-ordering", KindOrderBy, ordering))
	}

	return children
}

func buildOperation(id string, kind NodeKind, op *Operation) *Node {
	node := &Node{
		ID:             id,
		Kind:           kind,
		UsingFilesort:  op.UsingFilesort,
		UsingTemporary: op.UsingTemporaryTable,
	}
	node.Children = buildChildren(id, op.Table, op.NestedLoop, op.GroupingOperation, nil)
	return node
}

func buildTable(id string, t *TableAccess) *Node {
	node := &Node{
		ID:           id,
		Kind:         KindTableAccess,
		Table:        t.TableName,
		AccessType:   strings.ToLower(t.AccessType),
		PossibleKeys: slices.Clone(t.PossibleKeys),
		Key:          t.Key,
		UsedKeyParts: slices.Clone(t.UsedKeyParts),
		Rows:         t.RowsExaminedPerScan.Ptr(),
		Filtered:     t.Filtered.Ptr(),
		UsedColumns:  slices.Clone(t.UsedColumns),
		Condition:    t.AttachedCondition,
	}
	if t.CostInfo != nil {
		node.Cost = t.CostInfo.PrefixCost.Ptr()
		node.ReadCost = t.CostInfo.ReadCost.Ptr()
	}

	if sub := t.MaterializedFromSubquery; sub != nil && sub.QueryBlock != nil {
		node.Children = append(node.Children, buildQuery(id+"-subquery", sub.QueryBlock))
	}

	return node
}
