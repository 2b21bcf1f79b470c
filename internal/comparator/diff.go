package comparator

import (
	"math"
	"slices"

	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

func (c *Comparator) diffNodes(old, new *plan.Node) NodeDelta {
	if old == nil && new == nil {
		return NodeDelta{}
	}
	if old == nil {
		return addedNode(new)
	}
	if new == nil {
		return removedNode(old)
	}

	delta := NodeDelta{
		ID:            new.ID,
		Kind:          new.Kind,
		Table:         coalesce(new.Table, old.Table),
		OldAccessType: old.AccessType,
		NewAccessType: new.AccessType,
		OldKey:        old.Key,
		NewKey:        new.Key,
		OldCost:       old.Cost,
		NewCost:       new.Cost,
		OldRows:       old.Rows,
		NewRows:       new.Rows,
		OldSeverity:   old.Severity,
		NewSeverity:   new.Severity,
	}

	if oldCost, ok := old.CostEstimate(); ok {
		if newCost, ok := new.CostEstimate(); ok {
			delta.CostDelta = newCost - oldCost
			delta.CostPct = pctChange(oldCost, newCost)
			delta.CostDir = c.direction(oldCost, newCost, true)
		}
	}
	if oldRows, ok := old.RowsEstimate(); ok {
		if newRows, ok := new.RowsEstimate(); ok {
			delta.RowsPct = pctChange(oldRows, newRows)
			delta.RowsDir = c.direction(oldRows, newRows, true)
		}
	}

	delta.SeverityDir = severityDirection(old.Severity, new.Severity)
	delta.IssuesAdded = subtract(new.Issues, old.Issues)
	delta.IssuesRemoved = subtract(old.Issues, new.Issues)

	switch {
	case old.Kind != new.Kind || old.AccessType != new.AccessType || old.Key != new.Key:
		delta.ChangeType = AccessChanged
	case c.isSignificant(delta):
		delta.ChangeType = Modified
	default:
		delta.ChangeType = NoChange
	}

	delta.Children = c.diffChildren(old.Children, new.Children)

	return delta
}

// diffChildren keeps the old order for matched and removed children, then
// appends children only the new plan has.
func (c *Comparator) diffChildren(oldKids, newKids []*plan.Node) []NodeDelta {
	var deltas []NodeDelta

	newByID := make(map[string]*plan.Node, len(newKids))
	for _, kid := range newKids {
		newByID[kid.ID] = kid
	}

	matched := make(map[string]bool, len(oldKids))
	for _, kid := range oldKids {
		if counterpart, ok := newByID[kid.ID]; ok {
			matched[kid.ID] = true
			deltas = append(deltas, c.diffNodes(kid, counterpart))
			continue
		}
		deltas = append(deltas, removedNode(kid))
	}

	for _, kid := range newKids {
		if !matched[kid.ID] {
			deltas = append(deltas, addedNode(kid))
		}
	}

	return deltas
}

func addedNode(node *plan.Node) NodeDelta {
	delta := NodeDelta{
		ID:            node.ID,
		Kind:          node.Kind,
		Table:         node.Table,
		ChangeType:    Added,
		NewAccessType: node.AccessType,
		NewKey:        node.Key,
		NewCost:       node.Cost,
		NewRows:       node.Rows,
		NewSeverity:   node.Severity,
		IssuesAdded:   slices.Clone(node.Issues),
	}

	for _, child := range node.Children {
		delta.Children = append(delta.Children, addedNode(child))
	}

	return delta
}

func removedNode(node *plan.Node) NodeDelta {
	delta := NodeDelta{
		ID:            node.ID,
		Kind:          node.Kind,
		Table:         node.Table,
		ChangeType:    Removed,
		OldAccessType: node.AccessType,
		OldKey:        node.Key,
		OldCost:       node.Cost,
		OldRows:       node.Rows,
		OldSeverity:   node.Severity,
		IssuesRemoved: slices.Clone(node.Issues),
	}

	for _, child := range node.Children {
		delta.Children = append(delta.Children, removedNode(child))
	}

	return delta
}

func (c *Comparator) isSignificant(d NodeDelta) bool {
	if math.Abs(d.CostPct) > c.Threshold {
		return true
	}
	if math.Abs(d.RowsPct) > c.Threshold {
		return true
	}
	if (d.OldCost == nil) != (d.NewCost == nil) {
		return true
	}
	if d.SeverityDir != Unchanged {
		return true
	}
	return len(d.IssuesAdded) > 0 || len(d.IssuesRemoved) > 0
}

func (c *Comparator) direction(old, new float64, lowerPreference bool) Direction {
	if math.Abs(pctChange(old, new)) < c.Threshold {
		return Unchanged
	}
	if lowerPreference {
		if new < old {
			return Improved
		}
		return Regressed
	}
	if new > old {
		return Improved
	}
	return Regressed
}

// An undiagnosed node ranks with a good one.
func severityRank(s plan.Severity) plan.Severity {
	return max(s, plan.SeverityGood)
}

func severityDirection(old, new plan.Severity) Direction {
	switch o, n := severityRank(old), severityRank(new); {
	case n < o:
		return Improved
	case n > o:
		return Regressed
	default:
		return Unchanged
	}
}

// subtract returns the entries of a missing from b, in a's order.
func subtract(a, b []string) []string {
	var out []string
	for _, s := range a {
		if !slices.Contains(b, s) {
			out = append(out, s)
		}
	}
	return out
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
