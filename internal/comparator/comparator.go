package comparator

import (
	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

type Comparator struct {
	Threshold float64
}

// Compare diffs two diagnosed plans, matching nodes by id.
func (c *Comparator) Compare(old, new analyzer.Result) ComparisonResult {
	rootDelta := c.diffNodes(old.Root, new.Root)

	oldCost := costOf(old.Root)
	newCost := costOf(new.Root)
	oldCounts := old.Counts()
	newCounts := new.Counts()

	summary := Summary{
		OldTotalCost: oldCost,
		NewTotalCost: newCost,
		CostDelta:    newCost - oldCost,
		CostPct:      pctChange(oldCost, newCost),
		CostDir:      c.direction(oldCost, newCost, true),

		OldWorst:    old.Worst(),
		NewWorst:    new.Worst(),
		OldCritical: oldCounts[plan.SeverityCritical],
		NewCritical: newCounts[plan.SeverityCritical],
		OldWarnings: oldCounts[plan.SeverityWarning],
		NewWarnings: newCounts[plan.SeverityWarning],
	}
	summary.SeverityDir = healthDirection(summary)

	countChanges(&rootDelta, &summary)
	summary.Verdict = verdict(summary)

	return ComparisonResult{
		OldRunID: old.RunID,
		NewRunID: new.RunID,
		Deltas:   []NodeDelta{rootDelta},
		Summary:  summary,
	}
}

func countChanges(delta *NodeDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.NodesAdded++
	case Removed:
		summary.NodesRemoved++
	case Modified:
		summary.NodesModified++
	case AccessChanged:
		summary.AccessChanges++
	}
	summary.IssuesFixed += len(delta.IssuesRemoved)
	summary.IssuesIntro += len(delta.IssuesAdded)

	for i := range delta.Children {
		countChanges(&delta.Children[i], summary)
	}
}

// healthDirection compares the worst severity first, then critical and
// warning counts.
func healthDirection(s Summary) Direction {
	oldRank := [3]int{int(severityRank(s.OldWorst)), s.OldCritical, s.OldWarnings}
	newRank := [3]int{int(severityRank(s.NewWorst)), s.NewCritical, s.NewWarnings}
	for i := range oldRank {
		switch {
		case newRank[i] < oldRank[i]:
			return Improved
		case newRank[i] > oldRank[i]:
			return Regressed
		}
	}
	return Unchanged
}

func verdict(s Summary) string {
	switch {
	case s.CostDir == Improved && s.SeverityDir == Improved:
		return "cheaper with fewer problems"
	case s.CostDir == Regressed && s.SeverityDir == Regressed:
		return "more expensive with more problems"
	case s.CostDir == Improved && s.SeverityDir == Regressed:
		return "cheaper but with more problems"
	case s.CostDir == Regressed && s.SeverityDir == Improved:
		return "more expensive but with fewer problems"
	case s.CostDir == Improved:
		return "cheaper"
	case s.CostDir == Regressed:
		return "more expensive"
	case s.SeverityDir == Improved:
		return "fewer problems"
	case s.SeverityDir == Regressed:
		return "more problems"
	default:
		return "no significant change"
	}
}

func costOf(n *plan.Node) float64 {
	if n == nil {
		return 0
	}
	cost, _ := n.CostEstimate()
	return cost
}
