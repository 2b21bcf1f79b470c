package comparator

import (
	"testing"

	"github.com/jacobarthurs/mysqlplan/internal/analyzer"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
)

func defaultComparator() *Comparator {
	return &Comparator{Threshold: 5.0}
}

func f64(v float64) *float64 { return &v }

func tableNode(id, table, access, key string, rows float64, sev plan.Severity, issues ...string) *plan.Node {
	return &plan.Node{
		ID:         id,
		Kind:       plan.KindTableAccess,
		Table:      table,
		AccessType: access,
		Key:        key,
		Rows:       f64(rows),
		Cost:       f64(rows * 1.2),
		Severity:   sev,
		Issues:     issues,
	}
}

func result(cost float64, sev plan.Severity, children ...*plan.Node) analyzer.Result {
	return analyzer.Result{
		RunID: "run",
		Root: &plan.Node{
			ID:       plan.RootID,
			Kind:     plan.KindQuery,
			Cost:     f64(cost),
			Severity: sev,
			Children: children,
		},
	}
}

func TestDiffNodes_SameNode(t *testing.T) {
	c := defaultComparator()
	node := tableNode("root-table", "users", plan.AccessRef, "PRIMARY", 1, plan.SeverityGood)

	delta := c.diffNodes(node, node)

	if delta.ChangeType != NoChange {
		t.Errorf("ChangeType = %v, want NoChange", delta.ChangeType)
	}
	if delta.CostDelta != 0 {
		t.Errorf("CostDelta = %f, want 0", delta.CostDelta)
	}
}

func TestDiffNodes_CostIncrease(t *testing.T) {
	c := defaultComparator()
	old := tableNode("root-table", "orders", plan.AccessRange, "idx_a", 100, plan.SeverityGood)
	new := tableNode("root-table", "orders", plan.AccessRange, "idx_a", 200, plan.SeverityGood)

	delta := c.diffNodes(old, new)

	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
	if delta.CostDir != Regressed {
		t.Errorf("CostDir = %v, want Regressed", delta.CostDir)
	}
	if delta.CostPct != 100.0 {
		t.Errorf("CostPct = %f, want 100.0", delta.CostPct)
	}
	if delta.RowsDir != Regressed {
		t.Errorf("RowsDir = %v, want Regressed", delta.RowsDir)
	}
}

func TestDiffNodes_AccessChanged(t *testing.T) {
	c := defaultComparator()
	old := tableNode("root-table", "orders", plan.AccessAll, "", 48000, plan.SeverityCritical,
		"full table scan — no index used", "add an index on WHERE columns")
	new := tableNode("root-table", "orders", plan.AccessRef, "idx_orders_status", 120, plan.SeverityGood,
		"efficient ref lookup using index idx_orders_status (status)")

	delta := c.diffNodes(old, new)

	if delta.ChangeType != AccessChanged {
		t.Errorf("ChangeType = %v, want AccessChanged", delta.ChangeType)
	}
	if delta.SeverityDir != Improved {
		t.Errorf("SeverityDir = %v, want Improved", delta.SeverityDir)
	}
	if len(delta.IssuesRemoved) != 2 || len(delta.IssuesAdded) != 1 {
		t.Errorf("issues removed %q, added %q", delta.IssuesRemoved, delta.IssuesAdded)
	}
	if delta.OldKey != "" || delta.NewKey != "idx_orders_status" {
		t.Errorf("keys = %q -> %q", delta.OldKey, delta.NewKey)
	}
}

func TestDiffNodes_IssueChangeIsSignificant(t *testing.T) {
	c := defaultComparator()
	old := tableNode("root-table", "orders", plan.AccessRange, "idx_a", 100, plan.SeverityWarning, "a")
	new := tableNode("root-table", "orders", plan.AccessRange, "idx_a", 100, plan.SeverityWarning, "b")

	delta := c.diffNodes(old, new)

	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified", delta.ChangeType)
	}
}

func TestDiffNodes_UnknownCostLeavesDirectionUnchanged(t *testing.T) {
	c := defaultComparator()
	old := &plan.Node{ID: "root-table", Kind: plan.KindTableAccess}
	new := &plan.Node{ID: "root-table", Kind: plan.KindTableAccess, Cost: f64(500)}

	delta := c.diffNodes(old, new)

	if delta.CostDir != Unchanged {
		t.Errorf("CostDir = %v, want Unchanged", delta.CostDir)
	}
	if delta.ChangeType != Modified {
		t.Errorf("ChangeType = %v, want Modified when an estimate appears", delta.ChangeType)
	}
}

func TestDiffChildren_MatchesByID(t *testing.T) {
	c := defaultComparator()
	oldKids := []*plan.Node{
		tableNode("root-nested-0", "orders", plan.AccessAll, "", 100, plan.SeverityCritical),
		tableNode("root-nested-1", "customers", plan.AccessEqRef, "PRIMARY", 1, plan.SeverityGood),
	}
	newKids := []*plan.Node{
		tableNode("root-nested-1", "customers", plan.AccessEqRef, "PRIMARY", 1, plan.SeverityGood),
		tableNode("root-nested-2", "items", plan.AccessRef, "idx_items_order", 4, plan.SeverityGood),
	}

	deltas := c.diffChildren(oldKids, newKids)

	if len(deltas) != 3 {
		t.Fatalf("got %d deltas, want 3", len(deltas))
	}
	want := []struct {
		id     string
		change ChangeType
	}{
		{"root-nested-0", Removed},
		{"root-nested-1", NoChange},
		{"root-nested-2", Added},
	}
	for i, w := range want {
		if deltas[i].ID != w.id || deltas[i].ChangeType != w.change {
			t.Errorf("delta[%d] = %s/%v, want %s/%v", i, deltas[i].ID, deltas[i].ChangeType, w.id, w.change)
		}
	}
}

func TestAddedNode_Recursive(t *testing.T) {
	node := tableNode("root-table", "t", plan.AccessAll, "", 10, plan.SeverityCritical, "x")
	node.Children = []*plan.Node{{ID: "root-table-subquery", Kind: plan.KindQuery}}

	delta := addedNode(node)

	if delta.ChangeType != Added || len(delta.Children) != 1 || delta.Children[0].ChangeType != Added {
		t.Fatalf("unexpected delta %+v", delta)
	}
	if len(delta.IssuesAdded) != 1 {
		t.Errorf("IssuesAdded = %q", delta.IssuesAdded)
	}
}

func TestCompare_IdenticalPlans(t *testing.T) {
	c := defaultComparator()
	r := result(20, plan.SeverityGood, tableNode("root-table", "users", plan.AccessConst, "PRIMARY", 1, plan.SeverityGood))

	cmp := c.Compare(r, r)

	s := cmp.Summary
	if s.CostDelta != 0 {
		t.Errorf("CostDelta = %f, want 0", s.CostDelta)
	}
	total := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.AccessChanges
	if total != 0 {
		t.Errorf("expected 0 changes, got %d", total)
	}
	if s.Verdict != "no significant change" {
		t.Errorf("Verdict = %q, want 'no significant change'", s.Verdict)
	}
}

func TestCompare_VerdictCheaperWithFewerProblems(t *testing.T) {
	c := defaultComparator()
	old := result(12000, plan.SeverityCritical,
		tableNode("root-table", "orders", plan.AccessAll, "", 48000, plan.SeverityCritical, "full table scan — no index used"))
	new := result(150, plan.SeverityGood,
		tableNode("root-table", "orders", plan.AccessRef, "idx_orders_status", 120, plan.SeverityGood))

	cmp := c.Compare(old, new)

	if cmp.Summary.Verdict != "cheaper with fewer problems" {
		t.Errorf("Verdict = %q", cmp.Summary.Verdict)
	}
	if cmp.Summary.OldCritical != 2 || cmp.Summary.NewCritical != 0 {
		t.Errorf("critical counts = %d -> %d", cmp.Summary.OldCritical, cmp.Summary.NewCritical)
	}
	if cmp.Summary.AccessChanges != 1 || cmp.Summary.IssuesFixed != 1 {
		t.Errorf("summary = %+v", cmp.Summary)
	}
}

func TestCompare_VerdictMoreExpensiveWithMoreProblems(t *testing.T) {
	c := defaultComparator()
	old := result(150, plan.SeverityGood,
		tableNode("root-table", "orders", plan.AccessRef, "idx_orders_status", 120, plan.SeverityGood))
	new := result(12000, plan.SeverityCritical,
		tableNode("root-table", "orders", plan.AccessAll, "", 48000, plan.SeverityCritical))

	cmp := c.Compare(old, new)

	if cmp.Summary.Verdict != "more expensive with more problems" {
		t.Errorf("Verdict = %q", cmp.Summary.Verdict)
	}
}

func TestCompare_VerdictCostOnly(t *testing.T) {
	c := defaultComparator()
	old := result(500, plan.SeverityGood)
	new := result(300, plan.SeverityGood)

	if v := c.Compare(old, new).Summary.Verdict; v != "cheaper" {
		t.Errorf("Verdict = %q, want cheaper", v)
	}
}

func TestHealthDirection_CountsBreakTies(t *testing.T) {
	s := Summary{
		OldWorst: plan.SeverityWarning, NewWorst: plan.SeverityWarning,
		OldWarnings: 3, NewWarnings: 1,
	}
	if got := healthDirection(s); got != Improved {
		t.Errorf("healthDirection = %v, want Improved", got)
	}
}

func TestSeverityDirection_UndiagnosedRanksAsGood(t *testing.T) {
	if got := severityDirection(plan.SeverityNone, plan.SeverityGood); got != Unchanged {
		t.Errorf("None -> Good = %v, want Unchanged", got)
	}
	if got := severityDirection(plan.SeverityWarning, plan.SeverityNone); got != Improved {
		t.Errorf("Warning -> None = %v, want Improved", got)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		old, new, want float64
	}{
		{100, 200, 100.0},
		{100, 50, -50.0},
		{100, 100, 0},
		{0, 100, 100.0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		got := pctChange(tt.old, tt.new)
		if got != tt.want {
			t.Errorf("pctChange(%f, %f) = %f, want %f", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	c := defaultComparator()
	tests := []struct {
		old, new      float64
		lowerIsBetter bool
		want          Direction
	}{
		{100, 50, true, Improved},
		{50, 100, true, Regressed},
		{100, 100, true, Unchanged},
		{100, 99.5, true, Unchanged},
		{50, 100, false, Improved},
		{100, 50, false, Regressed},
	}

	for _, tt := range tests {
		got := c.direction(tt.old, tt.new, tt.lowerIsBetter)
		if got != tt.want {
			t.Errorf("direction(%f, %f, %v) = %v, want %v", tt.old, tt.new, tt.lowerIsBetter, got, tt.want)
		}
	}
}

func TestIsSignificant_TinyChange(t *testing.T) {
	c := defaultComparator()
	d := NodeDelta{OldCost: f64(100), NewCost: f64(100.5), CostPct: 0.5}
	if c.isSignificant(d) {
		t.Error("0.5% change should not be significant")
	}
}

func TestIsSignificant_SeverityChange(t *testing.T) {
	c := defaultComparator()
	d := NodeDelta{SeverityDir: Regressed}
	if !c.isSignificant(d) {
		t.Error("severity change should be significant")
	}
}
