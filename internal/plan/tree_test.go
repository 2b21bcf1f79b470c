package plan

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func loadFixture(t *testing.T, name string) ExplainOutput {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	plans, err := ParseJSONPlan(data)
	if err != nil {
		t.Fatalf("ParseJSONPlan failed: %v", err)
	}
	return plans[0]
}

func collectIDs(root *Node) []string {
	var ids []string
	root.Walk(func(n *Node) {
		ids = append(ids, n.ID)
	})
	return ids
}

func TestBuild_NoQueryBlock(t *testing.T) {
	root, err := Build(ExplainOutput{})
	if !errors.Is(err, ErrNoPlanAvailable) {
		t.Fatalf("err = %v, want ErrNoPlanAvailable", err)
	}
	if root != nil {
		t.Errorf("expected nil tree, got %+v", root)
	}
}

func TestBuild_ChildOrder(t *testing.T) {
	output := ExplainOutput{QueryBlock: &QueryBlock{
		CostInfo: &CostInfo{QueryCost: NewNumber(42)},
		Table:    &TableAccess{TableName: "a", AccessType: "ALL"},
		NestedLoop: []NestedLoopMember{
			{Table: &TableAccess{TableName: "b", AccessType: "ref"}},
			{Table: &TableAccess{TableName: "c", AccessType: "eq_ref"}},
		},
		GroupingOperation: &Operation{Table: &TableAccess{TableName: "d"}},
		OrderingOperation: &Operation{UsingFilesort: true, Table: &TableAccess{TableName: "e"}},
	}}

	root, err := Build(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.ID != "root" || root.Kind != KindQuery {
		t.Fatalf("root = %s/%s, want root/query", root.ID, root.Kind)
	}
	if cost, ok := root.CostEstimate(); !ok || cost != 42 {
		t.Errorf("cost = %v/%v, want 42", cost, ok)
	}

	want := []string{
		"root",
		"root-table",
		"root-nested-0",
		"root-nested-1",
		"root-grouping",
		"root-grouping-table",
		"root-ordering",
		"root-ordering-table",
	}
	if got := collectIDs(root); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	kinds := []NodeKind{KindTableAccess, KindTableAccess, KindTableAccess, KindGroupBy, KindOrderBy}
	for i, child := range root.Children {
		if child.Kind != kinds[i] {
			t.Errorf("child %d kind = %s, want %s", i, child.Kind, kinds[i])
		}
	}
	if !root.Children[4].UsingFilesort {
		t.Error("ordering node should carry using_filesort")
	}
}

func TestBuild_TableFields(t *testing.T) {
	output := ExplainOutput{QueryBlock: &QueryBlock{
		Table: &TableAccess{
			TableName:           "orders",
			AccessType:          "RANGE",
			PossibleKeys:        []string{"idx_a", "idx_b"},
			Key:                 "idx_a",
			RowsExaminedPerScan: NewNumber(1500),
			Filtered:            NewNumber(33.3),
			CostInfo:            &CostInfo{ReadCost: NewNumber(10), PrefixCost: NewNumber(12)},
			AttachedCondition:   "(`orders`.`total` > 10)",
		},
	}}

	root, err := Build(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	node := root.Children[0]
	if node.AccessType != "range" {
		t.Errorf("AccessType = %q, want range", node.AccessType)
	}
	if rows, ok := node.RowsEstimate(); !ok || rows != 1500 {
		t.Errorf("rows = %v/%v, want 1500", rows, ok)
	}
	if f, ok := node.FilteredPercent(); !ok || f != 33.3 {
		t.Errorf("filtered = %v/%v, want 33.3", f, ok)
	}
	if node.ReadCost == nil || *node.ReadCost != 10 {
		t.Errorf("ReadCost = %v, want 10", node.ReadCost)
	}
	if node.Cost == nil || *node.Cost != 12 {
		t.Errorf("Cost = %v, want 12", node.Cost)
	}
	if node.Condition != "(`orders`.`total` > 10)" {
		t.Errorf("Condition = %q", node.Condition)
	}
	if node.Severity != SeverityNone || len(node.Issues) != 0 {
		t.Error("builder must not set severity or issues")
	}

	// Node owns its slices
	output.QueryBlock.Table.PossibleKeys[0] = "mutated"
	if node.PossibleKeys[0] != "idx_a" {
		t.Error("PossibleKeys should be copied from raw input")
	}
}

func TestBuild_MissingEstimatesStayUnknown(t *testing.T) {
	root, err := Build(ExplainOutput{QueryBlock: &QueryBlock{
		Table: &TableAccess{TableName: "t", AccessType: "ALL"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Cost != nil {
		t.Errorf("root cost = %v, want nil", *root.Cost)
	}
	node := root.Children[0]
	if _, ok := node.RowsEstimate(); ok {
		t.Error("rows should be unknown")
	}
	if _, ok := node.FilteredPercent(); ok {
		t.Error("filtered should be unknown")
	}
}

func TestBuild_NestedOperations(t *testing.T) {
	root, err := Build(loadFixture(t, "join_group_order.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"root",
		"root-ordering",
		"root-ordering-grouping",
		"root-ordering-grouping-nested-0",
		"root-ordering-grouping-nested-1",
	}
	if got := collectIDs(root); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}

	orders := root.Find("root-ordering-grouping-nested-0")
	if orders == nil || orders.Table != "orders" || orders.AccessType != "all" {
		t.Fatalf("unexpected orders node: %+v", orders)
	}
	grouping := root.Find("root-ordering-grouping")
	if !grouping.UsingTemporary {
		t.Error("grouping node should carry using_temporary")
	}
}

func TestBuild_MaterializedSubquery(t *testing.T) {
	output := ExplainOutput{QueryBlock: &QueryBlock{
		Table: &TableAccess{
			TableName:  "<derived2>",
			AccessType: "ALL",
			MaterializedFromSubquery: &Subquery{QueryBlock: &QueryBlock{
				SelectID: 2,
				CostInfo: &CostInfo{QueryCost: NewNumber(5)},
				Table:    &TableAccess{TableName: "payments", AccessType: "index"},
			}},
		},
	}}

	root, err := Build(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"root", "root-table", "root-table-subquery", "root-table-subquery-table"}
	if got := collectIDs(root); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	sub := root.Find("root-table-subquery")
	if sub.Kind != KindQuery || sub.SelectID != 2 {
		t.Errorf("subquery node = %+v", sub)
	}
}

func TestBuild_DeterministicIDs(t *testing.T) {
	output := loadFixture(t, "join_group_order.json")

	first, err := Build(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(collectIDs(first), collectIDs(second)) {
		t.Error("ids differ between builds of identical input")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := map[Severity]string{
		SeverityNone:     "",
		SeverityGood:     "good",
		SeverityWarning:  "warning",
		SeverityCritical: "critical",
	}
	for sev, want := range tests {
		if got := sev.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", sev, got, want)
		}
	}
}
