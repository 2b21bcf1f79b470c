package plan

import "strings"

// ExtractTables returns the distinct table names referenced by the plan, in the
// order they are first seen. Derived and subquery results are skipped.
func ExtractTables(output ExplainOutput) []string {
	c := &tableCollector{seen: make(map[string]bool)}
	if output.QueryBlock != nil {
		c.collectBlock(output.QueryBlock)
	}
	return c.names
}

type tableCollector struct {
	seen  map[string]bool
	names []string
}

func (c *tableCollector) collectBlock(qb *QueryBlock) {
	c.collect(qb.Table, qb.NestedLoop, qb.GroupingOperation, qb.OrderingOperation)
}

func (c *tableCollector) collect(table *TableAccess, nested []NestedLoopMember, grouping, ordering *Operation) {
	c.addTable(table)
	for _, member := range nested {
		c.addTable(member.Table)
	}
	if grouping != nil {
		c.collect(grouping.Table, grouping.NestedLoop, grouping.GroupingOperation, nil)
	}
	if ordering != nil {
		c.collect(ordering.Table, ordering.NestedLoop, ordering.GroupingOperation, nil)
	}
}

func (c *tableCollector) addTable(t *TableAccess) {
	if t == nil {
		return
	}
	if name := t.TableName; resolvableTable(name) && !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
	if sub := t.MaterializedFromSubquery; sub != nil && sub.QueryBlock != nil {
		c.collectBlock(sub.QueryBlock)
	}
}

// MySQL names derived results like <derived2>, <subquery3> or <union1,2>.
func resolvableTable(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.HasPrefix(name, "<")
}
