package schema

import "sort"

// IndexColumnRow is one column of one index, the shape returned by SHOW INDEX,
// information_schema.STATISTICS and pg_index joins.
type IndexColumnRow struct {
	IndexName   string
	Column      string
	Seq         int
	NonUnique   bool
	Type        string
	Cardinality *int64
}

// GroupIndexRows folds per-column rows into one IndexStatistics per index.
// Indexes keep first-seen order; columns are ordered by Seq. The index
// cardinality is the largest column cardinality, which for MySQL's cumulative
// prefix statistics is the full-key value.
func GroupIndexRows(rows []IndexColumnRow) []IndexStatistics {
	type pending struct {
		stats IndexStatistics
		cols  []IndexColumnRow
	}

	var order []string
	byName := make(map[string]*pending)

	for _, row := range rows {
		if row.IndexName == "" || row.Column == "" {
			continue
		}
		p, ok := byName[row.IndexName]
		if !ok {
			p = &pending{stats: IndexStatistics{
				Name:   row.IndexName,
				Unique: !row.NonUnique,
				Type:   row.Type,
			}}
			byName[row.IndexName] = p
			order = append(order, row.IndexName)
		}
		p.cols = append(p.cols, row)
	}

	indexes := make([]IndexStatistics, 0, len(order))
	for _, name := range order {
		p := byName[name]
		sort.SliceStable(p.cols, func(i, j int) bool {
			return p.cols[i].Seq < p.cols[j].Seq
		})

		stats := p.stats
		for _, col := range p.cols {
			stats.Columns = append(stats.Columns, col.Column)
			if col.Cardinality == nil {
				continue
			}
			if stats.ColumnCardinalities == nil {
				stats.ColumnCardinalities = make(map[string]int64)
			}
			stats.ColumnCardinalities[col.Column] = *col.Cardinality
			if *col.Cardinality > stats.Cardinality {
				stats.Cardinality = *col.Cardinality
			}
		}
		indexes = append(indexes, stats)
	}

	return indexes
}
