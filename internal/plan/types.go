package plan

// ExplainOutput represents the top-level EXPLAIN FORMAT=JSON document from MySQL.
// Every field is optional; Build turns it into a Node tree.
type ExplainOutput struct {
	QueryBlock *QueryBlock `json:"query_block,omitempty"`
}

type QueryBlock struct {
	SelectID int       `json:"select_id,omitempty"`
	Message  string    `json:"message,omitempty"`
	CostInfo *CostInfo `json:"cost_info,omitempty"`

	Table             *TableAccess       `json:"table,omitempty"`
	NestedLoop        []NestedLoopMember `json:"nested_loop,omitempty"`
	GroupingOperation *Operation         `json:"grouping_operation,omitempty"`
	OrderingOperation *Operation         `json:"ordering_operation,omitempty"`
}

type CostInfo struct {
	QueryCost       Number `json:"query_cost"`
	ReadCost        Number `json:"read_cost"`
	EvalCost        Number `json:"eval_cost"`
	PrefixCost      Number `json:"prefix_cost"`
	SortCost        Number `json:"sort_cost"`
	DataReadPerJoin string `json:"data_read_per_join,omitempty"`
}

type NestedLoopMember struct {
	Table *TableAccess `json:"table,omitempty"`
}

// Operation is a grouping_operation or ordering_operation wrapper.
type Operation struct {
	UsingTemporaryTable bool      `json:"using_temporary_table,omitempty"`
	UsingFilesort       bool      `json:"using_filesort,omitempty"`
	CostInfo            *CostInfo `json:"cost_info,omitempty"`

	Table             *TableAccess       `json:"table,omitempty"`
	NestedLoop        []NestedLoopMember `json:"nested_loop,omitempty"`
	GroupingOperation *Operation         `json:"grouping_operation,omitempty"`
}

type TableAccess struct {
	// Relation info
	TableName  string   `json:"table_name"`
	AccessType string   `json:"access_type"`
	Partitions []string `json:"partitions,omitempty"`

	// Index info
	PossibleKeys []string `json:"possible_keys,omitempty"`
	Key          string   `json:"key,omitempty"`
	UsedKeyParts []string `json:"used_key_parts,omitempty"`
	KeyLength    string   `json:"key_length,omitempty"`
	Ref          []string `json:"ref,omitempty"`

	// Estimates
	RowsExaminedPerScan Number    `json:"rows_examined_per_scan"`
	RowsProducedPerJoin Number    `json:"rows_produced_per_join"`
	Filtered            Number    `json:"filtered"`
	CostInfo            *CostInfo `json:"cost_info,omitempty"`

	// Conditions
	UsedColumns       []string `json:"used_columns,omitempty"`
	AttachedCondition string   `json:"attached_condition,omitempty"`
	UsingIndex        bool     `json:"using_index,omitempty"`

	MaterializedFromSubquery *Subquery `json:"materialized_from_subquery,omitempty"`
}

// Subquery wraps a derived table's own query block.
type Subquery struct {
	UsingTemporaryTable bool        `json:"using_temporary_table,omitempty"`
	Dependent           bool        `json:"dependent,omitempty"`
	Cacheable           bool        `json:"cacheable,omitempty"`
	QueryBlock          *QueryBlock `json:"query_block,omitempty"`
}
