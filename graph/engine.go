package graph

import "context"

// Result is the row set returned by an engine statement. Columns preserves
// the engine's column order; extractors that read positionally depend on it.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Statement is a prepared engine statement. Statements are scoped to the
// phase that prepared them and must be closed on every exit path; leaking
// one across phases is a correctness hazard in the target engine.
type Statement interface {
	Execute(ctx context.Context, params map[string]any) error
	Close() error
}

// Property describes one column of a node or relationship table.
type Property struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primaryKey,omitempty"`
}

// NodeTable describes one node table in the graph schema.
type NodeTable struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// RelTable describes one relationship table and its connectivity pair.
type RelTable struct {
	Name       string     `json:"name"`
	From       string     `json:"from"`
	To         string     `json:"to"`
	Properties []Property `json:"properties,omitempty"`
}

// Schema is the engine's introspected table catalog. The materializer's
// declarations must round-trip through this exactly; the query layer feeds
// it to Cypher generation.
type Schema struct {
	Nodes []NodeTable `json:"nodeTables"`
	Rels  []RelTable  `json:"relTables"`
}

// Engine is the consumed graph-engine surface. Implementations execute a
// property-graph dialect supporting CREATE NODE TABLE, CREATE REL TABLE
// with FROM/TO connectivity, CREATE node, MATCH ... CREATE relationship,
// and bulk LOAD FROM over a file previously placed in the engine's working
// filesystem via WriteFile.
//
// Two implementations ship with this package: DuckEngine (embedded) and
// KuzuClient (remote API server). Calls are sequential within one import
// batch; no implementation needs to support concurrent statements.
type Engine interface {
	Execute(ctx context.Context, statement string, params map[string]any) (*Result, error)
	Prepare(ctx context.Context, statement string) (Statement, error)

	// WriteFile and Unlink manage the engine's working filesystem, used to
	// stage export files for LOAD FROM.
	WriteFile(name string, data []byte) error
	Unlink(name string) error

	Schema(ctx context.Context) (*Schema, error)
	Close() error
}
