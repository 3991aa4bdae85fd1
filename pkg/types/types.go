// Package types defines the core data structures for interview dependency
// graphs: nodes (variables, questions, rules), directed dependency edges,
// and the JSON exchange structures used for persistence and diffing.
package types

// NodeKind represents the kind of node in the dependency graph.
type NodeKind string

const (
	KindVariable     NodeKind = "variable"      // Plain interview variable
	KindQuestion     NodeKind = "question"      // User-facing question
	KindRule         NodeKind = "rule"          // Derived rule
	KindAssemblyLine NodeKind = "assembly_line" // Assembly Line library variable (AL_ prefix)
)

// DependencyType represents how a dependency edge was discovered.
type DependencyType string

const (
	DepExplicit DependencyType = "explicit" // Stated via a directive such as "depends on" or "required"
	DepImplicit DependencyType = "implicit" // Inferred from a reference inside an expression, template, or code block
)

// Node source classifications.
const (
	SourceUserInput = "user_input"
	SourceDerived   = "derived"
)

// Node is a named point in the dependency graph.
// Name is the unique key within a graph.
type Node struct {
	Name       string         `json:"name"`
	Kind       NodeKind       `json:"kind"`
	Source     string         `json:"source"`
	Authority  string         `json:"authority,omitempty"` // statute or rule citation
	FilePath   string         `json:"file_path,omitempty"`
	LineNumber int            `json:"line_number,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Edge is a directed dependency: To depends on From.
type Edge struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       DependencyType `json:"type"`
	FilePath   string         `json:"file_path,omitempty"`
	LineNumber int            `json:"line_number,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Key returns the identity used for edge deduplication and diffing.
// Provenance differences do not change an edge's identity.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Type: e.Type}
}

// EdgeKey identifies an edge by endpoints and dependency type.
type EdgeKey struct {
	From string
	To   string
	Type DependencyType
}

// Snapshot is the JSON exchange form of a graph. Round-tripping a graph
// through a Snapshot is lossless for every field on Node and Edge.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
