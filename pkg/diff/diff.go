// Package diff compares two dependency graphs for change tracking and
// downstream impact analysis.
package diff

import (
	"sort"

	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// FieldChange records one property's old and new values.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// NodeChange describes the changed properties of one node present in both
// graphs. Only fields that differ are populated.
type NodeChange struct {
	Name       string       `json:"name"`
	Kind       *FieldChange `json:"kind,omitempty"`
	Source     *FieldChange `json:"source,omitempty"`
	Authority  *FieldChange `json:"authority,omitempty"`
	FilePath   *FieldChange `json:"file_path,omitempty"`
	LineNumber *FieldChange `json:"line_number,omitempty"`
}

// AuthorityChange records a node whose authority reference moved.
type AuthorityChange struct {
	Node         string `json:"node"`
	OldAuthority string `json:"old_authority"`
	NewAuthority string `json:"new_authority"`
}

// Diff is the structural difference between two dependency graphs.
// AffectedNodes holds the downstream blast radius of the changes, as
// computed against the new graph, sorted by name.
type Diff struct {
	AddedNodes       []types.Node      `json:"added_nodes"`
	RemovedNodes     []types.Node      `json:"removed_nodes"`
	ChangedNodes     []NodeChange      `json:"changed_nodes"`
	AddedEdges       []types.Edge      `json:"added_edges"`
	RemovedEdges     []types.Edge      `json:"removed_edges"`
	AuthorityChanges []AuthorityChange `json:"authority_changes"`
	AffectedNodes    []string          `json:"affected_nodes"`
}

// Empty reports whether the two graphs were structurally identical.
func (d *Diff) Empty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 && len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}

// Compare diffs oldGraph against newGraph. Nodes are matched by name and
// compared field-wise; edges are matched by (from, to, type). Affected
// nodes are the transitive dependents, in the new graph, of every removed
// edge target and every changed node, changed nodes included.
func Compare(oldGraph, newGraph *graph.Graph) *Diff {
	d := &Diff{}

	oldNodes := oldGraph.Nodes()
	newNodes := newGraph.Nodes()

	var removedNames []string
	for name, node := range oldNodes {
		if _, ok := newNodes[name]; !ok {
			d.RemovedNodes = append(d.RemovedNodes, node)
			removedNames = append(removedNames, name)
		}
	}
	for name, node := range newNodes {
		if _, ok := oldNodes[name]; !ok {
			d.AddedNodes = append(d.AddedNodes, node)
		}
	}
	sortNodes(d.AddedNodes)
	sortNodes(d.RemovedNodes)

	for _, name := range graph.SortedSet(commonNames(oldNodes, newNodes)) {
		change, authorityChange := compareNode(oldNodes[name], newNodes[name])
		if change != nil {
			d.ChangedNodes = append(d.ChangedNodes, *change)
		}
		if authorityChange != nil {
			d.AuthorityChanges = append(d.AuthorityChanges, *authorityChange)
		}
	}

	oldEdgeKeys := edgeKeySet(oldGraph.Edges())
	newEdgeKeys := edgeKeySet(newGraph.Edges())

	for _, edge := range newGraph.Edges() {
		if !oldEdgeKeys[edge.Key()] {
			d.AddedEdges = append(d.AddedEdges, edge)
		}
	}
	for _, edge := range oldGraph.Edges() {
		if !newEdgeKeys[edge.Key()] {
			d.RemovedEdges = append(d.RemovedEdges, edge)
		}
	}

	affected := make(map[string]bool)

	// Removed nodes should be absent from the new graph; guard anyway so
	// a rename-plus-redeclare still surfaces its dependents.
	for _, name := range removedNames {
		addDependents(newGraph, name, affected)
	}
	for _, edge := range d.RemovedEdges {
		if _, ok := newNodes[edge.To]; ok {
			affected[edge.To] = true
			addDependents(newGraph, edge.To, affected)
		}
	}
	for _, change := range d.ChangedNodes {
		if _, ok := newNodes[change.Name]; ok {
			affected[change.Name] = true
			addDependents(newGraph, change.Name, affected)
		}
	}

	d.AffectedNodes = graph.SortedSet(affected)
	return d
}

// ChangeImpact maps each changed node to the sorted list of nodes that
// transitively depend on it. Names absent from the graph are skipped.
func ChangeImpact(g *graph.Graph, changed []string) map[string][]string {
	impact := make(map[string][]string)
	for _, name := range changed {
		dependents, err := g.TransitiveDependents(name)
		if err != nil {
			continue
		}
		impact[name] = graph.SortedSet(dependents)
	}
	return impact
}

func compareNode(oldNode, newNode types.Node) (*NodeChange, *AuthorityChange) {
	change := NodeChange{Name: oldNode.Name}
	changed := false

	if oldNode.Kind != newNode.Kind {
		change.Kind = &FieldChange{Old: oldNode.Kind, New: newNode.Kind}
		changed = true
	}
	if oldNode.Source != newNode.Source {
		change.Source = &FieldChange{Old: oldNode.Source, New: newNode.Source}
		changed = true
	}
	var authorityChange *AuthorityChange
	if oldNode.Authority != newNode.Authority {
		change.Authority = &FieldChange{Old: oldNode.Authority, New: newNode.Authority}
		authorityChange = &AuthorityChange{
			Node:         oldNode.Name,
			OldAuthority: oldNode.Authority,
			NewAuthority: newNode.Authority,
		}
		changed = true
	}
	if oldNode.FilePath != newNode.FilePath {
		change.FilePath = &FieldChange{Old: oldNode.FilePath, New: newNode.FilePath}
		changed = true
	}
	if oldNode.LineNumber != newNode.LineNumber {
		change.LineNumber = &FieldChange{Old: oldNode.LineNumber, New: newNode.LineNumber}
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return &change, authorityChange
}

func addDependents(g *graph.Graph, name string, affected map[string]bool) {
	dependents, err := g.TransitiveDependents(name)
	if err != nil {
		return
	}
	for dep := range dependents {
		affected[dep] = true
	}
}

func commonNames(oldNodes, newNodes map[string]types.Node) map[string]bool {
	common := make(map[string]bool)
	for name := range oldNodes {
		if _, ok := newNodes[name]; ok {
			common[name] = true
		}
	}
	return common
}

func edgeKeySet(edges []types.Edge) map[types.EdgeKey]bool {
	keys := make(map[types.EdgeKey]bool, len(edges))
	for _, edge := range edges {
		keys[edge.Key()] = true
	}
	return keys
}

func sortNodes(nodes []types.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
}
