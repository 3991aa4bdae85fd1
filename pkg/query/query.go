// Package query exposes a read-only lookup service over a dependency
// graph, mirroring the shapes clients ask for: single nodes with their
// neighborhood, filtered node lists, traversals, paths, and summary stats.
package query

import (
	"fmt"
	"strings"

	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// NodeDetail is one node together with its immediate neighborhood.
type NodeDetail struct {
	Node       types.Node `json:"node"`
	DependsOn  []string   `json:"depends_on"`
	Dependents []string   `json:"dependents"`
}

// Stats summarizes a graph.
type Stats struct {
	NodeCount   int  `json:"node_count"`
	EdgeCount   int  `json:"edge_count"`
	RootCount   int  `json:"root_count"`
	OrphanCount int  `json:"orphan_count"`
	HasCycles   bool `json:"has_cycles"`
}

// Service answers queries against one immutable graph.
type Service struct {
	g *graph.Graph
}

func NewService(g *graph.Graph) *Service {
	return &Service{g: g}
}

// Node returns one node with its direct dependencies and dependents.
func (s *Service) Node(name string) (NodeDetail, error) {
	node, ok := s.g.Node(name)
	if !ok {
		return NodeDetail{}, fmt.Errorf("%w: %q", graph.ErrNodeNotFound, name)
	}
	return NodeDetail{
		Node:       node,
		DependsOn:  s.g.Dependencies(name),
		Dependents: s.g.Dependents(name),
	}, nil
}

// Nodes returns every node, sorted by name.
func (s *Service) Nodes() []types.Node {
	nodes := s.g.Nodes()
	out := make([]types.Node, 0, len(nodes))
	for _, name := range s.g.NodeNames() {
		out = append(out, nodes[name])
	}
	return out
}

// NodesByKind returns the names of nodes with the given kind, sorted.
func (s *Service) NodesByKind(kind types.NodeKind) []string {
	return s.g.NodesByKind(kind)
}

// NodesByAuthority returns nodes whose authority contains the query,
// case-insensitively, sorted by name.
func (s *Service) NodesByAuthority(authority string) []types.Node {
	needle := strings.ToLower(authority)
	nodes := s.g.Nodes()

	var out []types.Node
	for _, name := range s.g.NodeNames() {
		node := nodes[name]
		if node.Authority == "" {
			continue
		}
		if strings.Contains(strings.ToLower(node.Authority), needle) {
			out = append(out, node)
		}
	}
	return out
}

// TransitiveDependencies returns everything the node depends on,
// directly or indirectly, sorted. Unknown names yield an empty list.
func (s *Service) TransitiveDependencies(name string) []string {
	return graph.SortedSet(s.g.TransitiveDependencies(name))
}

// TransitiveDependents returns everything that depends on the node,
// directly or indirectly, sorted.
func (s *Service) TransitiveDependents(name string) ([]string, error) {
	dependents, err := s.g.TransitiveDependents(name)
	if err != nil {
		return nil, err
	}
	return graph.SortedSet(dependents), nil
}

// Path returns a shortest dependency path from one node to another, or
// nil when no path exists.
func (s *Service) Path(from, to string) []string {
	return s.g.FindPath(from, to)
}

// Stats computes graph summary statistics.
func (s *Service) Stats() Stats {
	return Stats{
		NodeCount:   s.g.Len(),
		EdgeCount:   s.g.EdgeCount(),
		RootCount:   len(s.g.FindRoots()),
		OrphanCount: len(s.g.FindOrphans()),
		HasCycles:   s.g.HasCycles(),
	}
}
