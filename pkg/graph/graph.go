// Package graph implements the dependency graph core: an immutable snapshot
// of interview nodes and edges with adjacency indices, cycle detection,
// transitive-closure queries, path finding, and ordering algorithms.
//
// A Graph never changes after construction. Merging parsed documents happens
// before construction and produces a new Graph, so per-instance caches never
// need invalidation.
package graph

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/l3aro/docassemble-dag/pkg/types"
)

const (
	// maxTraversalDepth bounds transitive-dependents traversal so a
	// malformed graph produces an error instead of unbounded work.
	maxTraversalDepth = 10000

	// dependentsCacheSize bounds the per-graph memo cache for
	// transitive-dependents results.
	dependentsCacheSize = 4096
)

// Graph is an immutable dependency graph over named nodes.
// An edge (From, To) reads as "To depends on From".
type Graph struct {
	nodes map[string]types.Node
	edges []types.Edge

	// adj: from -> dependents (forward), rev: to -> dependencies (reverse).
	adj map[string][]string
	rev map[string][]string

	// Memoized transitive-dependents results, scoped to this instance.
	dependents *lru.Cache[string, map[string]bool]
}

// New builds a graph from a node mapping and an edge sequence.
// Every edge endpoint must name a node present in nodes; a violation is the
// graph's only hard invariant and fails construction with the offending name.
func New(nodes map[string]types.Node, edges []types.Edge) (*Graph, error) {
	if nodes == nil {
		nodes = map[string]types.Node{}
	}

	for _, edge := range edges {
		if _, ok := nodes[edge.From]; !ok {
			return nil, fmt.Errorf("edge references non-existent node %q", edge.From)
		}
		if _, ok := nodes[edge.To]; !ok {
			return nil, fmt.Errorf("edge references non-existent node %q", edge.To)
		}
	}

	g := &Graph{
		nodes: make(map[string]types.Node, len(nodes)),
		edges: make([]types.Edge, len(edges)),
		adj:   make(map[string][]string),
		rev:   make(map[string][]string),
	}
	for name, node := range nodes {
		g.nodes[name] = node
	}
	copy(g.edges, edges)

	for _, edge := range g.edges {
		g.adj[edge.From] = append(g.adj[edge.From], edge.To)
		g.rev[edge.To] = append(g.rev[edge.To], edge.From)
	}

	cache, err := lru.New[string, map[string]bool](dependentsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("initializing dependents cache: %w", err)
	}
	g.dependents = cache

	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given name, if present.
func (g *Graph) Node(name string) (types.Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// Nodes returns a copy of the node mapping.
func (g *Graph) Nodes() map[string]types.Node {
	out := make(map[string]types.Node, len(g.nodes))
	for name, node := range g.nodes {
		out[name] = node
	}
	return out
}

// NodeNames returns all node names in sorted order.
func (g *Graph) NodeNames() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edges returns a copy of the edge sequence.
func (g *Graph) Edges() []types.Edge {
	out := make([]types.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Dependencies returns the direct dependencies of a node (what it depends
// on). Unknown names yield an empty result.
func (g *Graph) Dependencies(name string) []string {
	return copyNames(g.rev[name])
}

// Dependents returns the direct dependents of a node (what depends on it).
// Unknown names yield an empty result.
func (g *Graph) Dependents(name string) []string {
	return copyNames(g.adj[name])
}

// FindCycles detects cycles via depth-first traversal from every node, so
// disconnected components are covered. Each reported cycle is the suffix of
// the traversal path from the revisited node, closed back onto itself.
func (g *Graph) FindCycles() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool)
	var cycles [][]string

	var dfs func(node string, path []string)
	dfs = func(node string, path []string) {
		if onStack[node] {
			start := 0
			for i, name := range path {
				if name == node {
					start = i
					break
				}
			}
			cycle := make([]string, 0, len(path)-start+1)
			cycle = append(cycle, path[start:]...)
			cycle = append(cycle, node)
			cycles = append(cycles, cycle)
			return
		}
		if visited[node] {
			return
		}

		visited[node] = true
		onStack[node] = true
		for _, neighbor := range g.adj[node] {
			dfs(neighbor, append(path, node))
		}
		onStack[node] = false
	}

	for _, name := range g.NodeNames() {
		if !visited[name] {
			dfs(name, nil)
		}
	}

	return cycles
}

// HasCycles reports whether the graph contains at least one cycle.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}

// TransitiveDependencies returns every node the named node depends on,
// directly or through any chain, excluding the node itself.
// Unknown names yield an empty result.
func (g *Graph) TransitiveDependencies(name string) map[string]bool {
	visited := make(map[string]bool)
	result := make(map[string]bool)

	var dfs func(node string)
	dfs = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, dep := range g.rev[node] {
			result[dep] = true
			dfs(dep)
		}
	}

	dfs(name)
	return result
}

// TransitiveDependents returns every node that depends on the named node,
// directly or through any chain, excluding the node itself. Results are
// memoized per name for the lifetime of the graph. Unlike Dependents, an
// unknown name is an error: this query backs authoritative impact analysis.
func (g *Graph) TransitiveDependents(name string) (map[string]bool, error) {
	if _, ok := g.nodes[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}

	if cached, ok := g.dependents.Get(name); ok {
		return copySet(cached), nil
	}

	visited := make(map[string]bool)
	result := make(map[string]bool)

	var dfs func(node string, depth int) error
	dfs = func(node string, depth int) error {
		if depth > maxTraversalDepth {
			return fmt.Errorf("maximum depth %d exceeded while traversing dependents of %q", maxTraversalDepth, name)
		}
		if visited[node] {
			return nil
		}
		visited[node] = true
		for _, dependent := range g.adj[node] {
			result[dependent] = true
			if err := dfs(dependent, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := dfs(name, 0); err != nil {
		return nil, err
	}

	g.dependents.Add(name, result)
	return copySet(result), nil
}

// FindPath returns the shortest path (by edge count) from one node to
// another, following the forward "what depends on me" direction, endpoints
// included. It returns nil if either node is unknown or no path exists.
func (g *Graph) FindPath(from, to string) []string {
	if _, ok := g.nodes[from]; !ok {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return nil
	}
	if from == to {
		return []string{from}
	}

	type queued struct {
		node string
		path []string
	}
	queue := []queued{{node: from, path: []string{from}}}
	visited := map[string]bool{from: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.adj[current.node] {
			if neighbor == to {
				return append(current.path, neighbor)
			}
			if !visited[neighbor] {
				visited[neighbor] = true
				path := make([]string, len(current.path), len(current.path)+1)
				copy(path, current.path)
				queue = append(queue, queued{node: neighbor, path: append(path, neighbor)})
			}
		}
	}

	return nil
}

// FindRoots returns the nodes with no dependencies, sorted by name.
func (g *Graph) FindRoots() []string {
	var roots []string
	for name := range g.nodes {
		if len(g.rev[name]) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// FindOrphans returns the nodes with neither dependencies nor dependents,
// sorted by name.
func (g *Graph) FindOrphans() []string {
	var orphans []string
	for name := range g.nodes {
		if len(g.rev[name]) == 0 && len(g.adj[name]) == 0 {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// NodesByKind returns the names of all nodes of the given kind, sorted.
func (g *Graph) NodesByKind(kind types.NodeKind) []string {
	var names []string
	for name, node := range g.nodes {
		if node.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func copyNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func copySet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for name := range set {
		out[name] = true
	}
	return out
}

// SortedSet returns the members of a name set in sorted order.
func SortedSet(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
