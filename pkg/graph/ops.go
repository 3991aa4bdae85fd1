package graph

import (
	"fmt"
	"sort"
)

// TopologicalSort returns all node names ordered so that every dependency
// appears before its dependents, using Kahn's algorithm. It fails with a
// *CycleError if the graph is cyclic.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cycles := g.FindCycles(); len(cycles) > 0 {
		return nil, &CycleError{
			Message: "cannot topologically sort: graph contains cycles",
			Cycles:  cycles,
		}
	}

	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for _, edge := range g.edges {
		inDegree[edge.To]++
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range g.adj[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// The cycle pre-check makes this unreachable; a mismatch means the
	// adjacency indices are inconsistent with the edge list.
	if len(result) != len(g.nodes) {
		return nil, &CycleError{
			Message: "topological sort incomplete",
			Cycles:  g.FindCycles(),
		}
	}

	return result, nil
}

// ExecutionOrder groups nodes into layers that can be evaluated together:
// each layer contains only nodes whose full dependency set is covered by
// earlier layers. The first layer is start, or the graph's roots when start
// is nil. Nodes unreachable from the start set that are not explained by a
// cycle are appended as one final layer.
func (g *Graph) ExecutionOrder(start []string) ([][]string, error) {
	if start == nil {
		start = g.FindRoots()
	}
	for _, name := range start {
		if _, ok := g.nodes[name]; !ok {
			return nil, fmt.Errorf("%w: start node %q", ErrNodeNotFound, name)
		}
	}

	remaining := make(map[string]bool, len(g.nodes))
	for name := range g.nodes {
		remaining[name] = true
	}
	satisfied := make(map[string]bool)

	current := make(map[string]bool, len(start))
	for _, name := range start {
		current[name] = true
	}

	var layers [][]string
	for len(current) > 0 {
		layers = append(layers, SortedSet(current))
		for name := range current {
			delete(remaining, name)
			satisfied[name] = true
		}

		next := make(map[string]bool)
		for name := range remaining {
			covered := true
			for _, dep := range g.rev[name] {
				if !satisfied[dep] {
					covered = false
					break
				}
			}
			if covered {
				next[name] = true
			}
		}
		current = next
	}

	if len(remaining) > 0 {
		if cycles := g.FindCycles(); len(cycles) > 0 {
			return nil, &CycleError{
				Message: fmt.Sprintf("execution order incomplete: %d nodes remain", len(remaining)),
				Cycles:  cycles,
			}
		}
		// Disconnected from the start set, not cyclic: emit as one layer.
		layers = append(layers, SortedSet(remaining))
	}

	return layers, nil
}

// DependencyLayers groups node names by dependency depth: depth 0 for nodes
// with no dependencies, otherwise 1 + the maximum depth of the node's
// dependencies. Layer i holds the nodes at depth i.
func (g *Graph) DependencyLayers() [][]string {
	depths := make(map[string]int, len(g.nodes))
	visiting := make(map[string]bool)

	var depthOf func(name string) int
	depthOf = func(name string) int {
		if depth, ok := depths[name]; ok {
			return depth
		}
		if visiting[name] {
			// Back edge; depth is only meaningful for acyclic graphs.
			return 0
		}
		visiting[name] = true

		depth := 0
		for _, dep := range g.rev[name] {
			if d := depthOf(dep) + 1; d > depth {
				depth = d
			}
		}

		visiting[name] = false
		depths[name] = depth
		return depth
	}

	maxDepth := 0
	for name := range g.nodes {
		if d := depthOf(name); d > maxDepth {
			maxDepth = d
		}
	}
	if len(g.nodes) == 0 {
		return nil
	}

	layers := make([][]string, maxDepth+1)
	for name, depth := range depths {
		layers[depth] = append(layers[depth], name)
	}
	for _, layer := range layers {
		sort.Strings(layer)
	}
	return layers
}
