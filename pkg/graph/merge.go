package graph

import "github.com/l3aro/docassemble-dag/pkg/types"

// Merge unions multiple graphs into one. Nodes sharing a name keep the
// first-seen definition, and edges are deduplicated by (from, to) with the
// first discovery's provenance preserved. Callers wanting deterministic
// results must pass graphs in a stable order.
func Merge(graphs ...*Graph) (*Graph, error) {
	nodes := make(map[string]types.Node)
	var edges []types.Edge
	seen := make(map[[2]string]bool)

	for _, g := range graphs {
		for name, node := range g.nodes {
			if _, ok := nodes[name]; !ok {
				nodes[name] = node
			}
		}
		for _, edge := range g.edges {
			key := [2]string{edge.From, edge.To}
			if !seen[key] {
				seen[key] = true
				edges = append(edges, edge)
			}
		}
	}

	return New(nodes, edges)
}
