// Package decision extracts decision trees from a dependency graph's
// conditional structure. A tree follows dependent edges outward from a
// root entity, annotating each branch with the condition guarding it.
package decision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/l3aro/docassemble-dag/pkg/graph"
)

// maxDepth bounds tree construction on pathological graphs.
const maxDepth = 1000

// Node is one decision point: an entity plus the condition guarding it.
type Node struct {
	Name      string  `json:"name"`
	Condition string  `json:"condition,omitempty"`
	Children  []*Node `json:"children,omitempty"`
}

// Tree is a decision tree rooted at one entity.
type Tree struct {
	Root  *Node            `json:"root"`
	Nodes map[string]*Node `json:"nodes"`
}

// Extract builds the decision tree reachable from root along dependent
// edges. conditionals maps entity names to the condition texts guarding
// them (see parser.Conditionals); entities without conditions become
// plain branches. An unknown root yields graph.ErrNodeNotFound.
func Extract(g *graph.Graph, root string, conditionals map[string][]string) (*Tree, error) {
	if _, ok := g.Node(root); !ok {
		return nil, fmt.Errorf("decision tree root %q: %w", root, graph.ErrNodeNotFound)
	}

	nodes := make(map[string]*Node)
	visited := make(map[string]bool)

	var build func(name string, depth int) (*Node, error)
	build = func(name string, depth int) (*Node, error) {
		if depth > maxDepth {
			return nil, fmt.Errorf("decision tree exceeds maximum depth %d at %q", maxDepth, name)
		}
		visited[name] = true

		node := &Node{Name: name}
		nodes[name] = node
		if conditions := conditionals[name]; len(conditions) > 0 {
			node.Condition = conditions[len(conditions)-1]
		}

		dependents := g.Dependents(name)
		sort.Strings(dependents)
		for _, dep := range dependents {
			if visited[dep] {
				continue
			}
			child, err := build(dep, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	}

	rootNode, err := build(root, 0)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: rootNode, Nodes: nodes}, nil
}

// ToDOT renders the tree in GraphViz DOT form, conditions as part of the
// node labels.
func ToDOT(tree *Tree, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", strings.ReplaceAll(title, " ", "_"))
	fmt.Fprintf(&b, "  label=%q;\n", title)
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box];\n")

	var add func(node *Node, parent string)
	add = func(node *Node, parent string) {
		label := node.Name
		if node.Condition != "" {
			label += fmt.Sprintf("\\n[%s]", node.Condition)
		}
		fmt.Fprintf(&b, "  %q [label=%q];\n", node.Name, label)
		if parent != "" {
			fmt.Fprintf(&b, "  %q -> %q;\n", parent, node.Name)
		}
		for _, child := range node.Children {
			add(child, node.Name)
		}
	}
	add(tree.Root, "")

	b.WriteString("}\n")
	return b.String()
}
