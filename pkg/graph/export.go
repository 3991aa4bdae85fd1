package graph

import (
	"fmt"
	"strings"

	"github.com/l3aro/docassemble-dag/pkg/types"
)

// Snapshot returns the JSON exchange form of the graph. Nodes are emitted
// in sorted name order, edges in their original order.
func (g *Graph) Snapshot() types.Snapshot {
	snap := types.Snapshot{
		Nodes: make([]types.Node, 0, len(g.nodes)),
		Edges: g.Edges(),
	}
	for _, name := range g.NodeNames() {
		snap.Nodes = append(snap.Nodes, g.nodes[name])
	}
	return snap
}

// FromSnapshot rebuilds a graph from its exchange form. The snapshot is
// validated the same way as direct construction.
func FromSnapshot(snap types.Snapshot) (*Graph, error) {
	nodes := make(map[string]types.Node, len(snap.Nodes))
	for _, node := range snap.Nodes {
		nodes[node.Name] = node
	}
	return New(nodes, snap.Edges)
}

var dotColors = map[types.NodeKind]string{
	types.KindVariable: "lightblue",
	types.KindQuestion: "lightgreen",
	types.KindRule:     "lightyellow",
}

// ToDOT renders the graph in GraphViz DOT format. Explicit edges are solid,
// implicit edges dashed.
func (g *Graph) ToDOT(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", title)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, name := range g.NodeNames() {
		node := g.nodes[name]
		color, ok := dotColors[node.Kind]
		if !ok {
			color = "lightgray"
		}
		label := fmt.Sprintf("%s\\n[%s]", node.Name, node.Kind)
		if node.Authority != "" {
			authority := node.Authority
			if len(authority) > 30 {
				authority = authority[:30] + "..."
			}
			label += "\\n" + authority
		}
		fmt.Fprintf(&b, "  %q [label=%q, fillcolor=%q, style=\"rounded,filled\"];\n", node.Name, label, color)
	}
	b.WriteString("\n")

	for _, edge := range g.edges {
		style := "solid"
		if edge.Type == types.DepImplicit {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  %q -> %q [style=%s, label=%q];\n", edge.From, edge.To, style, string(edge.Type))
	}

	b.WriteString("}\n")
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// ToGraphML renders the graph in GraphML, the XML interchange format
// understood by most graph tooling.
func (g *Graph) ToGraphML(graphID string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns"` + "\n")
	b.WriteString(`         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` + "\n")
	b.WriteString(`         xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns` + "\n")
	b.WriteString(`         http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">` + "\n\n")

	b.WriteString(`  <key id="kind" for="node" attr.name="kind" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="source" for="node" attr.name="source" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="authority" for="node" attr.name="authority" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="file_path" for="node" attr.name="file_path" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="line_number" for="node" attr.name="line_number" attr.type="int"/>` + "\n")
	b.WriteString(`  <key id="dep_type" for="edge" attr.name="type" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="edge_file_path" for="edge" attr.name="file_path" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="edge_line_number" for="edge" attr.name="line_number" attr.type="int"/>` + "\n\n")

	fmt.Fprintf(&b, "  <graph id=%q edgedefault=\"directed\">\n\n", xmlEscaper.Replace(graphID))

	for _, name := range g.NodeNames() {
		node := g.nodes[name]
		fmt.Fprintf(&b, "    <node id=%q>\n", xmlEscaper.Replace(node.Name))
		fmt.Fprintf(&b, "      <data key=\"kind\">%s</data>\n", xmlEscaper.Replace(string(node.Kind)))
		fmt.Fprintf(&b, "      <data key=\"source\">%s</data>\n", xmlEscaper.Replace(node.Source))
		if node.Authority != "" {
			fmt.Fprintf(&b, "      <data key=\"authority\">%s</data>\n", xmlEscaper.Replace(node.Authority))
		}
		if node.FilePath != "" {
			fmt.Fprintf(&b, "      <data key=\"file_path\">%s</data>\n", xmlEscaper.Replace(node.FilePath))
		}
		if node.LineNumber > 0 {
			fmt.Fprintf(&b, "      <data key=\"line_number\">%d</data>\n", node.LineNumber)
		}
		b.WriteString("    </node>\n")
	}
	b.WriteString("\n")

	for i, edge := range g.edges {
		fmt.Fprintf(&b, "    <edge id=\"e%d\" source=%q target=%q>\n",
			i, xmlEscaper.Replace(edge.From), xmlEscaper.Replace(edge.To))
		fmt.Fprintf(&b, "      <data key=\"dep_type\">%s</data>\n", xmlEscaper.Replace(string(edge.Type)))
		if edge.FilePath != "" {
			fmt.Fprintf(&b, "      <data key=\"edge_file_path\">%s</data>\n", xmlEscaper.Replace(edge.FilePath))
		}
		if edge.LineNumber > 0 {
			fmt.Fprintf(&b, "      <data key=\"edge_line_number\">%d</data>\n", edge.LineNumber)
		}
		b.WriteString("    </edge>\n")
	}

	b.WriteString("  </graph>\n</graphml>\n")
	return b.String()
}
