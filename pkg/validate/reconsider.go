package validate

import (
	"fmt"

	"github.com/l3aro/docassemble-dag/pkg/graph"
)

// ReconsiderBoundaries warns about dependencies originating from a
// reconsidered variable. This check runs separately from the policy
// registry because it needs directive context the graph alone does not
// carry.
func ReconsiderBoundaries(g *graph.Graph, reconsidered []string) []Finding {
	set := make(map[string]bool, len(reconsidered))
	for _, name := range reconsidered {
		set[name] = true
	}

	var findings []Finding
	for _, edge := range g.Edges() {
		if !set[edge.From] {
			continue
		}
		findings = append(findings, Finding{
			Rule:     "reconsider_boundary",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("dependency from %q to %q crosses a reconsider boundary", edge.From, edge.To),
			Node:     edge.From,
			Edge:     &EdgeInfo{From: edge.From, To: edge.To, Type: string(edge.Type)},
			Metadata: edgeProvenance(edge),
		})
	}
	return findings
}
