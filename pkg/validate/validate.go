// Package validate checks dependency graphs against named policy rules
// and reports violations with provenance.
package validate

import (
	"fmt"
	"sort"

	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// EdgeInfo identifies the edge a violation concerns.
type EdgeInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Finding is one policy violation, with enough provenance to locate the
// offending declaration.
type Finding struct {
	Rule     string         `json:"rule"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Node     string         `json:"node,omitempty"`
	Edge     *EdgeInfo      `json:"edge,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Summary counts findings by severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Report bundles findings with their summary for serialization.
type Report struct {
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"violations"`
}

type policyFunc func(g *graph.Graph) []Finding

var policies = map[string]policyFunc{
	"no_cycles":               checkNoCycles,
	"no_orphans":              checkNoOrphans,
	"no_missing_dependencies": checkMissingDependencies,
	"all_nodes_used":          checkAllNodesUsed,
	"no_undefined_references": checkUndefinedReferences,
}

// PolicyNames lists the available policies, sorted.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateAll runs the named policies against the graph, or every policy
// when names is empty. Unknown names are ignored.
func ValidateAll(g *graph.Graph, names []string) []Finding {
	if len(names) == 0 {
		names = PolicyNames()
	}

	var findings []Finding
	for _, name := range names {
		policy, ok := policies[name]
		if !ok {
			continue
		}
		findings = append(findings, policy(g)...)
	}
	return findings
}

// Summarize counts the findings by severity.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Info++
		}
	}
	return s
}

// NewReport validates the graph and wraps the results for output.
func NewReport(g *graph.Graph, names []string) Report {
	findings := ValidateAll(g, names)
	return Report{Summary: Summarize(findings), Findings: findings}
}

// checkNoCycles flags every circular dependency as an error.
func checkNoCycles(g *graph.Graph) []Finding {
	var findings []Finding
	for _, cycle := range g.FindCycles() {
		node := ""
		if len(cycle) > 0 {
			node = cycle[0]
		}
		findings = append(findings, Finding{
			Rule:     "no_cycles",
			Severity: SeverityError,
			Message:  "circular dependency detected: " + joinCycle(cycle),
			Node:     node,
			Metadata: map[string]any{"cycle": cycle},
		})
	}
	return findings
}

// checkNoOrphans warns about nodes with no edges at all.
func checkNoOrphans(g *graph.Graph) []Finding {
	var findings []Finding
	for _, orphan := range g.FindOrphans() {
		node, _ := g.Node(orphan)
		findings = append(findings, Finding{
			Rule:     "no_orphans",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("orphan node %q has no dependencies or dependents", orphan),
			Node:     orphan,
			Metadata: nodeProvenance(node),
		})
	}
	return findings
}

// checkMissingDependencies flags edges whose endpoints are not declared.
// The graph constructor rejects such edges, so this fires on graphs built
// from snapshots or merged from divergent sources.
func checkMissingDependencies(g *graph.Graph) []Finding {
	var findings []Finding
	for _, edge := range g.Edges() {
		for _, endpoint := range []struct{ missing, context string }{
			{edge.From, edge.To},
			{edge.To, edge.From},
		} {
			if _, ok := g.Node(endpoint.missing); ok {
				continue
			}
			findings = append(findings, Finding{
				Rule:     "no_missing_dependencies",
				Severity: SeverityError,
				Message:  fmt.Sprintf("edge references missing node %q", endpoint.missing),
				Node:     endpoint.context,
				Edge:     &EdgeInfo{From: edge.From, To: edge.To, Type: string(edge.Type)},
				Metadata: edgeProvenance(edge),
			})
		}
	}
	return findings
}

// checkAllNodesUsed warns about nodes that appear in no edge. Roots are
// exempt: entry points legitimately have no incoming dependencies.
func checkAllNodesUsed(g *graph.Graph) []Finding {
	used := make(map[string]bool)
	for _, edge := range g.Edges() {
		used[edge.From] = true
		used[edge.To] = true
	}
	roots := make(map[string]bool)
	for _, root := range g.FindRoots() {
		roots[root] = true
	}

	var findings []Finding
	for _, name := range g.NodeNames() {
		if used[name] || roots[name] {
			continue
		}
		node, _ := g.Node(name)
		metadata := nodeProvenance(node)
		metadata["kind"] = string(node.Kind)
		findings = append(findings, Finding{
			Rule:     "all_nodes_used",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("node %q is defined but never referenced", name),
			Node:     name,
			Metadata: metadata,
		})
	}
	return findings
}

// checkUndefinedReferences errors on implicit edges whose source variable
// is undefined. Implicit references to missing variables are the likeliest
// authoring mistakes.
func checkUndefinedReferences(g *graph.Graph) []Finding {
	var findings []Finding
	for _, edge := range g.Edges() {
		if edge.Type != types.DepImplicit {
			continue
		}
		if _, ok := g.Node(edge.From); ok {
			continue
		}
		findings = append(findings, Finding{
			Rule:     "no_undefined_references",
			Severity: SeverityError,
			Message:  fmt.Sprintf("implicit reference to undefined variable %q in %q", edge.From, edge.To),
			Node:     edge.To,
			Edge:     &EdgeInfo{From: edge.From, To: edge.To, Type: string(types.DepImplicit)},
			Metadata: edgeProvenance(edge),
		})
	}
	return findings
}

func joinCycle(cycle []string) string {
	out := ""
	for i, name := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return out
}

func nodeProvenance(node types.Node) map[string]any {
	return map[string]any{
		"file_path":   node.FilePath,
		"line_number": node.LineNumber,
	}
}

func edgeProvenance(edge types.Edge) map[string]any {
	return map[string]any{
		"file_path":   edge.FilePath,
		"line_number": edge.LineNumber,
	}
}
