package parser

import (
	"errors"
	"testing"

	"github.com/l3aro/docassemble-dag/pkg/types"
)

const sampleInterview = `
questions:
  - name: ask_age
    question: "What is your age?"
    variable: age
  - name: ask_income
    question: "What is your annual income?"
    variable: income
    show if: age >= 18

variables:
  - name: eligibility
    expression: "age >= 18 and income < income_limit"
    authority: "42 USC 1983"
  - name: income_limit
    default: "30000"
  - name: AL_user_name

rules:
  - name: final_determination
    depends on:
      - eligibility
    code: |
      if eligibility:
          final_determination = True

objects:
  - claimant: Individual
`

func mustParse(t *testing.T, yamlText string) *Parser {
	t.Helper()
	p, err := New(yamlText, "test.yml")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func edgeSet(edges []types.Edge) map[[2]string]types.DependencyType {
	out := make(map[[2]string]types.DependencyType)
	for _, e := range edges {
		out[[2]string{e.From, e.To}] = e.Type
	}
	return out
}

func TestNodes(t *testing.T) {
	p := mustParse(t, sampleInterview)
	nodes := p.Nodes()

	tests := []struct {
		name   string
		kind   types.NodeKind
		source string
	}{
		{"ask_age", types.KindQuestion, types.SourceUserInput},
		{"age", types.KindVariable, types.SourceUserInput},
		{"eligibility", types.KindVariable, types.SourceDerived},
		{"income_limit", types.KindVariable, types.SourceUserInput},
		{"AL_user_name", types.KindAssemblyLine, types.SourceUserInput},
		{"final_determination", types.KindRule, types.SourceDerived},
		{"claimant", types.KindVariable, types.SourceDerived},
	}
	for _, tt := range tests {
		node, ok := nodes[tt.name]
		if !ok {
			t.Errorf("missing node %s", tt.name)
			continue
		}
		if node.Kind != tt.kind {
			t.Errorf("%s: kind = %s, want %s", tt.name, node.Kind, tt.kind)
		}
		if node.Source != tt.source {
			t.Errorf("%s: source = %s, want %s", tt.name, node.Source, tt.source)
		}
	}

	if nodes["eligibility"].Authority != "42 USC 1983" {
		t.Errorf("eligibility authority = %q", nodes["eligibility"].Authority)
	}
	if objType := nodes["claimant"].Metadata["object_type"]; objType != "Individual" {
		t.Errorf("claimant object_type = %v", objType)
	}
}

func TestEdges(t *testing.T) {
	p := mustParse(t, sampleInterview)
	nodes := p.Nodes()
	edges := p.Edges(nodes)
	set := edgeSet(edges)

	// Explicit: depends on.
	if set[[2]string{"eligibility", "final_determination"}] != types.DepExplicit {
		t.Errorf("expected explicit eligibility -> final_determination, got %v", set)
	}
	// Conditional: show if references age.
	if set[[2]string{"age", "ask_income"}] != types.DepImplicit {
		t.Errorf("expected implicit age -> ask_income, got %v", set)
	}
	// Implicit: expression references.
	if set[[2]string{"age", "eligibility"}] != types.DepImplicit {
		t.Errorf("expected implicit age -> eligibility, got %v", set)
	}
	if set[[2]string{"income", "eligibility"}] != types.DepImplicit {
		t.Errorf("expected implicit income -> eligibility, got %v", set)
	}
	if set[[2]string{"income_limit", "eligibility"}] != types.DepImplicit {
		t.Errorf("expected implicit income_limit -> eligibility, got %v", set)
	}

	// No self-loops: final_determination's code mentions itself.
	if _, ok := set[[2]string{"final_determination", "final_determination"}]; ok {
		t.Error("self-loop should be suppressed")
	}

	// No duplicate (from, to) pairs.
	if len(set) != len(edges) {
		t.Errorf("duplicate edges: %d edges but %d unique pairs", len(edges), len(set))
	}
}

func TestEdgesFirstSeenWins(t *testing.T) {
	// eligibility is both an explicit dependency and referenced in code;
	// the explicit edge is discovered first and its type survives.
	p := mustParse(t, sampleInterview)
	nodes := p.Nodes()
	set := edgeSet(p.Edges(nodes))

	if set[[2]string{"eligibility", "final_determination"}] != types.DepExplicit {
		t.Error("explicit directive should win over later implicit discovery")
	}
}

func TestAttributeReferenceSingleEdge(t *testing.T) {
	yamlText := `
variables:
  - name: greeting
    expression: "person.age"
objects:
  - person: Individual
`
	p := mustParse(t, yamlText)
	nodes := p.Nodes()
	edges := p.Edges(nodes)

	if len(edges) != 1 {
		t.Fatalf("expected exactly one edge, got %+v", edges)
	}
	e := edges[0]
	if e.From != "person" || e.To != "greeting" || e.Type != types.DepImplicit {
		t.Errorf("edge = %+v", e)
	}
}

func TestMultiDocumentMerge(t *testing.T) {
	yamlText := `
variables:
  - name: age
---
variables:
  - name: income
metadata:
  title: second
---
metadata:
  title: third
`
	p := mustParse(t, yamlText)
	nodes := p.Nodes()

	// Lists append across documents.
	if _, ok := nodes["age"]; !ok {
		t.Error("missing age from first document")
	}
	if _, ok := nodes["income"]; !ok {
		t.Error("missing income from second document")
	}
}

func TestTopLevelQuestion(t *testing.T) {
	p := mustParse(t, "question: \"What is your name?\"\nvariable: user_name\n")
	nodes := p.Nodes()

	// The variable: key doubles as the block's name, so the question node
	// takes it and the separate variable entry is skipped as a duplicate.
	node, ok := nodes["user_name"]
	if !ok {
		t.Fatal("top-level question block should produce a node")
	}
	if node.Kind != types.KindQuestion {
		t.Errorf("user_name kind = %s, want %s", node.Kind, types.KindQuestion)
	}
}

func TestTopLevelExpressionDefaultName(t *testing.T) {
	p := mustParse(t, "expression: \"a + b\"\n")
	nodes := p.Nodes()

	node, ok := nodes["top_level_variable"]
	if !ok {
		t.Fatal("expected top_level_variable for unnamed expression block")
	}
	if node.Source != types.SourceDerived {
		t.Errorf("source = %s, want %s", node.Source, types.SourceDerived)
	}
}

func TestAdHocDeclarations(t *testing.T) {
	yamlText := `
intro_screen:
  question: "Welcome"
benefit_amount:
  expression: "base_rate * multiplier"
not_a_node:
  some_key: some_value
`
	p := mustParse(t, yamlText)
	nodes := p.Nodes()

	if nodes["intro_screen"].Kind != types.KindQuestion {
		t.Errorf("intro_screen kind = %s", nodes["intro_screen"].Kind)
	}
	if nodes["benefit_amount"].Kind != types.KindVariable {
		t.Errorf("benefit_amount kind = %s", nodes["benefit_amount"].Kind)
	}
	if _, ok := nodes["not_a_node"]; ok {
		t.Error("mapping without a recognizable shape should not become a node")
	}
}

func TestNamePriorityAndTrimming(t *testing.T) {
	// Questions need name or question; when name is absent or blank the
	// name-like keys are tried in priority order.
	yamlText := `
questions:
  - name: "  padded  "
    question: "First?"
  - question: "Second?"
    id: by_id
  - question: "Third?"
    variable: by_variable
  - name: ""
    question: "Fourth?"
    id: fallback_id
variables:
  - name: "  spaced_var  "
`
	p := mustParse(t, yamlText)
	nodes := p.Nodes()

	for _, want := range []string{"padded", "by_id", "by_variable", "fallback_id", "spaced_var"} {
		if _, ok := nodes[want]; !ok {
			t.Errorf("missing node %q (have %v)", want, nodeNames(nodes))
		}
	}
}

func nodeNames(nodes map[string]types.Node) []string {
	var names []string
	for name := range nodes {
		names = append(names, name)
	}
	return names
}

func TestInvalidYAML(t *testing.T) {
	_, err := New("questions:\n  - name: [unclosed", "bad.yml")
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	var docErr *InvalidDocumentError
	if !errors.As(err, &docErr) {
		t.Errorf("expected InvalidDocumentError, got %T", err)
	}
}

func TestInvalidStructure(t *testing.T) {
	_, err := New("questions: not_a_list\n", "bad.yml")
	if err == nil {
		t.Fatal("expected structure validation error")
	}
	var docErr *InvalidDocumentError
	if !errors.As(err, &docErr) {
		t.Errorf("expected InvalidDocumentError, got %T", err)
	}
}

func TestNonMappingDocument(t *testing.T) {
	_, err := New("- just\n- a\n- list\n", "bad.yml")
	if err == nil {
		t.Fatal("expected error for non-mapping document")
	}
}

func TestModules(t *testing.T) {
	p := mustParse(t, "modules:\n  - docassemble.ALToolbox\n  - custom.helpers\n")
	modules := p.Modules()

	if len(modules) != 2 || modules[0] != "docassemble.ALToolbox" {
		t.Errorf("modules = %v", modules)
	}
}

func TestIncludes(t *testing.T) {
	p := mustParse(t, "include:\n  - shared.yml\nmodules:\n  - helpers.yml\n")
	includes := p.Includes()

	if len(includes) != 2 || includes[0] != "shared.yml" || includes[1] != "helpers.yml" {
		t.Errorf("includes = %v", includes)
	}
}

func TestLineProvenance(t *testing.T) {
	p := mustParse(t, sampleInterview)
	nodes := p.Nodes()

	if nodes["ask_age"].LineNumber == 0 {
		t.Error("expected line number for ask_age")
	}
	if nodes["ask_age"].FilePath != "test.yml" {
		t.Errorf("file path = %q", nodes["ask_age"].FilePath)
	}
}
