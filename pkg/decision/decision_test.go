package decision

import (
	"errors"
	"strings"
	"testing"

	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

func build(t *testing.T, pairs [][2]string) *graph.Graph {
	t.Helper()
	nodes := make(map[string]types.Node)
	var edges []types.Edge
	for _, pair := range pairs {
		for _, name := range pair {
			nodes[name] = types.Node{Name: name, Kind: types.KindVariable}
		}
		edges = append(edges, types.Edge{From: pair[0], To: pair[1], Type: types.DepImplicit})
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return g
}

func TestExtractChain(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"eligibility", "final_result"},
	})
	conditionals := map[string][]string{
		"eligibility": {"age >= 18"},
	}

	tree, err := Extract(g, "age", conditionals)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if tree.Root.Name != "age" || tree.Root.Condition != "" {
		t.Errorf("root = %+v", tree.Root)
	}
	if len(tree.Root.Children) != 1 {
		t.Fatalf("root children = %+v", tree.Root.Children)
	}
	child := tree.Root.Children[0]
	if child.Name != "eligibility" || child.Condition != "age >= 18" {
		t.Errorf("child = %+v", child)
	}
	if len(child.Children) != 1 || child.Children[0].Name != "final_result" {
		t.Errorf("grandchild = %+v", child.Children)
	}
	if len(tree.Nodes) != 3 {
		t.Errorf("nodes = %v", tree.Nodes)
	}
}

func TestExtractBranching(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"age", "senior_discount"},
	})

	tree, err := Extract(g, "age", nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("children = %+v", tree.Root.Children)
	}
	// Children come out in name order.
	if tree.Root.Children[0].Name != "eligibility" || tree.Root.Children[1].Name != "senior_discount" {
		t.Errorf("children = %+v", tree.Root.Children)
	}
}

func TestExtractUnknownRoot(t *testing.T) {
	g := build(t, [][2]string{{"age", "eligibility"}})

	_, err := Extract(g, "nonexistent", nil)
	if !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestExtractCyclicGraph(t *testing.T) {
	g := build(t, [][2]string{
		{"a", "b"},
		{"b", "a"},
	})

	tree, err := Extract(g, "a", nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// The back edge to an already-visited node is not followed.
	if len(tree.Nodes) != 2 {
		t.Errorf("nodes = %v", tree.Nodes)
	}
	b := tree.Root.Children[0]
	if b.Name != "b" || len(b.Children) != 0 {
		t.Errorf("b = %+v", b)
	}
}

func TestLastConditionWins(t *testing.T) {
	g := build(t, [][2]string{{"age", "eligibility"}})
	conditionals := map[string][]string{
		"eligibility": {"age >= 18", "age <= 65"},
	}

	tree, err := Extract(g, "age", conditionals)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := tree.Root.Children[0].Condition; got != "age <= 65" {
		t.Errorf("condition = %q", got)
	}
}

func TestToDOT(t *testing.T) {
	g := build(t, [][2]string{{"age", "eligibility"}})
	conditionals := map[string][]string{"eligibility": {"age >= 18"}}

	tree, err := Extract(g, "age", conditionals)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	dot := ToDOT(tree, "decision tree")
	if !strings.Contains(dot, `digraph "decision_tree"`) {
		t.Errorf("missing header: %s", dot)
	}
	if !strings.Contains(dot, `"age" -> "eligibility"`) {
		t.Errorf("missing edge: %s", dot)
	}
	if !strings.Contains(dot, "age >= 18") {
		t.Errorf("missing condition label: %s", dot)
	}
	if !strings.Contains(dot, "rankdir=TB") {
		t.Errorf("missing layout: %s", dot)
	}
}
