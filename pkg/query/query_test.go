package query

import (
	"errors"
	"testing"

	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

func testService(t *testing.T) *Service {
	t.Helper()

	nodes := map[string]types.Node{
		"age":          {Name: "age", Kind: types.KindVariable, Source: types.SourceUserInput},
		"income":       {Name: "income", Kind: types.KindVariable, Source: types.SourceUserInput},
		"eligibility":  {Name: "eligibility", Kind: types.KindRule, Source: types.SourceDerived, Authority: "42 USC 1983"},
		"final_result": {Name: "final_result", Kind: types.KindRule, Source: types.SourceDerived, Authority: "20 CFR 404"},
		"orphan_note":  {Name: "orphan_note", Kind: types.KindVariable},
	}
	edges := []types.Edge{
		{From: "age", To: "eligibility", Type: types.DepImplicit},
		{From: "income", To: "eligibility", Type: types.DepImplicit},
		{From: "eligibility", To: "final_result", Type: types.DepExplicit},
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return NewService(g)
}

func TestNodeDetail(t *testing.T) {
	svc := testService(t)

	detail, err := svc.Node("eligibility")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if detail.Node.Authority != "42 USC 1983" {
		t.Errorf("authority = %q", detail.Node.Authority)
	}
	if len(detail.DependsOn) != 2 {
		t.Errorf("depends_on = %v", detail.DependsOn)
	}
	if len(detail.Dependents) != 1 || detail.Dependents[0] != "final_result" {
		t.Errorf("dependents = %v", detail.Dependents)
	}
}

func TestNodeNotFound(t *testing.T) {
	svc := testService(t)

	_, err := svc.Node("nonexistent")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestNodesSorted(t *testing.T) {
	svc := testService(t)

	nodes := svc.Nodes()
	if len(nodes) != 5 {
		t.Fatalf("len = %d", len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].Name >= nodes[i].Name {
			t.Errorf("nodes not sorted at %d: %s >= %s", i, nodes[i-1].Name, nodes[i].Name)
		}
	}
}

func TestNodesByAuthority(t *testing.T) {
	svc := testService(t)

	matches := svc.NodesByAuthority("usc")
	if len(matches) != 1 || matches[0].Name != "eligibility" {
		t.Errorf("matches = %v", matches)
	}

	if got := svc.NodesByAuthority("nonexistent statute"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestTraversals(t *testing.T) {
	svc := testService(t)

	deps := svc.TransitiveDependencies("final_result")
	want := []string{"age", "eligibility", "income"}
	if len(deps) != len(want) {
		t.Fatalf("deps = %v", deps)
	}
	for i, name := range want {
		if deps[i] != name {
			t.Errorf("deps[%d] = %s, want %s", i, deps[i], name)
		}
	}

	dependents, err := svc.TransitiveDependents("age")
	if err != nil {
		t.Fatalf("TransitiveDependents failed: %v", err)
	}
	if len(dependents) != 2 {
		t.Errorf("dependents = %v", dependents)
	}
}

func TestPath(t *testing.T) {
	svc := testService(t)

	path := svc.Path("age", "final_result")
	if len(path) != 3 || path[0] != "age" || path[2] != "final_result" {
		t.Errorf("path = %v", path)
	}
	if svc.Path("final_result", "age") != nil {
		t.Error("expected no reverse path")
	}
}

func TestStats(t *testing.T) {
	svc := testService(t)

	stats := svc.Stats()
	if stats.NodeCount != 5 || stats.EdgeCount != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.OrphanCount != 1 {
		t.Errorf("orphan count = %d", stats.OrphanCount)
	}
	if stats.HasCycles {
		t.Error("graph should be acyclic")
	}
	// Roots: age, income, orphan_note.
	if stats.RootCount != 3 {
		t.Errorf("root count = %d", stats.RootCount)
	}
}
