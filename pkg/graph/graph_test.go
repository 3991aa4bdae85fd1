package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/docassemble-dag/pkg/types"
)

// build constructs a graph from edge pairs, declaring every mentioned
// node plus any extras.
func build(t *testing.T, pairs [][2]string, extra ...string) *Graph {
	t.Helper()

	nodes := make(map[string]types.Node)
	var edges []types.Edge
	for _, pair := range pairs {
		for _, name := range pair {
			nodes[name] = types.Node{Name: name, Kind: types.KindVariable, Source: types.SourceUserInput}
		}
		edges = append(edges, types.Edge{From: pair[0], To: pair[1], Type: types.DepImplicit})
	}
	for _, name := range extra {
		nodes[name] = types.Node{Name: name, Kind: types.KindVariable, Source: types.SourceUserInput}
	}

	g, err := New(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestNewRejectsDanglingEdges(t *testing.T) {
	nodes := map[string]types.Node{
		"age": {Name: "age", Kind: types.KindVariable},
	}
	edges := []types.Edge{{From: "age", To: "eligibility", Type: types.DepImplicit}}

	_, err := New(nodes, edges)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eligibility")
}

func TestDirectNeighbors(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"income", "eligibility"},
		{"eligibility", "final_result"},
	})

	assert.ElementsMatch(t, []string{"age", "income"}, g.Dependencies("eligibility"))
	assert.ElementsMatch(t, []string{"final_result"}, g.Dependents("eligibility"))
	assert.Empty(t, g.Dependencies("age"))
	assert.Empty(t, g.Dependents("final_result"))
	assert.Empty(t, g.Dependencies("nonexistent"))
}

func TestTransitiveDependencies(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"income", "eligibility"},
		{"eligibility", "final_result"},
	})

	deps := g.TransitiveDependencies("final_result")
	assert.ElementsMatch(t, []string{"age", "income", "eligibility"}, SortedSet(deps))

	// Unknown names are lenient.
	assert.Empty(t, g.TransitiveDependencies("nonexistent"))
}

func TestTransitiveDependents(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"eligibility", "final_result"},
		{"eligibility", "notice_letter"},
	})

	dependents, err := g.TransitiveDependents("age")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"eligibility", "final_result", "notice_letter"}, SortedSet(dependents))

	// Leaf nodes have no dependents.
	dependents, err = g.TransitiveDependents("final_result")
	require.NoError(t, err)
	assert.Empty(t, dependents)

	// Unknown names are a strict error.
	_, err = g.TransitiveDependents("nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestTransitiveConsistency(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"income", "eligibility"},
		{"eligibility", "final_result"},
		{"state", "final_result"},
	})

	// If b is in a's transitive dependents, a must be in b's transitive
	// dependencies.
	for _, a := range g.NodeNames() {
		dependents, err := g.TransitiveDependents(a)
		require.NoError(t, err)
		for b := range dependents {
			deps := g.TransitiveDependencies(b)
			assert.True(t, deps[a], "%s depends on %s transitively, but reverse lookup disagrees", b, a)
		}
	}
}

func TestFindCycles(t *testing.T) {
	g := build(t, [][2]string{
		{"a", "b"},
		{"b", "a"},
	})

	cycles := g.FindCycles()
	require.NotEmpty(t, cycles)
	assert.True(t, g.HasCycles())

	// Each cycle closes back onto its first node.
	for _, cycle := range cycles {
		require.GreaterOrEqual(t, len(cycle), 2)
		assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	}
}

func TestFindCyclesAcyclic(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"eligibility", "final_result"},
	})

	assert.Empty(t, g.FindCycles())
	assert.False(t, g.HasCycles())
}

func TestFindPath(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"eligibility", "final_result"},
		{"age", "audit_log"},
	})

	assert.Equal(t, []string{"age", "eligibility", "final_result"}, g.FindPath("age", "final_result"))
	assert.Equal(t, []string{"age"}, g.FindPath("age", "age"))
	assert.Nil(t, g.FindPath("final_result", "age"))
	assert.Nil(t, g.FindPath("nonexistent", "age"))
}

func TestRootsAndOrphans(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"income", "eligibility"},
	}, "unused_note")

	assert.Equal(t, []string{"age", "income", "unused_note"}, g.FindRoots())
	assert.Equal(t, []string{"unused_note"}, g.FindOrphans())
}

func TestNodesByKind(t *testing.T) {
	nodes := map[string]types.Node{
		"intro":       {Name: "intro", Kind: types.KindQuestion},
		"age":         {Name: "age", Kind: types.KindVariable},
		"AL_user":     {Name: "AL_user", Kind: types.KindAssemblyLine},
		"eligibility": {Name: "eligibility", Kind: types.KindRule},
	}
	g, err := New(nodes, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"age"}, g.NodesByKind(types.KindVariable))
	assert.Equal(t, []string{"AL_user"}, g.NodesByKind(types.KindAssemblyLine))
	assert.Empty(t, g.NodesByKind(types.NodeKind("other")))
}

func TestMergeFirstSeenWins(t *testing.T) {
	first := build(t, [][2]string{{"age", "eligibility"}})
	second, err := New(map[string]types.Node{
		"age":   {Name: "age", Kind: types.KindQuestion},
		"state": {Name: "state", Kind: types.KindVariable},
	}, []types.Edge{
		{From: "age", To: "eligibility", Type: types.DepExplicit}, // duplicate pair
	})
	// second references eligibility which it does not declare; merge input
	// graphs must be individually consistent, so declare it.
	require.Error(t, err)

	second, err = New(map[string]types.Node{
		"age":         {Name: "age", Kind: types.KindQuestion},
		"state":       {Name: "state", Kind: types.KindVariable},
		"eligibility": {Name: "eligibility", Kind: types.KindVariable},
	}, []types.Edge{
		{From: "age", To: "eligibility", Type: types.DepExplicit},
		{From: "state", To: "eligibility", Type: types.DepImplicit},
	})
	require.NoError(t, err)

	merged, err := Merge(first, second)
	require.NoError(t, err)

	// First declaration of age wins.
	node, ok := merged.Node("age")
	require.True(t, ok)
	assert.Equal(t, types.KindVariable, node.Kind)

	// Duplicate (from, to) pairs collapse to the first edge.
	assert.Equal(t, 2, merged.EdgeCount())
	assert.Equal(t, 3, merged.Len())
	_, ok = merged.Node("state")
	assert.True(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := build(t, [][2]string{
		{"age", "eligibility"},
		{"eligibility", "final_result"},
	})

	snap := g.Snapshot()
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, g.Len(), restored.Len())
	assert.Equal(t, g.EdgeCount(), restored.EdgeCount())
	assert.Equal(t, g.NodeNames(), restored.NodeNames())
}

func TestExportFormats(t *testing.T) {
	g := build(t, [][2]string{{"age", "eligibility"}})

	dot := g.ToDOT("test_graph")
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `"age" -> "eligibility"`)

	gml := g.ToGraphML("test_graph")
	assert.Contains(t, gml, "<graphml")
	assert.Contains(t, gml, `source="age"`)
	assert.Contains(t, gml, `target="eligibility"`)
}

func TestDOTAuthorityLabels(t *testing.T) {
	long := "26 USC 32 earned income tax credit eligibility"
	nodes := map[string]types.Node{
		"short": {Name: "short", Kind: types.KindRule, Authority: "26 USC 32"},
		"long":  {Name: "long", Kind: types.KindRule, Authority: long},
	}
	g, err := New(nodes, nil)
	require.NoError(t, err)

	dot := g.ToDOT("authorities")
	assert.Contains(t, dot, `\n26 USC 32"`)
	assert.NotContains(t, dot, "26 USC 32...")
	assert.Contains(t, dot, long[:30]+"...")
}
