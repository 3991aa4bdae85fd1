package validate

import (
	"testing"

	"github.com/l3aro/docassemble-dag/pkg/types"
)

func TestReconsiderBoundaries(t *testing.T) {
	g := buildGraph(t,
		map[string]types.Node{
			"age":         {Name: "age", Kind: types.KindVariable},
			"eligibility": {Name: "eligibility", Kind: types.KindVariable},
			"summary":     {Name: "summary", Kind: types.KindVariable},
		},
		[]types.Edge{
			{From: "age", To: "eligibility", Type: types.DepImplicit, FilePath: "a.yml", LineNumber: 4},
			{From: "eligibility", To: "summary", Type: types.DepImplicit},
		},
	)

	findings := ReconsiderBoundaries(g, []string{"age"})
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}

	f := findings[0]
	if f.Rule != "reconsider_boundary" || f.Severity != SeverityWarning {
		t.Errorf("finding = %+v", f)
	}
	if f.Edge == nil || f.Edge.From != "age" || f.Edge.To != "eligibility" {
		t.Errorf("edge = %+v", f.Edge)
	}
	if f.Metadata["file_path"] != "a.yml" {
		t.Errorf("metadata = %v", f.Metadata)
	}
}

func TestReconsiderBoundariesEmpty(t *testing.T) {
	g := buildGraph(t,
		map[string]types.Node{
			"age":         {Name: "age", Kind: types.KindVariable},
			"eligibility": {Name: "eligibility", Kind: types.KindVariable},
		},
		[]types.Edge{
			{From: "age", To: "eligibility", Type: types.DepImplicit},
		},
	)

	if findings := ReconsiderBoundaries(g, nil); len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
	// A reconsidered variable nothing depends on crosses no boundary.
	if findings := ReconsiderBoundaries(g, []string{"eligibility"}); len(findings) != 0 {
		t.Errorf("eligibility has no dependents, got %+v", findings)
	}
}
