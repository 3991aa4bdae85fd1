package extractor

import (
	"testing"
)

func TestLooksLikeCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"plain expression", "age >= 18", false},
		{"template text", "Hello ${ user_name }", false},
		{"keyword", "if age >= 18:\n    pass", true},
		{"multiline assignments", "x = 1\ny = 2", true},
		{"many lines", "a\nb\nc", true},
		{"two lines no statements", "hello\nworld", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeCode(tt.text); got != tt.want {
				t.Errorf("LooksLikeCode(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanFragmentCode(t *testing.T) {
	res := ScanFragment("if income < limit:\n    eligibility = age >= 18")

	if res.Strategy != StrategySyntax {
		t.Fatalf("expected syntax strategy, got %s", res.Strategy)
	}

	// Assignment targets are not references.
	if res.Variables["eligibility"] {
		t.Error("assignment target eligibility should not be a reference")
	}
	for _, want := range []string{"income", "limit", "age"} {
		if !res.Variables[want] {
			t.Errorf("expected variable %s to be referenced", want)
		}
	}
}

func TestScanFragmentAttributeAccess(t *testing.T) {
	res := ScanFragment("if person.age >= 18:\n    pass")

	if res.Strategy != StrategySyntax {
		t.Fatalf("expected syntax strategy, got %s", res.Strategy)
	}
	if !res.Objects["person"] {
		t.Error("expected person to be recorded as an object")
	}
	if !res.Attributes[[2]string{"person", "age"}] {
		t.Error("expected (person, age) attribute pair")
	}
	// The attribute name alone is not a variable reference.
	if res.Variables["age"] {
		t.Error("attribute name age should not be a bare variable")
	}
}

func TestScanFragmentAttributeAssignment(t *testing.T) {
	// Writing person.name still reads person.
	res := ScanFragment("person.name = full_name\nperson.age = 30")

	if !res.Objects["person"] {
		t.Error("expected person to be read by attribute assignment")
	}
	if !res.Variables["full_name"] {
		t.Error("expected full_name to be referenced")
	}
}

func TestScanFragmentPatternFallback(t *testing.T) {
	res := ScanFragment("user_age + user_income")

	if res.Strategy != StrategyPattern {
		t.Fatalf("expected pattern strategy, got %s", res.Strategy)
	}
	for _, want := range []string{"user_age", "user_income"} {
		if !res.Variables[want] {
			t.Errorf("expected variable %s to be referenced", want)
		}
	}
}

func TestScanFragmentPatternAttributes(t *testing.T) {
	res := ScanFragment("person.name and spouse.name")

	if res.Strategy != StrategyPattern {
		t.Fatalf("expected pattern strategy, got %s", res.Strategy)
	}
	if !res.Objects["person"] || !res.Objects["spouse"] {
		t.Errorf("expected person and spouse as objects, got %v", res.Objects)
	}
	// Objects are excluded from the bare-name pass.
	if res.Variables["person"] {
		t.Error("person should not also appear as a bare variable")
	}
}

func TestScanFragmentEmpty(t *testing.T) {
	res := ScanFragment("   \n  ")
	if len(res.Variables) != 0 || len(res.Objects) != 0 {
		t.Errorf("expected empty result, got %v / %v", res.Variables, res.Objects)
	}
	if res.Strategy != StrategyPattern {
		t.Errorf("expected pattern strategy for empty input, got %s", res.Strategy)
	}
}

func TestScanFragmentOversized(t *testing.T) {
	big := make([]byte, MaxFragmentSize+1)
	for i := range big {
		big[i] = 'a'
	}
	// Force the code path with a keyword prefix.
	res := ScanFragment("if True:\n" + string(big))

	if res.Strategy != StrategyPattern {
		t.Errorf("oversized fragment should downgrade to pattern, got %s", res.Strategy)
	}
}

func TestScanFragmentForLoop(t *testing.T) {
	res := ScanFragment("for item in children:\n    total = total + item.cost")

	if res.Strategy != StrategySyntax {
		t.Fatalf("expected syntax strategy, got %s", res.Strategy)
	}
	if !res.Variables["children"] {
		t.Error("expected loop iterable children to be referenced")
	}
	// Loop targets are bindings, not references.
	if res.Variables["item"] && !res.Objects["item"] {
		t.Error("loop target item should only surface via attribute access")
	}
	if !res.Objects["item"] {
		t.Error("expected item.cost to record item as an object")
	}
}

func TestScanCondition(t *testing.T) {
	refs := ScanCondition("age >= 18 and state in covered_states")

	for _, want := range []string{"age", "state", "covered_states"} {
		if !refs[want] {
			t.Errorf("expected %s in condition references, got %v", want, refs)
		}
	}
	// Operator words are filtered.
	for _, excluded := range []string{"and", "in"} {
		if refs[excluded] {
			t.Errorf("operator %s should be filtered", excluded)
		}
	}
}

func TestScanConditionFiltersCapitalized(t *testing.T) {
	refs := ScanCondition("eligible is True and status != Individual")

	if refs["True"] || refs["Individual"] {
		t.Errorf("capitalized names should be filtered, got %v", refs)
	}
	if !refs["eligible"] || !refs["status"] {
		t.Errorf("expected eligible and status, got %v", refs)
	}
}

func TestScanConditionCodePath(t *testing.T) {
	// Multi-statement condition goes through syntax analysis, which
	// resolves attribute access to the object.
	refs := ScanCondition("if user.age >= 18:\n    pass")

	if !refs["user"] {
		t.Errorf("expected user from attribute access, got %v", refs)
	}
	if refs["age"] {
		t.Error("attribute name should not be a reference on the syntax path")
	}
}
