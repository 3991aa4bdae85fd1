// Package extractor finds variable references inside embedded interview
// fragments: Python code blocks, expressions, templates, and conditional
// directives. Two strategies apply. Fragments that look like code are parsed
// with tree-sitter so assignment targets are excluded and attribute access
// resolves to the object; everything else falls back to a token scan.
//
// Failure of the syntax strategy is an expected outcome, not an error: the
// result carries which strategy produced it, and limit violations downgrade
// silently to the pattern scan.
package extractor

import (
	"strings"
)

// Strategy identifies which analysis produced a Result.
type Strategy string

const (
	StrategySyntax  Strategy = "syntax"  // tree-sitter syntax-tree analysis
	StrategyPattern Strategy = "pattern" // regex token scan fallback
)

// Resource limits for syntax-tree analysis. Exceeding any of them downgrades
// the fragment to the pattern scan.
const (
	MaxFragmentSize = 100000 // characters
	MaxTreeNodes    = 10000
	MaxTreeDepth    = 100
)

// Result holds the names referenced by one fragment.
//
// Variables contains every name read by the fragment, including names that
// are also in Objects. Objects contains names used as the object part of an
// attribute access (person.name reads person); callers emitting dependency
// edges should emit Objects first and skip them in the Variables pass so the
// reference is counted once.
type Result struct {
	Variables  map[string]bool
	Objects    map[string]bool
	Attributes map[[2]string]bool // (object, attribute) pairs
	Strategy   Strategy
}

func newResult(strategy Strategy) Result {
	return Result{
		Variables:  make(map[string]bool),
		Objects:    make(map[string]bool),
		Attributes: make(map[[2]string]bool),
		Strategy:   strategy,
	}
}

// ScanFragment extracts referenced names from a fragment, picking the
// strategy heuristically. It never fails: an unparseable or oversized
// fragment yields a pattern-scan result.
func ScanFragment(text string) Result {
	if strings.TrimSpace(text) == "" {
		return newResult(StrategyPattern)
	}

	if LooksLikeCode(text) {
		if res, ok := scanSyntax(text); ok {
			return res
		}
	}

	return scanPattern(text)
}

// pythonKeywords marks words whose presence suggests a fragment is a Python
// code block rather than a bare expression or template.
var pythonKeywords = map[string]bool{
	"def": true, "class": true, "if": true, "elif": true, "else": true,
	"for": true, "while": true, "try": true, "except": true, "finally": true,
	"with": true, "import": true, "from": true, "return": true, "yield": true,
	"raise": true, "assert": true, "break": true, "continue": true,
	"pass": true, "lambda": true, "async": true, "await": true,
}

// LooksLikeCode reports whether a fragment should get syntax-tree analysis.
// Control-flow keywords or a multi-statement shape indicate code; a single
// plain expression is better served by the pattern scan.
func LooksLikeCode(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	for _, word := range strings.Fields(text) {
		if pythonKeywords[word] {
			return true
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) > 2 {
		return true
	}
	if len(lines) > 1 {
		for _, line := range lines {
			if strings.Contains(line, "=") || strings.Contains(line, ":") {
				return true
			}
		}
	}

	return false
}
