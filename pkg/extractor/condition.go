package extractor

import (
	"strings"
	"unicode"
)

// Words that appear in conditional expressions without referencing an
// interview variable: operators, literals, and common builtins.
var conditionExcluded = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "elif": true,
	"len": true, "str": true, "int": true, "float": true,
	"bool": true, "list": true, "dict": true, "set": true, "tuple": true,
}

// ScanCondition extracts the variable names a conditional directive
// expression depends on ("show if: age >= 18" depends on age).
//
// Complex conditions get syntax-tree analysis like any code fragment. The
// pattern path is stricter than ScanFragment's: operator words, builtins,
// and capitalized names (class references, True/False/None) are dropped,
// since conditions are noisy one-liners.
func ScanCondition(condition string) map[string]bool {
	deps := make(map[string]bool)

	if LooksLikeCode(condition) {
		if res, ok := scanSyntax(condition); ok {
			for name := range res.Variables {
				deps[name] = true
			}
			for name := range res.Objects {
				deps[name] = true
			}
			return deps
		}
	}

	for _, name := range identifierPattern.FindAllString(condition, -1) {
		if conditionExcluded[strings.ToLower(name)] {
			continue
		}
		if startsUpper(name) {
			continue
		}
		deps[name] = true
	}

	return deps
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
