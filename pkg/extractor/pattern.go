package extractor

import "regexp"

// Identifier-like substrings in expressions and templates.
var identifierPattern = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)

// Object attribute access: person.name, address.street.
var objectAttrPattern = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z_][a-zA-Z0-9_]*)\b`)

// scanPattern token-scans the fragment. Attribute patterns are resolved
// first so their object part is recorded once and excluded from the bare
// identifier pass.
func scanPattern(text string) Result {
	res := newResult(StrategyPattern)

	for _, match := range objectAttrPattern.FindAllStringSubmatch(text, -1) {
		res.Objects[match[1]] = true
		res.Attributes[[2]string{match[1], match[2]}] = true
	}

	for _, name := range identifierPattern.FindAllString(text, -1) {
		if !res.Objects[name] {
			res.Variables[name] = true
		}
	}

	return res
}
