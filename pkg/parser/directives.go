package parser

import (
	"sort"
	"strings"
)

// Reconsider records one reconsider: directive. The directive forces
// re-evaluation of a variable at runtime, so dependencies leaving the
// reconsidered variable cannot be trusted statically.
type Reconsider struct {
	NodeName   string `json:"node_name"`
	Variable   string `json:"variable"`
	FilePath   string `json:"file_path,omitempty"`
	LineNumber int    `json:"line_number,omitempty"`
}

// Reconsiders extracts reconsider directives from every declaration
// section. The directive value may be a single variable or a list.
func (p *Parser) Reconsiders() []Reconsider {
	var directives []Reconsider

	for _, section := range []string{"questions", "rules", "variables", "fields"} {
		for _, entry := range p.sectionItems(section) {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name := itemName(item)
			if name == "" {
				continue
			}
			value, ok := item["reconsider"]
			if !ok {
				continue
			}
			line := p.lineOf(name)
			for _, variable := range stringList(value) {
				variable = strings.TrimSpace(variable)
				if variable == "" {
					continue
				}
				directives = append(directives, Reconsider{
					NodeName:   name,
					Variable:   variable,
					FilePath:   p.path,
					LineNumber: line,
				})
			}
		}
	}

	return directives
}

// ReconsideredVariables returns the sorted set of variables named by the
// given directives.
func ReconsideredVariables(directives []Reconsider) []string {
	set := make(map[string]bool, len(directives))
	for _, d := range directives {
		set[d.Variable] = true
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Conditionals maps each declared entity to the condition texts of its
// conditional directives, deduplicated, in directive order.
func (p *Parser) Conditionals() map[string][]string {
	out := make(map[string][]string)

	for _, section := range []string{"questions", "rules", "variables", "fields"} {
		for _, entry := range p.sectionItems(section) {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name := itemName(item)
			if name == "" {
				continue
			}
			seen := make(map[string]bool)
			for _, directive := range conditionalDirectives {
				condition := stringValue(item[directive])
				if condition == "" {
					condition = stringValue(item[strings.ReplaceAll(directive, " ", "_")])
				}
				if condition == "" || seen[condition] {
					continue
				}
				seen[condition] = true
				out[name] = append(out[name], condition)
			}
		}
	}

	return out
}
