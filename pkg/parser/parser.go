// Package parser performs static extraction of entities and dependency
// edges from declarative interview documents (docassemble-style YAML).
// It never evaluates interview logic: dependencies are discovered by
// directive lookup and best-effort reference scanning via pkg/extractor.
package parser

import (
	"errors"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/docassemble-dag/internal/log"
	"github.com/l3aro/docassemble-dag/pkg/extractor"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// assemblyLinePrefix marks Assembly Line library variables.
const assemblyLinePrefix = "AL_"

// Directive keys stating explicit dependencies.
var explicitDirectives = []string{"depends on", "depends_on", "required", "requires", "mandatory"}

// Conditional directives whose expressions create implicit dependencies.
// The space-separated form is preferred; the underscore form is an alias.
var conditionalDirectives = []string{
	"show if", "enable if", "required if", "hide if", "disable if", "mandatory if",
}

// Fields whose text may reference other entities.
var referenceFields = []string{"expression", "template", "question", "choices", "default", "code"}

// Top-level keys that are directives or display configuration, never ad hoc
// entity declarations.
var reservedKeys = map[string]bool{
	"questions": true, "variables": true, "fields": true, "rules": true,
	"metadata": true, "modules": true, "module": true, "include": true,
	"objects": true, "imports": true, "event": true,
	"attachments": true, "table": true, "review": true,
	"features": true, "default role": true, "role": true,
	"sections": true, "progress": true, "auto terms": true,
	"ga id": true, "interview help": true, "continue button label": true,
	"question": true, "variable": true, "field": true, "expression": true, "code": true,
}

// Parser holds one parsed declaration document plus its provenance context.
type Parser struct {
	path      string
	raw       map[string]any
	lines     []string
	lineCache map[string]int
}

// New parses interview YAML, which may contain multiple documents separated
// by ---. Documents are merged (sequences append, mappings update, scalars
// last-wins) and the merged structure is validated. Malformed input yields
// an *InvalidDocumentError; no partial result is returned.
func New(yamlText, path string) (*Parser, error) {
	docs, err := decodeDocuments(yamlText, path)
	if err != nil {
		return nil, err
	}

	raw := mergeDocuments(docs)

	if errs := validateStructure(raw); len(errs) > 0 {
		return nil, invalidDocument(path, "structure validation failed: %s", strings.Join(errs, "; "))
	}

	p := &Parser{
		path:      path,
		raw:       raw,
		lineCache: make(map[string]int),
	}
	if yamlText != "" {
		p.lines = strings.Split(yamlText, "\n")
	}

	log.Default().Debug("parsed interview document", "path", path, "documents", len(docs), "lines", len(p.lines))
	return p, nil
}

func decodeDocuments(yamlText, path string) ([]map[string]any, error) {
	var docs []map[string]any

	dec := yaml.NewDecoder(strings.NewReader(yamlText))
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &InvalidDocumentError{
				Message:  "failed to parse YAML: " + err.Error(),
				FilePath: path,
				Err:      err,
			}
		}
		if doc == nil {
			continue
		}
		mapped, ok := doc.(map[string]any)
		if !ok {
			return nil, invalidDocument(path, "YAML document must be a mapping, got %T", doc)
		}
		docs = append(docs, mapped)
	}

	return docs, nil
}

// mergeDocuments folds multiple YAML documents into one structure:
// sequences under the same key append, mappings update, scalars last-wins.
func mergeDocuments(docs []map[string]any) map[string]any {
	merged := make(map[string]any)

	for _, doc := range docs {
		for key, value := range doc {
			existing, ok := merged[key]
			if !ok {
				merged[key] = value
				continue
			}
			switch prev := existing.(type) {
			case []any:
				if next, ok := value.([]any); ok {
					merged[key] = append(prev, next...)
					continue
				}
			case map[string]any:
				if next, ok := value.(map[string]any); ok {
					for k, v := range next {
						prev[k] = v
					}
					continue
				}
			}
			merged[key] = value
		}
	}

	return merged
}

// Nodes extracts all entities from the document: section declarations,
// question-defined variables, object declarations, and ad hoc top-level
// blocks carrying a recognizable shape.
func (p *Parser) Nodes() map[string]types.Node {
	nodes := make(map[string]types.Node)

	// fields and variables are the same semantic category.
	var variables []any
	for _, key := range []string{"fields", "variables"} {
		variables = append(variables, p.sectionItems(key)...)
	}
	for _, entry := range variables {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := itemName(item)
		if name == "" {
			continue
		}

		source := types.SourceUserInput
		if stringValue(item["expression"]) != "" || stringValue(item["code"]) != "" {
			source = types.SourceDerived
		}
		kind := types.KindVariable
		if strings.HasPrefix(name, assemblyLinePrefix) {
			kind = types.KindAssemblyLine
		}

		nodes[name] = types.Node{
			Name:       name,
			Kind:       kind,
			Source:     source,
			Authority:  itemAuthority(item),
			FilePath:   p.path,
			LineNumber: p.lineOf(name),
		}
	}

	for _, entry := range p.sectionItems("questions") {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := itemName(item)
		if name == "" {
			continue
		}

		nodes[name] = types.Node{
			Name:       name,
			Kind:       types.KindQuestion,
			Source:     types.SourceUserInput,
			Authority:  itemAuthority(item),
			FilePath:   p.path,
			LineNumber: p.lineOf(name),
		}
		p.addQuestionVariable(nodes, item)
	}

	for _, entry := range p.sectionItems("rules") {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := itemName(item)
		if name == "" {
			continue
		}

		nodes[name] = types.Node{
			Name:       name,
			Kind:       types.KindRule,
			Source:     types.SourceDerived,
			Authority:  itemAuthority(item),
			FilePath:   p.path,
			LineNumber: p.lineOf(name),
		}
	}

	// objects: - person: Individual
	for _, entry := range p.sectionItems("objects") {
		def, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for objName, objType := range def {
			name := strings.TrimSpace(objName)
			if name == "" {
				continue
			}
			if _, exists := nodes[name]; exists {
				continue
			}
			nodes[name] = types.Node{
				Name:       name,
				Kind:       types.KindVariable,
				Source:     types.SourceDerived, // instantiated, not asked
				FilePath:   p.path,
				LineNumber: p.lineOf(name),
				Metadata:   map[string]any{"object_type": stringify(objType)},
			}
		}
	}

	p.addTopLevelBlock(nodes)
	p.addAdHocDeclarations(nodes)

	return nodes
}

// addQuestionVariable records the variable a question defines via its
// variable: or field: key.
func (p *Parser) addQuestionVariable(nodes map[string]types.Node, item map[string]any) {
	varName := strings.TrimSpace(stringValue(item["variable"]))
	if varName == "" {
		varName = strings.TrimSpace(stringValue(item["field"]))
	}
	if varName == "" {
		return
	}
	if _, exists := nodes[varName]; exists {
		return
	}
	nodes[varName] = types.Node{
		Name:       varName,
		Kind:       types.KindVariable,
		Source:     types.SourceUserInput,
		FilePath:   p.path,
		LineNumber: p.lineOf(varName),
	}
}

// addTopLevelBlock handles documents whose root itself is one declaration,
// e.g. "question: ...\nvariable: user_name".
func (p *Parser) addTopLevelBlock(nodes map[string]types.Node) {
	if hasKey(p.raw, "question") {
		name := itemName(p.raw)
		if name == "" {
			name = "top_level_question"
		}
		if _, exists := nodes[name]; !exists {
			nodes[name] = types.Node{
				Name:       name,
				Kind:       types.KindQuestion,
				Source:     types.SourceUserInput,
				Authority:  itemAuthority(p.raw),
				FilePath:   p.path,
				LineNumber: p.lineOf(name),
			}
		}
		p.addQuestionVariable(nodes, p.raw)
		return
	}

	if hasKey(p.raw, "expression") || hasKey(p.raw, "code") {
		name := itemName(p.raw)
		if name == "" {
			name = "top_level_variable"
		}
		if _, exists := nodes[name]; !exists {
			nodes[name] = types.Node{
				Name:       name,
				Kind:       types.KindVariable,
				Source:     types.SourceDerived,
				Authority:  itemAuthority(p.raw),
				FilePath:   p.path,
				LineNumber: p.lineOf(name),
			}
		}
	}
}

// adHocShape classifies an unrecognized top-level mapping by the keys it
// carries. Shapes are tried in order; the first match wins.
type adHocShape struct {
	matches func(map[string]any) bool
	build   func(p *Parser, key string, item map[string]any, nodes map[string]types.Node)
}

var adHocShapes = []adHocShape{
	{
		// A question: block; may define a variable alongside.
		matches: func(item map[string]any) bool { return hasKey(item, "question") },
		build: func(p *Parser, key string, item map[string]any, nodes map[string]types.Node) {
			name := itemName(item)
			if name == "" {
				name = key
			}
			if _, exists := nodes[name]; !exists {
				nodes[name] = types.Node{
					Name:       name,
					Kind:       types.KindQuestion,
					Source:     types.SourceUserInput,
					Authority:  itemAuthority(item),
					FilePath:   p.path,
					LineNumber: p.lineOf(name),
				}
			}
			p.addQuestionVariable(nodes, item)
		},
	},
	{
		// A derived value: carries an expression or code body.
		matches: func(item map[string]any) bool {
			return hasKey(item, "expression") || hasKey(item, "code")
		},
		build: func(p *Parser, key string, item map[string]any, nodes map[string]types.Node) {
			name := itemName(item)
			if name == "" {
				name = key
			}
			if _, exists := nodes[name]; !exists {
				nodes[name] = types.Node{
					Name:       name,
					Kind:       types.KindVariable,
					Source:     types.SourceDerived,
					Authority:  itemAuthority(item),
					FilePath:   p.path,
					LineNumber: p.lineOf(name),
				}
			}
		},
	},
}

// addAdHocDeclarations scans unreserved top-level keys for mappings that
// look like declarations.
func (p *Parser) addAdHocDeclarations(nodes map[string]types.Node) {
	for _, key := range sortedKeys(p.raw) {
		if reservedKeys[key] {
			continue
		}
		item, ok := p.raw[key].(map[string]any)
		if !ok {
			continue
		}
		for _, shape := range adHocShapes {
			if shape.matches(item) {
				shape.build(p, key, item, nodes)
				break
			}
		}
	}
}

// Edges extracts explicit, conditional, and implicit dependency edges.
// For each (from, to) pair only the first discovery is kept, so the
// provenance of the first extraction rule that found it survives.
// Self-loops and edges onto unknown entities are suppressed here.
func (p *Parser) Edges(nodes map[string]types.Node) []types.Edge {
	var edges []types.Edge
	seen := make(map[[2]string]bool)

	addEdge := func(from, to string, depType types.DependencyType, line int) {
		if _, ok := nodes[from]; !ok {
			return
		}
		if _, ok := nodes[to]; !ok {
			return
		}
		if from == to {
			return
		}
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		edges = append(edges, types.Edge{
			From:       from,
			To:         to,
			Type:       depType,
			FilePath:   p.path,
			LineNumber: line,
		})
	}

	sections := []string{"questions", "rules", "variables", "fields"}

	for _, section := range sections {
		for _, entry := range p.sectionItems(section) {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			dst := itemName(item)
			if dst == "" {
				continue
			}
			p.explicitEdges(item, dst, addEdge)
			p.conditionalEdges(item, dst, nodes, addEdge)
		}
	}

	for _, section := range sections {
		for _, entry := range p.sectionItems(section) {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			dst := itemName(item)
			if dst == "" {
				continue
			}
			p.referenceEdges(item, dst, addEdge)
		}
	}

	// Ad hoc top-level declarations carry dependencies too.
	for _, key := range sortedKeys(p.raw) {
		if key == "questions" || key == "variables" || key == "fields" || key == "rules" {
			continue
		}
		item, ok := p.raw[key].(map[string]any)
		if !ok {
			continue
		}
		dst := itemName(item)
		if dst == "" {
			dst = key
		}
		p.explicitEdges(item, dst, addEdge)
		p.referenceEdges(item, dst, addEdge)
	}

	return edges
}

type addEdgeFunc func(from, to string, depType types.DependencyType, line int)

func (p *Parser) explicitEdges(item map[string]any, dst string, addEdge addEdgeFunc) {
	for _, directive := range explicitDirectives {
		value, ok := item[directive]
		if !ok {
			continue
		}
		line := p.lineOf(dst)
		for _, dep := range stringList(value) {
			dep = strings.TrimSpace(dep)
			if dep != "" {
				addEdge(dep, dst, types.DepExplicit, line)
			}
		}
	}
}

func (p *Parser) conditionalEdges(item map[string]any, dst string, nodes map[string]types.Node, addEdge addEdgeFunc) {
	line := p.lineOf(dst)
	seenConditions := make(map[string]bool)

	for _, directive := range conditionalDirectives {
		condition := stringValue(item[directive])
		if condition == "" {
			condition = stringValue(item[strings.ReplaceAll(directive, " ", "_")])
		}
		if condition == "" || seenConditions[condition] {
			continue
		}
		seenConditions[condition] = true

		deps := extractor.ScanCondition(condition)
		for _, dep := range sortedSet(deps) {
			if _, ok := nodes[dep]; ok {
				addEdge(dep, dst, types.DepImplicit, line)
			}
		}
	}
}

func (p *Parser) referenceEdges(item map[string]any, dst string, addEdge addEdgeFunc) {
	for _, field := range referenceFields {
		value, ok := item[field]
		if !ok {
			continue
		}
		line := p.lineOf(dst)
		switch text := value.(type) {
		case string:
			p.implicitEdges(text, dst, line, addEdge)
		case []any:
			// choices and defaults may be lists of strings.
			for _, element := range text {
				if s, ok := element.(string); ok {
					p.implicitEdges(s, dst, line, addEdge)
				}
			}
		}
	}
}

// implicitEdges scans one text fragment and emits edges for the names it
// references. Objects from attribute access come first and are excluded
// from the bare-name pass so person.name never double-counts person and
// never produces an edge for the attribute alone.
func (p *Parser) implicitEdges(text, dst string, line int, addEdge addEdgeFunc) {
	if strings.TrimSpace(text) == "" {
		return
	}

	res := extractor.ScanFragment(text)

	for _, obj := range sortedSet(res.Objects) {
		if obj != dst {
			addEdge(obj, dst, types.DepImplicit, line)
		}
	}
	for _, name := range sortedSet(res.Variables) {
		if name != dst && !res.Objects[name] {
			addEdge(name, dst, types.DepImplicit, line)
		}
	}
}

// Modules returns the module cross-references declared by the document.
// Modules are external library references, not graph entities.
func (p *Parser) Modules() []string {
	var modules []string

	switch value := p.raw["modules"].(type) {
	case []any:
		for _, entry := range value {
			if s, ok := entry.(string); ok {
				modules = append(modules, s)
			}
		}
	case string:
		modules = append(modules, value)
	}

	if s := stringValue(p.raw["module"]); s != "" {
		modules = append(modules, s)
	}

	return modules
}

// Includes returns file references from include: and modules: directives,
// in declaration order.
func (p *Parser) Includes() []string {
	var includes []string
	for _, key := range []string{"include", "modules"} {
		switch value := p.raw[key].(type) {
		case []any:
			for _, entry := range value {
				if s, ok := entry.(string); ok {
					includes = append(includes, s)
				}
			}
		case string:
			includes = append(includes, value)
		}
	}
	return includes
}

// lineOf finds the first line declaring the given name. Best effort: the
// scan looks for "name: X" or a quoted occurrence, memoized per name.
func (p *Parser) lineOf(name string) int {
	if name == "" || len(p.lines) == 0 {
		return 0
	}
	if line, ok := p.lineCache[name]; ok {
		return line
	}

	found := 0
	for i, line := range p.lines {
		if !strings.Contains(line, name) {
			continue
		}
		if strings.Contains(line, "name: "+name) ||
			strings.Contains(line, `"`+name+`"`) ||
			strings.Contains(line, "'"+name+"'") {
			found = i + 1
			break
		}
	}

	p.lineCache[name] = found
	return found
}

func (p *Parser) sectionItems(key string) []any {
	items, _ := p.raw[key].([]any)
	return items
}

// itemName resolves an item's name from its name-like keys, tried in
// priority order. Names are trimmed; empty and whitespace-only names are
// treated as absent.
func itemName(item map[string]any) string {
	for _, key := range []string{"name", "id", "variable", "field"} {
		if s := strings.TrimSpace(stringValue(item[key])); s != "" {
			return s
		}
	}
	return ""
}

func itemAuthority(item map[string]any) string {
	if s := stringValue(item["authority"]); s != "" {
		return s
	}
	return stringValue(item["statute"])
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		var out []string
		for _, entry := range value {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
