// Package template validates variable references in attachment templates
// against the interview's declared entities. DOCX archives and plain-text
// formats (Mako, HTML, TXT) are supported.
package template

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/l3aro/docassemble-dag/internal/log"
	"github.com/l3aro/docassemble-dag/pkg/graph"
)

// makoVarPattern matches ${variable} and ${object.attribute}.
var makoVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_]+)?)\}`)

// templateVarPattern matches {variable} and nested attribute forms like
// {client.name.first}.
var templateVarPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_]+)*)\}`)

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Result reports the validation outcome for one template file.
type Result struct {
	TemplatePath       string   `json:"template_path"`
	ExtractedVariables []string `json:"extracted_variables"`
	ExtractedObjects   []string `json:"extracted_objects"`
	UndefinedVariables []string `json:"undefined_variables"`
	UndefinedObjects   []string `json:"undefined_objects"`
	ValidVariables     []string `json:"valid_variables"`
	ValidObjects       []string `json:"valid_objects"`
	Valid              bool     `json:"is_valid"`
}

// ExtractVariables reads a template file and returns the bare variable
// names and object names it references. Attribute references such as
// {client.name.first} record the object only.
func ExtractVariables(path string) (variables, objects map[string]bool, err error) {
	var text string

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		text, err = docxText(path)
	case ".mako", ".html", ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return nil, nil, fmt.Errorf("unsupported template format %q: supported formats are .docx, .mako, .html, .txt", ext)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	variables, objects = parseText(text)
	return variables, objects, nil
}

// docxText pulls the document body text out of a DOCX archive by reading
// word/document.xml and stripping its markup.
func docxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return "", err
		}
		return xmlTagPattern.ReplaceAllString(string(data), " "), nil
	}
	return "", nil
}

func parseText(text string) (variables, objects map[string]bool) {
	variables = make(map[string]bool)
	objects = make(map[string]bool)

	for _, pattern := range []*regexp.Regexp{makoVarPattern, templateVarPattern} {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			name := match[1]
			if idx := strings.Index(name, "."); idx >= 0 {
				objects[name[:idx]] = true
			} else {
				variables[name] = true
			}
		}
	}
	return variables, objects
}

// Validate checks one template's references against the graph's declared
// entities. Extraction failures mark the result invalid rather than
// erroring, so batch runs always produce a result per template.
func Validate(path string, g *graph.Graph) Result {
	res := Result{TemplatePath: path, Valid: true}

	variables, objects, err := ExtractVariables(path)
	if err != nil {
		log.Default().Warn("template validation failed", "path", path, "error", err)
		res.Valid = false
		res.UndefinedVariables = append(res.UndefinedVariables, "ERROR: "+err.Error())
		return res
	}

	res.ExtractedVariables = sortedNames(variables)
	res.ExtractedObjects = sortedNames(objects)

	for _, name := range res.ExtractedVariables {
		if _, ok := g.Node(name); ok {
			res.ValidVariables = append(res.ValidVariables, name)
		} else {
			res.UndefinedVariables = append(res.UndefinedVariables, name)
			res.Valid = false
		}
	}
	for _, name := range res.ExtractedObjects {
		if _, ok := g.Node(name); ok {
			res.ValidObjects = append(res.ValidObjects, name)
		} else {
			res.UndefinedObjects = append(res.UndefinedObjects, name)
			res.Valid = false
		}
	}
	return res
}

// ValidateAll validates several templates, keyed by path.
func ValidateAll(paths []string, g *graph.Graph) map[string]Result {
	results := make(map[string]Result, len(paths))
	for _, path := range paths {
		results[path] = Validate(path, g)
	}
	return results
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
