package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l3aro/docassemble-dag/internal/log"
	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// ParseFile reads and parses a single interview file and builds its graph.
func ParseFile(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	p, err := New(string(data), path)
	if err != nil {
		return nil, err
	}
	return BuildGraph(p)
}

// BuildGraph assembles a dependency graph from one parsed document.
func BuildGraph(p *Parser) (*graph.Graph, error) {
	nodes := p.Nodes()
	edges := p.Edges(nodes)
	return graph.New(nodes, edges)
}

// ParseFiles parses a batch of interview files and merges their graphs.
// One malformed file never aborts the batch: it is logged, skipped, and
// reported in the returned skip list.
func ParseFiles(paths []string) (*graph.Graph, []string, error) {
	var graphs []*graph.Graph
	var skipped []string

	for _, path := range paths {
		g, err := ParseFile(path)
		if err != nil {
			log.Default().Warn("skipping file", "path", path, "error", err)
			skipped = append(skipped, path)
			continue
		}
		graphs = append(graphs, g)
	}

	if len(graphs) == 0 {
		if len(skipped) > 0 {
			return nil, skipped, fmt.Errorf("no parseable files among %d inputs", len(paths))
		}
		empty, err := graph.New(map[string]types.Node{}, nil)
		return empty, nil, err
	}

	merged, err := graph.Merge(graphs...)
	if err != nil {
		return nil, skipped, err
	}
	return merged, skipped, nil
}

// ParseWithIncludes parses a file and, recursively, the files its include:
// directives reference. Include paths resolve relative to the including
// file. Each file is parsed at most once; missing includes are logged and
// skipped rather than failing the whole parse.
func ParseWithIncludes(path string) (*graph.Graph, error) {
	visited := make(map[string]bool)
	graphs, err := collectIncludes(path, visited)
	if err != nil {
		return nil, err
	}
	return graph.Merge(graphs...)
}

func collectIncludes(path string, visited map[string]bool) ([]*graph.Graph, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if visited[abs] {
		return nil, nil
	}
	visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := New(string(data), path)
	if err != nil {
		return nil, err
	}
	g, err := BuildGraph(p)
	if err != nil {
		return nil, err
	}

	graphs := []*graph.Graph{g}
	base := filepath.Dir(path)

	for _, include := range p.Includes() {
		target := include
		if !filepath.IsAbs(target) {
			target = filepath.Join(base, target)
		}
		if _, statErr := os.Stat(target); statErr != nil {
			log.Default().Debug("include not found on disk", "include", include, "resolved", target)
			continue
		}
		sub, err := collectIncludes(target, visited)
		if err != nil {
			log.Default().Warn("skipping include", "include", include, "error", err)
			continue
		}
		graphs = append(graphs, sub...)
	}

	return graphs, nil
}
