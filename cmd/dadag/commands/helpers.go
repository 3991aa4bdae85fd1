package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/l3aro/docassemble-dag/internal/log"
	"github.com/l3aro/docassemble-dag/internal/scanner"
	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/parser"
)

// collectInputs expands the command arguments into interview file paths.
// Directory arguments are scanned for interview files; file arguments are
// taken as-is.
func collectInputs(args []string, recursive bool) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		opts := scanner.DefaultOptions()
		opts.Recursive = recursive
		opts.Extensions = cfg.Extensions
		files, err := scanner.New(opts).Scan(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		for _, f := range files {
			paths = append(paths, f.FullPath)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no interview files found in %v", args)
	}
	return paths, nil
}

// buildGraph parses the given inputs into one merged graph. Include
// resolution is applied per file when enabled in config.
func buildGraph(args []string, recursive bool) (*graph.Graph, error) {
	paths, err := collectInputs(args, recursive)
	if err != nil {
		return nil, err
	}

	if cfg.FollowIncludes {
		var graphs []*graph.Graph
		var failures int
		for _, path := range paths {
			g, err := parser.ParseWithIncludes(path)
			if err != nil {
				log.Default().Warn("skipping file", "path", path, "error", err)
				failures++
				continue
			}
			graphs = append(graphs, g)
		}
		if len(graphs) == 0 {
			return nil, fmt.Errorf("no parseable files among %d inputs", len(paths))
		}
		if failures > 0 {
			log.Default().Warn("some inputs were skipped", "skipped", failures, "parsed", len(graphs))
		}
		return graph.Merge(graphs...)
	}

	g, skipped, err := parser.ParseFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		log.Default().Warn("some inputs were skipped", "skipped", len(skipped), "parsed", len(paths)-len(skipped))
	}
	return g, nil
}

// collectReconsiders parses the inputs and gathers their reconsider
// directives. Unparseable files are skipped with a warning, matching
// buildGraph.
func collectReconsiders(args []string, recursive bool) ([]parser.Reconsider, error) {
	var directives []parser.Reconsider
	err := forEachParsed(args, recursive, func(p *parser.Parser) {
		directives = append(directives, p.Reconsiders()...)
	})
	return directives, err
}

// collectConditionals parses the inputs and merges their per-entity
// condition texts.
func collectConditionals(args []string, recursive bool) (map[string][]string, error) {
	merged := make(map[string][]string)
	err := forEachParsed(args, recursive, func(p *parser.Parser) {
		for name, conditions := range p.Conditionals() {
			merged[name] = append(merged[name], conditions...)
		}
	})
	return merged, err
}

func forEachParsed(args []string, recursive bool, visit func(*parser.Parser)) error {
	paths, err := collectInputs(args, recursive)
	if err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Default().Warn("skipping file", "path", path, "error", err)
			continue
		}
		p, err := parser.New(string(data), path)
		if err != nil {
			log.Default().Warn("skipping file", "path", path, "error", err)
			continue
		}
		visit(p)
	}
	return nil
}

// renderGraph serializes the graph in the requested format.
func renderGraph(g *graph.Graph, format, title string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(g.Snapshot(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "dot":
		return []byte(g.ToDOT(title)), nil
	case "graphml":
		return []byte(g.ToGraphML(title)), nil
	default:
		return nil, fmt.Errorf("unknown format %q: must be json, dot, or graphml", format)
	}
}

// writeOutput sends data to the given file, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// printJSON writes an indented JSON rendering of v to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
