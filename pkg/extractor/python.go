package extractor

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/l3aro/docassemble-dag/internal/log"
)

var errLimitExceeded = errors.New("syntax tree limit exceeded")

// syntaxScanner walks a Python syntax tree collecting read-context name
// references. Assignment targets and parameter lists are skipped; attribute
// access records the object part.
type syntaxScanner struct {
	content   []byte
	result    *Result
	nodeCount int
}

// scanSyntax parses the fragment as Python and walks the tree. The second
// return is false when the fragment is too large, does not parse cleanly,
// or the tree exceeds the node or depth limits; the caller then falls back
// to the pattern scan.
func scanSyntax(text string) (Result, bool) {
	if len(text) > MaxFragmentSize {
		log.Default().Debug("fragment too large for syntax analysis, using pattern scan",
			"size", len(text), "max", MaxFragmentSize)
		return Result{}, false
	}

	content := []byte(text)
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree := parser.Parse(nil, content)
	if tree == nil {
		return Result{}, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		log.Default().Debug("fragment did not parse as Python, using pattern scan")
		return Result{}, false
	}

	res := newResult(StrategySyntax)
	s := &syntaxScanner{content: content, result: &res}
	if err := s.walk(root, 0); err != nil {
		log.Default().Debug("syntax analysis aborted, using pattern scan", "reason", err)
		return Result{}, false
	}

	return res, true
}

func (s *syntaxScanner) walk(node *sitter.Node, depth int) error {
	if node == nil {
		return nil
	}
	s.nodeCount++
	if s.nodeCount > MaxTreeNodes {
		return errLimitExceeded
	}
	if depth > MaxTreeDepth {
		return errLimitExceeded
	}

	switch node.Type() {
	case "identifier":
		s.result.Variables[s.text(node)] = true
		return nil

	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if err := s.walk(object, depth+1); err != nil {
			return err
		}
		// person.name depends on person; the attribute name is discarded.
		if object != nil && object.Type() == "identifier" && attr != nil {
			objName := s.text(object)
			s.result.Objects[objName] = true
			s.result.Attributes[[2]string{objName, s.text(attr)}] = true
		}
		return nil

	case "assignment", "augmented_assignment":
		if err := s.walkTarget(node.ChildByFieldName("left"), depth+1); err != nil {
			return err
		}
		return s.walk(node.ChildByFieldName("right"), depth+1)

	case "for_statement":
		if err := s.walkTarget(node.ChildByFieldName("left"), depth+1); err != nil {
			return err
		}
		if err := s.walk(node.ChildByFieldName("right"), depth+1); err != nil {
			return err
		}
		return s.walk(node.ChildByFieldName("body"), depth+1)

	case "keyword_argument":
		// The keyword name is not a variable reference.
		return s.walk(node.ChildByFieldName("value"), depth+1)

	case "function_definition", "class_definition":
		// Parameters and the definition name are bindings, not uses.
		return s.walk(node.ChildByFieldName("body"), depth+1)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := s.walk(node.NamedChild(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// walkTarget handles the left side of an assignment or loop binding.
// Bare identifiers are definitions and excluded; attribute and subscript
// targets still read their object (person.name = x reads person).
func (s *syntaxScanner) walkTarget(node *sitter.Node, depth int) error {
	if node == nil {
		return nil
	}
	s.nodeCount++
	if s.nodeCount > MaxTreeNodes {
		return errLimitExceeded
	}
	if depth > MaxTreeDepth {
		return errLimitExceeded
	}

	switch node.Type() {
	case "identifier":
		return nil

	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if err := s.walkTarget(node.NamedChild(i), depth+1); err != nil {
				return err
			}
		}
		return nil

	case "attribute", "subscript":
		return s.walk(node, depth)
	}

	return s.walk(node, depth)
}

func (s *syntaxScanner) text(node *sitter.Node) string {
	return node.Content(s.content)
}
