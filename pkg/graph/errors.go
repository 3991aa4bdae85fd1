package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNodeNotFound is returned by strict lookups for names absent from the graph.
var ErrNodeNotFound = errors.New("node not found in graph")

// CycleError is returned by operations that require an acyclic graph.
// It carries the detected cycles for diagnostics.
type CycleError struct {
	Message string
	Cycles  [][]string
}

func (e *CycleError) Error() string {
	if len(e.Cycles) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Cycles))
	for _, cycle := range e.Cycles {
		parts = append(parts, strings.Join(cycle, " -> "))
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}
