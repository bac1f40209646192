package dag

import (
	"fmt"
	"strings"
)

// Node is anything the scheduler can order.
type Node interface {
	// ID is the unique name of the item.
	ID() string
	// DependsOn lists the IDs that must be scheduled before this item.
	DependsOn() []string
}

// Graph records items and their dependency names in insertion order.
// Dependencies may name items that are never added.
type Graph struct {
	// order holds node IDs in insertion order; ties are broken by it.
	order []string
	// nodes stores all nodes, keyed by ID.
	nodes map[string]*node
}

type node struct {
	id   string
	deps []string
}

// UnschedulableError lists every item the expansion never reached, in input
// order. It does not distinguish cycle members from items merely blocked by
// them.
type UnschedulableError struct {
	IDs []string
}

func (e *UnschedulableError) Error() string {
	return fmt.Sprintf("unschedulable jobs: %s", strings.Join(e.IDs, ", "))
}
