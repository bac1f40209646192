package dag

import (
	"fmt"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a node with the given ID and dependency names. Adding an ID
// twice is an error since IDs must be unique.
func (g *Graph) AddNode(id string, deps ...string) error {
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("duplicate node: %s", id)
	}
	g.nodes[id] = &node{id: id, deps: deps}
	g.order = append(g.order, id)
	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Order returns every node ID such that each appears after all of its
// dependencies. Ready nodes keep their insertion order.
func (g *Graph) Order() ([]string, error) {
	scheduled := make([]string, 0, len(g.order))
	seen := make(map[string]struct{}, len(g.order))

	schedule := func(id string) {
		seen[id] = struct{}{}
		scheduled = append(scheduled, id)
	}

	for _, id := range g.order {
		if len(g.nodes[id].deps) == 0 {
			schedule(id)
		}
	}

	for len(scheduled) < len(g.order) {
		before := len(scheduled)

		for _, id := range g.order {
			if _, ok := seen[id]; ok {
				continue
			}
			if g.ready(id, seen) {
				schedule(id)
			}
		}

		// A full scan that adds nothing can never make progress.
		if len(scheduled) == before {
			return nil, g.unschedulable(seen)
		}
	}

	return scheduled, nil
}

func (g *Graph) ready(id string, seen map[string]struct{}) bool {
	for _, dep := range g.nodes[id].deps {
		if _, ok := seen[dep]; !ok {
			return false
		}
	}
	return true
}

func (g *Graph) unschedulable(seen map[string]struct{}) error {
	var ids []string
	for _, id := range g.order {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	return &UnschedulableError{IDs: ids}
}

// Schedule orders items so that every item follows all of its dependencies.
// Items that are ready at the same time keep their input order.
func Schedule[T Node](items []T) ([]T, error) {
	g := New()
	byID := make(map[string]T, len(items))
	for _, item := range items {
		if err := g.AddNode(item.ID(), item.DependsOn()...); err != nil {
			return nil, err
		}
		byID[item.ID()] = item
	}

	ids, err := g.Order()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}
