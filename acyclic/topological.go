// Package acyclic computes topological orderings of digraph.Digraph values
// via a 3-color depth-first search, and reports a cycle via ErrCycleDetected
// when one exists. It is adapted from the teacher's generic DFS package,
// trimmed down to the single operation precedence.VerifyAcyclic needs.
package acyclic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/logistics/digraph"
)

// Vertex visitation states.
const (
	white = iota
	gray
	black
)

// Sentinel errors.
var (
	// ErrGraphNil indicates a nil *digraph.Digraph was passed in.
	ErrGraphNil = errors.New("acyclic: graph is nil")

	// ErrCycleDetected indicates TopologicalSort found a cycle.
	ErrCycleDetected = errors.New("acyclic: cycle detected")
)

// TopologicalSort returns a linear ordering of g's vertices such that for
// every edge u->v, u precedes v in the ordering. Vertices are visited in
// sorted-ID order so the result is deterministic for a fixed graph.
//
// Complexity: O(V+E) time, O(V) memory.
func TopologicalSort(g *digraph.Digraph) ([]string, error) {
	if g == nil {
		return nil, ErrGraphNil
	}

	verts := g.Vertices()
	sort.Strings(verts)

	s := &sorter{
		graph: g,
		state: make(map[string]int, len(verts)),
		order: make([]string, 0, len(verts)),
	}
	for _, v := range verts {
		if s.state[v] == white {
			if err := s.visit(v); err != nil {
				return nil, err
			}
		}
	}

	// Reverse post-order into topological order.
	for i, j := 0, len(s.order)-1; i < j; i, j = i+1, j-1 {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}

	return s.order, nil
}

type sorter struct {
	graph *digraph.Digraph
	state map[string]int
	order []string
}

func (s *sorter) visit(id string) error {
	if s.state[id] == gray {
		return ErrCycleDetected
	}
	if s.state[id] == black {
		return nil
	}
	s.state[id] = gray

	neighbors, err := s.graph.Neighbors(id)
	if err != nil {
		return fmt.Errorf("acyclic: Neighbors(%q): %w", id, err)
	}
	// Sort for deterministic traversal order across runs.
	sort.Strings(neighbors)
	for _, nbr := range neighbors {
		if err := s.visit(nbr); err != nil {
			return err
		}
	}

	s.state[id] = black
	s.order = append(s.order, id)

	return nil
}
