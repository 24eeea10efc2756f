// SPDX-License-Identifier: MIT

package groups

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/sparselm/errs"
)

// Visitation states of the hierarchy DFS.
const (
	white = iota // not visited yet
	gray         // on the recursion stack
	black        // fully explored
)

// Hierarchy maps a dependent group to the groups it depends on.
// A dependent group may only be active when all its prerequisites are active.
type Hierarchy map[ID][]ID

// Edge is one dependency between canonical group indices.
type Edge struct {
	Dependent    int
	Prerequisite int
}

// HierarchyIndex is a validated hierarchy expressed over canonical group indices.
type HierarchyIndex struct {
	// Edges are sorted by (Dependent, Prerequisite) and de-duplicated.
	Edges []Edge

	// Order lists every group so that prerequisites precede their dependents.
	Order []int
}

// hierarchySorter encapsulates state for one topological sort traversal.
type hierarchySorter struct {
	adj   [][]int // dependent -> prerequisites (canonical indices, ascending)
	state []int   // white / gray / black
	order []int   // post-order: prerequisites first
}

// ResolveHierarchy validates h against the structure and returns its index form.
//
// Contract:
//   - every dependent and prerequisite ID exists in s;
//   - the relation is acyclic (self-dependency counts as a cycle).
//
// Errors (wrapped in errs.ConfigurationError): ErrUnknownGroup, ErrCyclicHierarchy.
//
// Determinism: groups are visited in canonical order; unknown IDs are reported
// in lexicographic order.
// Complexity: O(G + E) plus O(E log E) for edge sorting.
func (s *Structure) ResolveHierarchy(h Hierarchy) (*HierarchyIndex, error) {
	const op = "groups.ResolveHierarchy"

	// 1. Resolve IDs; collect unknown ones deterministically.
	var unknown []string
	adj := make([][]int, len(s.ids))
	for dep, pres := range h {
		d, ok := s.index[dep]
		if !ok {
			unknown = append(unknown, string(dep))
			continue
		}
		for _, pre := range pres {
			q, ok := s.index[pre]
			if !ok {
				unknown = append(unknown, string(pre))
				continue
			}
			adj[d] = append(adj[d], q)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)

		return nil, errs.Configurationf(op, ErrUnknownGroup, "%q", unknown[0])
	}

	// 2. Canonicalize adjacency: ascending, no duplicates.
	var edges []Edge
	for d := range adj {
		sort.Ints(adj[d])
		adj[d] = dedupSorted(adj[d])
		for _, q := range adj[d] {
			edges = append(edges, Edge{Dependent: d, Prerequisite: q})
		}
	}

	// 3. Topological sort from every unvisited group.
	sorter := &hierarchySorter{
		adj:   adj,
		state: make([]int, len(s.ids)),
		order: make([]int, 0, len(s.ids)),
	}
	for g := range s.ids {
		if sorter.state[g] == white {
			if err := sorter.visit(g); err != nil {
				return nil, errs.Configuration(op, fmt.Errorf("%w: through group %q", err, s.ids[g]))
			}
		}
	}

	return &HierarchyIndex{Edges: edges, Order: sorter.order}, nil
}

// visit performs a DFS from g over prerequisite edges, detecting back-edges.
func (t *hierarchySorter) visit(g int) error {
	if t.state[g] == gray {
		return ErrCyclicHierarchy
	}
	if t.state[g] == black {
		return nil
	}
	t.state[g] = gray
	for _, q := range t.adj[g] {
		if err := t.visit(q); err != nil {
			return err
		}
	}
	t.state[g] = black
	t.order = append(t.order, g)

	return nil
}

// Prerequisites returns, for every group, its direct prerequisites.
func (hi *HierarchyIndex) Prerequisites(numGroups int) [][]int {
	out := make([][]int, numGroups)
	for _, e := range hi.Edges {
		out[e.Dependent] = append(out[e.Dependent], e.Prerequisite)
	}

	return out
}

// Dependents returns, for every group, the groups that directly depend on it.
func (hi *HierarchyIndex) Dependents(numGroups int) [][]int {
	out := make([][]int, numGroups)
	for _, e := range hi.Edges {
		out[e.Prerequisite] = append(out[e.Prerequisite], e.Dependent)
	}

	return out
}

func dedupSorted(xs []int) []int {
	if len(xs) < 2 {
		return xs
	}
	w := 1
	for r := 1; r < len(xs); r++ {
		if xs[r] != xs[w-1] {
			xs[w] = xs[r]
			w++
		}
	}

	return xs[:w]
}
