// SPDX-License-Identifier: MIT

package groups

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/errs"
)

// ID identifies a group. IDs are compared by value.
type ID string

// Assignment maps covariate index j to the IDs of the groups it belongs to.
// A covariate listing more than one ID makes the assignment overlapping.
type Assignment [][]ID

// FromLabels builds a non-overlapping assignment from integer labels,
// the common "groups=[0, 0, 1, 2]" form.
func FromLabels(labels []int) Assignment {
	a := make(Assignment, len(labels))
	for j, l := range labels {
		a[j] = []ID{ID(strconv.Itoa(l))}
	}

	return a
}

// Singletons builds the assignment where covariate j is alone in group "j".
// Every group-aware formulation over singletons reduces to its ungrouped analogue.
func Singletons(p int) Assignment {
	a := make(Assignment, p)
	for j := 0; j < p; j++ {
		a[j] = []ID{ID(strconv.Itoa(j))}
	}

	return a
}

// Structure is the canonical, immutable group structure.
//
// Expanded index space: every (covariate, group) membership owns exactly one
// expanded index, assigned in covariate-major order. Without overlap the
// expansion is the identity map onto [0, p).
type Structure struct {
	p           int
	ids         []ID        // canonical group order (first seen)
	index       map[ID]int  // id -> canonical group index
	members     [][]int     // group -> expanded indices (ascending)
	backMap     []int       // expanded index -> covariate
	groupOf     []int       // expanded index -> group
	byCovariate [][]int     // covariate -> expanded indices (ascending)
	overlapping bool
}

// Resolve normalizes an assignment over p covariates into a Structure.
//
// Contract:
//   - len(a) == p, p > 0;
//   - every covariate lists at least one non-empty ID, without duplicates.
//
// Errors (wrapped in errs.ConfigurationError): ErrDimensionMismatch,
// ErrUncoveredCovariate, ErrEmptyID, ErrDuplicateMembership.
//
// Determinism: group order is first-seen order scanning covariates 0..p−1
// and each covariate's IDs in the given order.
// Complexity: O(Σ|g|).
func Resolve(p int, a Assignment) (*Structure, error) {
	const op = "groups.Resolve"
	if p <= 0 || len(a) != p {
		return nil, errs.Configurationf(op, ErrDimensionMismatch, "p=%d, assignment covers %d covariates", p, len(a))
	}

	s := &Structure{
		p:           p,
		index:       make(map[ID]int),
		byCovariate: make([][]int, p),
	}
	var (
		j, g int
		ok   bool
		id   ID
	)
	for j = 0; j < p; j++ {
		if len(a[j]) == 0 {
			return nil, errs.Configurationf(op, ErrUncoveredCovariate, "covariate %d", j)
		}
		seen := make(map[ID]struct{}, len(a[j]))
		for _, id = range a[j] {
			if id == "" {
				return nil, errs.Configurationf(op, ErrEmptyID, "covariate %d", j)
			}
			if _, dup := seen[id]; dup {
				return nil, errs.Configurationf(op, ErrDuplicateMembership, "covariate %d lists group %q twice", j, id)
			}
			seen[id] = struct{}{}

			if g, ok = s.index[id]; !ok {
				g = len(s.ids)
				s.index[id] = g
				s.ids = append(s.ids, id)
				s.members = append(s.members, nil)
			}
			e := len(s.backMap)
			s.backMap = append(s.backMap, j)
			s.groupOf = append(s.groupOf, g)
			s.members[g] = append(s.members[g], e)
			s.byCovariate[j] = append(s.byCovariate[j], e)
		}
	}
	s.overlapping = len(s.backMap) > p

	return s, nil
}

// NumCovariates returns p.
func (s *Structure) NumCovariates() int { return s.p }

// NumGroups returns the number of distinct groups.
func (s *Structure) NumGroups() int { return len(s.ids) }

// Size returns the size of the expanded index space (Σ|g|, or p without overlap).
func (s *Structure) Size() int { return len(s.backMap) }

// Overlapping reports whether any covariate belongs to more than one group.
func (s *Structure) Overlapping() bool { return s.overlapping }

// GroupIDs returns the group IDs in canonical order (copy).
func (s *Structure) GroupIDs() []ID {
	out := make([]ID, len(s.ids))
	copy(out, s.ids)

	return out
}

// GroupID returns the ID of canonical group g.
func (s *Structure) GroupID(g int) ID { return s.ids[g] }

// Index returns the canonical index of id.
func (s *Structure) Index(id ID) (int, bool) {
	g, ok := s.index[id]

	return g, ok
}

// Members returns the expanded indices of group g (shared slice, do not mutate).
func (s *Structure) Members(g int) []int { return s.members[g] }

// GroupOf returns the group owning expanded index e.
func (s *Structure) GroupOf(e int) int { return s.groupOf[e] }

// Covariate returns the original covariate of expanded index e (the back-map).
func (s *Structure) Covariate(e int) int { return s.backMap[e] }

// BackMap returns a copy of the expanded → covariate mapping.
func (s *Structure) BackMap() []int {
	out := make([]int, len(s.backMap))
	copy(out, s.backMap)

	return out
}

// Duplicates returns the expanded indices of covariate j (shared slice).
func (s *Structure) Duplicates(j int) []int { return s.byCovariate[j] }

// ValidateBackMap verifies the partition invariant: each expanded index maps
// to exactly one in-range covariate, and every covariate owns at least one
// expanded index, consistent with the per-covariate lists.
// Complexity: O(Σ|g|).
func (s *Structure) ValidateBackMap() error {
	seen := make([]int, len(s.backMap))
	for j, dups := range s.byCovariate {
		if len(dups) == 0 {
			return fmt.Errorf("%w: covariate %d has no expanded index", ErrBrokenBackMap, j)
		}
		for _, e := range dups {
			if e < 0 || e >= len(s.backMap) || s.backMap[e] != j {
				return fmt.Errorf("%w: expanded %d not mapped to covariate %d", ErrBrokenBackMap, e, j)
			}
			seen[e]++
		}
	}
	for e, c := range seen {
		if c != 1 {
			return fmt.Errorf("%w: expanded %d claimed %d times", ErrBrokenBackMap, e, c)
		}
	}

	return nil
}

// Expand returns the expanded design: column e is column BackMap[e] of X.
// Without overlap it returns a plain copy of X.
// Complexity: O(n·Size).
func (s *Structure) Expand(X mat.Matrix) (*mat.Dense, error) {
	n, p := X.Dims()
	if p != s.p {
		return nil, errs.Configurationf("groups.Expand", ErrDimensionMismatch, "X has %d columns, structure has %d covariates", p, s.p)
	}
	if !s.overlapping {
		return mat.DenseCopyOf(X), nil
	}
	out := mat.NewDense(n, len(s.backMap), nil)
	col := make([]float64, n)
	for e, j := range s.backMap {
		mat.Col(col, j, X)
		out.SetCol(e, col)
	}

	return out, nil
}

// PerGroup resolves an optional per-group map into a canonical-order slice,
// filling absent groups with def. Unknown IDs yield ErrUnknownGroup.
func (s *Structure) PerGroup(m map[ID]float64, def float64) ([]float64, error) {
	out := make([]float64, len(s.ids))
	for g := range out {
		out[g] = def
	}
	for id, v := range m {
		g, ok := s.index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, id)
		}
		out[g] = v
	}

	return out, nil
}
