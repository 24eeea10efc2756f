package groups_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
)

// position returns index of v in order or -1 if absent.
func position(order []int, v int) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}

	return -1
}

// TestResolve_UncoveredCovariate: covariate 3 of 5 belongs to no group.
func TestResolve_UncoveredCovariate(t *testing.T) {
	a := groups.Assignment{{"a"}, {"a"}, {"b"}, {}, {"b"}}
	s, err := groups.Resolve(5, a)
	assert.Nil(t, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.ErrorIs(t, err, groups.ErrUncoveredCovariate)
	assert.Contains(t, err.Error(), "covariate 3")
}

func TestResolve_DimensionMismatch(t *testing.T) {
	_, err := groups.Resolve(3, groups.Singletons(2))
	assert.ErrorIs(t, err, groups.ErrDimensionMismatch)

	_, err = groups.Resolve(0, nil)
	assert.ErrorIs(t, err, groups.ErrDimensionMismatch)
}

func TestResolve_BadMembership(t *testing.T) {
	_, err := groups.Resolve(2, groups.Assignment{{"a", "a"}, {"b"}})
	assert.ErrorIs(t, err, groups.ErrDuplicateMembership)

	_, err = groups.Resolve(2, groups.Assignment{{""}, {"b"}})
	assert.ErrorIs(t, err, groups.ErrEmptyID)
}

// TestResolve_Disjoint checks identity expansion and first-seen ordering.
func TestResolve_Disjoint(t *testing.T) {
	s, err := groups.Resolve(4, groups.FromLabels([]int{2, 2, 0, 1}))
	require.NoError(t, err)

	assert.False(t, s.Overlapping())
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, 3, s.NumGroups())
	assert.Equal(t, []groups.ID{"2", "0", "1"}, s.GroupIDs())
	assert.Equal(t, []int{0, 1, 2, 3}, s.BackMap())
	assert.Equal(t, []int{0, 1}, s.Members(0))
	assert.NoError(t, s.ValidateBackMap())
}

// TestResolve_Overlap checks covariate-major expansion and the back-map partition.
func TestResolve_Overlap(t *testing.T) {
	a := groups.Assignment{{"a"}, {"a", "b"}, {"b"}}
	s, err := groups.Resolve(3, a)
	require.NoError(t, err)

	assert.True(t, s.Overlapping())
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, []int{0, 1, 1, 2}, s.BackMap())
	assert.Equal(t, []int{0, 1}, s.Members(0))
	assert.Equal(t, []int{2, 3}, s.Members(1))
	assert.Equal(t, []int{1, 2}, s.Duplicates(1))
	assert.Equal(t, 1, s.GroupOf(2))
	assert.Equal(t, 1, s.Covariate(2))
	assert.NoError(t, s.ValidateBackMap())

	g, ok := s.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 1, g)
	_, ok = s.Index("zzz")
	assert.False(t, ok)
}

func TestExpand(t *testing.T) {
	s, err := groups.Resolve(3, groups.Assignment{{"a"}, {"a", "b"}, {"b"}})
	require.NoError(t, err)

	X := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	E, err := s.Expand(X)
	require.NoError(t, err)
	r, c := E.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, []float64{1, 2, 2, 3}, E.RawRowView(0))
	assert.Equal(t, []float64{4, 5, 5, 6}, E.RawRowView(1))

	_, err = s.Expand(mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, groups.ErrDimensionMismatch)
}

func TestAggregate_Policies(t *testing.T) {
	s, err := groups.Resolve(3, groups.Assignment{{"a"}, {"a", "b"}, {"b"}})
	require.NoError(t, err)
	expanded := []float64{1, 0, -3, 2}

	sum, err := s.Aggregate(expanded, groups.AggregateSum)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -3, 2}, sum)

	first, err := s.Aggregate(expanded, groups.AggregateFirstNonzero)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -3, 2}, first)

	expanded = []float64{1, 0.5, -3, 2}
	first, _ = s.Aggregate(expanded, groups.AggregateFirstNonzero)
	assert.Equal(t, []float64{1, 0.5, 2}, first)

	mx, err := s.Aggregate(expanded, groups.AggregateMaxAbs)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -3, 2}, mx)

	_, err = s.Aggregate([]float64{1}, groups.AggregateSum)
	assert.ErrorIs(t, err, groups.ErrDimensionMismatch)
	_, err = s.Aggregate(expanded, groups.AggregationPolicy(42))
	assert.ErrorIs(t, err, groups.ErrUnknownPolicy)
}

// TestAggregate_SumPreservesPredictions: with sum, X·agg == Expand(X)·expanded.
func TestAggregate_SumPreservesPredictions(t *testing.T) {
	s, err := groups.Resolve(3, groups.Assignment{{"a", "c"}, {"a", "b"}, {"b", "c"}})
	require.NoError(t, err)
	X := mat.NewDense(2, 3, []float64{1, -2, 0.5, 3, 1, -1})
	E, err := s.Expand(X)
	require.NoError(t, err)

	expanded := []float64{0.3, -1, 2, 0.25, -0.5, 4}
	agg, err := s.Aggregate(expanded, groups.AggregateSum)
	require.NoError(t, err)

	var lhs, rhs mat.VecDense
	lhs.MulVec(X, mat.NewVecDense(3, agg))
	rhs.MulVec(E, mat.NewVecDense(6, expanded))
	for i := 0; i < 2; i++ {
		assert.InDelta(t, rhs.AtVec(i), lhs.AtVec(i), 1e-12)
	}
}

func TestParseAggregationPolicy(t *testing.T) {
	for name, want := range map[string]groups.AggregationPolicy{
		"":              groups.AggregateSum,
		"sum":           groups.AggregateSum,
		"FIRST_NONZERO": groups.AggregateFirstNonzero,
		"max":           groups.AggregateMaxAbs,
	} {
		got, err := groups.ParseAggregationPolicy(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := groups.ParseAggregationPolicy("median")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Equal(t, "max_abs", groups.AggregateMaxAbs.String())
}

func TestGroupNorms(t *testing.T) {
	s, err := groups.Resolve(3, groups.FromLabels([]int{0, 0, 1}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, 2}, s.GroupNorms([]float64{3, 4, -2}), 1e-12)
}

func TestPerGroup(t *testing.T) {
	s, err := groups.Resolve(3, groups.FromLabels([]int{0, 0, 1}))
	require.NoError(t, err)
	w, err := s.PerGroup(map[groups.ID]float64{"1": 2.5}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, w)

	_, err = s.PerGroup(map[groups.ID]float64{"7": 1}, 1)
	assert.ErrorIs(t, err, groups.ErrUnknownGroup)
}

// TestHierarchy_Chain: c depends on b, b on a; order must put a before b before c.
func TestHierarchy_Chain(t *testing.T) {
	s, err := groups.Resolve(3, groups.Assignment{{"c"}, {"b"}, {"a"}})
	require.NoError(t, err)

	hi, err := s.ResolveHierarchy(groups.Hierarchy{"c": {"b"}, "b": {"a", "a"}})
	require.NoError(t, err)

	a, _ := s.Index("a")
	b, _ := s.Index("b")
	c, _ := s.Index("c")
	assert.Len(t, hi.Edges, 2)
	assert.Less(t, position(hi.Order, a), position(hi.Order, b))
	assert.Less(t, position(hi.Order, b), position(hi.Order, c))

	pre := hi.Prerequisites(s.NumGroups())
	assert.Equal(t, []int{b}, pre[c])
	dep := hi.Dependents(s.NumGroups())
	assert.Equal(t, []int{b}, dep[a])
}

func TestHierarchy_Cycle(t *testing.T) {
	s, err := groups.Resolve(2, groups.Assignment{{"a"}, {"b"}})
	require.NoError(t, err)

	_, err = s.ResolveHierarchy(groups.Hierarchy{"a": {"b"}, "b": {"a"}})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.ErrorIs(t, err, groups.ErrCyclicHierarchy)

	_, err = s.ResolveHierarchy(groups.Hierarchy{"a": {"a"}})
	assert.ErrorIs(t, err, groups.ErrCyclicHierarchy)
}

func TestHierarchy_UnknownGroup(t *testing.T) {
	s, err := groups.Resolve(2, groups.Assignment{{"a"}, {"b"}})
	require.NoError(t, err)

	_, err = s.ResolveHierarchy(groups.Hierarchy{"b": {"zeta", "alpha"}})
	assert.ErrorIs(t, err, groups.ErrUnknownGroup)
	assert.Contains(t, err.Error(), `"alpha"`)
}

func TestHierarchy_Empty(t *testing.T) {
	s, err := groups.Resolve(2, groups.Singletons(2))
	require.NoError(t, err)
	hi, err := s.ResolveHierarchy(nil)
	require.NoError(t, err)
	assert.Empty(t, hi.Edges)
	assert.ElementsMatch(t, []int{0, 1}, hi.Order)
}
