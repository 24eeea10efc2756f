package constraint_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sparselm/constraint"
	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
)

func setup(t *testing.T) (*expr.Problem, *groups.Structure, []int, []int) {
	t.Helper()
	s, err := groups.Resolve(3, groups.Assignment{{"a"}, {"b"}, {"b"}})
	require.NoError(t, err)
	p := expr.NewProblem()
	beta := p.AddContinuousBlock("beta", s.Size())
	inds := constraint.Indicators(p, s)

	return p, s, beta, inds
}

func TestIndicators(t *testing.T) {
	p, _, _, inds := setup(t)
	assert.Equal(t, []int{3, 4}, inds)
	assert.Equal(t, "z[a]", p.Var(inds[0]).Name)
	assert.Equal(t, expr.Binary, p.Var(inds[1]).Kind)
}

func TestBigM(t *testing.T) {
	p, s, beta, inds := setup(t)
	require.NoError(t, constraint.BigM(p, s, beta, inds, 2))
	assert.Len(t, p.Constraints(), 3)

	// group b off forces β1 = β2 = 0.
	assert.True(t, p.Feasible([]float64{1.5, 0, 0, 1, 0}, 1e-12))
	assert.False(t, p.Feasible([]float64{1.5, 0.1, 0, 1, 0}, 1e-12))
	assert.False(t, p.Feasible([]float64{2.5, 0, 0, 1, 0}, 1e-12))

	for _, m := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := constraint.BigM(p, s, beta, inds, m)
		assert.ErrorIs(t, err, errs.ErrConfiguration)
		assert.ErrorIs(t, err, constraint.ErrBigM)
	}
	assert.ErrorIs(t, constraint.BigM(p, s, beta[:2], inds, 1), constraint.ErrShape)
}

func TestCardinality(t *testing.T) {
	p, _, _, inds := setup(t)
	require.NoError(t, constraint.Cardinality(p, inds, 1))
	assert.False(t, p.Feasible([]float64{0, 0, 0, 1, 1}, 1e-12))

	// k ≥ #groups is vacuous but valid.
	require.NoError(t, constraint.Cardinality(p, inds, 5))

	err := constraint.Cardinality(p, inds, 0)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.ErrorIs(t, err, constraint.ErrCardinality)
}

func TestHierarchy(t *testing.T) {
	p, s, _, inds := setup(t)
	hi, err := s.ResolveHierarchy(groups.Hierarchy{"b": {"a"}})
	require.NoError(t, err)
	require.NoError(t, constraint.Hierarchy(p, hi, inds))

	assert.True(t, p.Feasible([]float64{0, 0, 0, 1, 1}, 1e-12))
	assert.False(t, p.Feasible([]float64{0, 0, 0, 0, 1}, 1e-12))
}
