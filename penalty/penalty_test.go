package penalty_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/penalty"
)

func structure(t *testing.T, labels ...int) *groups.Structure {
	t.Helper()
	s, err := groups.Resolve(len(labels), groups.FromLabels(labels))
	require.NoError(t, err)

	return s
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

func TestL1(t *testing.T) {
	term, err := penalty.L1(seq(3), nil, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*6, term.Eval([]float64{1, -2, 3}), 1e-12)

	_, err = penalty.L1(seq(3), nil, -1)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.ErrorIs(t, err, penalty.ErrLambda)

	_, err = penalty.L1(seq(3), []float64{1, math.NaN(), 1}, 1)
	assert.ErrorIs(t, err, penalty.ErrWeights)

	_, err = penalty.L1(seq(3), []float64{1}, 1)
	assert.ErrorIs(t, err, penalty.ErrShape)
}

// TestGroupL2_SqrtSize checks the √|g| scaling of group weights.
func TestGroupL2_SqrtSize(t *testing.T) {
	s := structure(t, 0, 0, 0, 0, 1)
	term, err := penalty.GroupL2(s, seq(5), []float64{1, 3}, 2)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4}}, term.Groups)
	assert.InDeltaSlice(t, []float64{2, 3}, term.Weights, 1e-12)
	// 2·(2·||(1,1,1,1)|| + 3·|−1|) = 2·(4 + 3)
	assert.InDelta(t, 14, term.Eval([]float64{1, 1, 1, 1, -1}), 1e-12)

	_, err = penalty.GroupL2(s, seq(4), nil, 1)
	assert.ErrorIs(t, err, penalty.ErrShape)
}

// TestSparseGroup_Boundaries: α=1 and α=0 reduce to L1 and GroupL2 exactly.
func TestSparseGroup_Boundaries(t *testing.T) {
	s := structure(t, 0, 0, 1)
	vars := seq(3)

	lasso, err := penalty.L1(vars, nil, 0.7)
	require.NoError(t, err)
	at1, err := penalty.SparseGroup(s, vars, nil, nil, 0.7, 1)
	require.NoError(t, err)
	require.Len(t, at1, 1)
	assert.Equal(t, expr.Term(lasso), at1[0])

	gl, err := penalty.GroupL2(s, vars, nil, 0.7)
	require.NoError(t, err)
	at0, err := penalty.SparseGroup(s, vars, nil, nil, 0.7, 0)
	require.NoError(t, err)
	require.Len(t, at0, 1)
	assert.Equal(t, expr.Term(gl), at0[0])

	mid, err := penalty.SparseGroup(s, vars, nil, nil, 1, 0.25)
	require.NoError(t, err)
	require.Len(t, mid, 2)
	x := []float64{3, 4, -1}
	var total float64
	for _, tm := range mid {
		total += tm.Eval(x)
	}
	want := 0.75*(math.Sqrt2*5+1) + 0.25*8
	assert.InDelta(t, want, total, 1e-12)

	_, err = penalty.SparseGroup(s, vars, nil, nil, 1, 1.5)
	assert.ErrorIs(t, err, penalty.ErrAlpha)
}

func TestRidgeAndGroupRidge(t *testing.T) {
	r, err := penalty.Ridge(seq(2), nil, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*(1+4), r.Eval([]float64{1, 2}), 1e-12)

	s := structure(t, 0, 1, 1)
	gr, err := penalty.GroupRidge(s, seq(3), []float64{2, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 2*1+0.5*(4+9), gr.Eval([]float64{1, 2, 3}), 1e-12)

	_, err = penalty.GroupRidge(s, seq(3), []float64{1})
	assert.ErrorIs(t, err, penalty.ErrShape)
	_, err = penalty.GroupRidge(s, seq(3), []float64{1, -1})
	assert.ErrorIs(t, err, penalty.ErrWeights)
}

func TestIndicatorCost(t *testing.T) {
	c, err := penalty.IndicatorCost([]int{3, 4}, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, c.Eval([]float64{0, 0, 0, 1, 0}), 1e-12)

	_, err = penalty.IndicatorCost([]int{0}, math.Inf(1))
	assert.ErrorIs(t, err, penalty.ErrLambda)
}

func TestAdaptiveWeights(t *testing.T) {
	w, err := penalty.AdaptiveL1Weights([]float64{2, -0.5, 0}, 1e-3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 2, 1000}, w, 1e-9)

	s := structure(t, 0, 0, 1)
	gw, err := penalty.AdaptiveGroupWeights(s, []float64{3, 4, 0}, []float64{1, 2}, 1e-2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.2, 200}, gw, 1e-9)

	_, err = penalty.AdaptiveL1Weights(nil, 0)
	assert.ErrorIs(t, err, penalty.ErrEpsilon)
	_, err = penalty.AdaptiveGroupWeights(s, []float64{1}, nil, 1)
	assert.ErrorIs(t, err, penalty.ErrShape)
}
