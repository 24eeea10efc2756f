package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/expr"
)

func TestProblem_Variables(t *testing.T) {
	p := expr.NewProblem()
	beta := p.AddContinuousBlock("beta", 3)
	z := p.AddBinary("z")

	assert.Equal(t, []int{0, 1, 2}, beta)
	assert.Equal(t, 3, z)
	assert.Equal(t, 4, p.NumVars())
	assert.Equal(t, []int{3}, p.Binaries())
	assert.Equal(t, "beta[1]", p.Var(1).Name)
	assert.False(t, p.Var(0).Bounded())
	assert.Equal(t, "binary", p.Var(z).Kind.String())

	require.NoError(t, p.SetBounds(0, -1, 1))
	assert.True(t, p.Var(0).Bounded())
	assert.ErrorIs(t, p.SetBounds(0, 2, 1), expr.ErrBounds)
	assert.ErrorIs(t, p.SetBounds(z, 0, 2), expr.ErrBounds)
	assert.ErrorIs(t, p.SetBounds(9, 0, 1), expr.ErrVarIndex)

	require.NoError(t, p.SetBounds(z, 0, 0))
	assert.True(t, p.Var(z).Fixed())
}

func TestProblem_AddTermDropsZero(t *testing.T) {
	p := expr.NewProblem()
	v := p.AddContinuousBlock("b", 2)

	require.NoError(t, p.AddTerm(expr.NewL1(v, nil, 0)))
	require.NoError(t, p.AddTerm(expr.NewRidge(v, []float64{0, 0}, 3)))
	assert.Empty(t, p.Terms())

	require.NoError(t, p.AddTerm(expr.NewL1(v, nil, 0.5)))
	assert.Len(t, p.Terms(), 1)
}

func TestProblem_AddTermValidation(t *testing.T) {
	p := expr.NewProblem()
	v := p.AddContinuousBlock("b", 2)

	assert.ErrorIs(t, p.AddTerm(expr.NewL1([]int{0, 5}, nil, 1)), expr.ErrVarIndex)
	assert.ErrorIs(t, p.AddTerm(expr.NewL1(v, []float64{1}, 1)), expr.ErrShape)
	assert.ErrorIs(t, p.AddTerm(expr.NewL1(v, nil, -1)), expr.ErrNonConvex)
	assert.ErrorIs(t, p.AddTerm(expr.NewRidge(v, []float64{1, math.NaN()}, 1)), expr.ErrNonConvex)
	assert.ErrorIs(t, p.AddTerm(expr.GroupL2{Groups: [][]int{{}}, Weights: []float64{1}, Lambda: 1}), expr.ErrShape)
	assert.ErrorIs(t, p.AddTerm(expr.NewLeastSquares(v, mat.NewDense(2, 3, nil), []float64{1, 2}, 1)), expr.ErrShape)
	assert.ErrorIs(t, p.AddTerm(expr.NewLinear(v, []float64{1, math.Inf(1)})), expr.ErrNonConvex)
}

// TestObjective evaluates every term type at a known point.
func TestObjective(t *testing.T) {
	p := expr.NewProblem()
	v := p.AddContinuousBlock("b", 2)
	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	x := []float64{3, -4}

	ls := expr.NewLeastSquares(v, A, []float64{1, 1}, 0.5)
	assert.InDelta(t, 0.5*(4+25), ls.Eval(x), 1e-12)
	assert.InDelta(t, 2*(3+4), expr.NewL1(v, nil, 2).Eval(x), 1e-12)
	assert.InDelta(t, 3*5, expr.GroupL2{Groups: [][]int{v}, Weights: []float64{3}, Lambda: 1}.Eval(x), 1e-12)
	assert.InDelta(t, 0.1*(9+2*16), expr.NewRidge(v, []float64{1, 2}, 0.1).Eval(x), 1e-12)
	assert.InDelta(t, 3-8, expr.NewLinear(v, []float64{1, 2}).Eval(x), 1e-12)

	require.NoError(t, p.AddTerm(ls))
	require.NoError(t, p.AddTerm(expr.NewL1(v, nil, 2)))
	assert.InDelta(t, 14.5+14, p.Objective(x), 1e-12)
	assert.False(t, p.Smooth())
}

// TestGradients compares AddGrad against central finite differences.
func TestGradients(t *testing.T) {
	A := mat.NewDense(3, 2, []float64{1, 2, -1, 0.5, 3, 1})
	terms := []expr.SmoothTerm{
		expr.NewLeastSquares([]int{0, 2}, A, []float64{1, -2, 0.5}, 0.25),
		expr.NewRidge([]int{1, 2}, []float64{2, 0.5}, 0.3),
		expr.NewLinear([]int{0, 1}, []float64{-1, 4}),
	}
	x := []float64{0.7, -1.3, 2.1}
	const h = 1e-6
	for _, tm := range terms {
		grad := make([]float64, 3)
		tm.AddGrad(x, grad)
		for i := range x {
			xp := append([]float64(nil), x...)
			xm := append([]float64(nil), x...)
			xp[i] += h
			xm[i] -= h
			fd := (tm.Eval(xp) - tm.Eval(xm)) / (2 * h)
			assert.InDelta(t, fd, grad[i], 1e-5)
		}
	}
}

func TestConstraints(t *testing.T) {
	p := expr.NewProblem()
	b := p.AddContinuousBlock("b", 2)
	z0 := p.AddBinary("z0")
	z1 := p.AddBinary("z1")

	require.NoError(t, p.AddConstraint(expr.Indicator{Var: b[0], Indicator: z0, M: 2}))
	require.NoError(t, p.AddConstraint(expr.Indicator{Var: b[1], Indicator: z1, M: 2}))
	require.NoError(t, p.AddConstraint(expr.Cardinality{Indicators: []int{z0, z1}, K: 1}))
	require.NoError(t, p.AddConstraint(expr.Implication{Dependent: z1, Prerequisite: z0}))

	assert.True(t, p.Feasible([]float64{1.5, 0, 1, 0}, 1e-12))
	// b1 active without z1.
	assert.InDelta(t, 1, p.Violation([]float64{0, 1, 0, 0}), 1e-12)
	// both indicators on breaks cardinality.
	assert.InDelta(t, 1, p.Violation([]float64{0, 0, 1, 1}), 1e-12)
	// z1 without z0 breaks the implication.
	assert.InDelta(t, 1, p.Violation([]float64{0, 0, 0, 1}), 1e-12)
	// fractional binary.
	assert.InDelta(t, 0.5, p.Violation([]float64{0, 0, 0.5, 0}), 1e-12)

	assert.ErrorIs(t, p.AddConstraint(expr.Indicator{Var: b[0], Indicator: b[1], M: 1}), expr.ErrNotBinary)
	assert.ErrorIs(t, p.AddConstraint(expr.Indicator{Var: b[0], Indicator: z0, M: 0}), expr.ErrNonConvex)
	assert.ErrorIs(t, p.AddConstraint(expr.Implication{Dependent: b[0], Prerequisite: z0}), expr.ErrNotBinary)
	assert.ErrorIs(t, p.AddConstraint(expr.Cardinality{Indicators: []int{z0}, K: -1}), expr.ErrShape)
}

func TestClone_PrivateBounds(t *testing.T) {
	p := expr.NewProblem()
	v := p.AddContinuous("b")
	require.NoError(t, p.AddTerm(expr.NewL1([]int{v}, nil, 1)))

	q := p.Clone()
	require.NoError(t, q.SetBounds(v, 0, 0))
	assert.False(t, p.Var(v).Bounded())
	assert.Len(t, q.Terms(), 1)

	r := p.WithoutConstraints(func(expr.Term) bool { return false })
	assert.Empty(t, r.Terms())
	assert.True(t, r.Smooth())
}
