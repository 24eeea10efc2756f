package direct_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/solver"
	"github.com/katalvlaran/sparselm/solver/direct"
)

func lsProblem(t *testing.T, A *mat.Dense, b []float64) (*expr.Problem, []int) {
	t.Helper()
	_, m := A.Dims()
	p := expr.NewProblem()
	v := p.AddContinuousBlock("beta", m)
	require.NoError(t, p.AddTerm(expr.NewLeastSquares(v, A, b, 0.5)))

	return p, v
}

func TestOLSMatchesQR(t *testing.T) {
	A := mat.NewDense(5, 2, []float64{
		1, 0.5,
		2, -1,
		0, 1,
		-1, 3,
		0.5, 0.5,
	})
	b := []float64{1, 0, 2, 4, -1}
	p, _ := lsProblem(t, A, b)

	sol, err := direct.New().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, sol.Status)

	var want mat.VecDense
	require.NoError(t, want.SolveVec(A, mat.NewVecDense(5, b)))
	assert.InDeltaSlice(t, want.RawVector().Data, sol.X, 1e-10)
}

func TestRidgeClosedForm(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	p, v := lsProblem(t, A, []float64{3, -6})
	require.NoError(t, p.AddTerm(expr.NewRidge(v, nil, 1)))

	sol, err := direct.New().Solve(context.Background(), p)
	require.NoError(t, err)
	// ½(x − b)² + x² ⇒ x = b/3
	assert.InDeltaSlice(t, []float64{1, -2}, sol.X, 1e-12)
}

func TestFixedVariablesAreConstants(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{1, 1, 0, 1})
	p, v := lsProblem(t, A, []float64{3, 1})
	require.NoError(t, p.SetBounds(v[1], 1, 1))
	z := p.AddBinary("z")
	require.NoError(t, p.SetBounds(z, 0, 0))

	sol, err := direct.New().Solve(context.Background(), p)
	require.NoError(t, err)
	// row 0: x0 + 1 = 3 ⇒ x0 = 2
	assert.InDeltaSlice(t, []float64{2, 1, 0}, sol.X, 1e-12)
}

// TestSingularFallsBack: more covariates than samples triggers L-BFGS.
func TestSingularFallsBack(t *testing.T) {
	A := mat.NewDense(2, 3, []float64{1, 2, 3, 0, 1, -1})
	p, _ := lsProblem(t, A, []float64{1, 2})

	sol, err := direct.New().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, sol.Status.Usable())
	assert.Greater(t, sol.Iterations, 1)
	assert.InDelta(t, 0, sol.Objective, 1e-8)
}

func TestUnsupported(t *testing.T) {
	ctx := context.Background()
	A := mat.NewDense(1, 1, []float64{1})

	p, v := lsProblem(t, A, []float64{1})
	require.NoError(t, p.AddTerm(expr.NewL1(v, nil, 1)))
	sol, err := direct.New().Solve(ctx, p)
	assert.ErrorIs(t, err, solver.ErrUnsupported)
	assert.Equal(t, solver.StatusUnsupported, sol.Status)

	q, w := lsProblem(t, A, []float64{1})
	require.NoError(t, q.SetBounds(w[0], -1, 1))
	_, err = direct.New().Solve(ctx, q)
	assert.ErrorIs(t, err, solver.ErrUnsupported)

	r, u := lsProblem(t, A, []float64{1})
	z := r.AddBinary("z")
	require.NoError(t, r.AddConstraint(expr.Indicator{Var: u[0], Indicator: z, M: 1}))
	_, err = direct.New().Solve(ctx, r)
	assert.ErrorIs(t, err, solver.ErrUnsupported)
}
