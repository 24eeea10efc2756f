// SPDX-License-Identifier: MIT

// Package direct solves smooth, unconstrained quadratic descriptors
// (LeastSquares + Ridge + Linear) in closed form.
//
// The objective is assembled as ½xᵀHx + gᵀx + c over the free variables
// (variables fixed by their bounds are substituted as constants) and the
// normal equations H·x = −g are solved with a Cholesky factorization.
// When H is singular or badly conditioned (e.g. more covariates than
// samples and no ridge), the solver falls back to gonum/optimize L-BFGS
// started at the origin.
//
// Complexity: O(Σ n·m²) to assemble H, O(N³) to factorize.
package direct

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/solver"
)

// Name is the oracle name reported in statuses and logs.
const Name = "direct"

// Defaults.
const (
	// DefaultMaxCond is the largest condition number accepted from Cholesky
	// before switching to L-BFGS.
	DefaultMaxCond = 1e12

	// DefaultGradTol is the L-BFGS gradient-norm threshold.
	DefaultGradTol = 1e-10

	// DefaultMaxIter caps L-BFGS major iterations.
	DefaultMaxIter = 10000
)

// Solver is the closed-form oracle. It is stateless and safe for concurrent use.
type Solver struct {
	maxCond float64
	gradTol float64
	maxIter int
}

// New returns a Solver with default settings.
func New() *Solver {
	return &Solver{maxCond: DefaultMaxCond, gradTol: DefaultGradTol, maxIter: DefaultMaxIter}
}

// Name implements solver.Oracle.
func (s *Solver) Name() string { return Name }

// Solve implements solver.Oracle.
//
// Supported descriptors: no constraints; every term smooth; every variable
// either unbounded continuous or fixed by its bounds.
func (s *Solver) Solve(ctx context.Context, p *expr.Problem) (solver.Solution, error) {
	if len(p.Constraints()) > 0 {
		return solver.Unsupported(Name, "%d constraints", len(p.Constraints()))
	}
	if !p.Smooth() {
		return solver.Unsupported(Name, "non-smooth objective")
	}
	if err := ctx.Err(); err != nil {
		return solver.Solution{}, err
	}

	N := p.NumVars()
	x := make([]float64, N)
	var free []int
	for i := 0; i < N; i++ {
		v := p.Var(i)
		switch {
		case v.Fixed():
			x[i] = v.Lower
		case v.Kind == expr.Continuous && !v.Bounded():
			free = append(free, i)
		default:
			return solver.Unsupported(Name, "bounded variable %s", v.Name)
		}
	}
	if len(free) == 0 {
		obj := p.Objective(x)
		return solver.Solution{X: x, Status: solver.StatusOptimal, Objective: obj, Bound: obj}, nil
	}

	H, g := assemble(p, N)

	// Reduce to the free block: H_ff·x_f = −(g_f + H_fc·x_c).
	nf := len(free)
	Hf := mat.NewSymDense(nf, nil)
	rhs := make([]float64, nf)
	for a, i := range free {
		r := -g[i]
		for j := 0; j < N; j++ {
			if x[j] != 0 {
				r -= H.At(i, j) * x[j]
			}
		}
		rhs[a] = r
		for b := a; b < nf; b++ {
			Hf.SetSym(a, b, H.At(i, free[b]))
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(Hf) && chol.Cond() <= s.maxCond {
		var xf mat.VecDense
		if err := chol.SolveVecTo(&xf, mat.NewVecDense(nf, rhs)); err == nil {
			for a, i := range free {
				x[i] = xf.AtVec(a)
			}
			obj := p.Objective(x)
			if finite(obj) {
				return solver.Solution{X: x, Status: solver.StatusOptimal, Objective: obj, Bound: obj, Iterations: 1}, nil
			}
		}
	}

	return s.lbfgs(ctx, p, x, free)
}

// assemble returns H and g such that the smooth objective is ½xᵀHx + gᵀx + c.
func assemble(p *expr.Problem, N int) (*mat.SymDense, []float64) {
	H := mat.NewSymDense(N, nil)
	g := make([]float64, N)
	for _, t := range p.Terms() {
		switch tt := t.(type) {
		case expr.LeastSquares:
			var ata mat.SymDense
			ata.SymOuterK(1, tt.A.T())
			var atb mat.VecDense
			atb.MulVec(tt.A.T(), mat.NewVecDense(len(tt.B), tt.B))
			for a, i := range tt.Idx {
				g[i] -= 2 * tt.Scale * atb.AtVec(a)
				for b, j := range tt.Idx {
					if i <= j {
						H.SetSym(i, j, H.At(i, j)+2*tt.Scale*ata.At(a, b))
					}
				}
			}
		case expr.Ridge:
			for k, i := range tt.Idx {
				H.SetSym(i, i, H.At(i, i)+2*tt.Lambda*tt.Weights[k])
			}
		case expr.Linear:
			for k, i := range tt.Idx {
				g[i] += tt.Coeffs[k]
			}
		}
	}

	return H, g
}

// lbfgs minimizes over the free coordinates with x's fixed entries held.
func (s *Solver) lbfgs(ctx context.Context, p *expr.Problem, x []float64, free []int) (solver.Solution, error) {
	full := make([]float64, len(x))
	copy(full, x)
	scatter := func(xf []float64) {
		for a, i := range free {
			full[i] = xf[a]
		}
	}
	grad := make([]float64, len(x))

	prob := optimize.Problem{
		Func: func(xf []float64) float64 {
			scatter(xf)
			return p.Objective(full)
		},
		Grad: func(gf, xf []float64) {
			scatter(xf)
			for i := range grad {
				grad[i] = 0
			}
			for _, t := range p.Terms() {
				t.(expr.SmoothTerm).AddGrad(full, grad)
			}
			for a, i := range free {
				gf[a] = grad[i]
			}
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: s.gradTol,
		MajorIterations:   s.maxIter,
	}
	if err := ctx.Err(); err != nil {
		return solver.Solution{}, err
	}
	res, err := optimize.Minimize(prob, make([]float64, len(free)), settings, &optimize.LBFGS{})
	if res == nil {
		return solver.Solution{Status: solver.StatusNumericalFailure}, nil
	}
	scatter(res.X)
	out := make([]float64, len(full))
	copy(out, full)
	obj := p.Objective(out)
	if !finite(obj) {
		return solver.Solution{Status: solver.StatusNumericalFailure, Iterations: res.Stats.MajorIterations}, nil
	}

	st := solver.StatusInaccurate
	if err == nil && res.Status == optimize.GradientThreshold {
		st = solver.StatusOptimal
	}

	return solver.Solution{
		X:          out,
		Status:     st,
		Objective:  obj,
		Bound:      obj,
		Iterations: res.Stats.MajorIterations,
	}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
