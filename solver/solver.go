// SPDX-License-Identifier: MIT

// Package solver defines the narrow contract between the objective engine and
// numerical back-ends: an Oracle receives an expr.Problem and returns a
// Solution carrying the variable vector and a Status.
//
// Back-ends live in sub-packages:
//
//	solver/direct    smooth problems, normal equations (gonum Cholesky, L-BFGS fallback)
//	solver/proximal  accelerated proximal gradient for ℓ1 / group-ℓ2 / box bounds
//	solver/bnb       branch-and-bound over binary indicators
//	solver/dispatch  routes a problem to one of the above by inspection
//
// An Oracle that cannot handle a descriptor returns a Solution with
// StatusUnsupported and an error wrapping ErrUnsupported; it never silently
// drops a term or constraint.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/sparselm/expr"
)

// ErrUnsupported is returned when an oracle cannot represent a descriptor.
var ErrUnsupported = errors.New("solver: unsupported problem")

// Status classifies an oracle outcome.
type Status int

const (
	// StatusUnknown is the zero value; no oracle returns it.
	StatusUnknown Status = iota
	// StatusOptimal: solved to the oracle's tolerance and certified.
	StatusOptimal
	// StatusInaccurate: an iterative method stopped at its cap; usable.
	StatusInaccurate
	// StatusSuboptimal: a feasible incumbent without an optimality proof
	// (node or time limit); usable.
	StatusSuboptimal
	// StatusInfeasible: no feasible point exists.
	StatusInfeasible
	// StatusNumericalFailure: NaN/Inf or breakdown inside the oracle.
	StatusNumericalFailure
	// StatusUnsupported: the oracle cannot represent the descriptor.
	StatusUnsupported
)

var statusNames = [...]string{
	StatusUnknown:          "unknown",
	StatusOptimal:          "optimal",
	StatusInaccurate:       "inaccurate",
	StatusSuboptimal:       "suboptimal",
	StatusInfeasible:       "infeasible",
	StatusNumericalFailure: "numerical_failure",
	StatusUnsupported:      "unsupported",
}

// String returns a stable snake_case name.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}

	return statusNames[s]
}

// Usable reports whether the Solution carries a feasible point.
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusInaccurate || s == StatusSuboptimal
}

// Certified reports whether the point is certified optimal.
func (s Status) Certified() bool { return s == StatusOptimal }

// Solution is an oracle result.
type Solution struct {
	// X is the full variable vector (len == Problem.NumVars()); nil unless usable.
	X []float64
	// Status classifies the outcome.
	Status Status
	// Objective is Problem.Objective(X).
	Objective float64
	// Bound is the best proven lower bound (equal to Objective for convex solves).
	Bound float64
	// Iterations counts first-order iterations (summed over sub-solves).
	Iterations int
	// Nodes counts explored branch-and-bound nodes (0 for convex oracles).
	Nodes int
}

// Gap returns the absolute optimality gap Objective − Bound (≥ 0).
func (s Solution) Gap() float64 {
	if g := s.Objective - s.Bound; g > 0 {
		return g
	}

	return 0
}

// Oracle solves a descriptor. Implementations must honor ctx cancellation
// between iterations and must be safe for concurrent use on distinct problems.
type Oracle interface {
	Name() string
	Solve(ctx context.Context, p *expr.Problem) (Solution, error)
}

// WarmStarter is an Oracle that can start from a given point. x0 may be
// shorter than NumVars or nil, in which case missing entries start at 0.
type WarmStarter interface {
	Oracle
	SolveFrom(ctx context.Context, p *expr.Problem, x0 []float64) (Solution, error)
}

// SolveFrom uses o's warm start when available and falls back to Solve.
func SolveFrom(ctx context.Context, o Oracle, p *expr.Problem, x0 []float64) (Solution, error) {
	if ws, ok := o.(WarmStarter); ok && x0 != nil {
		return ws.SolveFrom(ctx, p, x0)
	}

	return o.Solve(ctx, p)
}

// Unsupported builds the canonical "cannot represent" reply.
func Unsupported(oracle, format string, args ...any) (Solution, error) {
	return Solution{Status: StatusUnsupported},
		fmt.Errorf("%w: %s: %s", ErrUnsupported, oracle, fmt.Sprintf(format, args...))
}

// Shape summarizes what an oracle has to support to solve a descriptor.
type Shape struct {
	Binaries    int  // number of binary variables (fixed or not)
	FreeBinary  bool // at least one binary is not fixed by its bounds
	Constraints int  // number of constraints
	Smooth      bool // every term differentiable
	Bounded     bool // some continuous variable has a finite bound
}

// Analyze inspects p.
func Analyze(p *expr.Problem) Shape {
	sh := Shape{Constraints: len(p.Constraints()), Smooth: p.Smooth()}
	for i := 0; i < p.NumVars(); i++ {
		v := p.Var(i)
		if v.Kind == expr.Binary {
			sh.Binaries++
			if !v.Fixed() {
				sh.FreeBinary = true
			}
			continue
		}
		if v.Bounded() {
			sh.Bounded = true
		}
	}

	return sh
}
