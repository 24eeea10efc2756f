// SPDX-License-Identifier: MIT

// Package dispatch provides the default Oracle: it inspects a descriptor and
// routes it to the cheapest back-end able to represent it.
//
// Routing (first match wins):
//   - any binary variable that is not fixed, or any constraint → bnb
//   - any non-smooth term or any bounded continuous variable    → proximal
//   - otherwise (smooth, unconstrained)                         → direct
//
// New back-ends plug in by implementing solver.Oracle and being passed to
// New; the engine only ever sees the solver.Oracle contract.
package dispatch

import (
	"context"

	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/solver"
	"github.com/katalvlaran/sparselm/solver/bnb"
	"github.com/katalvlaran/sparselm/solver/direct"
	"github.com/katalvlaran/sparselm/solver/proximal"
)

// Name is the oracle name reported by the router itself.
const Name = "auto"

// Router is a solver.Oracle delegating to per-shape back-ends.
type Router struct {
	direct   solver.Oracle
	proximal solver.Oracle
	mixed    solver.Oracle
}

// Option customizes a Router.
type Option func(*Router)

// WithDirect replaces the smooth back-end.
func WithDirect(o solver.Oracle) Option { return func(r *Router) { r.direct = o } }

// WithProximal replaces the non-smooth convex back-end.
func WithProximal(o solver.Oracle) Option { return func(r *Router) { r.proximal = o } }

// WithMixedInteger replaces the mixed-integer back-end.
func WithMixedInteger(o solver.Oracle) Option { return func(r *Router) { r.mixed = o } }

// New returns a Router with default back-ends. The proximal oracle is shared
// with branch-and-bound as its relaxation solver.
func New(opts ...Option) *Router {
	prox := proximal.New()
	r := &Router{
		direct:   direct.New(),
		proximal: prox,
	}
	for _, fn := range opts {
		fn(r)
	}
	if r.mixed == nil {
		r.mixed = bnb.New(bnb.WithRelaxation(r.proximal))
	}

	return r
}

// Name implements solver.Oracle.
func (r *Router) Name() string { return Name }

// Route returns the back-end chosen for p.
func (r *Router) Route(p *expr.Problem) solver.Oracle {
	sh := solver.Analyze(p)
	switch {
	case sh.FreeBinary || sh.Constraints > 0:
		return r.mixed
	case !sh.Smooth || sh.Bounded:
		return r.proximal
	default:
		return r.direct
	}
}

// Solve implements solver.Oracle.
func (r *Router) Solve(ctx context.Context, p *expr.Problem) (solver.Solution, error) {
	return r.Route(p).Solve(ctx, p)
}

// SolveFrom implements solver.WarmStarter by forwarding x0 when the chosen
// back-end supports warm starts.
func (r *Router) SolveFrom(ctx context.Context, p *expr.Problem, x0 []float64) (solver.Solution, error) {
	return solver.SolveFrom(ctx, r.Route(p), p, x0)
}
