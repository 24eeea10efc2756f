// SPDX-License-Identifier: MIT

// Package constraint emits the mixed-integer pieces of a descriptor: one
// binary indicator per group, Big-M links between indicators and
// coefficients, a cardinality budget, and hierarchy implications.
//
// Builders only append variables and expr.Constraint values to a Problem;
// nothing here solves. Invalid parameters are reported as
// errs.ConfigurationError before the descriptor is handed to an oracle.
package constraint

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
)

// Indicators adds one binary z_g per group of s (named "z[<id>]") and returns
// their variable indices in canonical group order.
func Indicators(p *expr.Problem, s *groups.Structure) []int {
	out := make([]int, s.NumGroups())
	for g := range out {
		out[g] = p.AddBinary(fmt.Sprintf("z[%s]", s.GroupID(g)))
	}

	return out
}

// BigM adds −M·z_g ≤ β_i ≤ M·z_g for every expanded coefficient i in g.
// coefVars[e] is the variable of expanded coefficient e; inds[g] the
// indicator of group g.
//
// Errors: ErrBigM (M ≤ 0, NaN or ±Inf), ErrShape.
func BigM(p *expr.Problem, s *groups.Structure, coefVars, inds []int, M float64) error {
	const op = "constraint.BigM"
	if !(M > 0) || math.IsInf(M, 1) {
		return errs.Configurationf(op, ErrBigM, "got %v", M)
	}
	if len(coefVars) != s.Size() || len(inds) != s.NumGroups() {
		return errs.Configurationf(op, ErrShape, "coef=%d inds=%d for size=%d groups=%d",
			len(coefVars), len(inds), s.Size(), s.NumGroups())
	}
	for e, v := range coefVars {
		if err := p.AddConstraint(expr.Indicator{Var: v, Indicator: inds[s.GroupOf(e)], M: M}); err != nil {
			return errs.Configuration(op, err)
		}
	}

	return nil
}

// Cardinality adds Σ z_g ≤ k. A k at or above the number of indicators is
// accepted and is vacuous.
//
// Errors: ErrCardinality (k ≤ 0).
func Cardinality(p *expr.Problem, inds []int, k int) error {
	const op = "constraint.Cardinality"
	if k <= 0 {
		return errs.Configurationf(op, ErrCardinality, "got %d", k)
	}

	return errs.Configuration(op, p.AddConstraint(expr.Cardinality{Indicators: inds, K: k}))
}

// Hierarchy adds z_dep ≤ z_pre for every edge of a resolved hierarchy.
func Hierarchy(p *expr.Problem, hi *groups.HierarchyIndex, inds []int) error {
	const op = "constraint.Hierarchy"
	for _, e := range hi.Edges {
		if e.Dependent >= len(inds) || e.Prerequisite >= len(inds) {
			return errs.Configurationf(op, ErrShape, "edge %v outside %d indicators", e, len(inds))
		}
		c := expr.Implication{Dependent: inds[e.Dependent], Prerequisite: inds[e.Prerequisite]}
		if err := p.AddConstraint(c); err != nil {
			return errs.Configuration(op, err)
		}
	}

	return nil
}
