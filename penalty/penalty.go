// SPDX-License-Identifier: MIT

// Package penalty builds the regularization terms of the objective.
//
// Every builder returns expr terms (scalar convex expressions) and never
// solves anything. Variable indices are supplied by the caller: vars[e] is the
// descriptor variable holding expanded coefficient e of a groups.Structure.
//
// Formulas:
//
//	L1:           λ Σ_i w_i |β_i|
//	GroupL2:      λ Σ_g w_g √|g| ||β_g||₂
//	SparseGroup:  λ [ (1−α) Σ_g w_g √|g| ||β_g||₂ + α Σ_i v_i |β_i| ]
//	Ridge:        λ Σ_i w_i β_i²
//	GroupRidge:   Σ_g δ_g Σ_{i∈g} β_i²
//	IndicatorCost λ Σ_g z_g
//
// Invalid input (negative λ or weights, α outside [0,1], NaN) is reported as
// errs.ConfigurationError wrapping one of this package's sentinels.
package penalty

import (
	"math"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
)

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

func checkLambda(op string, lambda float64) error {
	if !finiteNonNeg(lambda) {
		return errs.Configurationf(op, ErrLambda, "got %v", lambda)
	}

	return nil
}

// weightsOrOnes validates w (length n) or returns n ones when w is nil.
func weightsOrOnes(op string, w []float64, n int) ([]float64, error) {
	if w == nil {
		out := make([]float64, n)
		for i := range out {
			out[i] = 1
		}

		return out, nil
	}
	if len(w) != n {
		return nil, errs.Configurationf(op, ErrShape, "weights=%d want %d", len(w), n)
	}
	for i, v := range w {
		if !finiteNonNeg(v) {
			return nil, errs.Configurationf(op, ErrWeights, "weight[%d]=%v", i, v)
		}
	}

	return w, nil
}

func checkVars(op string, s *groups.Structure, vars []int) error {
	if len(vars) != s.Size() {
		return errs.Configurationf(op, ErrShape, "vars=%d, expanded size=%d", len(vars), s.Size())
	}

	return nil
}

// L1 returns λ Σ w_i |β_i| over vars. Nil weights mean all ones.
func L1(vars []int, weights []float64, lambda float64) (expr.L1, error) {
	const op = "penalty.L1"
	if err := checkLambda(op, lambda); err != nil {
		return expr.L1{}, err
	}
	w, err := weightsOrOnes(op, weights, len(vars))
	if err != nil {
		return expr.L1{}, err
	}

	return expr.NewL1(vars, w, lambda), nil
}

// GroupL2 returns λ Σ_g w_g √|g| ||β_g||₂ over the groups of s.
// Nil weights mean w_g = 1. The √|g| factor is applied here.
func GroupL2(s *groups.Structure, vars []int, weights []float64, lambda float64) (expr.GroupL2, error) {
	const op = "penalty.GroupL2"
	if err := checkLambda(op, lambda); err != nil {
		return expr.GroupL2{}, err
	}
	if err := checkVars(op, s, vars); err != nil {
		return expr.GroupL2{}, err
	}
	w, err := weightsOrOnes(op, weights, s.NumGroups())
	if err != nil {
		return expr.GroupL2{}, err
	}

	G := s.NumGroups()
	t := expr.GroupL2{
		Groups:  make([][]int, G),
		Weights: make([]float64, G),
		Lambda:  lambda,
	}
	for g := 0; g < G; g++ {
		mem := s.Members(g)
		idx := make([]int, len(mem))
		for k, e := range mem {
			idx[k] = vars[e]
		}
		t.Groups[g] = idx
		t.Weights[g] = w[g] * math.Sqrt(float64(len(mem)))
	}

	return t, nil
}

// SparseGroup returns the terms of λ[(1−α)·GroupL2 + α·L1].
//
// At α = 0 the L1 term is omitted and at α = 1 the group term is omitted, so
// the result is term-for-term identical to GroupL2 / L1 at the boundaries.
// l1Weights are per expanded coefficient, groupWeights per group (nil = ones).
func SparseGroup(s *groups.Structure, vars []int, l1Weights, groupWeights []float64, lambda, alpha float64) ([]expr.Term, error) {
	const op = "penalty.SparseGroup"
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return nil, errs.Configurationf(op, ErrAlpha, "got %v", alpha)
	}
	if err := checkLambda(op, lambda); err != nil {
		return nil, err
	}

	var terms []expr.Term
	if alpha < 1 {
		gt, err := GroupL2(s, vars, groupWeights, (1-alpha)*lambda)
		if err != nil {
			return nil, err
		}
		terms = append(terms, gt)
	}
	if alpha > 0 {
		if err := checkVars(op, s, vars); err != nil {
			return nil, err
		}
		lt, err := L1(vars, l1Weights, alpha*lambda)
		if err != nil {
			return nil, err
		}
		terms = append(terms, lt)
	}

	return terms, nil
}

// Ridge returns λ Σ w_i β_i². Nil weights mean all ones.
func Ridge(vars []int, weights []float64, lambda float64) (expr.Ridge, error) {
	const op = "penalty.Ridge"
	if err := checkLambda(op, lambda); err != nil {
		return expr.Ridge{}, err
	}
	w, err := weightsOrOnes(op, weights, len(vars))
	if err != nil {
		return expr.Ridge{}, err
	}

	return expr.NewRidge(vars, w, lambda), nil
}

// GroupRidge returns Σ_g δ_g Σ_{i∈g} β_i², a per-group ridge.
func GroupRidge(s *groups.Structure, vars []int, deltas []float64) (expr.Ridge, error) {
	const op = "penalty.GroupRidge"
	if err := checkVars(op, s, vars); err != nil {
		return expr.Ridge{}, err
	}
	if len(deltas) != s.NumGroups() {
		return expr.Ridge{}, errs.Configurationf(op, ErrShape, "deltas=%d want %d", len(deltas), s.NumGroups())
	}
	w := make([]float64, s.Size())
	for e := range w {
		d := deltas[s.GroupOf(e)]
		if !finiteNonNeg(d) {
			return expr.Ridge{}, errs.Configurationf(op, ErrWeights, "delta[%d]=%v", s.GroupOf(e), d)
		}
		w[e] = d
	}
	idx := make([]int, len(vars))
	copy(idx, vars)

	return expr.NewRidge(idx, w, 1), nil
}

// IndicatorCost returns λ Σ z_g, the ℓ0 price of activating a group.
func IndicatorCost(indicators []int, lambda float64) (expr.Linear, error) {
	if err := checkLambda("penalty.IndicatorCost", lambda); err != nil {
		return expr.Linear{}, err
	}
	c := make([]float64, len(indicators))
	for i := range c {
		c[i] = lambda
	}

	return expr.NewLinear(indicators, c), nil
}
