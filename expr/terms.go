// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Term is one additive, convex scalar piece of the objective.
// The set of implementations is closed: oracles type-switch over it.
type Term interface {
	// Eval returns the value of the term at the full variable vector x.
	Eval(x []float64) float64
	// Vars returns the variable indices the term reads.
	Vars() []int
	// Zero reports whether the term is identically zero.
	Zero() bool

	validate() error
}

// SmoothTerm is a differentiable Term.
type SmoothTerm interface {
	Term
	// AddGrad accumulates ∇term(x) into grad (len(grad) == len(x)).
	AddGrad(x, grad []float64)
}

// LeastSquares is Scale·||A·x[Idx] − B||².
// A is n×len(Idx); rows are samples.
type LeastSquares struct {
	Idx   []int
	A     *mat.Dense
	B     []float64
	Scale float64
}

// NewLeastSquares builds a least-squares term over vars.
func NewLeastSquares(vars []int, A *mat.Dense, b []float64, scale float64) LeastSquares {
	return LeastSquares{Idx: vars, A: A, B: b, Scale: scale}
}

// Vars implements Term.
func (t LeastSquares) Vars() []int { return t.Idx }

// Zero implements Term.
func (t LeastSquares) Zero() bool { return t.Scale == 0 }

// Residual returns A·x[Idx] − B.
func (t LeastSquares) Residual(x []float64) []float64 {
	xv := mat.NewVecDense(len(t.Idx), gather(x, t.Idx))
	var r mat.VecDense
	r.MulVec(t.A, xv)
	out := make([]float64, len(t.B))
	floats.SubTo(out, r.RawVector().Data, t.B)

	return out
}

// Eval implements Term.
func (t LeastSquares) Eval(x []float64) float64 {
	r := t.Residual(x)

	return t.Scale * floats.Dot(r, r)
}

// AddGrad implements SmoothTerm: grad[Idx] += 2·Scale·Aᵀr.
func (t LeastSquares) AddGrad(x, grad []float64) {
	r := mat.NewVecDense(len(t.B), t.Residual(x))
	var g mat.VecDense
	g.MulVec(t.A.T(), r)
	for k, i := range t.Idx {
		grad[i] += 2 * t.Scale * g.AtVec(k)
	}
}

func (t LeastSquares) validate() error {
	if t.A == nil {
		return fmt.Errorf("%w: least squares without design", ErrShape)
	}
	n, m := t.A.Dims()
	if m != len(t.Idx) || n != len(t.B) {
		return fmt.Errorf("%w: A is %dx%d, vars=%d, b=%d", ErrShape, n, m, len(t.Idx), len(t.B))
	}
	if !finiteNonNeg(t.Scale) {
		return fmt.Errorf("%w: scale %v", ErrNonConvex, t.Scale)
	}

	return nil
}

// L1 is Lambda·Σ Weights[k]·|x[Idx[k]]|.
type L1 struct {
	Idx     []int
	Weights []float64
	Lambda  float64
}

// NewL1 builds a weighted ℓ1 term. A nil weights slice means all ones.
func NewL1(vars []int, weights []float64, lambda float64) L1 {
	return L1{Idx: vars, Weights: onesIfNil(weights, len(vars)), Lambda: lambda}
}

// Vars implements Term.
func (t L1) Vars() []int { return t.Idx }

// Zero implements Term.
func (t L1) Zero() bool { return t.Lambda == 0 || allZero(t.Weights) }

// Eval implements Term.
func (t L1) Eval(x []float64) float64 {
	var s float64
	for k, i := range t.Idx {
		s += t.Weights[k] * math.Abs(x[i])
	}

	return t.Lambda * s
}

func (t L1) validate() error {
	if len(t.Weights) != len(t.Idx) {
		return fmt.Errorf("%w: l1 weights=%d vars=%d", ErrShape, len(t.Weights), len(t.Idx))
	}

	return checkPenalty("l1", t.Lambda, t.Weights)
}

// GroupL2 is Lambda·Σ_g Weights[g]·||x[Groups[g]]||₂.
// Any size scaling (e.g. sqrt|g|) is folded into Weights by the caller.
type GroupL2 struct {
	Groups  [][]int
	Weights []float64
	Lambda  float64
}

// Vars implements Term (concatenation of all groups).
func (t GroupL2) Vars() []int {
	var out []int
	for _, g := range t.Groups {
		out = append(out, g...)
	}

	return out
}

// Zero implements Term.
func (t GroupL2) Zero() bool { return t.Lambda == 0 || allZero(t.Weights) }

// Eval implements Term.
func (t GroupL2) Eval(x []float64) float64 {
	var s float64
	for g, vars := range t.Groups {
		s += t.Weights[g] * floats.Norm(gather(x, vars), 2)
	}

	return t.Lambda * s
}

func (t GroupL2) validate() error {
	if len(t.Weights) != len(t.Groups) {
		return fmt.Errorf("%w: group weights=%d groups=%d", ErrShape, len(t.Weights), len(t.Groups))
	}
	for g, vars := range t.Groups {
		if len(vars) == 0 {
			return fmt.Errorf("%w: empty group %d", ErrShape, g)
		}
	}

	return checkPenalty("group_l2", t.Lambda, t.Weights)
}

// Ridge is Lambda·Σ Weights[k]·x[Idx[k]]².
type Ridge struct {
	Idx     []int
	Weights []float64
	Lambda  float64
}

// NewRidge builds a weighted squared-ℓ2 term. A nil weights slice means all ones.
func NewRidge(vars []int, weights []float64, lambda float64) Ridge {
	return Ridge{Idx: vars, Weights: onesIfNil(weights, len(vars)), Lambda: lambda}
}

// Vars implements Term.
func (t Ridge) Vars() []int { return t.Idx }

// Zero implements Term.
func (t Ridge) Zero() bool { return t.Lambda == 0 || allZero(t.Weights) }

// Eval implements Term.
func (t Ridge) Eval(x []float64) float64 {
	var s float64
	for k, i := range t.Idx {
		s += t.Weights[k] * x[i] * x[i]
	}

	return t.Lambda * s
}

// AddGrad implements SmoothTerm.
func (t Ridge) AddGrad(x, grad []float64) {
	for k, i := range t.Idx {
		grad[i] += 2 * t.Lambda * t.Weights[k] * x[i]
	}
}

func (t Ridge) validate() error {
	if len(t.Weights) != len(t.Idx) {
		return fmt.Errorf("%w: ridge weights=%d vars=%d", ErrShape, len(t.Weights), len(t.Idx))
	}

	return checkPenalty("ridge", t.Lambda, t.Weights)
}

// Linear is Σ Coeffs[k]·x[Idx[k]]. Used for indicator costs λ·Σz.
type Linear struct {
	Idx    []int
	Coeffs []float64
}

// NewLinear builds a linear term.
func NewLinear(vars []int, coeffs []float64) Linear {
	return Linear{Idx: vars, Coeffs: coeffs}
}

// Vars implements Term.
func (t Linear) Vars() []int { return t.Idx }

// Zero implements Term.
func (t Linear) Zero() bool { return allZero(t.Coeffs) }

// Eval implements Term.
func (t Linear) Eval(x []float64) float64 {
	var s float64
	for k, i := range t.Idx {
		s += t.Coeffs[k] * x[i]
	}

	return s
}

// AddGrad implements SmoothTerm.
func (t Linear) AddGrad(_ []float64, grad []float64) {
	for k, i := range t.Idx {
		grad[i] += t.Coeffs[k]
	}
}

func (t Linear) validate() error {
	if len(t.Coeffs) != len(t.Idx) {
		return fmt.Errorf("%w: linear coeffs=%d vars=%d", ErrShape, len(t.Coeffs), len(t.Idx))
	}
	for _, c := range t.Coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: linear coefficient %v", ErrNonConvex, c)
		}
	}

	return nil
}

func gather(x []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = x[i]
	}

	return out
}

func onesIfNil(w []float64, n int) []float64 {
	if w != nil {
		return w
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}

	return true
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

func checkPenalty(name string, lambda float64, weights []float64) error {
	if !finiteNonNeg(lambda) {
		return fmt.Errorf("%w: %s lambda %v", ErrNonConvex, name, lambda)
	}
	for k, w := range weights {
		if !finiteNonNeg(w) {
			return fmt.Errorf("%w: %s weight[%d]=%v", ErrNonConvex, name, k, w)
		}
	}

	return nil
}
