// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"
)

// VarKind distinguishes continuous decision variables from binary indicators.
type VarKind int

const (
	// Continuous variables live in [Lower, Upper] ⊆ ℝ.
	Continuous VarKind = iota
	// Binary variables live in {0, 1}; Lower/Upper may fix them.
	Binary
)

// String returns "continuous" or "binary".
func (k VarKind) String() string {
	if k == Binary {
		return "binary"
	}

	return "continuous"
}

// Variable is one decision variable of a Problem.
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Fixed reports whether the bounds pin the variable to a single value.
func (v Variable) Fixed() bool { return v.Lower == v.Upper }

// Bounded reports whether at least one bound is finite.
func (v Variable) Bounded() bool {
	return !math.IsInf(v.Lower, -1) || !math.IsInf(v.Upper, 1)
}

// Problem is the descriptor handed to an oracle: variables, an additive
// objective built from Terms, and a list of Constraints.
//
// A Problem is owned by a single fit call. Terms and constraints are stored
// by value and treated as immutable once added; Clone copies the variable
// table so bounds may be changed on the copy without touching the original.
type Problem struct {
	vars  []Variable
	terms []Term
	cons  []Constraint
}

// NewProblem returns an empty descriptor.
func NewProblem() *Problem { return &Problem{} }

// AddContinuous appends an unbounded continuous variable and returns its index.
func (p *Problem) AddContinuous(name string) int {
	p.vars = append(p.vars, Variable{Name: name, Kind: Continuous, Lower: math.Inf(-1), Upper: math.Inf(1)})

	return len(p.vars) - 1
}

// AddContinuousBlock appends n unbounded variables named prefix[0..n) and
// returns their indices in order.
func (p *Problem) AddContinuousBlock(prefix string, n int) []int {
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = p.AddContinuous(fmt.Sprintf("%s[%d]", prefix, i))
	}

	return idx
}

// AddBinary appends a {0,1} variable and returns its index.
func (p *Problem) AddBinary(name string) int {
	p.vars = append(p.vars, Variable{Name: name, Kind: Binary, Lower: 0, Upper: 1})

	return len(p.vars) - 1
}

// SetBounds replaces the bounds of variable i.
// Binary variables accept only bounds inside [0, 1].
//
// Errors: ErrVarIndex, ErrBounds.
func (p *Problem) SetBounds(i int, lo, hi float64) error {
	if i < 0 || i >= len(p.vars) {
		return fmt.Errorf("%w: %d", ErrVarIndex, i)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return fmt.Errorf("%w: [%v, %v] for %s", ErrBounds, lo, hi, p.vars[i].Name)
	}
	if p.vars[i].Kind == Binary && (lo < 0 || hi > 1) {
		return fmt.Errorf("%w: binary %s outside [0,1]", ErrBounds, p.vars[i].Name)
	}
	p.vars[i].Lower, p.vars[i].Upper = lo, hi

	return nil
}

// AddTerm validates t and appends it to the objective.
// Terms that are identically zero (Zero() == true) are dropped, so a
// zero-weighted penalty leaves the descriptor exactly as if it were absent.
//
// Errors: ErrVarIndex, ErrShape, ErrNonConvex.
func (p *Problem) AddTerm(t Term) error {
	if err := p.checkVars(t.Vars()); err != nil {
		return err
	}
	if err := t.validate(); err != nil {
		return err
	}
	if t.Zero() {
		return nil
	}
	p.terms = append(p.terms, t)

	return nil
}

// AddConstraint validates c and appends it.
//
// Errors: ErrVarIndex, ErrNotBinary, ErrShape, ErrNonConvex.
func (p *Problem) AddConstraint(c Constraint) error {
	if err := p.checkVars(c.Vars()); err != nil {
		return err
	}
	if err := c.validate(p); err != nil {
		return err
	}
	p.cons = append(p.cons, c)

	return nil
}

func (p *Problem) checkVars(idx []int) error {
	for _, i := range idx {
		if i < 0 || i >= len(p.vars) {
			return fmt.Errorf("%w: %d (have %d)", ErrVarIndex, i, len(p.vars))
		}
	}

	return nil
}

// NumVars returns the number of variables.
func (p *Problem) NumVars() int { return len(p.vars) }

// Var returns variable i.
func (p *Problem) Var(i int) Variable { return p.vars[i] }

// Binaries returns the indices of binary variables in ascending order.
func (p *Problem) Binaries() []int {
	var out []int
	for i, v := range p.vars {
		if v.Kind == Binary {
			out = append(out, i)
		}
	}

	return out
}

// Terms returns the objective terms (shared slice, do not mutate).
func (p *Problem) Terms() []Term { return p.terms }

// Constraints returns the constraints (shared slice, do not mutate).
func (p *Problem) Constraints() []Constraint { return p.cons }

// Objective evaluates Σ terms at x.
func (p *Problem) Objective(x []float64) float64 {
	var f float64
	for _, t := range p.terms {
		f += t.Eval(x)
	}

	return f
}

// Violation returns the largest violation of any bound or constraint at x
// (0 when x is feasible). Binary integrality is included.
func (p *Problem) Violation(x []float64) float64 {
	var worst float64
	for i, v := range p.vars {
		worst = math.Max(worst, v.Lower-x[i])
		worst = math.Max(worst, x[i]-v.Upper)
		if v.Kind == Binary {
			worst = math.Max(worst, math.Min(math.Abs(x[i]), math.Abs(1-x[i])))
		}
	}
	for _, c := range p.cons {
		worst = math.Max(worst, c.Violation(x))
	}

	return worst
}

// Feasible reports Violation(x) ≤ tol.
func (p *Problem) Feasible(x []float64, tol float64) bool { return p.Violation(x) <= tol }

// Clone returns a descriptor sharing terms and constraints but owning a
// private copy of the variable table.
func (p *Problem) Clone() *Problem {
	q := &Problem{
		vars:  make([]Variable, len(p.vars)),
		terms: make([]Term, len(p.terms)),
		cons:  make([]Constraint, len(p.cons)),
	}
	copy(q.vars, p.vars)
	copy(q.terms, p.terms)
	copy(q.cons, p.cons)

	return q
}

// WithoutConstraints returns a Clone whose constraint list is empty and whose
// terms are filtered by keep. Oracles use it to build relaxations.
func (p *Problem) WithoutConstraints(keep func(Term) bool) *Problem {
	q := &Problem{vars: make([]Variable, len(p.vars))}
	copy(q.vars, p.vars)
	for _, t := range p.terms {
		if keep == nil || keep(t) {
			q.terms = append(q.terms, t)
		}
	}

	return q
}

// Smooth reports whether every objective term is differentiable.
func (p *Problem) Smooth() bool {
	for _, t := range p.terms {
		if _, ok := t.(SmoothTerm); !ok {
			return false
		}
	}

	return true
}
