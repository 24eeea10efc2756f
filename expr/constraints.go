// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"math"
)

// Constraint is one restriction on the feasible set.
// The set of implementations is closed: oracles type-switch over it.
type Constraint interface {
	// Violation returns max(0, amount by which x breaks the constraint).
	Violation(x []float64) float64
	// Vars returns the variable indices the constraint reads.
	Vars() []int

	validate(p *Problem) error
}

// Indicator is the Big-M link −M·z ≤ x[Var] ≤ M·z with z = x[Indicator] binary.
type Indicator struct {
	Var       int
	Indicator int
	M         float64
}

// Vars implements Constraint.
func (c Indicator) Vars() []int { return []int{c.Var, c.Indicator} }

// Violation implements Constraint.
func (c Indicator) Violation(x []float64) float64 {
	return math.Max(0, math.Abs(x[c.Var])-c.M*x[c.Indicator])
}

func (c Indicator) validate(p *Problem) error {
	if p.vars[c.Indicator].Kind != Binary {
		return fmt.Errorf("%w: indicator %s", ErrNotBinary, p.vars[c.Indicator].Name)
	}
	if !(c.M > 0) || math.IsInf(c.M, 1) {
		return fmt.Errorf("%w: big-M %v", ErrNonConvex, c.M)
	}

	return nil
}

// Cardinality is Σ x[Indicators] ≤ K over binaries.
type Cardinality struct {
	Indicators []int
	K          int
}

// Vars implements Constraint.
func (c Cardinality) Vars() []int { return c.Indicators }

// Violation implements Constraint.
func (c Cardinality) Violation(x []float64) float64 {
	var s float64
	for _, i := range c.Indicators {
		s += x[i]
	}

	return math.Max(0, s-float64(c.K))
}

func (c Cardinality) validate(p *Problem) error {
	if c.K < 0 {
		return fmt.Errorf("%w: cardinality bound %d", ErrShape, c.K)
	}

	return requireBinary(p, c.Indicators)
}

// Implication is x[Dependent] ≤ x[Prerequisite] over binaries: the dependent
// indicator may be 1 only when its prerequisite is 1.
type Implication struct {
	Dependent    int
	Prerequisite int
}

// Vars implements Constraint.
func (c Implication) Vars() []int { return []int{c.Dependent, c.Prerequisite} }

// Violation implements Constraint.
func (c Implication) Violation(x []float64) float64 {
	return math.Max(0, x[c.Dependent]-x[c.Prerequisite])
}

func (c Implication) validate(p *Problem) error {
	return requireBinary(p, c.Vars())
}

func requireBinary(p *Problem, idx []int) error {
	for _, i := range idx {
		if p.vars[i].Kind != Binary {
			return fmt.Errorf("%w: %s", ErrNotBinary, p.vars[i].Name)
		}
	}

	return nil
}
