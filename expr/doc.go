// Package expr defines the problem descriptor that the engine assembles and
// the solver oracles consume: a table of decision variables, an additive
// objective made of convex Terms, and a list of Constraints.
//
// The term and constraint sets are closed so that each oracle can decide,
// by inspection alone, whether it supports a descriptor:
//
//	Terms:        LeastSquares, L1, GroupL2, Ridge, Linear
//	Constraints:  Indicator (Big-M), Cardinality, Implication
//
// AddTerm drops terms that are identically zero. Two descriptors built from
// penalties that differ only by zero-weighted pieces are therefore identical,
// which makes boundary reductions (e.g. sparse group lasso at α=1 versus
// lasso) exact rather than approximate.
//
// Errors:
//
//   - ErrVarIndex   index outside the variable table
//   - ErrShape      inconsistent slice lengths
//   - ErrNonConvex  negative or non-finite penalty coefficient
//   - ErrBounds     invalid bounds
//   - ErrNotBinary  binary-only constraint over a continuous variable
package expr
