// SPDX-License-Identifier: MIT
// Package expr: sentinel error set.
// The engine wraps these in errs.ConfigurationError when a descriptor
// cannot be assembled from user input.

package expr

import "errors"

var (
	// ErrVarIndex indicates a term or constraint referencing a variable
	// outside [0, NumVars).
	ErrVarIndex = errors.New("expr: variable index out of range")

	// ErrShape indicates inconsistent slice lengths inside a term
	// (e.g. len(Weights) != len(Vars), A columns != len(Vars)).
	ErrShape = errors.New("expr: inconsistent term shape")

	// ErrNonConvex indicates a negative or non-finite penalty coefficient,
	// which would make the objective non-convex or undefined.
	ErrNonConvex = errors.New("expr: non-convex or non-finite coefficient")

	// ErrBounds indicates lower > upper or a NaN bound.
	ErrBounds = errors.New("expr: invalid variable bounds")

	// ErrNotBinary indicates a constraint that requires a binary variable
	// received a continuous one.
	ErrNotBinary = errors.New("expr: variable is not binary")
)
