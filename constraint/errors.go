// SPDX-License-Identifier: MIT
// Package constraint: sentinel error set.

package constraint

import "errors"

var (
	// ErrBigM indicates a Big-M bound that is not finite and strictly positive.
	ErrBigM = errors.New("constraint: big-M must be finite and > 0")

	// ErrCardinality indicates a cardinality bound k <= 0.
	ErrCardinality = errors.New("constraint: cardinality bound must be > 0")

	// ErrShape indicates index slices that do not match the structure.
	ErrShape = errors.New("constraint: length mismatch")
)
