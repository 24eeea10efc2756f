// SPDX-License-Identifier: MIT
// Package penalty: sentinel error set.
// Builders return these wrapped in errs.ConfigurationError.

package penalty

import "errors"

var (
	// ErrLambda indicates a negative or non-finite regularization strength.
	ErrLambda = errors.New("penalty: lambda must be finite and >= 0")

	// ErrAlpha indicates a mixing parameter outside [0, 1].
	ErrAlpha = errors.New("penalty: alpha must lie in [0, 1]")

	// ErrWeights indicates a negative or non-finite weight.
	ErrWeights = errors.New("penalty: weights must be finite and >= 0")

	// ErrShape indicates weight or variable slices whose length does not
	// match the structure.
	ErrShape = errors.New("penalty: length mismatch")

	// ErrEpsilon indicates a non-positive adaptive-weight floor.
	ErrEpsilon = errors.New("penalty: epsilon must be > 0")
)
