// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//   - Provide a single, canonical source of truth for input validation of
//     design matrices and response vectors.
//   - Keep the engine and estimators minimal by delegating shape/NaN checks here.
//   - Return plain sentinel errors (wrapped with a validator tag) so call sites
//     can wrap uniformly into errs.ConfigurationError.
//
// Determinism & Performance:
//   - All checks are pure, deterministic and allocate nothing.
//   - Finite-value scans are O(n·p) over the design and O(n) over the response.

package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateDesign checks that X is non-nil, non-empty and finite.
// It returns the shape (n samples, p covariates) on success.
//
// Errors: ErrNilMatrix, ErrEmpty, ErrNaNInf (wrapped with a tag).
// Complexity: O(n·p).
func ValidateDesign(X mat.Matrix) (int, int, error) {
	if X == nil {
		return 0, 0, validatorErrorf("ValidateDesign", ErrNilMatrix)
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return 0, 0, validatorErrorf("ValidateDesign", ErrEmpty)
	}
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < p; j++ {
			if !IsFinite(X.At(i, j)) {
				return 0, 0, validatorErrorf(fmt.Sprintf("ValidateDesign: (%d,%d)", i, j), ErrNaNInf)
			}
		}
	}

	return n, p, nil
}

// ValidateResponse checks len(y) == n and that every entry is finite.
//
// Errors: ErrDimensionMismatch, ErrNaNInf.
// Complexity: O(n).
func ValidateResponse(y []float64, n int) error {
	if len(y) != n {
		return validatorErrorf(fmt.Sprintf("ValidateResponse: len=%d want %d", len(y), n), ErrDimensionMismatch)
	}
	for i, v := range y {
		if !IsFinite(v) {
			return validatorErrorf(fmt.Sprintf("ValidateResponse: [%d]", i), ErrNaNInf)
		}
	}

	return nil
}

// ValidateCols checks that X has exactly p columns.
// Complexity: O(1).
func ValidateCols(X mat.Matrix, p int) error {
	if _, c := X.Dims(); c != p {
		return validatorErrorf(fmt.Sprintf("ValidateCols: got %d want %d", c, p), ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen checks len(v) == n.
func ValidateVecLen(v []float64, n int) error {
	if len(v) != n {
		return validatorErrorf(fmt.Sprintf("ValidateVecLen: got %d want %d", len(v), n), ErrDimensionMismatch)
	}

	return nil
}
