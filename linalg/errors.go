// SPDX-License-Identifier: MIT
// Package linalg: sentinel error set.
// Every message is prefixed with "linalg: ..." for consistency. Validators
// wrap these with a call-site tag; callers match them with errors.Is.

package linalg

import "errors"

var (
	// ErrNilMatrix indicates that a nil design matrix was supplied.
	ErrNilMatrix = errors.New("linalg: nil matrix")

	// ErrEmpty indicates a matrix with zero rows or zero columns.
	ErrEmpty = errors.New("linalg: empty matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("linalg: NaN or Inf encountered")

	// ErrDimensionMismatch indicates incompatible dimensions between operands.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrEigenFailed indicates that the symmetric eigen decomposition failed.
	ErrEigenFailed = errors.New("linalg: eigen decomposition failed")
)
