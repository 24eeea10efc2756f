// SPDX-License-Identifier: MIT
// Package groups: sentinel error set.
// Resolver functions wrap these in errs.ConfigurationError; tests match
// both the class and the sentinel via errors.Is.

package groups

import "errors"

var (
	// ErrUncoveredCovariate is returned when a covariate index in [0, p)
	// belongs to no group.
	ErrUncoveredCovariate = errors.New("groups: uncovered covariate")

	// ErrCyclicHierarchy indicates that the dependency relation has a cycle.
	ErrCyclicHierarchy = errors.New("groups: cyclic hierarchy")

	// ErrUnknownGroup indicates that a hierarchy or weight map references a
	// group ID that is absent from the resolved structure.
	ErrUnknownGroup = errors.New("groups: unknown group id")

	// ErrDimensionMismatch indicates that p and the assignment length differ,
	// or that a vector does not match the structure size.
	ErrDimensionMismatch = errors.New("groups: dimension mismatch")

	// ErrDuplicateMembership indicates a covariate listing the same group twice.
	ErrDuplicateMembership = errors.New("groups: duplicate membership")

	// ErrEmptyID indicates an empty group identifier.
	ErrEmptyID = errors.New("groups: empty group id")

	// ErrBrokenBackMap signals that the expanded → covariate mapping is not a partition.
	ErrBrokenBackMap = errors.New("groups: back-map is not a partition")

	// ErrUnknownPolicy indicates an aggregation policy outside the closed set.
	ErrUnknownPolicy = errors.New("groups: unknown aggregation policy")
)
