// SPDX-License-Identifier: MIT
// Package: sparselm/engine
//
// errors.go: sentinel errors for the engine package.
//
// Error policy:
//   • Every sentinel is wrapped inside errs.ConfigurationError, so callers can
//     match the class (errs.ErrConfiguration) or the precise cause.
//   • Oracle failures surface as *errs.SolveError, never as these sentinels.
//   • Illegal fit-state transitions panic; they are programmer errors.

package engine

import "errors"

// ErrUnknownFamily indicates a Family outside the closed set.
var ErrUnknownFamily = errors.New("engine: unknown model family")

// ErrParam indicates a hyperparameter outside its domain (λ < 0, α ∉ [0,1], …).
var ErrParam = errors.New("engine: invalid hyperparameter")

// ErrAdaptiveFamily indicates Adaptive was requested for a family without
// reweightable convex penalties.
var ErrAdaptiveFamily = errors.New("engine: family does not support adaptive weights")

// ErrHierarchyFamily indicates a hierarchy was supplied to a convex family;
// hierarchy constraints act on indicators, which only MIQP families carry.
var ErrHierarchyFamily = errors.New("engine: family does not support hierarchy constraints")

// ErrInput indicates a malformed design matrix or response vector.
var ErrInput = errors.New("engine: invalid input data")

// ErrOracleReply indicates a usable oracle status whose solution vector does
// not match the descriptor's variable count.
var ErrOracleReply = errors.New("engine: oracle solution has wrong length")
