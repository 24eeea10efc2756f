// SPDX-License-Identifier: MIT

// Package errs defines the error taxonomy shared by every sparselm package.
//
// Three classes exist:
//   - ConfigurationError: invalid or inconsistent input detected before any
//     solve is attempted (uncovered covariate, cyclic hierarchy, bad bounds).
//   - SolveError: the oracle reported infeasibility or a hard numerical failure.
//   - Warning: a non-fatal annotation attached to a successful result
//     (adaptive loop hit its cap, MIQP solution not certified optimal).
//
// Package-level sentinels (e.g. groups.ErrUncoveredCovariate) are wrapped
// inside ConfigurationError, so callers may match either the class or the
// precise cause with errors.Is:
//
//	errors.Is(err, errs.ErrConfiguration)      // true
//	errors.Is(err, groups.ErrUncoveredCovariate) // true
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the class sentinel matched by every *ConfigurationError.
	ErrConfiguration = errors.New("sparselm: configuration error")

	// ErrSolve is the class sentinel matched by every *SolveError.
	ErrSolve = errors.New("sparselm: solve error")
)

// ConfigurationError reports invalid input. It is never retried.
type ConfigurationError struct {
	Op  string // operation tag, e.g. "groups.Resolve"
	Err error  // precise cause (usually a package sentinel)
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}

	return fmt.Sprintf("%s: configuration: %v", e.Op, e.Err)
}

// Unwrap exposes the precise cause.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches the class sentinel ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Configuration wraps err as a *ConfigurationError tagged with op.
// A nil err yields nil so call sites can wrap unconditionally.
func Configuration(op string, err error) error {
	if err == nil {
		return nil
	}

	return &ConfigurationError{Op: op, Err: err}
}

// Configurationf wraps sentinel with formatted context, keeping errors.Is on sentinel.
func Configurationf(op string, sentinel error, format string, args ...any) error {
	return &ConfigurationError{Op: op, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

// SolveError reports an oracle failure together with the backend status.
type SolveError struct {
	Op      string // operation tag
	Backend string // oracle name
	Status  string // backend status rendering
	Err     error  // optional underlying cause
}

// Error implements error.
func (e *SolveError) Error() string {
	msg := fmt.Sprintf("%s: solve failed on %s with status %s", e.Op, e.Backend, e.Status)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes the underlying cause, if any.
func (e *SolveError) Unwrap() error { return e.Err }

// Is matches the class sentinel ErrSolve.
func (e *SolveError) Is(target error) bool { return target == ErrSolve }

// WarningKind enumerates non-fatal result annotations.
type WarningKind int

const (
	// AdaptiveNotConverged: the reweighting loop reached its iteration cap
	// before the coefficient change fell below tolerance.
	AdaptiveNotConverged WarningKind = iota + 1

	// NotCertified: the oracle returned a usable but non-certified-optimal
	// solution (time/node limit, iteration cap of an iterative method).
	NotCertified
)

// String returns a stable name for the kind.
func (k WarningKind) String() string {
	switch k {
	case AdaptiveNotConverged:
		return "adaptive_not_converged"
	case NotCertified:
		return "not_certified"
	default:
		return "unknown"
	}
}

// Warning is a ConvergenceWarning: metadata on a successful result, never a failure.
type Warning struct {
	Kind    WarningKind
	Message string
}

// String renders the warning for logs.
func (w Warning) String() string { return w.Kind.String() + ": " + w.Message }
