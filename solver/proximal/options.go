// SPDX-License-Identifier: MIT

package proximal

import "math"

// Defaults (single source of truth).
const (
	// DefaultMaxIter caps FISTA iterations; hitting it yields StatusInaccurate.
	DefaultMaxIter = 50000

	// DefaultTol is the relative stopping threshold on max|x_{k+1} − x_k|.
	DefaultTol = 1e-10

	// DefaultRestart enables gradient-based adaptive restart of the momentum.
	DefaultRestart = true

	// ctxCheckEvery is the iteration stride between context checks.
	ctxCheckEvery = 256
)

const (
	panicMaxIterInvalid = "proximal: WithMaxIter: n must be > 0"
	panicTolInvalid     = "proximal: WithTol: tol must be finite and > 0"
)

// Option mutates Options. Constructors panic on nonsensical values
// (programmer error).
type Option func(*Options)

// Options holds the effective configuration of a Solver.
type Options struct {
	maxIter int
	tol     float64
	restart bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{maxIter: DefaultMaxIter, tol: DefaultTol, restart: DefaultRestart}
}

// WithMaxIter sets the iteration cap.
func WithMaxIter(n int) Option {
	if n <= 0 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.maxIter = n }
}

// WithTol sets the relative stopping threshold.
func WithTol(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 1) {
		panic(panicTolInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithRestart toggles adaptive momentum restart.
func WithRestart(on bool) Option {
	return func(o *Options) { o.restart = on }
}
