// SPDX-License-Identifier: MIT

package bnb

import (
	"math"
	"time"

	"github.com/katalvlaran/sparselm/solver"
)

// Defaults (single source of truth).
const (
	// DefaultMaxNodes caps explored nodes; hitting it yields StatusSuboptimal.
	DefaultMaxNodes = 100000

	// DefaultTimeLimit of 0 disables the wall-clock budget.
	DefaultTimeLimit = time.Duration(0)

	// DefaultEps is the relative pruning tolerance: prune when LB ≥ UB − eps·max(1,|UB|).
	DefaultEps = 1e-9

	// DefaultActiveTol is the magnitude above which a relaxed coefficient
	// marks its group as active.
	DefaultActiveTol = 1e-8
)

const (
	panicMaxNodesInvalid  = "bnb: WithMaxNodes: n must be > 0"
	panicTimeLimitInvalid = "bnb: WithTimeLimit: d must be >= 0"
	panicEpsInvalid       = "bnb: WithEps: eps must be finite and >= 0"
	panicRelaxationNil    = "bnb: WithRelaxation: oracle must be non-nil"
)

// Option mutates Options. Constructors panic on nonsensical values.
type Option func(*Options)

// Options holds the effective configuration of a Solver.
type Options struct {
	maxNodes   int
	timeLimit  time.Duration
	eps        float64
	activeTol  float64
	relaxation solver.Oracle // nil ⇒ proximal.New()
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		maxNodes:  DefaultMaxNodes,
		timeLimit: DefaultTimeLimit,
		eps:       DefaultEps,
		activeTol: DefaultActiveTol,
	}
}

// WithMaxNodes caps the number of explored nodes.
func WithMaxNodes(n int) Option {
	if n <= 0 {
		panic(panicMaxNodesInvalid)
	}

	return func(o *Options) { o.maxNodes = n }
}

// WithTimeLimit sets a wall-clock budget (0 disables it).
func WithTimeLimit(d time.Duration) Option {
	if d < 0 {
		panic(panicTimeLimitInvalid)
	}

	return func(o *Options) { o.timeLimit = d }
}

// WithEps sets the relative pruning tolerance.
func WithEps(eps float64) Option {
	if math.IsNaN(eps) || eps < 0 || math.IsInf(eps, 1) {
		panic(panicEpsInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithRelaxation sets the oracle used for node relaxations. It must accept
// descriptors without constraints whose binaries are all fixed.
func WithRelaxation(o solver.Oracle) Option {
	if o == nil {
		panic(panicRelaxationNil)
	}

	return func(opts *Options) { opts.relaxation = o }
}
