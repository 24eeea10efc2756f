// SPDX-License-Identifier: MIT

package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/sparselm/solver"
)

const (
	panicOracleNil   = "engine: WithOracle: oracle must be non-nil"
	panicLoggerNil   = "engine: WithLogger: logger must be non-nil"
	panicObserverNil = "engine: WithObserver: observer must be non-nil"
)

// FitEvent summarizes one finished fit call for an Observer.
type FitEvent struct {
	FitID         string
	Family        Family
	Backend       string
	State         State // Solved or Failed
	Status        solver.Status
	Duration      time.Duration
	AdaptiveIters int
	Iterations    int
	Nodes         int
	Warnings      int
	Err           error
}

// Observer receives one FitEvent per fit call, after the call has reached a
// terminal state. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveFit(FitEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FitEvent)

// ObserveFit implements Observer.
func (f ObserverFunc) ObserveFit(ev FitEvent) { f(ev) }

type nopObserver struct{}

func (nopObserver) ObserveFit(FitEvent) {}

// Option configures an Engine. Constructors panic on nil arguments.
type Option func(*Engine)

// WithOracle sets the solver oracle (default dispatch.New()).
func WithOracle(o solver.Oracle) Option {
	if o == nil {
		panic(panicOracleNil)
	}

	return func(e *Engine) { e.oracle = o }
}

// WithLogger sets the structured logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic(panicLoggerNil)
	}

	return func(e *Engine) { e.logger = l }
}

// WithObserver registers a fit observer, e.g. a metrics collector.
func WithObserver(obs Observer) Option {
	if obs == nil {
		panic(panicObserverNil)
	}

	return func(e *Engine) { e.observer = obs }
}
