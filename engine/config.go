// SPDX-License-Identifier: MIT
// Package: sparselm/engine
//
// config.go: regularization configuration and its validation.
//
// Design:
//   • Config is a plain value; DefaultConfig fills documented defaults.
//   • Validate runs every family-independent and family-specific check that
//     does not need the group structure. Checks that need the structure
//     (per-group map keys) run in Fit before the first oracle call.
//   • Fields a family does not use are ignored, not rejected, so one Config
//     can be reused across a grid search that switches families.

package engine

import (
	"math"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/penalty"
)

// Defaults (single source of truth).
const (
	DefaultLambda           = 1.0
	DefaultAlpha            = 0.5
	DefaultEta              = 1.0
	DefaultBigM             = 100.0
	DefaultMaxAdaptiveIters = 5
	DefaultAdaptiveTol      = 1e-6
	DefaultAdaptiveEps      = penalty.DefaultAdaptiveEps
	DefaultFitIntercept     = true
)

// Config is the regularization configuration of one fit.
type Config struct {
	Family Family

	// Lambda is the overall strength (ℓ1 / group-ℓ2 / ℓ0 price).
	Lambda float64
	// Alpha blends group-ℓ2 (0) and ℓ1 (1) in SparseGroupLasso.
	Alpha float64
	// Eta is the secondary strength: ridge (BestSubset, L2L0), ℓ1 (L1L0),
	// per-group ridge scale (RidgedGroupLasso).
	Eta float64

	// GroupWeights multiplies each group's ℓ2 weight; missing groups use 1.
	GroupWeights map[groups.ID]float64
	// GroupRidge is the per-group ridge factor of RidgedGroupLasso; missing
	// groups use 1.
	GroupRidge map[groups.ID]float64

	// BigM bounds |β_i| for MIQP families.
	BigM float64
	// K caps the number of active groups. Required (> 0) for
	// BestSubsetSelection; 0 means "no cap" for the other MIQP families.
	K int

	Adaptive         bool
	MaxAdaptiveIters int
	AdaptiveTol      float64
	AdaptiveEps      float64

	FitIntercept bool
	Aggregation  groups.AggregationPolicy
}

// DefaultConfig returns the documented defaults for family f.
func DefaultConfig(f Family) Config {
	return Config{
		Family:           f,
		Lambda:           DefaultLambda,
		Alpha:            DefaultAlpha,
		Eta:              DefaultEta,
		BigM:             DefaultBigM,
		MaxAdaptiveIters: DefaultMaxAdaptiveIters,
		AdaptiveTol:      DefaultAdaptiveTol,
		AdaptiveEps:      DefaultAdaptiveEps,
		FitIntercept:     DefaultFitIntercept,
		Aggregation:      groups.AggregateSum,
	}
}

func finiteNonNeg(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

// Validate checks c without looking at data or group structure.
//
// Errors (wrapped in errs.ConfigurationError): ErrUnknownFamily, ErrParam,
// ErrAdaptiveFamily, groups.ErrUnknownPolicy.
func (c Config) Validate() error {
	const op = "engine.Config.Validate"
	if !c.Family.Valid() {
		return errs.Configurationf(op, ErrUnknownFamily, "%v", c.Family)
	}

	// 1. Family-independent domains.
	if !finiteNonNeg(c.Lambda) {
		return errs.Configurationf(op, ErrParam, "lambda=%v must be finite and >= 0", c.Lambda)
	}
	if math.IsNaN(c.Alpha) || c.Alpha < 0 || c.Alpha > 1 {
		return errs.Configurationf(op, ErrParam, "alpha=%v must lie in [0,1]", c.Alpha)
	}
	if !finiteNonNeg(c.Eta) {
		return errs.Configurationf(op, ErrParam, "eta=%v must be finite and >= 0", c.Eta)
	}
	for id, w := range c.GroupWeights {
		if !finiteNonNeg(w) {
			return errs.Configurationf(op, ErrParam, "group weight %q=%v", id, w)
		}
	}
	for id, d := range c.GroupRidge {
		if !finiteNonNeg(d) {
			return errs.Configurationf(op, ErrParam, "group ridge %q=%v", id, d)
		}
	}
	if c.Aggregation < groups.AggregateSum || c.Aggregation > groups.AggregateMaxAbs {
		return errs.Configurationf(op, groups.ErrUnknownPolicy, "%v", c.Aggregation)
	}

	// 2. Family-specific requirements.
	if c.Family.MixedInteger() {
		if !(c.BigM > 0) || math.IsInf(c.BigM, 1) {
			return errs.Configurationf(op, ErrParam, "big_m=%v must be finite and > 0", c.BigM)
		}
		if c.K < 0 || (c.Family == BestSubsetSelection && c.K == 0) {
			return errs.Configurationf(op, ErrParam, "k=%d must be a positive integer", c.K)
		}
	}

	// 3. Adaptive loop.
	if c.Adaptive {
		if !c.Family.Adaptable() {
			return errs.Configurationf(op, ErrAdaptiveFamily, "%v", c.Family)
		}
		if c.MaxAdaptiveIters < 1 {
			return errs.Configurationf(op, ErrParam, "max_adaptive_iters=%d must be >= 1", c.MaxAdaptiveIters)
		}
		if !finiteNonNeg(c.AdaptiveTol) {
			return errs.Configurationf(op, ErrParam, "adaptive_tol=%v", c.AdaptiveTol)
		}
		if !(c.AdaptiveEps > 0) || math.IsInf(c.AdaptiveEps, 1) {
			return errs.Configurationf(op, ErrParam, "adaptive_eps=%v must be finite and > 0", c.AdaptiveEps)
		}
	}

	return nil
}
