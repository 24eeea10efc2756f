// SPDX-License-Identifier: MIT

package estimator

import (
	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/groups"
)

func family(f engine.Family, mut func(*engine.Config), opts []Option) *Regressor {
	cfg := engine.DefaultConfig(f)
	if mut != nil {
		mut(&cfg)
	}

	return New(cfg, opts...)
}

// NewOLS returns an ordinary least squares regressor.
func NewOLS(opts ...Option) *Regressor {
	return family(engine.OrdinaryLeastSquares, nil, opts)
}

// NewLasso returns an ℓ1-regularized regressor.
func NewLasso(lambda float64, opts ...Option) *Regressor {
	return family(engine.Lasso, func(c *engine.Config) { c.Lambda = lambda }, opts)
}

// NewAdaptiveLasso returns an iteratively reweighted Lasso.
func NewAdaptiveLasso(lambda float64, opts ...Option) *Regressor {
	return family(engine.Lasso, func(c *engine.Config) {
		c.Lambda = lambda
		c.Adaptive = true
	}, opts)
}

// NewGroupLasso returns a group-ℓ2 regressor over a. Overlapping groups are
// handled by variable duplication.
func NewGroupLasso(a groups.Assignment, lambda float64, opts ...Option) *Regressor {
	return family(engine.GroupLasso, func(c *engine.Config) { c.Lambda = lambda }, withGroups(a, opts))
}

// NewAdaptiveGroupLasso returns an iteratively reweighted group lasso.
func NewAdaptiveGroupLasso(a groups.Assignment, lambda float64, opts ...Option) *Regressor {
	return family(engine.GroupLasso, func(c *engine.Config) {
		c.Lambda = lambda
		c.Adaptive = true
	}, withGroups(a, opts))
}

// NewSparseGroupLasso blends group-ℓ2 (alpha=0) and ℓ1 (alpha=1).
func NewSparseGroupLasso(a groups.Assignment, lambda, alpha float64, opts ...Option) *Regressor {
	return family(engine.SparseGroupLasso, func(c *engine.Config) {
		c.Lambda = lambda
		c.Alpha = alpha
	}, withGroups(a, opts))
}

// NewAdaptiveSparseGroupLasso returns an iteratively reweighted sparse group lasso.
func NewAdaptiveSparseGroupLasso(a groups.Assignment, lambda, alpha float64, opts ...Option) *Regressor {
	return family(engine.SparseGroupLasso, func(c *engine.Config) {
		c.Lambda = lambda
		c.Alpha = alpha
		c.Adaptive = true
	}, withGroups(a, opts))
}

// NewRidgedGroupLasso adds a per-group ridge η·r_g to the group lasso;
// r_g comes from Config.GroupRidge (default 1).
func NewRidgedGroupLasso(a groups.Assignment, lambda, eta float64, opts ...Option) *Regressor {
	return family(engine.RidgedGroupLasso, func(c *engine.Config) {
		c.Lambda = lambda
		c.Eta = eta
	}, withGroups(a, opts))
}

// NewBestSubset selects at most k groups by mixed-integer least squares.
func NewBestSubset(a groups.Assignment, k int, opts ...Option) *Regressor {
	return family(engine.BestSubsetSelection, func(c *engine.Config) {
		c.K = k
		c.Eta = 0
	}, withGroups(a, opts))
}

// NewRidgedBestSubset is NewBestSubset with an η ridge on the coefficients.
func NewRidgedBestSubset(a groups.Assignment, k int, eta float64, opts ...Option) *Regressor {
	return family(engine.BestSubsetSelection, func(c *engine.Config) {
		c.K = k
		c.Eta = eta
	}, withGroups(a, opts))
}

// NewRegularizedL0 prices every active group at lambda.
func NewRegularizedL0(a groups.Assignment, lambda float64, opts ...Option) *Regressor {
	return family(engine.RegularizedL0, func(c *engine.Config) { c.Lambda = lambda }, withGroups(a, opts))
}

// NewL1L0 combines the ℓ0 price lambda with an η·ℓ1 penalty.
func NewL1L0(a groups.Assignment, lambda, eta float64, opts ...Option) *Regressor {
	return family(engine.L1L0, func(c *engine.Config) {
		c.Lambda = lambda
		c.Eta = eta
	}, withGroups(a, opts))
}

// NewL2L0 combines the ℓ0 price lambda with an η ridge.
func NewL2L0(a groups.Assignment, lambda, eta float64, opts ...Option) *Regressor {
	return family(engine.L2L0, func(c *engine.Config) {
		c.Lambda = lambda
		c.Eta = eta
	}, withGroups(a, opts))
}

// withGroups prepends the assignment so later options can still override it.
func withGroups(a groups.Assignment, opts []Option) []Option {
	return append([]Option{WithGroups(a)}, opts...)
}
