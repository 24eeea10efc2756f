// SPDX-License-Identifier: MIT

package estimator

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/linalg"
)

// Estimator is the contract shared by Regressor and Stepwise and consumed by
// the selection package. Implementations are not safe for concurrent Fit;
// clone one per goroutine.
type Estimator interface {
	Fit(ctx context.Context, X mat.Matrix, y []float64) error
	Predict(X mat.Matrix) ([]float64, error)
	Coef() []float64
	Intercept() float64
	Params() Params
	SetParams(ps Params) error
	// Clone returns an unfitted copy with identical parameters.
	Clone() Estimator
}

// Regressor is a linear model of one engine family.
type Regressor struct {
	cfg        engine.Config
	assignment groups.Assignment // nil ⇒ singletons over X's columns
	hierarchy  groups.Hierarchy
	eng        *engine.Engine

	// fitted state; replaced only by a successful Fit
	fitted    bool
	coef      []float64
	intercept float64
	result    *engine.Result
}

// Option configures a Regressor.
type Option func(*Regressor)

// WithGroups sets the group assignment (default: one singleton group per covariate).
func WithGroups(a groups.Assignment) Option {
	return func(r *Regressor) { r.assignment = a }
}

// WithLabels sets a non-overlapping assignment from integer labels.
func WithLabels(labels []int) Option {
	return func(r *Regressor) { r.assignment = groups.FromLabels(labels) }
}

// WithHierarchy sets the group hierarchy (MIQP families only).
func WithHierarchy(h groups.Hierarchy) Option {
	return func(r *Regressor) { r.hierarchy = h }
}

// WithEngine sets the engine used by Fit (default engine.New()).
func WithEngine(e *engine.Engine) Option {
	return func(r *Regressor) { r.eng = e }
}

// WithConfig edits the engine configuration in place.
func WithConfig(mut func(*engine.Config)) Option {
	return func(r *Regressor) { mut(&r.cfg) }
}

// New returns a Regressor for cfg.
func New(cfg engine.Config, opts ...Option) *Regressor {
	r := &Regressor{cfg: cfg}
	for _, fn := range opts {
		fn(r)
	}
	if r.eng == nil {
		r.eng = engine.New()
	}

	return r
}

// Config returns the current configuration.
func (r *Regressor) Config() engine.Config { return r.cfg }

// Family returns the model family.
func (r *Regressor) Family() engine.Family { return r.cfg.Family }

// Groups returns the configured assignment (nil means singletons).
func (r *Regressor) Groups() groups.Assignment { return r.assignment }

// Hierarchy returns the configured hierarchy.
func (r *Regressor) Hierarchy() groups.Hierarchy { return r.hierarchy }

// Fit fits the model. On error the previously fitted state is kept.
func (r *Regressor) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	if X == nil {
		return errs.Configuration("estimator.Fit", linalg.ErrNilMatrix)
	}
	a := r.assignment
	if a == nil {
		_, p := X.Dims()
		a = groups.Singletons(p)
	}
	res, err := r.eng.Fit(ctx, X, y, a, r.cfg, r.hierarchy)
	if err != nil {
		return err
	}
	r.fitted = true
	r.coef = res.Coef
	r.intercept = res.Intercept
	r.result = res

	return nil
}

// Fitted reports whether a fit has succeeded.
func (r *Regressor) Fitted() bool { return r.fitted }

// Coef returns a copy of the fitted coefficients (nil before a fit).
func (r *Regressor) Coef() []float64 { return append([]float64(nil), r.coef...) }

// Intercept returns the fitted intercept.
func (r *Regressor) Intercept() float64 { return r.intercept }

// Certified reports whether the last fit was certified optimal.
func (r *Regressor) Certified() bool { return r.result != nil && r.result.Certified }

// Warnings returns the annotations of the last fit.
func (r *Regressor) Warnings() []errs.Warning {
	if r.result == nil {
		return nil
	}

	return append([]errs.Warning(nil), r.result.Warnings...)
}

// Result returns the full engine result of the last fit.
func (r *Regressor) Result() *engine.Result { return r.result }

// Predict returns X·coef + intercept.
func (r *Regressor) Predict(X mat.Matrix) ([]float64, error) {
	return predict(r.fitted, X, r.coef, r.intercept)
}

// Score returns the coefficient of determination R² on (X, y).
func (r *Regressor) Score(X mat.Matrix, y []float64) (float64, error) {
	return Score(r, X, y)
}

// Params returns the hyperparameters as a flat map.
func (r *Regressor) Params() Params { return configParams(r.cfg) }

// SetParams updates hyperparameters atomically: on error nothing changes.
func (r *Regressor) SetParams(ps Params) error {
	c, err := applyParams(r.cfg, ps)
	if err != nil {
		return err
	}
	if err = c.Validate(); err != nil {
		return err
	}
	r.cfg = c

	return nil
}

// Clone implements Estimator.
func (r *Regressor) Clone() Estimator {
	c := &Regressor{
		cfg:        r.cfg,
		assignment: r.assignment,
		hierarchy:  r.hierarchy,
		eng:        r.eng,
	}
	c.cfg.GroupWeights = copyMap(r.cfg.GroupWeights)
	c.cfg.GroupRidge = copyMap(r.cfg.GroupRidge)

	return c
}

func copyMap(m map[groups.ID]float64) map[groups.ID]float64 {
	if m == nil {
		return nil
	}
	out := make(map[groups.ID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

func predict(fitted bool, X mat.Matrix, coef []float64, intercept float64) ([]float64, error) {
	const op = "estimator.Predict"
	if !fitted {
		return nil, ErrNotFitted
	}
	if _, _, err := linalg.ValidateDesign(X); err != nil {
		return nil, errs.Configuration(op, err)
	}
	if err := linalg.ValidateCols(X, len(coef)); err != nil {
		return nil, errs.Configuration(op, err)
	}

	return linalg.MatVec(X, coef, intercept), nil
}

// Score returns R² of est's predictions on (X, y).
func Score(est Estimator, X mat.Matrix, y []float64) (float64, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, errs.Configuration("estimator.Score", fmt.Errorf("%w: len(y)=%d, rows=%d", linalg.ErrDimensionMismatch, len(y), len(pred)))
	}

	return stat.RSquaredFrom(pred, y, nil), nil
}
