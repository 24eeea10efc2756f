// SPDX-License-Identifier: MIT

package estimator

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/linalg"
)

// NamedEstimator is one step of a Stepwise model.
type NamedEstimator struct {
	Name      string
	Estimator Estimator
}

// Stepwise fits a sequence of estimators, each on its own covariate scope,
// every step on the residual left by the previous ones.
//
// Contract:
//   - scopes partition 0..P−1 where P is the total scope size;
//   - only the first step may fit an intercept (later steps are forced off);
//   - parameters are addressed as "<step>__<param>".
type Stepwise struct {
	steps  []NamedEstimator
	scopes [][]int
	p      int

	fitted    bool
	coef      []float64
	intercept float64
}

// NewStepwise validates steps and scopes.
//
// Errors (wrapped in errs.ConfigurationError): ErrStep, ErrScope.
func NewStepwise(steps []NamedEstimator, scopes [][]int) (*Stepwise, error) {
	const op = "estimator.NewStepwise"
	if len(steps) == 0 {
		return nil, errs.Configurationf(op, ErrStep, "no steps")
	}
	if len(scopes) != len(steps) {
		return nil, errs.Configurationf(op, ErrScope, "%d scopes for %d steps", len(scopes), len(steps))
	}
	names := make(map[string]struct{}, len(steps))
	for i, st := range steps {
		if st.Estimator == nil || st.Name == "" || strings.Contains(st.Name, StepSeparator) {
			return nil, errs.Configurationf(op, ErrStep, "step %d (%q)", i, st.Name)
		}
		if _, dup := names[st.Name]; dup {
			return nil, errs.Configurationf(op, ErrStep, "duplicate name %q", st.Name)
		}
		names[st.Name] = struct{}{}
	}

	p := 0
	for _, sc := range scopes {
		p += len(sc)
	}
	seen := make([]bool, p)
	for i, sc := range scopes {
		if len(sc) == 0 {
			return nil, errs.Configurationf(op, ErrScope, "scope %d is empty", i)
		}
		for _, j := range sc {
			if j < 0 || j >= p {
				return nil, errs.Configurationf(op, ErrScope, "index %d outside [0,%d)", j, p)
			}
			if seen[j] {
				return nil, errs.Configurationf(op, ErrScope, "index %d in more than one scope", j)
			}
			seen[j] = true
		}
	}

	sw := &Stepwise{p: p, scopes: make([][]int, len(scopes)), steps: make([]NamedEstimator, len(steps))}
	for i := range scopes {
		sw.scopes[i] = append([]int(nil), scopes[i]...)
	}
	copy(sw.steps, steps)
	for _, st := range sw.steps[1:] {
		if err := st.Estimator.SetParams(Params{ParamFitIntercept: false}); err != nil {
			return nil, err
		}
	}

	return sw, nil
}

// Steps returns the steps in order.
func (s *Stepwise) Steps() []NamedEstimator { return append([]NamedEstimator(nil), s.steps...) }

// Scopes returns a copy of the scopes.
func (s *Stepwise) Scopes() [][]int {
	out := make([][]int, len(s.scopes))
	for i, sc := range s.scopes {
		out[i] = append([]int(nil), sc...)
	}

	return out
}

// Fit fits every step on its scope against the running residual. Steps are
// fitted on clones and committed only when every step succeeds.
func (s *Stepwise) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	const op = "estimator.Stepwise.Fit"
	if X == nil {
		return errs.Configuration(op, linalg.ErrNilMatrix)
	}
	if err := linalg.ValidateCols(X, s.p); err != nil {
		return errs.Configuration(op, err)
	}

	residual := append([]float64(nil), y...)
	coef := make([]float64, s.p)
	var intercept float64
	fitted := make([]NamedEstimator, len(s.steps))
	for i, st := range s.steps {
		est := st.Estimator.Clone()
		Xs := linalg.SubsetCols(X, s.scopes[i])
		if err := est.Fit(ctx, Xs, residual); err != nil {
			return fmt.Errorf("%s: step %q: %w", op, st.Name, err)
		}
		pred, err := est.Predict(Xs)
		if err != nil {
			return fmt.Errorf("%s: step %q: %w", op, st.Name, err)
		}
		for r := range residual {
			residual[r] -= pred[r]
		}
		for k, c := range est.Coef() {
			coef[s.scopes[i][k]] = c
		}
		if i == 0 {
			intercept = est.Intercept()
		}
		fitted[i] = NamedEstimator{Name: st.Name, Estimator: est}
	}

	s.steps = fitted
	s.coef = coef
	s.intercept = intercept
	s.fitted = true

	return nil
}

// Fitted reports whether a fit has succeeded.
func (s *Stepwise) Fitted() bool { return s.fitted }

// Coef returns a copy of the combined coefficients.
func (s *Stepwise) Coef() []float64 { return append([]float64(nil), s.coef...) }

// Intercept returns the first step's intercept.
func (s *Stepwise) Intercept() float64 { return s.intercept }

// Predict returns X·coef + intercept.
func (s *Stepwise) Predict(X mat.Matrix) ([]float64, error) {
	return predict(s.fitted, X, s.coef, s.intercept)
}

// Params returns every step parameter as "<step>__<param>".
func (s *Stepwise) Params() Params {
	out := Params{}
	for _, st := range s.steps {
		for k, v := range st.Estimator.Params() {
			out[st.Name+StepSeparator+k] = v
		}
	}

	return out
}

// SetParams routes "<step>__<param>" keys to their step. It is atomic: every
// step's update is validated on a clone first, so on error no step changes.
func (s *Stepwise) SetParams(ps Params) error {
	const op = "estimator.Stepwise.SetParams"
	perStep := make(map[string]Params)
	for _, key := range ps.Keys() {
		name, param, ok := strings.Cut(key, StepSeparator)
		if !ok || s.index(name) < 0 {
			return errs.Configurationf(op, ErrUnknownParam, "%q", key)
		}
		if perStep[name] == nil {
			perStep[name] = Params{}
		}
		perStep[name][param] = ps[key]
	}
	for i, st := range s.steps {
		sub, ok := perStep[st.Name]
		if !ok {
			continue
		}
		if i > 0 {
			if v, set := sub[ParamFitIntercept]; set && v != false {
				return errs.Configurationf(op, ErrStep, "only the first step may fit an intercept")
			}
		}
		if err := st.Estimator.Clone().SetParams(sub); err != nil {
			return err
		}
	}
	for _, st := range s.steps {
		if sub, ok := perStep[st.Name]; ok {
			if err := st.Estimator.SetParams(sub); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Stepwise) index(name string) int {
	for i, st := range s.steps {
		if st.Name == name {
			return i
		}
	}

	return -1
}

// Clone deep-copies every step; the result is unfitted.
func (s *Stepwise) Clone() Estimator {
	c := &Stepwise{p: s.p, scopes: s.Scopes(), steps: make([]NamedEstimator, len(s.steps))}
	for i, st := range s.steps {
		c.steps[i] = NamedEstimator{Name: st.Name, Estimator: st.Estimator.Clone()}
	}

	return c
}
