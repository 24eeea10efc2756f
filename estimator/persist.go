// SPDX-License-Identifier: MIT

package estimator

import (
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
)

// Snapshot is the persisted form of a fitted Regressor.
type Snapshot struct {
	Family     string                `yaml:"family"`
	Params     Params                `yaml:"params"`
	Groups     groups.Assignment     `yaml:"groups,omitempty"`
	Hierarchy  groups.Hierarchy      `yaml:"hierarchy,omitempty"`
	Aggregate  string                `yaml:"aggregation"`
	Weights    map[groups.ID]float64 `yaml:"group_weights,omitempty"`
	GroupRidge map[groups.ID]float64 `yaml:"group_ridge,omitempty"`
	Coef       []float64             `yaml:"coef"`
	Intercept  float64               `yaml:"intercept"`
	Certified  bool                  `yaml:"certified"`
	Warnings   []string              `yaml:"warnings,omitempty"`
}

// Snapshot captures the fitted state.
//
// Errors: ErrNotFitted.
func (r *Regressor) Snapshot() (Snapshot, error) {
	if !r.fitted {
		return Snapshot{}, ErrNotFitted
	}
	snap := Snapshot{
		Family:     r.cfg.Family.String(),
		Params:     r.Params(),
		Groups:     r.assignment,
		Hierarchy:  r.hierarchy,
		Aggregate:  r.cfg.Aggregation.String(),
		Weights:    r.cfg.GroupWeights,
		GroupRidge: r.cfg.GroupRidge,
		Coef:       r.Coef(),
		Intercept:  r.intercept,
		Certified:  r.Certified(),
	}
	for _, w := range r.Warnings() {
		snap.Warnings = append(snap.Warnings, w.String())
	}

	return snap, nil
}

// MarshalYAML implements yaml.Marshaler.
func (r *Regressor) MarshalYAML() (any, error) {
	return r.Snapshot()
}

// LoadFitted restores a Regressor from YAML produced by MarshalYAML. The
// result predicts immediately and can be refitted with the stored parameters.
//
// Errors (wrapped in errs.ConfigurationError): ErrSnapshot, engine.ErrUnknownFamily,
// ErrUnknownParam, ErrParamType.
func LoadFitted(data []byte, opts ...Option) (*Regressor, error) {
	const op = "estimator.LoadFitted"
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errs.Configurationf(op, ErrSnapshot, "%v", err)
	}
	f, err := engine.ParseFamily(snap.Family)
	if err != nil {
		return nil, err
	}
	agg, err := groups.ParseAggregationPolicy(snap.Aggregate)
	if err != nil {
		return nil, err
	}
	if len(snap.Coef) == 0 {
		return nil, errs.Configurationf(op, ErrSnapshot, "no coefficients")
	}
	if snap.Groups != nil && len(snap.Groups) != len(snap.Coef) {
		return nil, errs.Configurationf(op, ErrSnapshot, "%d group entries for %d coefficients", len(snap.Groups), len(snap.Coef))
	}

	cfg := engine.DefaultConfig(f)
	cfg.Aggregation = agg
	cfg.GroupWeights = snap.Weights
	cfg.GroupRidge = snap.GroupRidge
	base := []Option{WithGroups(snap.Groups), WithHierarchy(snap.Hierarchy)}
	r := New(cfg, append(base, opts...)...)
	if err = r.SetParams(snap.Params); err != nil {
		return nil, err
	}
	r.fitted = true
	r.coef = snap.Coef
	r.intercept = snap.Intercept

	return r, nil
}
