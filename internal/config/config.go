// SPDX-License-Identifier: MIT

// Package config loads the sparselm command configuration from YAML with
// SPARSELM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/estimator"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/internal/logging"
	"github.com/katalvlaran/sparselm/selection"
)

// envPrefix maps nested keys such as model.lambda to SPARSELM_MODEL_LAMBDA.
const envPrefix = "SPARSELM"

// ErrGroups indicates that both model.groups and model.assignment are set.
var ErrGroups = errors.New("config: model.groups and model.assignment are mutually exclusive")

// Config is the whole command configuration.
type Config struct {
	Log     logging.Config `mapstructure:"log"`
	Model   Model          `mapstructure:"model"`
	Data    Data           `mapstructure:"data"`
	CV      CV             `mapstructure:"cv"`
	Metrics Metrics        `mapstructure:"metrics"`
}

// Model describes one regressor. Map keys are group IDs; viper lowercases
// them, so IDs used in maps should be lowercase.
type Model struct {
	Family           string  `mapstructure:"family"`
	Lambda           float64 `mapstructure:"lambda"`
	Alpha            float64 `mapstructure:"alpha"`
	Eta              float64 `mapstructure:"eta"`
	BigM             float64 `mapstructure:"big_m"`
	K                int     `mapstructure:"k"`
	Adaptive         bool    `mapstructure:"adaptive"`
	MaxAdaptiveIters int     `mapstructure:"max_adaptive_iters"`
	AdaptiveTol      float64 `mapstructure:"adaptive_tol"`
	FitIntercept     bool    `mapstructure:"fit_intercept"`
	Aggregation      string  `mapstructure:"aggregation"`

	// Groups is the integer-label form: one label per covariate.
	Groups       []int               `mapstructure:"groups"`
	// Assignment is the general form: the group IDs of each covariate.
	Assignment   [][]string          `mapstructure:"assignment"`
	Hierarchy    map[string][]string `mapstructure:"hierarchy"`
	GroupWeights map[string]float64  `mapstructure:"group_weights"`
	GroupRidge   map[string]float64  `mapstructure:"group_ridge"`
}

// Data locates the training table.
type Data struct {
	Path string `mapstructure:"path"`
	// Target names the response column; empty means the last column.
	Target string `mapstructure:"target"`
}

// CV configures the cv command.
type CV struct {
	Splits          int              `mapstructure:"splits"`
	Shuffle         bool             `mapstructure:"shuffle"`
	Seed            uint64           `mapstructure:"seed"`
	Method          string           `mapstructure:"method"`
	ComplexityParam string           `mapstructure:"complexity_param"`
	NJobs           int              `mapstructure:"njobs"`
	Grid            map[string][]any `mapstructure:"grid"`
}

// Metrics configures the Prometheus text dump written after a command.
type Metrics struct {
	// File receives the registry in text exposition format; empty disables.
	File string `mapstructure:"file"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

// setDefaults registers every scalar key so AutomaticEnv can override it
// even when the file omits it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("model.family", engine.Lasso.String())
	v.SetDefault("model.lambda", engine.DefaultLambda)
	v.SetDefault("model.alpha", engine.DefaultAlpha)
	v.SetDefault("model.eta", engine.DefaultEta)
	v.SetDefault("model.big_m", engine.DefaultBigM)
	v.SetDefault("model.k", 0)
	v.SetDefault("model.adaptive", false)
	v.SetDefault("model.max_adaptive_iters", engine.DefaultMaxAdaptiveIters)
	v.SetDefault("model.adaptive_tol", engine.DefaultAdaptiveTol)
	v.SetDefault("model.fit_intercept", engine.DefaultFitIntercept)
	v.SetDefault("model.aggregation", groups.AggregateSum.String())
	v.SetDefault("data.path", "")
	v.SetDefault("data.target", "")
	v.SetDefault("cv.splits", selection.DefaultSplits)
	v.SetDefault("cv.shuffle", false)
	v.SetDefault("cv.seed", 0)
	v.SetDefault("cv.method", selection.MaxScore.String())
	v.SetDefault("cv.complexity_param", selection.DefaultComplexityParam)
	v.SetDefault("cv.njobs", 0)
	v.SetDefault("metrics.file", "")
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, and validates the model section.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if _, err := cfg.Model.EngineConfig(); err != nil {
		return nil, fmt.Errorf("config: model: %w", err)
	}

	return cfg, nil
}

func idMap(m map[string]float64) map[groups.ID]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[groups.ID]float64, len(m))
	for k, v := range m {
		out[groups.ID(k)] = v
	}

	return out
}

// EngineConfig converts the model section into a validated engine.Config.
func (m Model) EngineConfig() (engine.Config, error) {
	family, err := engine.ParseFamily(m.Family)
	if err != nil {
		return engine.Config{}, err
	}
	agg, err := groups.ParseAggregationPolicy(m.Aggregation)
	if err != nil {
		return engine.Config{}, err
	}
	c := engine.DefaultConfig(family)
	c.Lambda = m.Lambda
	c.Alpha = m.Alpha
	c.Eta = m.Eta
	c.BigM = m.BigM
	c.K = m.K
	c.Adaptive = m.Adaptive
	c.MaxAdaptiveIters = m.MaxAdaptiveIters
	c.AdaptiveTol = m.AdaptiveTol
	c.FitIntercept = m.FitIntercept
	c.Aggregation = agg
	c.GroupWeights = idMap(m.GroupWeights)
	c.GroupRidge = idMap(m.GroupRidge)

	return c, c.Validate()
}

// GroupAssignment returns the configured assignment, or nil for singletons.
func (m Model) GroupAssignment() (groups.Assignment, error) {
	switch {
	case len(m.Groups) > 0 && len(m.Assignment) > 0:
		return nil, ErrGroups
	case len(m.Groups) > 0:
		return groups.FromLabels(m.Groups), nil
	case len(m.Assignment) > 0:
		a := make(groups.Assignment, len(m.Assignment))
		for j, ids := range m.Assignment {
			a[j] = make([]groups.ID, len(ids))
			for k, id := range ids {
				a[j][k] = groups.ID(id)
			}
		}

		return a, nil
	}

	return nil, nil
}

// GroupHierarchy returns the configured parent → children edges.
func (m Model) GroupHierarchy() groups.Hierarchy {
	if len(m.Hierarchy) == 0 {
		return nil
	}
	h := make(groups.Hierarchy, len(m.Hierarchy))
	for parent, children := range m.Hierarchy {
		ids := make([]groups.ID, len(children))
		for i, c := range children {
			ids[i] = groups.ID(c)
		}
		h[groups.ID(parent)] = ids
	}

	return h
}

// Regressor builds the configured estimator.
func (m Model) Regressor(opts ...estimator.Option) (*estimator.Regressor, error) {
	c, err := m.EngineConfig()
	if err != nil {
		return nil, err
	}
	a, err := m.GroupAssignment()
	if err != nil {
		return nil, err
	}
	base := []estimator.Option{estimator.WithGroups(a), estimator.WithHierarchy(m.GroupHierarchy())}

	return estimator.New(c, append(base, opts...)...), nil
}

// Search builds a GridSearch over est from the cv section.
func (c CV) Search(est estimator.Estimator) (*selection.GridSearch, error) {
	method, err := selection.ParseMethod(c.Method)
	if err != nil {
		return nil, err
	}

	return &selection.GridSearch{
		Estimator:       est,
		Grid:            selection.Grid(c.Grid),
		Folds:           selection.KFold{Splits: c.Splits, Shuffle: c.Shuffle, Seed: c.Seed},
		Method:          method,
		ComplexityParam: c.ComplexityParam,
	}, nil
}
