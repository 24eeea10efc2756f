// SPDX-License-Identifier: MIT

package estimator

import (
	"math"
	"sort"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/errs"
)

// Parameter keys exposed by Regressor.
const (
	ParamLambda           = "lambda"
	ParamAlpha            = "alpha"
	ParamEta              = "eta"
	ParamBigM             = "big_m"
	ParamK                = "k"
	ParamAdaptive         = "adaptive"
	ParamMaxAdaptiveIters = "max_adaptive_iters"
	ParamAdaptiveTol      = "adaptive_tol"
	ParamFitIntercept     = "fit_intercept"
)

// StepSeparator joins a step name and a parameter key in Stepwise params.
const StepSeparator = "__"

// Params is a flat, string-keyed parameter set. Values are float64, int or
// bool; SetParams also accepts integral floats for int keys and ints for
// float keys, the shapes YAML and JSON decoders produce.
type Params map[string]any

// Keys returns the keys of ps in sorted order.
func (ps Params) Keys() []string {
	out := make([]string, 0, len(ps))
	for k := range ps {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// Clone returns a shallow copy of ps.
func (ps Params) Clone() Params {
	out := make(Params, len(ps))
	for k, v := range ps {
		out[k] = v
	}

	return out
}

func configParams(c engine.Config) Params {
	return Params{
		ParamLambda:           c.Lambda,
		ParamAlpha:            c.Alpha,
		ParamEta:              c.Eta,
		ParamBigM:             c.BigM,
		ParamK:                c.K,
		ParamAdaptive:         c.Adaptive,
		ParamMaxAdaptiveIters: c.MaxAdaptiveIters,
		ParamAdaptiveTol:      c.AdaptiveTol,
		ParamFitIntercept:     c.FitIntercept,
	}
}

// applyParams writes ps into a copy of c.
func applyParams(c engine.Config, ps Params) (engine.Config, error) {
	const op = "estimator.SetParams"
	var err error
	for _, key := range ps.Keys() {
		v := ps[key]
		switch key {
		case ParamLambda:
			c.Lambda, err = asFloat(op, key, v)
		case ParamAlpha:
			c.Alpha, err = asFloat(op, key, v)
		case ParamEta:
			c.Eta, err = asFloat(op, key, v)
		case ParamBigM:
			c.BigM, err = asFloat(op, key, v)
		case ParamAdaptiveTol:
			c.AdaptiveTol, err = asFloat(op, key, v)
		case ParamK:
			c.K, err = asInt(op, key, v)
		case ParamMaxAdaptiveIters:
			c.MaxAdaptiveIters, err = asInt(op, key, v)
		case ParamAdaptive:
			c.Adaptive, err = asBool(op, key, v)
		case ParamFitIntercept:
			c.FitIntercept, err = asBool(op, key, v)
		default:
			return c, errs.Configurationf(op, ErrUnknownParam, "%q", key)
		}
		if err != nil {
			return c, err
		}
	}

	return c, nil
}

func asFloat(op, key string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}

	return 0, errs.Configurationf(op, ErrParamType, "%s: want number, got %T", key, v)
}

func asInt(op, key string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < math.MaxInt32 {
			return int(x), nil
		}
	}

	return 0, errs.Configurationf(op, ErrParamType, "%s: want integer, got %T(%v)", key, v, v)
}

func asBool(op, key string, v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	return false, errs.Configurationf(op, ErrParamType, "%s: want bool, got %T", key, v)
}
