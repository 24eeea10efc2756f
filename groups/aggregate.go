// SPDX-License-Identifier: MIT

package groups

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/sparselm/errs"
)

// AggregationPolicy decides how duplicated coefficients of an overlapping
// covariate are folded back onto the covariate.
type AggregationPolicy int

const (
	// AggregateSum adds all duplicates (default). With this policy the
	// aggregated model predicts exactly what the expanded model predicts.
	AggregateSum AggregationPolicy = iota

	// AggregateFirstNonzero keeps the first duplicate (in canonical group
	// order) whose magnitude exceeds ZeroTol.
	AggregateFirstNonzero

	// AggregateMaxAbs keeps the duplicate with the largest magnitude
	// (first one wins ties).
	AggregateMaxAbs
)

// ZeroTol is the magnitude under which a coefficient counts as zero for
// AggregateFirstNonzero.
const ZeroTol = 1e-12

// String returns the configuration name of the policy.
func (ap AggregationPolicy) String() string {
	switch ap {
	case AggregateSum:
		return "sum"
	case AggregateFirstNonzero:
		return "first_nonzero"
	case AggregateMaxAbs:
		return "max_abs"
	default:
		return fmt.Sprintf("policy(%d)", int(ap))
	}
}

// ParseAggregationPolicy maps a configuration name to a policy.
// The empty string selects AggregateSum.
func ParseAggregationPolicy(name string) (AggregationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sum":
		return AggregateSum, nil
	case "first_nonzero", "first":
		return AggregateFirstNonzero, nil
	case "max_abs", "max":
		return AggregateMaxAbs, nil
	default:
		return 0, errs.Configurationf("groups.ParseAggregationPolicy", ErrUnknownPolicy, "%q", name)
	}
}

// Aggregate folds an expanded coefficient vector back onto the p covariates.
// It is a pure array operation over the back-map; the input is not mutated.
//
// Errors: ErrDimensionMismatch when len(expanded) != Size(); ErrUnknownPolicy.
// Complexity: O(Size).
func (s *Structure) Aggregate(expanded []float64, policy AggregationPolicy) ([]float64, error) {
	const op = "groups.Aggregate"
	if len(expanded) != len(s.backMap) {
		return nil, errs.Configurationf(op, ErrDimensionMismatch, "got %d want %d", len(expanded), len(s.backMap))
	}
	out := make([]float64, s.p)
	var j int
	switch policy {
	case AggregateSum:
		for e, v := range expanded {
			out[s.backMap[e]] += v
		}
	case AggregateFirstNonzero:
		for j = 0; j < s.p; j++ {
			for _, e := range s.byCovariate[j] {
				if math.Abs(expanded[e]) > ZeroTol {
					out[j] = expanded[e]
					break
				}
			}
		}
	case AggregateMaxAbs:
		for j = 0; j < s.p; j++ {
			best := 0.0
			for _, e := range s.byCovariate[j] {
				if math.Abs(expanded[e]) > math.Abs(best) {
					best = expanded[e]
				}
			}
			out[j] = best
		}
	default:
		return nil, errs.Configurationf(op, ErrUnknownPolicy, "%d", int(policy))
	}

	return out, nil
}

// GroupNorms returns ||β_g||₂ for every group over an expanded vector.
func (s *Structure) GroupNorms(expanded []float64) []float64 {
	out := make([]float64, len(s.ids))
	for g, mem := range s.members {
		var ss float64
		for _, e := range mem {
			ss += expanded[e] * expanded[e]
		}
		out[g] = math.Sqrt(ss)
	}

	return out
}
