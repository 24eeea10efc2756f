// SPDX-License-Identifier: MIT

package penalty

import (
	"math"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/groups"
)

// DefaultAdaptiveEps is the floor applied to |β| before inversion.
const DefaultAdaptiveEps = 1e-6

// AdaptiveL1Weights returns w_i = 1 / max(|β_i|, eps).
// Coefficients that shrank to zero receive the largest weight 1/eps.
func AdaptiveL1Weights(beta []float64, eps float64) ([]float64, error) {
	if !(eps > 0) {
		return nil, errs.Configurationf("penalty.AdaptiveL1Weights", ErrEpsilon, "got %v", eps)
	}
	w := make([]float64, len(beta))
	for i, b := range beta {
		w[i] = 1 / math.Max(math.Abs(b), eps)
	}

	return w, nil
}

// AdaptiveGroupWeights returns w_g = base_g / max(||β_g||₂, eps) over an
// expanded coefficient vector. Nil base means base_g = 1.
func AdaptiveGroupWeights(s *groups.Structure, beta, base []float64, eps float64) ([]float64, error) {
	const op = "penalty.AdaptiveGroupWeights"
	if !(eps > 0) {
		return nil, errs.Configurationf(op, ErrEpsilon, "got %v", eps)
	}
	if len(beta) != s.Size() {
		return nil, errs.Configurationf(op, ErrShape, "beta=%d want %d", len(beta), s.Size())
	}
	b, err := weightsOrOnes(op, base, s.NumGroups())
	if err != nil {
		return nil, err
	}
	norms := s.GroupNorms(beta)
	w := make([]float64, len(norms))
	for g, nrm := range norms {
		w[g] = b[g] / math.Max(nrm, eps)
	}

	return w, nil
}
