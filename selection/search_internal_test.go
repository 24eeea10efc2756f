package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sparselm/estimator"
)

func cand(lambda, mean, std float64) Candidate {
	return Candidate{Params: estimator.Params{"lambda": lambda}, Mean: mean, Std: std}
}

func TestPickMaxScore(t *testing.T) {
	s := &searcher{method: MaxScore, complexity: "lambda"}
	i, err := s.pick([]Candidate{cand(0.1, -1, 0.5), cand(0.01, -0.8, 0.3), cand(1, -2, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	// First wins ties.
	i, err = s.pick([]Candidate{cand(0.1, -1, 0), cand(0.2, -1, 0)})
	require.NoError(t, err)
	assert.Equal(t, 0, i)
}

func TestPickOneStd(t *testing.T) {
	s := &searcher{method: OneStdScore, complexity: "lambda"}

	// Best mean -0.8 ± 0.3: λ=0.1 (mean -1.0) is inside the band and is the
	// most regularized; λ=1 (mean -2) is outside.
	i, err := s.pick([]Candidate{cand(0.1, -1, 0.5), cand(0.01, -0.8, 0.3), cand(1, -2, 0)})
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	// Equal complexity: the higher mean wins.
	i, err = s.pick([]Candidate{cand(0.5, -1.1, 0), cand(0.5, -1.0, 0.5), cand(0.1, -0.9, 0.5)})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	// Zero spread degenerates to MaxScore.
	i, err = s.pick([]Candidate{cand(0.1, -1, 0), cand(0.01, -0.8, 0), cand(1, -2, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestPickOneStdIntegerComplexity(t *testing.T) {
	s := &searcher{method: OneStdScore, complexity: "k"}
	ks := []Candidate{
		{Params: estimator.Params{"k": 1}, Mean: -3, Std: 0.1},
		{Params: estimator.Params{"k": 3}, Mean: -1, Std: 0.4},
		{Params: estimator.Params{"k": 2}, Mean: -1.2, Std: 0.2},
	}
	i, err := s.pick(ks)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestGridExpandOrder(t *testing.T) {
	sets, err := Grid{"b": {1, 2}, "a": {"x", "y"}}.expand()
	require.NoError(t, err)
	require.Len(t, sets, 4)
	assert.Equal(t, estimator.Params{"a": "x", "b": 1}, sets[0])
	assert.Equal(t, estimator.Params{"a": "x", "b": 2}, sets[1])
	assert.Equal(t, estimator.Params{"a": "y", "b": 1}, sets[2])
	assert.Equal(t, estimator.Params{"a": "y", "b": 2}, sets[3])
}
