package selection_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/estimator"
	"github.com/katalvlaran/sparselm/selection"
)

// linear returns noiseless data y = 1 + X·truth.
func linear(n int, truth []float64, seed uint64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+7))
	X := mat.NewDense(n, len(truth), nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = 1
		for j, b := range truth {
			X.Set(i, j, rng.NormFloat64())
			y[i] += b * X.At(i, j)
		}
	}

	return X, y
}

func TestKFoldPartitions(t *testing.T) {
	folds, err := selection.KFold{Splits: 3}.Split(10)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, folds[0].Test)
	assert.Equal(t, []int{4, 5, 6}, folds[1].Test)
	assert.Equal(t, []int{7, 8, 9}, folds[2].Test)

	var all []int
	for _, f := range folds {
		assert.Len(t, f.Train, 10-len(f.Test))
		all = append(all, f.Test...)
	}
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)
}

func TestKFoldShuffleDeterministic(t *testing.T) {
	kf := selection.KFold{Splits: 4, Shuffle: true, Seed: 42}
	a, err := kf.Split(20)
	require.NoError(t, err)
	b, err := kf.Split(20)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := selection.KFold{Splits: 4, Shuffle: true, Seed: 43}.Split(20)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestKFoldErrors(t *testing.T) {
	for _, kf := range []selection.KFold{{Splits: 1}, {Splits: 11}, {Splits: -2}} {
		_, err := kf.Split(10)
		assert.ErrorIs(t, err, selection.ErrFolds)
		assert.ErrorIs(t, err, errs.ErrConfiguration)
	}
	folds, err := selection.KFold{}.Split(10)
	require.NoError(t, err)
	assert.Len(t, folds, selection.DefaultSplits)
}

func TestScorers(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	assert.Equal(t, 0.0, selection.NegMSE(y, y))
	assert.InDelta(t, -1.0, selection.NegMSE(y, []float64{2, 3, 4, 5}), 1e-12)
	assert.InDelta(t, 1.0, selection.R2(y, y), 1e-12)
	assert.InDelta(t, 0.0, selection.R2(y, []float64{2.5, 2.5, 2.5, 2.5}), 1e-12)
}

func TestCrossValidateParallelMatchesSerial(t *testing.T) {
	X, y := linear(40, []float64{2, -1, 0.5}, 1)
	folds, err := selection.KFold{Splits: 5, Shuffle: true, Seed: 3}.Split(40)
	require.NoError(t, err)

	serial, err := selection.CrossValidate(context.Background(), estimator.NewOLS(), X, y, folds, nil, selection.WithNJobs(1))
	require.NoError(t, err)
	parallel, err := selection.CrossValidate(context.Background(), estimator.NewOLS(), X, y, folds, nil, selection.WithNJobs(4))
	require.NoError(t, err)

	require.Len(t, serial, 5)
	assert.InDeltaSlice(t, serial, parallel, 1e-12)
	for _, s := range serial {
		assert.InDelta(t, 0, s, 1e-12)
	}
}

func TestCrossValidateErrors(t *testing.T) {
	X, y := linear(10, []float64{1}, 1)
	folds, err := selection.KFold{Splits: 2}.Split(10)
	require.NoError(t, err)

	_, err = selection.CrossValidate(context.Background(), nil, X, y, folds, nil)
	assert.ErrorIs(t, err, selection.ErrNoEstimator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = selection.CrossValidate(ctx, estimator.NewOLS(), X, y, folds, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Panics(t, func() { selection.WithLogger(nil) })
}

func TestGridSearchMaxScore(t *testing.T) {
	X, y := linear(60, []float64{3, 0, -2, 0}, 5)
	gs := selection.GridSearch{
		Estimator: estimator.NewLasso(1),
		Grid:      selection.Grid{estimator.ParamLambda: {10.0, 0.0, 1.0}},
		Folds:     selection.KFold{Splits: 3},
	}
	res, err := gs.Fit(context.Background(), X, y)
	require.NoError(t, err)

	require.Len(t, res.Candidates, 3)
	assert.Equal(t, 0.0, res.BestParams()[estimator.ParamLambda])
	for _, c := range res.Candidates {
		assert.Len(t, c.Scores, 3)
		assert.LessOrEqual(t, c.Mean, res.Candidates[res.BestIndex].Mean)
	}
	assert.InDeltaSlice(t, []float64{3, 0, -2, 0}, res.Best.Coef(), 1e-8)
	assert.InDelta(t, 1.0, res.Best.Intercept(), 1e-8)
}

func TestGridSearchCartesianProduct(t *testing.T) {
	X, y := linear(30, []float64{1, 1}, 9)
	gs := selection.GridSearch{
		Estimator: estimator.NewLasso(0.1),
		Grid: selection.Grid{
			estimator.ParamLambda:       {0.0, 0.5},
			estimator.ParamFitIntercept: {true, false},
		},
		Folds: selection.KFold{Splits: 3},
	}
	res, err := gs.Fit(context.Background(), X, y, selection.WithNJobs(2))
	require.NoError(t, err)
	require.Len(t, res.Candidates, 4)
	// fit_intercept sorts before lambda, so lambda varies fastest.
	assert.Equal(t, estimator.Params{"fit_intercept": true, "lambda": 0.0}, res.Candidates[0].Params)
	assert.Equal(t, estimator.Params{"fit_intercept": true, "lambda": 0.5}, res.Candidates[1].Params)
	assert.Equal(t, estimator.Params{"fit_intercept": false, "lambda": 0.0}, res.Candidates[2].Params)
}

func TestGridSearchRejectsBadGrid(t *testing.T) {
	X, y := linear(20, []float64{1}, 2)
	cases := []struct {
		name string
		grid selection.Grid
		want error
	}{
		{"empty", selection.Grid{}, selection.ErrGrid},
		{"empty axis", selection.Grid{"lambda": {}}, selection.ErrGrid},
		{"unknown key", selection.Grid{"gamma": {1.0}}, estimator.ErrUnknownParam},
		{"bad type", selection.Grid{"lambda": {"big"}}, estimator.ErrParamType},
		{"invalid value", selection.Grid{"lambda": {1.0, -1.0}}, errs.ErrConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gs := selection.GridSearch{Estimator: estimator.NewLasso(1), Grid: tc.grid, Folds: selection.KFold{Splits: 2}}
			_, err := gs.Fit(context.Background(), X, y)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := (&selection.GridSearch{Grid: selection.Grid{"lambda": {1.0}}}).Fit(context.Background(), X, y)
	assert.ErrorIs(t, err, selection.ErrNoEstimator)
}

func TestGridSearchOneStdNeedsNumericComplexity(t *testing.T) {
	X, y := linear(20, []float64{1}, 2)
	gs := selection.GridSearch{
		Estimator:       estimator.NewLasso(1),
		Grid:            selection.Grid{"lambda": {0.0, 0.1}},
		Folds:           selection.KFold{Splits: 2},
		Method:          selection.OneStdScore,
		ComplexityParam: "alpha",
	}
	_, err := gs.Fit(context.Background(), X, y)
	assert.ErrorIs(t, err, selection.ErrComplexityParam)
}

func TestLineSearchCachesPoints(t *testing.T) {
	X, y := linear(60, []float64{3, 0, -2}, 11)
	ls := selection.LineSearch{
		Estimator: estimator.NewLasso(1),
		Axes:      []selection.Axis{{Param: estimator.ParamLambda, Values: []any{5.0, 0.5, 0.0}}},
		NIter:     3,
		Folds:     selection.KFold{Splits: 3},
	}
	res, err := ls.Fit(context.Background(), X, y)
	require.NoError(t, err)

	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, 0.0, res.BestParams()[estimator.ParamLambda])
	assert.InDeltaSlice(t, []float64{3, 0, -2}, res.Best.Coef(), 1e-8)
}

func TestLineSearchTwoAxes(t *testing.T) {
	X, y := linear(60, []float64{3, 0, -2}, 13)
	ls := selection.LineSearch{
		Estimator: estimator.NewLasso(1),
		Axes: []selection.Axis{
			{Param: estimator.ParamFitIntercept, Values: []any{false, true}},
			{Param: estimator.ParamLambda, Values: []any{1.0, 0.0}},
		},
		Folds: selection.KFold{Splits: 3},
	}
	res, err := ls.Fit(context.Background(), X, y)
	require.NoError(t, err)

	// Round one: fit_intercept with lambda=1 (two points), then lambda with
	// the chosen intercept (one new point).
	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, estimator.Params{"fit_intercept": true, "lambda": 0.0}, res.BestParams())
}

func TestParseMethod(t *testing.T) {
	m, err := selection.ParseMethod("one_std_score")
	require.NoError(t, err)
	assert.Equal(t, selection.OneStdScore, m)
	assert.Equal(t, "one_std_score", m.String())

	m, err = selection.ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, selection.MaxScore, m)

	_, err = selection.ParseMethod("median")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}
