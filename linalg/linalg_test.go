package linalg_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/linalg"
)

func TestValidateDesign(t *testing.T) {
	_, _, err := linalg.ValidateDesign(nil)
	assert.ErrorIs(t, err, linalg.ErrNilMatrix)

	_, _, err = linalg.ValidateDesign(&mat.Dense{})
	assert.ErrorIs(t, err, linalg.ErrEmpty)

	X := mat.NewDense(2, 2, []float64{1, 2, math.NaN(), 4})
	_, _, err = linalg.ValidateDesign(X)
	assert.ErrorIs(t, err, linalg.ErrNaNInf)

	X = mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	n, p, err := linalg.ValidateDesign(X)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, p)
}

func TestValidateResponse(t *testing.T) {
	assert.ErrorIs(t, linalg.ValidateResponse([]float64{1}, 2), linalg.ErrDimensionMismatch)
	assert.ErrorIs(t, linalg.ValidateResponse([]float64{1, math.Inf(1)}, 2), linalg.ErrNaNInf)
	assert.NoError(t, linalg.ValidateResponse([]float64{1, 2}, 2))
}

func TestColumnMeansAndCenter(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
	})
	means := linalg.ColumnMeans(X)
	assert.InDeltaSlice(t, []float64{2, 20}, means, 1e-12)

	linalg.CenterColumns(X, means)
	assert.InDeltaSlice(t, []float64{0, 0}, linalg.ColumnMeans(X), 1e-12)

	yc, mu := linalg.Center([]float64{1, 2, 6})
	assert.InDelta(t, 3, mu, 1e-12)
	assert.InDeltaSlice(t, []float64{-2, -1, 3}, yc, 1e-12)
}

func TestGramAndLargestEigenvalue(t *testing.T) {
	// Orthogonal columns with norms 2 and 3: AᵀA = diag(4, 9).
	A := mat.NewDense(2, 2, []float64{2, 0, 0, 3})
	g := linalg.Gram(A)
	assert.InDelta(t, 4, g.At(0, 0), 1e-12)
	assert.InDelta(t, 9, g.At(1, 1), 1e-12)
	assert.InDelta(t, 0, g.At(0, 1), 1e-12)

	l, err := linalg.LargestEigenvalue(g)
	require.NoError(t, err)
	assert.InDelta(t, 9, l, 1e-9)
}

func TestSubsetsAndMatVec(t *testing.T) {
	X := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	r := linalg.SubsetRows(X, []int{2, 0})
	assert.Equal(t, []float64{7, 8, 9, 1, 2, 3}, r.RawMatrix().Data)

	c := linalg.SubsetCols(X, []int{1})
	assert.Equal(t, []float64{2, 5, 8}, mat.Col(nil, 0, c))

	assert.Equal(t, []float64{3, 1}, linalg.SubsetVec([]float64{1, 2, 3}, []int{2, 0}))

	pred := linalg.MatVec(X, []float64{1, 0, 0}, 0.5)
	assert.InDeltaSlice(t, []float64{1.5, 4.5, 7.5}, pred, 1e-12)

	assert.InDelta(t, 2.0, linalg.MaxAbsDiff([]float64{1, 5}, []float64{0, 3}), 0)
}
