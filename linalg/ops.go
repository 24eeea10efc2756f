// SPDX-License-Identifier: MIT

// Package linalg collects the small numeric kernels shared by the engine and
// the solver backends: column statistics, centering, Gram matrices, spectral
// radius, and row/column subsetting. Heavy lifting is delegated to gonum.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ColumnMeans returns the arithmetic mean of every column of X.
// Complexity: O(n·p).
func ColumnMeans(X mat.Matrix) []float64 {
	n, p := X.Dims()
	means := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		means[j] = stat.Mean(col, nil)
	}

	return means
}

// CenterColumns subtracts means[j] from column j of X in place.
// Complexity: O(n·p).
func CenterColumns(X *mat.Dense, means []float64) {
	n, p := X.Dims()
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < p; j++ {
			X.Set(i, j, X.At(i, j)-means[j])
		}
	}
}

// Center returns y − mean(y) and the mean.
func Center(y []float64) ([]float64, float64) {
	mu := stat.Mean(y, nil)
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v - mu
	}

	return out, mu
}

// Gram returns AᵀA as a symmetric matrix.
// Complexity: O(n·m²).
func Gram(A mat.Matrix) *mat.SymDense {
	var g mat.SymDense
	g.SymOuterK(1, A.T())

	return &g
}

// LargestEigenvalue returns the largest eigenvalue of the symmetric matrix g.
// For a Gram matrix this is the squared spectral norm of A.
//
// Errors: ErrEigenFailed when the factorization does not converge.
// Complexity: O(m³).
func LargestEigenvalue(g mat.Symmetric) (float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(g, false); !ok {
		return 0, ErrEigenFailed
	}
	vals := es.Values(nil)
	if len(vals) == 0 {
		return 0, nil
	}

	return math.Max(vals[len(vals)-1], 0), nil
}

// MaxAbsDiff returns max_i |a_i − b_i|. Lengths must match (caller ensures).
func MaxAbsDiff(a, b []float64) float64 {
	var d float64
	for i := range a {
		if v := math.Abs(a[i] - b[i]); v > d {
			d = v
		}
	}

	return d
}

// SubsetRows copies the listed rows of X into a new dense matrix.
func SubsetRows(X mat.Matrix, rows []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(rows), p, nil)
	for r, i := range rows {
		for j := 0; j < p; j++ {
			out.Set(r, j, X.At(i, j))
		}
	}

	return out
}

// SubsetCols copies the listed columns of X into a new dense matrix.
func SubsetCols(X mat.Matrix, cols []int) *mat.Dense {
	n, _ := X.Dims()
	out := mat.NewDense(n, len(cols), nil)
	col := make([]float64, n)
	for c, j := range cols {
		mat.Col(col, j, X)
		out.SetCol(c, col)
	}

	return out
}

// SubsetVec returns v restricted to idx.
func SubsetVec(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = v[i]
	}

	return out
}

// MatVec returns X·beta + offset for every row of X.
// Complexity: O(n·p).
func MatVec(X mat.Matrix, beta []float64, offset float64) []float64 {
	n, _ := X.Dims()
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(len(beta), beta))
	pred := make([]float64, n)
	for i := 0; i < n; i++ {
		pred[i] = out.AtVec(i) + offset
	}

	return pred
}
