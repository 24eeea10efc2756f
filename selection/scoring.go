// SPDX-License-Identifier: MIT

package selection

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scorer rates predictions; larger is better.
type Scorer func(yTrue, yPred []float64) float64

// NegMSE returns the negated mean squared error.
func NegMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	d := floats.Distance(yTrue, yPred, 2)

	return -d * d / float64(len(yTrue))
}

// R2 returns the coefficient of determination.
func R2(yTrue, yPred []float64) float64 {
	return stat.RSquaredFrom(yPred, yTrue, nil)
}
