// SPDX-License-Identifier: MIT

package selection

import "errors"

var (
	// ErrFolds indicates a fold count outside [2, n].
	ErrFolds = errors.New("selection: invalid number of folds")

	// ErrGrid indicates an empty grid, an empty axis or a grid that yields
	// no candidate.
	ErrGrid = errors.New("selection: invalid parameter grid")

	// ErrComplexityParam indicates a one-std selection whose complexity
	// parameter is missing or not numeric.
	ErrComplexityParam = errors.New("selection: invalid complexity parameter")

	// ErrNoEstimator indicates a search without a base estimator.
	ErrNoEstimator = errors.New("selection: nil estimator")
)
