// SPDX-License-Identifier: MIT

package selection

import (
	"math/rand/v2"

	"github.com/katalvlaran/sparselm/errs"
)

// Fold is one train/test split of row indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits rows into Splits consecutive folds. With Shuffle the rows are
// permuted first by a PCG generator seeded with Seed, so splits are
// reproducible.
type KFold struct {
	Splits  int
	Shuffle bool
	Seed    uint64
}

// DefaultSplits is used when KFold.Splits is 0.
const DefaultSplits = 5

// Split returns the folds for n rows. The first n%Splits folds hold one extra
// test row.
//
// Errors (wrapped in errs.ConfigurationError): ErrFolds.
// Complexity: O(n·Splits).
func (k KFold) Split(n int) ([]Fold, error) {
	splits := k.Splits
	if splits == 0 {
		splits = DefaultSplits
	}
	if splits < 2 || splits > n {
		return nil, errs.Configurationf("selection.KFold.Split", ErrFolds, "splits=%d for n=%d", splits, n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if k.Shuffle {
		rng := rand.New(rand.NewPCG(k.Seed, k.Seed^0x9e3779b97f4a7c15))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	folds := make([]Fold, splits)
	start := 0
	for f := 0; f < splits; f++ {
		size := n / splits
		if f < n%splits {
			size++
		}
		test := append([]int(nil), order[start:start+size]...)
		train := make([]int, 0, n-size)
		train = append(train, order[:start]...)
		train = append(train, order[start+size:]...)
		folds[f] = Fold{Train: train, Test: test}
		start += size
	}

	return folds, nil
}
