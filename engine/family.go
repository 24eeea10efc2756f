// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/sparselm/errs"
)

// Family is the closed set of supported model families. The zero value is
// not a family and fails validation.
type Family int

const (
	// OrdinaryLeastSquares: loss only.
	OrdinaryLeastSquares Family = iota + 1
	// Lasso: loss + λ·ℓ1.
	Lasso
	// GroupLasso: loss + λ·group-ℓ2 (overlapping groups via expansion).
	GroupLasso
	// SparseGroupLasso: loss + λ[(1−α)·group-ℓ2 + α·ℓ1].
	SparseGroupLasso
	// RidgedGroupLasso: GroupLasso + per-group ridge δ_g = η·GroupRidge[g].
	RidgedGroupLasso
	// BestSubsetSelection: loss + η·ridge, Big-M, Σz ≤ k, hierarchy.
	BestSubsetSelection
	// RegularizedL0: loss + λΣz, Big-M, hierarchy, optional k.
	RegularizedL0
	// L1L0: loss + λΣz + η·ℓ1, Big-M, hierarchy, optional k.
	L1L0
	// L2L0: loss + λΣz + η·ridge, Big-M, hierarchy, optional k.
	L2L0
)

var familyNames = map[Family]string{
	OrdinaryLeastSquares: "ols",
	Lasso:                "lasso",
	GroupLasso:           "group_lasso",
	SparseGroupLasso:     "sparse_group_lasso",
	RidgedGroupLasso:     "ridged_group_lasso",
	BestSubsetSelection:  "best_subset",
	RegularizedL0:        "regularized_l0",
	L1L0:                 "l1l0",
	L2L0:                 "l2l0",
}

// String returns the configuration name of the family.
func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}

	return fmt.Sprintf("family(%d)", int(f))
}

// Valid reports whether f belongs to the closed set.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// MixedInteger reports whether the family carries binary indicators.
func (f Family) MixedInteger() bool {
	switch f {
	case BestSubsetSelection, RegularizedL0, L1L0, L2L0:
		return true
	}

	return false
}

// Adaptable reports whether the family's penalty can be reweighted.
func (f Family) Adaptable() bool {
	switch f {
	case Lasso, GroupLasso, SparseGroupLasso, RidgedGroupLasso:
		return true
	}

	return false
}

// ParseFamily maps a configuration name (case-insensitive) to a Family.
func ParseFamily(name string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, s := range familyNames {
		if s == key {
			return f, nil
		}
	}

	return 0, errs.Configurationf("engine.ParseFamily", ErrUnknownFamily, "%q", name)
}

// Families lists the supported families in declaration order.
func Families() []Family {
	out := make([]Family, 0, len(familyNames))
	for f := OrdinaryLeastSquares; f <= L2L0; f++ {
		out = append(out, f)
	}

	return out
}
