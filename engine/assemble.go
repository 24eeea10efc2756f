// SPDX-License-Identifier: MIT

package engine

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/constraint"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/penalty"
)

// layout records where the engine's variables live in a descriptor.
type layout struct {
	beta []int // expanded coefficient e -> variable
	inds []int // group g -> indicator variable (MIQP families only)
}

// builder turns prepared data plus current weights into a descriptor.
// Everything it holds is read-only after prepare; assemble may be called
// once per adaptive iteration.
type builder struct {
	cfg   Config
	s     *groups.Structure
	hi    *groups.HierarchyIndex
	Xe    *mat.Dense // expanded (and centered) design
	y     []float64  // (centered) response
	scale float64    // 1/(2n)

	groupBase []float64 // per-group ℓ2 multipliers from GroupWeights
	deltas    []float64 // η·GroupRidge[g]
}

// assemble builds the descriptor of the configured family.
// l1w are per-expanded-coefficient ℓ1 weights, gw per-group ℓ2 weights;
// nil means the non-adaptive defaults.
func (b *builder) assemble(l1w, gw []float64) (*expr.Problem, layout, error) {
	p := expr.NewProblem()
	lay := layout{beta: p.AddContinuousBlock("beta", b.s.Size())}
	if gw == nil {
		gw = b.groupBase
	}

	if err := p.AddTerm(expr.NewLeastSquares(lay.beta, b.Xe, b.y, b.scale)); err != nil {
		return nil, lay, err
	}

	var terms []expr.Term
	add := func(t expr.Term, err error) error {
		if err != nil {
			return err
		}
		terms = append(terms, t)

		return nil
	}

	cfg := b.cfg
	var err error
	switch cfg.Family {
	case OrdinaryLeastSquares:
	case Lasso:
		err = add(penalty.L1(lay.beta, l1w, cfg.Lambda))
	case GroupLasso:
		err = add(penalty.GroupL2(b.s, lay.beta, gw, cfg.Lambda))
	case SparseGroupLasso:
		var sg []expr.Term
		sg, err = penalty.SparseGroup(b.s, lay.beta, l1w, gw, cfg.Lambda, cfg.Alpha)
		terms = append(terms, sg...)
	case RidgedGroupLasso:
		if err = add(penalty.GroupL2(b.s, lay.beta, gw, cfg.Lambda)); err == nil {
			err = add(penalty.GroupRidge(b.s, lay.beta, b.deltas))
		}
	case BestSubsetSelection:
		err = add(penalty.Ridge(lay.beta, nil, cfg.Eta))
	case RegularizedL0:
	case L1L0:
		err = add(penalty.L1(lay.beta, nil, cfg.Eta))
	case L2L0:
		err = add(penalty.Ridge(lay.beta, nil, cfg.Eta))
	}
	if err != nil {
		return nil, lay, err
	}

	if cfg.Family.MixedInteger() {
		lay.inds = constraint.Indicators(p, b.s)
		if cfg.Family != BestSubsetSelection {
			if err = add(penalty.IndicatorCost(lay.inds, cfg.Lambda)); err != nil {
				return nil, lay, err
			}
		}
		if err = constraint.BigM(p, b.s, lay.beta, lay.inds, cfg.BigM); err != nil {
			return nil, lay, err
		}
		if cfg.K > 0 {
			if err = constraint.Cardinality(p, lay.inds, cfg.K); err != nil {
				return nil, lay, err
			}
		}
		if b.hi != nil {
			if err = constraint.Hierarchy(p, b.hi, lay.inds); err != nil {
				return nil, lay, err
			}
		}
	}

	for _, t := range terms {
		if err = p.AddTerm(t); err != nil {
			return nil, lay, err
		}
	}

	return p, lay, nil
}

// reweight computes the next adaptive weights from expanded coefficients.
func (b *builder) reweight(beta []float64) (l1w, gw []float64, err error) {
	eps := b.cfg.AdaptiveEps
	switch b.cfg.Family {
	case Lasso:
		l1w, err = penalty.AdaptiveL1Weights(beta, eps)
	case GroupLasso, RidgedGroupLasso:
		gw, err = penalty.AdaptiveGroupWeights(b.s, beta, b.groupBase, eps)
	case SparseGroupLasso:
		if l1w, err = penalty.AdaptiveL1Weights(beta, eps); err == nil {
			gw, err = penalty.AdaptiveGroupWeights(b.s, beta, b.groupBase, eps)
		}
	}

	return l1w, gw, err
}
