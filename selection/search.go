// SPDX-License-Identifier: MIT

package selection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/estimator"
)

// Method picks the best candidate from cross-validated scores.
type Method int

const (
	// MaxScore picks the highest mean score (first wins ties).
	MaxScore Method = iota
	// OneStdScore picks, among candidates whose mean is within one standard
	// deviation of the best mean, the one with the largest complexity
	// parameter (the most regularized); ties go to the higher mean.
	OneStdScore
)

// String returns the configuration name of m.
func (m Method) String() string {
	switch m {
	case MaxScore:
		return "max_score"
	case OneStdScore:
		return "one_std_score"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a configuration name to a Method; "" selects MaxScore.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "max_score", "max":
		return MaxScore, nil
	case "one_std_score", "one_std":
		return OneStdScore, nil
	}

	return 0, errs.Configurationf("selection.ParseMethod", ErrGrid, "unknown method %q", name)
}

// DefaultComplexityParam is the parameter one-std selection maximizes.
const DefaultComplexityParam = estimator.ParamLambda

// Candidate is one evaluated parameter set.
type Candidate struct {
	Params estimator.Params
	Scores []float64
	Mean   float64
	Std    float64 // population standard deviation over folds
}

// Result reports a search.
type Result struct {
	Candidates []Candidate
	BestIndex  int
	// Best is a clone of the base estimator with the best parameters,
	// refitted on the full data.
	Best       estimator.Estimator
}

// BestParams returns the parameters of the selected candidate.
func (r *Result) BestParams() estimator.Params { return r.Candidates[r.BestIndex].Params }

// Grid maps a parameter key to the values to try.
type Grid map[string][]any

// expand returns the cartesian product of g in deterministic order
// (keys sorted, the last key varying fastest).
func (g Grid) expand() ([]estimator.Params, error) {
	if len(g) == 0 {
		return nil, errs.Configurationf("selection.Grid", ErrGrid, "empty grid")
	}
	keys := make([]string, 0, len(g))
	for k, vs := range g {
		if len(vs) == 0 {
			return nil, errs.Configurationf("selection.Grid", ErrGrid, "no values for %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []estimator.Params{{}}
	for _, k := range keys {
		next := make([]estimator.Params, 0, len(out)*len(g[k]))
		for _, base := range out {
			for _, v := range g[k] {
				ps := base.Clone()
				ps[k] = v
				next = append(next, ps)
			}
		}
		out = next
	}

	return out, nil
}

// searcher holds what both searches share.
type searcher struct {
	base       estimator.Estimator
	folds      []Fold
	scorer     Scorer
	method     Method
	complexity string
	opts       options
}

func newSearcher(base estimator.Estimator, kf KFold, n int, scorer Scorer, method Method, complexity string, opts []Option) (*searcher, error) {
	if base == nil {
		return nil, errs.Configuration("selection.search", ErrNoEstimator)
	}
	folds, err := kf.Split(n)
	if err != nil {
		return nil, err
	}
	if scorer == nil {
		scorer = NegMSE
	}
	if complexity == "" {
		complexity = DefaultComplexityParam
	}

	return &searcher{base: base, folds: folds, scorer: scorer, method: method, complexity: complexity, opts: gather(opts)}, nil
}

// evaluate cross-validates every parameter set. All sets are applied to
// clones before any fit, so invalid parameters fail fast.
func (s *searcher) evaluate(ctx context.Context, X mat.Matrix, y []float64, sets []estimator.Params) ([]Candidate, error) {
	cands := make([]Candidate, len(sets))
	var tasks []task
	for c, ps := range sets {
		if err := s.base.Clone().SetParams(ps); err != nil {
			return nil, err
		}
		cands[c] = Candidate{Params: ps, Scores: make([]float64, len(s.folds))}
		for f, fold := range s.folds {
			est := s.base.Clone()
			if err := est.SetParams(ps); err != nil {
				return nil, err
			}
			tasks = append(tasks, task{est: est, fold: fold, out: &cands[c].Scores[f]})
		}
	}
	if err := runTasks(ctx, X, y, tasks, s.scorer, s.opts.njobs); err != nil {
		return nil, err
	}
	for c := range cands {
		cands[c].Mean, cands[c].Std = stat.PopMeanStdDev(cands[c].Scores, nil)
		s.opts.logger.Debug("candidate scored",
			zap.Any("params", cands[c].Params),
			zap.Float64("mean", cands[c].Mean),
			zap.Float64("std", cands[c].Std))
	}

	return cands, nil
}

// pick applies the selection method to cands.
func (s *searcher) pick(cands []Candidate) (int, error) {
	best := 0
	for i, c := range cands {
		if c.Mean > cands[best].Mean {
			best = i
		}
	}
	if s.method != OneStdScore {
		return best, nil
	}

	threshold := cands[best].Mean - cands[best].Std
	chosen := -1
	var chosenC float64
	for i, c := range cands {
		if c.Mean < threshold {
			continue
		}
		v, err := complexityOf(c.Params, s.complexity)
		if err != nil {
			return 0, err
		}
		if chosen < 0 || v > chosenC || (v == chosenC && c.Mean > cands[chosen].Mean) {
			chosen, chosenC = i, v
		}
	}

	return chosen, nil
}

func complexityOf(ps estimator.Params, key string) (float64, error) {
	switch v := ps[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}

	return 0, errs.Configurationf("selection.OneStdScore", ErrComplexityParam, "%q=%v", key, ps[key])
}

// refit fits a clone of the base estimator with ps on the full data.
func (s *searcher) refit(ctx context.Context, X mat.Matrix, y []float64, ps estimator.Params) (estimator.Estimator, error) {
	est := s.base.Clone()
	if err := est.SetParams(ps); err != nil {
		return nil, err
	}
	if err := est.Fit(ctx, X, y); err != nil {
		return nil, err
	}
	s.opts.logger.Info("selected parameters", zap.Any("params", ps))

	return est, nil
}

// GridSearch cross-validates every point of Grid and refits the best one.
type GridSearch struct {
	Estimator estimator.Estimator
	Grid      Grid
	Folds     KFold
	Scorer    Scorer // nil ⇒ NegMSE
	Method    Method

	// ComplexityParam is maximized by OneStdScore ("" ⇒ "lambda").
	ComplexityParam string
}

// Fit runs the search on (X, y).
func (gs *GridSearch) Fit(ctx context.Context, X mat.Matrix, y []float64, opts ...Option) (*Result, error) {
	const op = "selection.GridSearch.Fit"
	n, _ := X.Dims()
	s, err := newSearcher(gs.Estimator, gs.Folds, n, gs.Scorer, gs.Method, gs.ComplexityParam, opts)
	if err != nil {
		return nil, err
	}
	sets, err := gs.Grid.expand()
	if err != nil {
		return nil, err
	}
	cands, err := s.evaluate(ctx, X, y, sets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	best, err := s.pick(cands)
	if err != nil {
		return nil, err
	}
	est, err := s.refit(ctx, X, y, cands[best].Params)
	if err != nil {
		return nil, fmt.Errorf("%s: refit: %w", op, err)
	}

	return &Result{Candidates: cands, BestIndex: best, Best: est}, nil
}

// Axis is one ordered parameter dimension of a LineSearch.
type Axis struct {
	Param  string
	Values []any
}

// LineSearch optimizes one axis at a time, holding the others at their
// current best, for NIter rounds. It starts from the first value of every
// axis. Evaluated points are cached, so a round that revisits a point does
// not refit it.
type LineSearch struct {
	Estimator       estimator.Estimator
	Axes            []Axis
	NIter           int // rounds over all axes; 0 ⇒ 1
	Folds           KFold
	Scorer          Scorer
	Method          Method
	ComplexityParam string
}

// Fit runs the search on (X, y). Result.Candidates lists every distinct
// evaluated point in evaluation order.
func (ls *LineSearch) Fit(ctx context.Context, X mat.Matrix, y []float64, opts ...Option) (*Result, error) {
	const op = "selection.LineSearch.Fit"
	n, _ := X.Dims()
	s, err := newSearcher(ls.Estimator, ls.Folds, n, ls.Scorer, ls.Method, ls.ComplexityParam, opts)
	if err != nil {
		return nil, err
	}
	if len(ls.Axes) == 0 {
		return nil, errs.Configurationf(op, ErrGrid, "no axes")
	}
	current := estimator.Params{}
	for _, ax := range ls.Axes {
		if len(ax.Values) == 0 {
			return nil, errs.Configurationf(op, ErrGrid, "no values for %q", ax.Param)
		}
		current[ax.Param] = ax.Values[0]
	}
	rounds := ls.NIter
	if rounds <= 0 {
		rounds = 1
	}

	var all []Candidate
	seen := make(map[string]int)
	bestIdx := -1
	for r := 0; r < rounds; r++ {
		for _, ax := range ls.Axes {
			sets := make([]estimator.Params, len(ax.Values))
			var fresh []estimator.Params
			for i, v := range ax.Values {
				ps := current.Clone()
				ps[ax.Param] = v
				sets[i] = ps
				if _, ok := seen[key(ps)]; !ok {
					fresh = append(fresh, ps)
				}
			}
			if len(fresh) > 0 {
				cands, err := s.evaluate(ctx, X, y, fresh)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				for _, c := range cands {
					seen[key(c.Params)] = len(all)
					all = append(all, c)
				}
			}
			line := make([]Candidate, len(sets))
			for i, ps := range sets {
				line[i] = all[seen[key(ps)]]
			}
			pick, err := s.pick(line)
			if err != nil {
				return nil, err
			}
			current = line[pick].Params
			bestIdx = seen[key(current)]
		}
	}

	est, err := s.refit(ctx, X, y, current)
	if err != nil {
		return nil, fmt.Errorf("%s: refit: %w", op, err)
	}

	return &Result{Candidates: all, BestIndex: bestIdx, Best: est}, nil
}

// key renders ps canonically for caching.
func key(ps estimator.Params) string {
	var b strings.Builder
	for _, k := range ps.Keys() {
		fmt.Fprintf(&b, "%s=%v;", k, ps[k])
	}

	return b.String()
}
