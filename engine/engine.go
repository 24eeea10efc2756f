// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/errs"
	"github.com/katalvlaran/sparselm/expr"
	"github.com/katalvlaran/sparselm/groups"
	"github.com/katalvlaran/sparselm/linalg"
	"github.com/katalvlaran/sparselm/solver"
	"github.com/katalvlaran/sparselm/solver/dispatch"
)

// indicatorOn is the threshold above which a relaxed or rounded indicator
// counts as selected.
const indicatorOn = 0.5

// Engine composes and solves structured-sparsity regressions.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	oracle   solver.Oracle
	logger   *zap.Logger
	observer Observer
}

// New returns an Engine; without options it routes through dispatch.New(),
// logs nothing and observes nothing.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, fn := range opts {
		fn(e)
	}
	if e.oracle == nil {
		e.oracle = dispatch.New()
	}

	return e
}

// Oracle returns the configured oracle.
func (e *Engine) Oracle() solver.Oracle { return e.oracle }

// Result is the outcome of a successful fit.
type Result struct {
	// Coef has one entry per covariate, after aggregation of duplicates.
	Coef      []float64
	Intercept float64

	// Certified is true when the final solve was certified optimal.
	Certified bool
	Warnings  []errs.Warning

	Status    solver.Status
	Objective float64
	Bound     float64

	// Iterations sums oracle iterations over every adaptive round;
	// AdaptiveIters counts the rounds (1 for non-adaptive fits).
	Iterations    int
	AdaptiveIters int
	Nodes         int

	// Indicators reports z_g per group ID for MIQP families (nil otherwise).
	Indicators map[groups.ID]bool
	// Expanded is the coefficient vector over the expanded index space.
	Expanded []float64

	State   State
	Backend string
	FitID   string
}

// router is implemented by oracles that delegate to another oracle.
type router interface {
	Route(p *expr.Problem) solver.Oracle
}

func (e *Engine) backendName(p *expr.Problem) string {
	if r, ok := e.oracle.(router); ok {
		return r.Route(p).Name()
	}

	return e.oracle.Name()
}

// prepared carries the validated inputs of one fit.
type prepared struct {
	b     *builder
	means []float64 // column means of X (nil without intercept)
	ybar  float64
}

// prepare runs every validation that can fail before the first solve and
// builds the (centered, expanded) design.
func prepare(X mat.Matrix, y []float64, a groups.Assignment, cfg Config, h groups.Hierarchy) (*prepared, error) {
	const op = "engine.Fit"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n, _, err := linalg.ValidateDesign(X)
	if err != nil {
		return nil, errs.Configuration(op, fmt.Errorf("%w: %w", ErrInput, err))
	}
	if err = linalg.ValidateResponse(y, n); err != nil {
		return nil, errs.Configuration(op, fmt.Errorf("%w: %w", ErrInput, err))
	}

	s, err := groups.Resolve(len(a), a)
	if err != nil {
		return nil, err
	}
	if err = linalg.ValidateCols(X, s.NumCovariates()); err != nil {
		return nil, errs.Configuration(op, fmt.Errorf("%w: %w", groups.ErrDimensionMismatch, err))
	}

	var hi *groups.HierarchyIndex
	if len(h) > 0 {
		if !cfg.Family.MixedInteger() {
			return nil, errs.Configurationf(op, ErrHierarchyFamily, "%v", cfg.Family)
		}
		if hi, err = s.ResolveHierarchy(h); err != nil {
			return nil, err
		}
	}

	groupBase, err := s.PerGroup(cfg.GroupWeights, 1)
	if err != nil {
		return nil, errs.Configuration(op, err)
	}
	ridge, err := s.PerGroup(cfg.GroupRidge, 1)
	if err != nil {
		return nil, errs.Configuration(op, err)
	}
	for g := range ridge {
		ridge[g] *= cfg.Eta
	}

	pr := &prepared{}
	Xd := mat.DenseCopyOf(X)
	yc := append([]float64(nil), y...)
	if cfg.FitIntercept {
		pr.means = linalg.ColumnMeans(Xd)
		linalg.CenterColumns(Xd, pr.means)
		yc, pr.ybar = linalg.Center(y)
	}
	Xe := Xd
	if s.Overlapping() {
		if Xe, err = s.Expand(Xd); err != nil {
			return nil, err
		}
	}

	pr.b = &builder{
		cfg:       cfg,
		s:         s,
		hi:        hi,
		Xe:        Xe,
		y:         yc,
		scale:     1 / (2 * float64(n)),
		groupBase: groupBase,
		deltas:    ridge,
	}

	return pr, nil
}

// Fit resolves the group structure, assembles the descriptor of cfg.Family,
// runs the adaptive loop when requested and returns aggregated coefficients.
//
// Contract:
//   - every configuration and data check happens before the first oracle call;
//   - Infeasible, NumericalFailure and Unsupported statuses yield *errs.SolveError;
//   - Suboptimal and Inaccurate statuses yield a Result with Certified=false
//     and an errs.NotCertified warning;
//   - an adaptive loop that hits MaxAdaptiveIters adds errs.AdaptiveNotConverged.
//
// Complexity: dominated by the oracle; preparation is O(n·Size).
func (e *Engine) Fit(ctx context.Context, X mat.Matrix, y []float64, a groups.Assignment, cfg Config, h groups.Hierarchy) (res *Result, err error) {
	fitID := uuid.NewString()
	log := e.logger.With(zap.String("fit_id", fitID), zap.Stringer("family", cfg.Family))
	m := &machine{hook: func(from, to State) {
		log.Debug("fit transition", zap.Stringer("from", from), zap.Stringer("to", to))
	}}

	started := time.Now()
	ev := FitEvent{FitID: fitID, Family: cfg.Family}
	defer func() {
		if err != nil {
			m.to(Failed)
			log.Debug("fit failed", zap.Error(err))
		}
		ev.State = m.state
		ev.Duration = time.Since(started)
		ev.Err = err
		e.observer.ObserveFit(ev)
	}()

	pr, err := prepare(X, y, a, cfg, h)
	if err != nil {
		return nil, err
	}
	m.to(StructureResolved)

	res, err = e.solve(ctx, m, pr, &ev, log)
	if err != nil {
		return nil, err
	}
	res.FitID = fitID
	ev.Backend = res.Backend
	ev.Status = res.Status
	ev.Warnings = len(res.Warnings)
	for _, w := range res.Warnings {
		log.Warn("fit warning", zap.Stringer("kind", w.Kind), zap.String("message", w.Message))
	}

	return res, nil
}

// solve runs the assemble → solve (→ reweight)* loop and post-processes.
func (e *Engine) solve(ctx context.Context, m *machine, pr *prepared, ev *FitEvent, log *zap.Logger) (*Result, error) {
	const op = "engine.Fit"
	b := pr.b
	cfg := b.cfg

	var (
		l1w, gw  []float64
		x0       []float64
		sol      solver.Solution
		lay      layout
		backend  string
		warnings []errs.Warning
		iters    int
	)
	prev := make([]float64, b.s.Size())
	beta := prev
	rounds := 1
	if cfg.Adaptive {
		rounds = cfg.MaxAdaptiveIters
	}

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		var (
			p   *expr.Problem
			err error
		)
		if p, lay, err = b.assemble(l1w, gw); err != nil {
			return nil, errs.Configuration(op, err)
		}
		m.to(ProblemAssembled)
		backend = e.backendName(p)

		m.to(SolvingIterating)
		sol, err = solver.SolveFrom(ctx, e.oracle, p, x0)
		iters += sol.Iterations
		ev.AdaptiveIters = round
		ev.Iterations = iters
		ev.Nodes += sol.Nodes
		ev.Backend = backend
		ev.Status = sol.Status
		if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !sol.Status.Usable() {
			return nil, &errs.SolveError{Op: op, Backend: backend, Status: sol.Status.String(), Err: err}
		}
		if len(sol.X) != p.NumVars() {
			ev.Status = solver.StatusNumericalFailure
			return nil, &errs.SolveError{
				Op:      op,
				Backend: backend,
				Status:  solver.StatusNumericalFailure.String(),
				Err:     fmt.Errorf("%w: got %d, want %d", ErrOracleReply, len(sol.X), p.NumVars()),
			}
		}
		if err != nil {
			log.Warn("oracle error with usable status",
				zap.String("backend", backend),
				zap.Stringer("status", sol.Status),
				zap.Error(err))
		}
		log.Debug("oracle returned",
			zap.Int("round", round),
			zap.String("backend", backend),
			zap.Stringer("status", sol.Status),
			zap.Float64("objective", sol.Objective),
			zap.Int("iterations", sol.Iterations),
			zap.Int("nodes", sol.Nodes))

		beta = linalg.SubsetVec(sol.X, lay.beta)
		if !cfg.Adaptive {
			break
		}
		delta := linalg.MaxAbsDiff(beta, prev)
		if delta <= cfg.AdaptiveTol {
			break
		}
		if round >= rounds {
			warnings = append(warnings, errs.Warning{
				Kind:    errs.AdaptiveNotConverged,
				Message: fmt.Sprintf("max |Δβ| = %.3g > tol %.3g after %d rounds", delta, cfg.AdaptiveTol, round),
			})
			break
		}
		if l1w, gw, err = b.reweight(beta); err != nil {
			return nil, errs.Configuration(op, err)
		}
		prev = beta
		x0 = sol.X
	}

	if !sol.Status.Certified() {
		warnings = append(warnings, errs.Warning{
			Kind:    errs.NotCertified,
			Message: fmt.Sprintf("%s returned %s (gap %.3g)", backend, sol.Status, sol.Gap()),
		})
	}

	coef, err := b.s.Aggregate(beta, cfg.Aggregation)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Coef:          coef,
		Certified:     sol.Status.Certified(),
		Warnings:      warnings,
		Status:        sol.Status,
		Objective:     sol.Objective,
		Bound:         sol.Bound,
		Iterations:    iters,
		AdaptiveIters: ev.AdaptiveIters,
		Nodes:         ev.Nodes,
		Expanded:      beta,
		Backend:       backend,
	}
	if cfg.FitIntercept {
		res.Intercept = pr.ybar
		for j, c := range coef {
			res.Intercept -= pr.means[j] * c
		}
	}
	if lay.inds != nil {
		res.Indicators = make(map[groups.ID]bool, len(lay.inds))
		for g, v := range lay.inds {
			res.Indicators[b.s.GroupID(g)] = sol.X[v] > indicatorOn
		}
	}
	m.to(Solved)
	res.State = m.state

	return res, nil
}
