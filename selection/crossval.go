// SPDX-License-Identifier: MIT

package selection

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sparselm/estimator"
	"github.com/katalvlaran/sparselm/linalg"
)

type options struct {
	njobs  int
	logger *zap.Logger
}

// Option configures CrossValidate and the searches.
type Option func(*options)

const panicLoggerNil = "selection: WithLogger: logger must be non-nil"

// WithNJobs caps the number of concurrent fits; n ≤ 0 means GOMAXPROCS.
func WithNJobs(n int) Option {
	return func(o *options) { o.njobs = n }
}

// WithLogger sets the structured logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic(panicLoggerNil)
	}

	return func(o *options) { o.logger = l }
}

func gather(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.njobs <= 0 {
		o.njobs = runtime.GOMAXPROCS(0)
	}

	return o
}

// task is one (candidate, fold) fit.
type task struct {
	est  estimator.Estimator // unfitted clone owned by this task
	fold Fold
	out  *float64
}

// runTasks fits every task concurrently (bounded by njobs) and stores its
// test score. The first error cancels the remaining tasks.
func runTasks(ctx context.Context, X mat.Matrix, y []float64, tasks []task, scorer Scorer, njobs int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(njobs)
	for _, tk := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			Xtr := linalg.SubsetRows(X, tk.fold.Train)
			Xte := linalg.SubsetRows(X, tk.fold.Test)
			if err := tk.est.Fit(gctx, Xtr, linalg.SubsetVec(y, tk.fold.Train)); err != nil {
				return err
			}
			pred, err := tk.est.Predict(Xte)
			if err != nil {
				return err
			}
			*tk.out = scorer(linalg.SubsetVec(y, tk.fold.Test), pred)

			return nil
		})
	}

	return g.Wait()
}

// CrossValidate fits a clone of est on every fold's training rows and returns
// the score of each fold's test rows, in fold order.
func CrossValidate(ctx context.Context, est estimator.Estimator, X mat.Matrix, y []float64, folds []Fold, scorer Scorer, opts ...Option) ([]float64, error) {
	if est == nil {
		return nil, ErrNoEstimator
	}
	if scorer == nil {
		scorer = NegMSE
	}
	o := gather(opts)
	scores := make([]float64, len(folds))
	tasks := make([]task, len(folds))
	for i, f := range folds {
		tasks[i] = task{est: est.Clone(), fold: f, out: &scores[i]}
	}
	if err := runTasks(ctx, X, y, tasks, scorer, o.njobs); err != nil {
		return nil, fmt.Errorf("selection.CrossValidate: %w", err)
	}
	o.logger.Debug("cross-validated", zap.Int("folds", len(folds)), zap.Float64s("scores", scores))

	return scores, nil
}
