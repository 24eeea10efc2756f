// Package selection provides k-fold cross-validation and hyperparameter
// search (exhaustive GridSearch and coordinate-wise LineSearch) over
// estimator.Estimator values.
//
// Every fit runs on a fresh clone, so the base estimator is never mutated.
// Fold fits run concurrently under an errgroup bounded by WithNJobs; the
// first failure cancels the rest. Candidates are chosen by MaxScore or by
// OneStdScore, which prefers the largest ComplexityParam whose mean score is
// within one standard deviation of the best.
package selection
