// Package sparselm fits structured-sparsity linear regression models:
// lasso and group lasso with their adaptive, sparse-group and ridged
// variants, and mixed-integer ℓ0 families (best subset, regularized ℓ0,
// ℓ1ℓ0, ℓ2ℓ0) with hierarchy and cardinality constraints over groups.
//
// What's inside?
//
//   - Grouped covariates: disjoint or overlapping groups, resolved once into
//     an immutable structure; overlap handled by design expansion.
//   - One engine, many families: every family is a composition of loss,
//     penalty and constraint terms solved by a pluggable oracle.
//   - Honest results: solver statuses map to errors, warnings or a
//     Certified flag; adaptive loops report non-convergence.
//   - Model selection: k-fold CV, grid and line search with one-std rules.
//
// Packages:
//
//	groups/      group assignment, structure, overlap expansion, hierarchy
//	penalty/     ℓ1, group ℓ2, ridge and indicator-cost term builders
//	constraint/  Big-M, cardinality and hierarchy implications
//	expr/        problem descriptor: variables, terms, constraints
//	solver/      oracle contract; direct, proximal, bnb and dispatch backends
//	engine/      objective composition, adaptive loop, fit lifecycle
//	estimator/   Regressor, constructors, Stepwise, YAML persistence
//	selection/   KFold, CrossValidate, GridSearch, LineSearch
//	metrics/     Prometheus collectors fed by engine fit events
//	cmd/sparselm command-line fit and cv (cobra, viper)
//
// Quick example:
//
//	r := estimator.NewGroupLasso(groups.FromLabels([]int{0, 0, 1, 1, 2}), 0.1)
//	if err := r.Fit(ctx, X, y); err != nil {
//		return err
//	}
//	yhat, _ := r.Predict(Xnew)
//
//	go get github.com/katalvlaran/sparselm
package sparselm
