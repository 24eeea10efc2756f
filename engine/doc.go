// Package engine is the objective composition engine of sparselm.
//
// Given a design matrix, a group assignment, a Config naming one of the
// closed set of model families, and an optional hierarchy, Fit:
//
//  1. validates configuration and data, resolves the group structure and the
//     hierarchy (every ConfigurationError surfaces here, before any solve);
//  2. centers X and y when FitIntercept is set and expands the design over
//     the duplicated index space of overlapping groups;
//  3. assembles the family's loss, penalty and constraint terms into one
//     expr.Problem;
//  4. solves it through a solver.Oracle, repeating with reweighted penalties
//     for adaptive variants until max|Δβ| ≤ AdaptiveTol or the round cap;
//  5. folds duplicated coefficients back onto covariates (sum by default)
//     and recovers the intercept as ȳ − x̄ᵀβ.
//
// The loss is (1/(2n))·||Xβ − y||². Oracle statuses Infeasible,
// NumericalFailure and Unsupported fail the fit with errs.SolveError;
// Suboptimal and Inaccurate succeed with Certified=false and a warning.
//
// Families:
//
//	ols                  loss
//	lasso                loss + λ Σ w_i|β_i|
//	group_lasso          loss + λ Σ_g w_g √|g| ||β_g||
//	sparse_group_lasso   loss + λ[(1−α) group + α ℓ1]
//	ridged_group_lasso   group_lasso + Σ_g η·r_g ||β_g||²
//	best_subset          loss + η||β||², |β_i| ≤ M z_g, Σz ≤ k, hierarchy
//	regularized_l0       loss + λ Σz, Big-M, hierarchy, optional k
//	l1l0                 loss + λ Σz + η||β||₁, Big-M, hierarchy, optional k
//	l2l0                 loss + λ Σz + η||β||², Big-M, hierarchy, optional k
//
// An Engine is stateless between calls and safe for concurrent use.
package engine
