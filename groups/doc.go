// Package groups resolves user-supplied covariate groupings into the
// canonical structure consumed by the objective builders.
//
// What:
//
//   - Resolve: normalizes an Assignment (covariate → group IDs, overlap
//     permitted) into an immutable Structure with a stable, first-seen
//     group order.
//   - Overlap expansion: every (covariate, group) membership becomes one
//     expanded variable; a back-map sends expanded indices to covariates.
//     Without overlap the expansion is the identity map.
//   - Aggregate: folds expanded coefficients back onto covariates under a
//     policy (sum by default, first-nonzero, max-abs).
//   - ResolveHierarchy: validates a dependency relation between groups
//     (known IDs, acyclic) with a White/Gray/Black depth-first topological
//     sort and returns it over canonical group indices.
//
// Why:
//
//   - Overlapping group penalties are only separable over disjoint groups;
//     duplicating variables restores separability and keeps aggregation an
//     auditable array operation.
//   - Deterministic ordering makes fits reproducible for identical inputs.
//
// Errors:
//
//   - ErrUncoveredCovariate   a covariate belongs to no group
//   - ErrCyclicHierarchy      the hierarchy has a cycle
//   - ErrUnknownGroup         a referenced group ID does not exist
//   - ErrDimensionMismatch    p and assignment/vector sizes differ
//
// All of them are returned wrapped in errs.ConfigurationError.
//
// Complexity:
//
//   - Resolve:           O(Σ|g|)
//   - Aggregate:         O(Σ|g|)
//   - ResolveHierarchy:  O(G + E log E)
package groups
