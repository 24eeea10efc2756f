// Package estimator is the user-facing facade over the engine: fit/predict
// regressors with a flat, introspectable parameter set, composable into
// Stepwise models and consumable by the selection package.
//
// A failed Fit never disturbs the previously fitted state. Fitted
// regressors persist to YAML (MarshalYAML) and are restored with LoadFitted.
package estimator
