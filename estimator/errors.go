// SPDX-License-Identifier: MIT

package estimator

import "errors"

var (
	// ErrNotFitted indicates Predict/Score/Marshal on an estimator without a
	// successful fit.
	ErrNotFitted = errors.New("estimator: not fitted")

	// ErrUnknownParam indicates a parameter key the estimator does not expose.
	ErrUnknownParam = errors.New("estimator: unknown parameter")

	// ErrParamType indicates a parameter value of the wrong dynamic type.
	ErrParamType = errors.New("estimator: parameter has wrong type")

	// ErrScope indicates stepwise scopes that do not partition the covariates.
	ErrScope = errors.New("estimator: invalid step scopes")

	// ErrStep indicates an empty, duplicated or malformed step name, or a nil step.
	ErrStep = errors.New("estimator: invalid step")

	// ErrSnapshot indicates a persisted model that cannot be restored.
	ErrSnapshot = errors.New("estimator: invalid snapshot")
)
