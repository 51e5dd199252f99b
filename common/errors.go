package common

import "errors"

var (
	// ErrorShapeMismatch: input arrays have different lengths, always fatal to the call.
	ErrorShapeMismatch = errors.New("input arrays have mismatched lengths")

	// ErrorInsufficientData: fewer usable points than free parameters,
	// or a degenerate initial guess computation (zero variance, empty data).
	ErrorInsufficientData = errors.New("insufficient data for fit")

	// ErrorConfiguration: malformed parameter metadata, invalid bounds or
	// invalid masking configuration. Indicates a programmer error.
	ErrorConfiguration = errors.New("invalid fit configuration")

	// ErrorOptimizationFailed: the solver did not converge within its
	// iteration or runtime limits.
	ErrorOptimizationFailed = errors.New("optimizer failed to converge")

	// ErrorInsufficientTrendData: not enough converged groups for the trend fit.
	ErrorInsufficientTrendData = errors.New("not enough converged groups for trend fit")

	// ErrorNotFitted: a derived quantity was requested before a successful fit.
	ErrorNotFitted = errors.New("fit has not been performed")
)
