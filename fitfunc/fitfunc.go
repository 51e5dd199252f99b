package fitfunc

import (
	"context"
	"fmt"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"github.com/blalterman/SolarWindPy-sub009/utils"
	"go.uber.org/zap"
)

// Model is one concrete curve family that can be fit to observations.
// Evaluate must be pure. InitialGuess must fail with
// common.ErrorInsufficientData on empty or degenerate observations
// instead of letting a division or log reach a zero-length array.
type Model interface {
	Name() string
	Params() []model.Param
	Evaluate(x float64, params []float64) float64
	InitialGuess(obs *model.Observations) ([]float64, error)
}

// FitFunction owns one Observations snapshot, one model and, after a
// successful Fit, one FitResult. Derived accessors are only valid after
// a successful fit; before that they return common.ErrorNotFitted.
type FitFunction struct {
	fn     Model
	obs    *model.Observations
	engine *Engine
	result *model.FitResult
	fited  bool
}

// NewFitFunction masks the raw data with opts and builds an unfitted
// instance. A nil weight array means uniform weight 1.
func NewFitFunction(fn Model, x, y, weight []float64, opts *FilterOptions) (*FitFunction, error) {
	if err := ValidateParams(fn.Params()); err != nil {
		return nil, err
	}

	obs, err := opts.Apply(x, y, weight)
	if err != nil {
		return nil, err
	}

	return &FitFunction{
		fn:     fn,
		obs:    obs,
		engine: NewEngine(),
	}, nil
}

// SetEngine replaces the default solver configuration.
func (f *FitFunction) SetEngine(e *Engine) *FitFunction {
	f.engine = e
	return f
}

// Fit runs initial guess and solver over the used observations. On
// success the result replaces any prior one; on failure the instance
// keeps its pre-fit state and the error is returned to the caller.
func (f *FitFunction) Fit(ctx context.Context) (*model.FitResult, error) {
	logger := utils.GetLogger(ctx)
	logger.Info("begin fit", zap.String("model", f.fn.Name()),
		zap.String("observations", f.obs.DebugString()))

	p0, err := f.fn.InitialGuess(f.obs)
	if err != nil {
		return nil, err
	}

	res, err := f.engine.Run(ctx, f.fn, f.obs, p0)
	if err != nil {
		return nil, err
	}

	f.result = res
	f.fited = true
	return res, nil
}

// Fitted reports whether a successful fit has been performed.
func (f *FitFunction) Fitted() bool {
	return f.fited
}

// ModelName returns the name of the underlying model.
func (f *FitFunction) ModelName() string {
	return f.fn.Name()
}

// ParamNames returns the ordered parameter names of the model.
// Valid before a fit; the order matches Popt after one.
func (f *FitFunction) ParamNames() []string {
	return ParamNames(f.fn.Params())
}

// Observations returns the raw and used data views.
func (f *FitFunction) Observations() *model.Observations {
	return f.obs
}

// Result returns the fit result, or ErrorNotFitted before a successful fit.
func (f *FitFunction) Result() (*model.FitResult, error) {
	if !f.fited {
		return nil, fmt.Errorf("%v: %w", f.fn.Name(), common.ErrorNotFitted)
	}
	return f.result, nil
}

// Popt returns the optimal parameter vector.
func (f *FitFunction) Popt() ([]float64, error) {
	res, err := f.Result()
	if err != nil {
		return nil, err
	}
	return res.Popt, nil
}

// Sigma returns the 1-sigma parameter uncertainties.
func (f *FitFunction) Sigma() ([]float64, error) {
	res, err := f.Result()
	if err != nil {
		return nil, err
	}
	return res.Sigma, nil
}

// RelativeSigma returns |sigma/popt| per parameter.
func (f *FitFunction) RelativeSigma() ([]float64, error) {
	res, err := f.Result()
	if err != nil {
		return nil, err
	}
	return res.RelativeSigma(), nil
}

// ChiSquare returns the sum of squared weighted residuals at the optimum.
func (f *FitFunction) ChiSquare() (float64, error) {
	res, err := f.Result()
	if err != nil {
		return 0, err
	}
	return res.ChiSquare, nil
}

// DegreesOfFreedom returns usedCount - paramCount for the fitted model.
func (f *FitFunction) DegreesOfFreedom() (int, error) {
	res, err := f.Result()
	if err != nil {
		return 0, err
	}
	return res.DegreesOfFreedom, nil
}

// EvaluateFit evaluates the fitted model at x.
func (f *FitFunction) EvaluateFit(x float64) (float64, error) {
	res, err := f.Result()
	if err != nil {
		return 0, err
	}
	return f.fn.Evaluate(x, res.Popt), nil
}
