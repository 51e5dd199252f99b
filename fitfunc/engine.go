package fitfunc

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"github.com/blalterman/SolarWindPy-sub009/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Engine wraps the nonlinear least-squares solver. The zero value uses
// Nelder-Mead with the solver's default convergence settings and no
// runtime limit.
type Engine struct {
	// Method is the optimization method, Nelder-Mead when nil.
	Method optimize.Method
	// Settings overrides the solver settings when non-nil.
	Settings *optimize.Settings
	// Runtime aborts the solver after the given duration when positive.
	// Expiry is reported as an optimization failure.
	Runtime time.Duration
}

func NewEngine() *Engine {
	return &Engine{}
}

// residuals fills dst with weight * (fn(x, p) - y) over the used points.
func residuals(fn Model, obs *model.Observations, p []float64, dst []float64) {
	for i := range obs.UsedX {
		dst[i] = obs.UsedWeight[i] * (fn.Evaluate(obs.UsedX[i], p) - obs.UsedY[i])
	}
}

func chiSquare(fn Model, obs *model.Observations, p []float64) float64 {
	var sum float64
	for i := range obs.UsedX {
		r := obs.UsedWeight[i] * (fn.Evaluate(obs.UsedX[i], p) - obs.UsedY[i])
		sum += r * r
	}
	return sum
}

// Run fits fn to the used observations starting from p0.
// The degrees-of-freedom guard runs before the solver is invoked: with
// usedCount <= paramCount the solver is never called.
func (e *Engine) Run(ctx context.Context, fn Model, obs *model.Observations, p0 []float64) (*model.FitResult, error) {
	logger := utils.GetLogger(ctx)

	params := fn.Params()
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	if err := ValidateGuess(params, p0); err != nil {
		return nil, err
	}

	dof := obs.UsedCount() - len(params)
	if dof <= 0 {
		return nil, fmt.Errorf("%v used points for %v parameters of %v: %w",
			obs.UsedCount(), len(params), fn.Name(), common.ErrorInsufficientData)
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			if !inBounds(params, p) {
				return math.Inf(1)
			}
			return chiSquare(fn, obs, p)
		},
	}

	// copy so shared engines stay safe under concurrent fits
	var settings optimize.Settings
	if e.Settings != nil {
		settings = *e.Settings
	}
	if e.Runtime > 0 {
		settings.Runtime = e.Runtime
	}

	method := e.Method
	if method == nil {
		method = &optimize.NelderMead{}
	}

	start := ClampGuess(params, p0)

	optrslt, err := optimize.Minimize(problem, start, &settings, method)
	if err != nil {
		logger.Error("solver failed", zap.String("model", fn.Name()), zap.Error(err))
		return nil, fmt.Errorf("%v: %v: %w", fn.Name(), err, common.ErrorOptimizationFailed)
	}
	if !convergedStatus(optrslt.Status) {
		logger.Error("solver did not converge",
			zap.String("model", fn.Name()), zap.Stringer("status", optrslt.Status))
		return nil, fmt.Errorf("%v: solver status %v: %w",
			fn.Name(), optrslt.Status, common.ErrorOptimizationFailed)
	}
	for _, v := range optrslt.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v: non-finite optimum: %w", fn.Name(), common.ErrorOptimizationFailed)
		}
	}

	popt := append([]float64(nil), optrslt.X...)
	chi2 := chiSquare(fn, obs, popt)
	redChi2 := chi2 / float64(dof)

	cov, sigma := covariance(fn, obs, popt, redChi2)

	res := &model.FitResult{
		Names:            ParamNames(params),
		Popt:             popt,
		Covariance:       cov,
		Sigma:            sigma,
		ChiSquare:        chi2,
		DegreesOfFreedom: dof,
		RMSE:             math.Sqrt(chi2 / float64(obs.UsedCount())),
		Converged:        true,
		Raw:              optrslt,
	}

	logger.Info("fit converged", zap.String("model", fn.Name()),
		zap.Float64s("popt", popt), zap.Float64("chi2", chi2), zap.Int("dof", dof))

	return res, nil
}

func convergedStatus(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// covariance computes (J^T J)^-1 * reducedChiSquare at the optimum,
// where J is the Jacobian of the weighted residuals. A rank-deficient
// Jacobian produces NaN entries instead of an error; a NaN sigma means
// the uncertainty is undefined, not zero.
func covariance(fn Model, obs *model.Observations, popt []float64, redChi2 float64) (*mat.Dense, []float64) {
	m := obs.UsedCount()
	n := len(popt)

	jac := mat.NewDense(m, n, nil)
	fd.Jacobian(jac, func(dst, p []float64) {
		residuals(fn, obs, p, dst)
	}, popt, nil)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return nanMatrix(n), nanVector(n)
	}
	cov.Scale(redChi2, &cov)

	sigma := make([]float64, n)
	for i := 0; i < n; i++ {
		d := cov.At(i, i)
		if d < 0 {
			sigma[i] = math.NaN()
			continue
		}
		sigma[i] = math.Sqrt(d)
	}

	return &cov, sigma
}

func nanMatrix(n int) *mat.Dense {
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			res.Set(i, j, math.NaN())
		}
	}
	return res
}

func nanVector(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	return res
}
