package fitfunc

import (
	"fmt"
	"math"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Exponential implements y = amplitude * exp(rate*x).
type Exponential struct{}

func NewExponential() *Exponential {
	return &Exponential{}
}

func (e *Exponential) Name() string {
	return "exponential"
}

func (e *Exponential) Params() []model.Param {
	return []model.Param{
		model.NewParam("amplitude"),
		model.NewParam("rate"),
	}
}

func (e *Exponential) Evaluate(x float64, params []float64) float64 {
	return params[0] * math.Exp(params[1]*x)
}

// InitialGuess fits log|y| vs x linearly. The sign of the amplitude
// follows the sign of the mean of y.
func (e *Exponential) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(e.Name(), obs, 2); err != nil {
		return nil, err
	}

	var xs, lys []float64
	for i, y := range obs.UsedY {
		if math.Abs(y) < DegenerateEps {
			continue
		}
		xs = append(xs, obs.UsedX[i])
		lys = append(lys, math.Log(math.Abs(y)))
	}
	if err := requireSpread(e.Name(), xs); err != nil {
		return nil, err
	}

	alpha, beta := stat.LinearRegression(xs, lys, nil, false)

	sign := 1.0
	if floats.Sum(obs.UsedY) < 0 {
		sign = -1.0
	}

	return []float64{sign * math.Exp(alpha), beta}, nil
}

// ExponentialPlusConstant implements y = amplitude * exp(rate*x) + constant.
type ExponentialPlusConstant struct{}

func NewExponentialPlusConstant() *ExponentialPlusConstant {
	return &ExponentialPlusConstant{}
}

func (e *ExponentialPlusConstant) Name() string {
	return "exponential_plus_constant"
}

func (e *ExponentialPlusConstant) Params() []model.Param {
	return []model.Param{
		model.NewParam("amplitude"),
		model.NewParam("rate"),
		model.NewParam("constant"),
	}
}

func (e *ExponentialPlusConstant) Evaluate(x float64, params []float64) float64 {
	return params[0]*math.Exp(params[1]*x) + params[2]
}

// InitialGuess estimates the offset from the smallest y value, then
// fits the remaining exponential part in log space.
func (e *ExponentialPlusConstant) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(e.Name(), obs, 3); err != nil {
		return nil, err
	}
	if err := requireSpread(e.Name(), obs.UsedX); err != nil {
		return nil, err
	}

	lo := floats.Min(obs.UsedY)
	rng := floats.Max(obs.UsedY) - lo
	if rng < DegenerateEps {
		return nil, fmt.Errorf("%v: zero variance in y: %w", e.Name(), common.ErrorInsufficientData)
	}

	// Shift slightly above the minimum so every log argument is positive.
	shift := lo - 1e-3*rng

	xs := make([]float64, obs.UsedCount())
	lys := make([]float64, obs.UsedCount())
	for i, y := range obs.UsedY {
		xs[i] = obs.UsedX[i]
		lys[i] = math.Log(y - shift)
	}

	alpha, beta := stat.LinearRegression(xs, lys, nil, false)

	return []float64{math.Exp(alpha), beta, shift}, nil
}
