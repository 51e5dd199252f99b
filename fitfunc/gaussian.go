package fitfunc

import (
	"fmt"
	"math"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gaussianMoments estimates mean and width from x weighted by the
// non-negative weights ws. A zero weight total or zero width is the
// degenerate case and reported as insufficient data.
func gaussianMoments(name string, xs, ws []float64) (mean, width float64, err error) {
	if floats.Sum(ws) < DegenerateEps {
		return 0, 0, fmt.Errorf("%v: zero total weight for moments: %w", name, common.ErrorInsufficientData)
	}

	mean = stat.Mean(xs, ws)
	width = stat.StdDev(xs, ws)
	if math.IsNaN(width) || width < DegenerateEps {
		return 0, 0, fmt.Errorf("%v: zero width estimate: %w", name, common.ErrorInsufficientData)
	}
	return mean, width, nil
}

// Gaussian implements y = amplitude * exp(-(x-mean)^2 / (2*width^2)).
type Gaussian struct{}

func NewGaussian() *Gaussian {
	return &Gaussian{}
}

func (g *Gaussian) Name() string {
	return "gaussian"
}

func (g *Gaussian) Params() []model.Param {
	return []model.Param{
		model.NewParam("amplitude"),
		model.NewParam("mean"),
		model.BoundedParam("width", MinPositiveWidth, math.Inf(1)),
	}
}

func (g *Gaussian) Evaluate(x float64, params []float64) float64 {
	u := (x - params[1]) / params[2]
	return params[0] * math.Exp(-u*u/2)
}

// InitialGuess uses the sample peak and the first two moments of x
// weighted by the baseline-shifted y values.
func (g *Gaussian) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(g.Name(), obs, 3); err != nil {
		return nil, err
	}
	if err := requireSpread(g.Name(), obs.UsedX); err != nil {
		return nil, err
	}

	lo := floats.Min(obs.UsedY)
	ws := make([]float64, obs.UsedCount())
	for i, y := range obs.UsedY {
		ws[i] = y - lo
	}

	mean, width, err := gaussianMoments(g.Name(), obs.UsedX, ws)
	if err != nil {
		return nil, err
	}

	return []float64{floats.Max(obs.UsedY), mean, width}, nil
}

// GaussianNormalized implements the area-normalized form
// y = area / (width*sqrt(2*pi)) * exp(-(x-mean)^2 / (2*width^2)).
type GaussianNormalized struct{}

func NewGaussianNormalized() *GaussianNormalized {
	return &GaussianNormalized{}
}

func (g *GaussianNormalized) Name() string {
	return "gaussian_normalized"
}

func (g *GaussianNormalized) Params() []model.Param {
	return []model.Param{
		model.BoundedParam("area", MinPositiveWidth, math.Inf(1)),
		model.NewParam("mean"),
		model.BoundedParam("width", MinPositiveWidth, math.Inf(1)),
	}
}

func (g *GaussianNormalized) Evaluate(x float64, params []float64) float64 {
	u := (x - params[1]) / params[2]
	return params[0] / (params[2] * math.Sqrt(2*math.Pi)) * math.Exp(-u*u/2)
}

func (g *GaussianNormalized) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(g.Name(), obs, 3); err != nil {
		return nil, err
	}
	if err := requireSpread(g.Name(), obs.UsedX); err != nil {
		return nil, err
	}

	lo := floats.Min(obs.UsedY)
	ws := make([]float64, obs.UsedCount())
	for i, y := range obs.UsedY {
		ws[i] = y - lo
	}

	mean, width, err := gaussianMoments(g.Name(), obs.UsedX, ws)
	if err != nil {
		return nil, err
	}

	area := floats.Max(obs.UsedY) * width * math.Sqrt(2*math.Pi)
	return []float64{area, mean, width}, nil
}

// GaussianLogarithmic implements the log of a Gaussian,
// y = logAmplitude - (x-mean)^2 / (2*width^2), for observations whose
// y values were log-transformed by the filter.
type GaussianLogarithmic struct{}

func NewGaussianLogarithmic() *GaussianLogarithmic {
	return &GaussianLogarithmic{}
}

func (g *GaussianLogarithmic) Name() string {
	return "gaussian_logarithmic"
}

func (g *GaussianLogarithmic) Params() []model.Param {
	return []model.Param{
		model.NewParam("log_amplitude"),
		model.NewParam("mean"),
		model.BoundedParam("width", MinPositiveWidth, math.Inf(1)),
	}
}

func (g *GaussianLogarithmic) Evaluate(x float64, params []float64) float64 {
	u := (x - params[1]) / params[2]
	return params[0] - u*u/2
}

// InitialGuess exponentiates the log-space values back into linear
// space to compute moment weights, which keeps them non-negative.
func (g *GaussianLogarithmic) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(g.Name(), obs, 3); err != nil {
		return nil, err
	}
	if err := requireSpread(g.Name(), obs.UsedX); err != nil {
		return nil, err
	}

	peak := floats.Max(obs.UsedY)
	ws := make([]float64, obs.UsedCount())
	for i, y := range obs.UsedY {
		ws[i] = math.Exp(y - peak)
	}

	mean, width, err := gaussianMoments(g.Name(), obs.UsedX, ws)
	if err != nil {
		return nil, err
	}

	return []float64{peak, mean, width}, nil
}
