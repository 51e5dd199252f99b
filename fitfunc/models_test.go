package fitfunc

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"github.com/blalterman/SolarWindPy-sub009/utils"
	"github.com/stretchr/testify/require"
)

// synthesize builds noisy observations from a model's true parameters.
func synthesize(fn Model, truth []float64, xs []float64, noise float64, seed int64) ([]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = fn.Evaluate(x, truth) + noise*rng.NormFloat64()
	}
	return xs, ys
}

func fitRoundTrip(t *testing.T, fn Model, truth []float64, xs []float64, noise float64, tol float64) []float64 {
	t.Helper()

	x, y := synthesize(fn, truth, xs, noise, 42)

	ff, err := NewFitFunction(fn, x, y, nil, nil)
	require.NoError(t, err)

	res, err := ff.Fit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Len(t, res.Popt, len(truth))

	for i, want := range truth {
		require.InDelta(t, want, res.Popt[i], tol*math.Max(math.Abs(want), 1),
			"parameter %v (%v)", i, res.Names[i])
	}
	return res.Popt
}

func TestLineRoundTrip(t *testing.T) {
	xs := utils.Linspace(0, 10, 50)
	fitRoundTrip(t, NewLine(), []float64{2.0, 1.0}, xs, 0.01, 0.05)
}

func TestExponentialRoundTrip(t *testing.T) {
	xs := utils.Linspace(0, 2, 50)
	fitRoundTrip(t, NewExponential(), []float64{1.5, -0.8}, xs, 0.002, 0.05)
}

func TestExponentialPlusConstantRoundTrip(t *testing.T) {
	xs := utils.Linspace(0, 3, 80)
	fitRoundTrip(t, NewExponentialPlusConstant(), []float64{2.0, -1.5, 0.5}, xs, 0.002, 0.1)
}

func TestGaussianRoundTrip(t *testing.T) {
	xs := utils.Linspace(-4, 6, 100)
	fitRoundTrip(t, NewGaussian(), []float64{3.0, 1.0, 0.8}, xs, 0.005, 0.05)
}

func TestGaussianNormalizedRoundTrip(t *testing.T) {
	xs := utils.Linspace(-4, 6, 100)
	fitRoundTrip(t, NewGaussianNormalized(), []float64{2.0, 1.0, 0.8}, xs, 0.005, 0.05)
}

func TestGaussianLogarithmicRoundTrip(t *testing.T) {
	// log-space observations of a Gaussian with peak log-amplitude 1.2
	xs := utils.Linspace(-2, 4, 80)
	fitRoundTrip(t, NewGaussianLogarithmic(), []float64{1.2, 1.0, 0.9}, xs, 0.005, 0.05)
}

func TestPowerLawRoundTrip(t *testing.T) {
	xs := utils.Linspace(0.5, 10, 60)
	fitRoundTrip(t, NewPowerLaw(), []float64{2.0, -1.3}, xs, 0.002, 0.05)
}

func TestGaussianLogarithmicWithLogFilter(t *testing.T) {
	// linear-space Gaussian samples fit in log space through the filter
	truth := []float64{3.0, 1.0, 0.8}
	g := NewGaussian()
	xs := utils.Linspace(-1.5, 3.5, 80)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = g.Evaluate(x, truth)
	}

	ff, err := NewFitFunction(NewGaussianLogarithmic(), xs, ys, nil, &FilterOptions{LogY: true})
	require.NoError(t, err)

	res, err := ff.Fit(context.Background())
	require.NoError(t, err)

	require.InDelta(t, math.Log(truth[0]), res.Popt[0], 0.05)
	require.InDelta(t, truth[1], res.Popt[1], 0.05)
	require.InDelta(t, truth[2], res.Popt[2], 0.05)
}

func TestInitialGuessEmptyObservations(t *testing.T) {
	empty := &model.Observations{}

	models := []Model{
		NewLine(),
		NewExponential(),
		NewExponentialPlusConstant(),
		NewGaussian(),
		NewGaussianNormalized(),
		NewGaussianLogarithmic(),
		NewPowerLaw(),
	}
	for _, fn := range models {
		t.Run(fn.Name(), func(t *testing.T) {
			_, err := fn.InitialGuess(empty)
			require.ErrorIs(t, err, common.ErrorInsufficientData)
		})
	}
}

func TestInitialGuessZeroVariance(t *testing.T) {
	// identical x values: zero local variance must not divide by zero
	var opts *FilterOptions
	obs, err := opts.Apply([]float64{2, 2, 2, 2}, []float64{1, 2, 3, 4}, nil)
	require.NoError(t, err)

	models := []Model{
		NewLine(),
		NewExponential(),
		NewExponentialPlusConstant(),
		NewGaussian(),
		NewGaussianNormalized(),
		NewGaussianLogarithmic(),
	}
	for _, fn := range models {
		t.Run(fn.Name(), func(t *testing.T) {
			p0, err := fn.InitialGuess(obs)
			require.ErrorIs(t, err, common.ErrorInsufficientData)
			require.Nil(t, p0)
		})
	}
}

func TestGaussianGuessZeroWidth(t *testing.T) {
	// flat y puts all moment weight at zero
	var opts *FilterOptions
	obs, err := opts.Apply([]float64{0, 1, 2, 3}, []float64{5, 5, 5, 5}, nil)
	require.NoError(t, err)

	_, err = NewGaussian().InitialGuess(obs)
	require.ErrorIs(t, err, common.ErrorInsufficientData)
}

func TestModelBoundsAreValid(t *testing.T) {
	models := []Model{
		NewLine(),
		NewExponential(),
		NewExponentialPlusConstant(),
		NewGaussian(),
		NewGaussianNormalized(),
		NewGaussianLogarithmic(),
		NewPowerLaw(),
	}
	for _, fn := range models {
		t.Run(fn.Name(), func(t *testing.T) {
			require.NoError(t, ValidateParams(fn.Params()))
		})
	}
}
