package fitfunc

import (
	"github.com/blalterman/SolarWindPy-sub009/model"
	"gonum.org/v1/gonum/stat"
)

// Line implements y = slope*x + intercept.
type Line struct{}

func NewLine() *Line {
	return &Line{}
}

func (l *Line) Name() string {
	return "line"
}

func (l *Line) Params() []model.Param {
	return []model.Param{
		model.NewParam("slope"),
		model.NewParam("intercept"),
	}
}

func (l *Line) Evaluate(x float64, params []float64) float64 {
	return params[0]*x + params[1]
}

// InitialGuess uses a weighted least-squares slope/intercept estimate.
func (l *Line) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(l.Name(), obs, 2); err != nil {
		return nil, err
	}
	if err := requireSpread(l.Name(), obs.UsedX); err != nil {
		return nil, err
	}

	intercept, slope := stat.LinearRegression(obs.UsedX, obs.UsedY, obs.UsedWeight, false)
	return []float64{slope, intercept}, nil
}
