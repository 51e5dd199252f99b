package fitfunc

import (
	"math"

	"github.com/blalterman/SolarWindPy-sub009/model"
	"gonum.org/v1/gonum/stat"
)

// PowerLaw implements y = amplitude * x^exponent.
type PowerLaw struct{}

func NewPowerLaw() *PowerLaw {
	return &PowerLaw{}
}

func (p *PowerLaw) Name() string {
	return "power_law"
}

func (p *PowerLaw) Params() []model.Param {
	return []model.Param{
		model.NewParam("amplitude"),
		model.NewParam("exponent"),
	}
}

func (p *PowerLaw) Evaluate(x float64, params []float64) float64 {
	return params[0] * math.Pow(x, params[1])
}

// InitialGuess fits log(y) vs log(x) linearly over the points where
// both are positive.
func (p *PowerLaw) InitialGuess(obs *model.Observations) ([]float64, error) {
	if err := requireUsed(p.Name(), obs, 2); err != nil {
		return nil, err
	}

	var lxs, lys []float64
	for i, y := range obs.UsedY {
		x := obs.UsedX[i]
		if x <= 0 || y <= 0 {
			continue
		}
		lxs = append(lxs, math.Log(x))
		lys = append(lys, math.Log(y))
	}
	if err := requireSpread(p.Name(), lxs); err != nil {
		return nil, err
	}

	alpha, beta := stat.LinearRegression(lxs, lys, nil, false)
	return []float64{math.Exp(alpha), beta}, nil
}
