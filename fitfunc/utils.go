package fitfunc

import (
	"fmt"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"gonum.org/v1/gonum/floats"
)

// requireSpread guards the shared degenerate edge case: identical x
// values have zero local variance and would put a zero denominator into
// the guess computations.
func requireSpread(name string, xs []float64) error {
	if len(xs) < 2 {
		return fmt.Errorf("%v: %v points for initial guess: %w", name, len(xs), common.ErrorInsufficientData)
	}
	if floats.Max(xs)-floats.Min(xs) < DegenerateEps {
		return fmt.Errorf("%v: zero variance in x: %w", name, common.ErrorInsufficientData)
	}
	return nil
}

func requireUsed(name string, obs *model.Observations, min int) error {
	if obs.IsEmpty() {
		return fmt.Errorf("%v: no used observations: %w", name, common.ErrorInsufficientData)
	}
	if obs.UsedCount() < min {
		return fmt.Errorf("%v: %v used observations, need %v: %w",
			name, obs.UsedCount(), min, common.ErrorInsufficientData)
	}
	return nil
}

