package fitfunc

import (
	"fmt"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
)

// Each model declares its parameter metadata at compile time; the
// helpers here validate that metadata and initial guesses against it.

// ValidateParams rejects empty metadata, duplicate names and inverted bounds.
func ValidateParams(params []model.Param) error {
	if len(params) == 0 {
		return fmt.Errorf("model declares no parameters: %w", common.ErrorConfiguration)
	}
	seen := map[string]bool{}
	for _, p := range params {
		if p.Name == "" {
			return fmt.Errorf("unnamed parameter: %w", common.ErrorConfiguration)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q: %w", p.Name, common.ErrorConfiguration)
		}
		seen[p.Name] = true
		if p.Min > p.Max {
			return fmt.Errorf("parameter %q bounds inverted (%v > %v): %w",
				p.Name, p.Min, p.Max, common.ErrorConfiguration)
		}
	}
	return nil
}

// ValidateGuess checks that p0 matches the parameter metadata in length.
func ValidateGuess(params []model.Param, p0 []float64) error {
	if len(p0) != len(params) {
		return fmt.Errorf("initial guess has %v values for %v parameters: %w",
			len(p0), len(params), common.ErrorConfiguration)
	}
	return nil
}

// ParamNames returns the ordered parameter names.
func ParamNames(params []model.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// ClampGuess moves each p0 entry inside its parameter's bounds so the
// solver starts from a feasible point.
func ClampGuess(params []model.Param, p0 []float64) []float64 {
	res := make([]float64, len(p0))
	for i := range p0 {
		res[i] = params[i].Clamp(p0[i])
	}
	return res
}

func inBounds(params []model.Param, x []float64) bool {
	for i := range x {
		if !params[i].InBounds(x[i]) {
			return false
		}
	}
	return true
}
