package fitfunc

import (
	"fmt"
	"math"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/model"
	"github.com/blalterman/SolarWindPy-sub009/utils"
)

// FilterOptions selects the used subset of the raw observations.
// Nil bound pointers mean unbounded on that side. Outside keeps only
// points with x < Outside.Lower or x > Outside.Upper. When LogY is set,
// points with y <= 0 are dropped and the used y values are replaced
// with log(y).
type FilterOptions struct {
	XMin *float64
	XMax *float64

	Outside *model.Interval

	WeightMin *float64
	WeightMax *float64

	LogY bool
}

func (opts *FilterOptions) validate() error {
	if opts == nil {
		return nil
	}
	if opts.XMin != nil && opts.XMax != nil && *opts.XMin > *opts.XMax {
		return fmt.Errorf("x bounds inverted (%v > %v): %w", *opts.XMin, *opts.XMax, common.ErrorConfiguration)
	}
	if opts.WeightMin != nil && opts.WeightMax != nil && *opts.WeightMin > *opts.WeightMax {
		return fmt.Errorf("weight bounds inverted (%v > %v): %w", *opts.WeightMin, *opts.WeightMax, common.ErrorConfiguration)
	}
	if opts.Outside != nil && opts.Outside.Lower > opts.Outside.Upper {
		return fmt.Errorf("outside interval inverted (%v > %v): %w", opts.Outside.Lower, opts.Outside.Upper, common.ErrorConfiguration)
	}
	return nil
}

func (opts *FilterOptions) keep(x, y, w float64) bool {
	if opts == nil {
		return true
	}
	if opts.XMin != nil && x < *opts.XMin {
		return false
	}
	if opts.XMax != nil && x > *opts.XMax {
		return false
	}
	if opts.Outside != nil && opts.Outside.Contains(x) {
		return false
	}
	if opts.WeightMin != nil && w < *opts.WeightMin {
		return false
	}
	if opts.WeightMax != nil && w > *opts.WeightMax {
		return false
	}
	if opts.LogY && y <= 0 {
		return false
	}
	return true
}

// Apply masks the raw (x, y, weight) triples into an Observations
// snapshot. A nil weight array is treated as uniform weight 1. The
// caller's arrays are copied, never aliased or mutated.
func (opts *FilterOptions) Apply(x, y, weight []float64) (*model.Observations, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x has %v points, y has %v: %w", len(x), len(y), common.ErrorShapeMismatch)
	}
	if weight != nil && len(weight) != len(x) {
		return nil, fmt.Errorf("x has %v points, weight has %v: %w", len(x), len(weight), common.ErrorShapeMismatch)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if weight == nil {
		weight = utils.Ones(len(x))
	}

	obs := &model.Observations{
		RawX:      append([]float64(nil), x...),
		RawY:      append([]float64(nil), y...),
		RawWeight: append([]float64(nil), weight...),
		Mask:      make([]bool, len(x)),
	}
	if opts != nil {
		obs.LogY = opts.LogY
	}

	for i := range x {
		if !opts.keep(x[i], y[i], weight[i]) {
			continue
		}
		obs.Mask[i] = true
		obs.UsedX = append(obs.UsedX, x[i])
		if obs.LogY {
			obs.UsedY = append(obs.UsedY, math.Log(y[i]))
		} else {
			obs.UsedY = append(obs.UsedY, y[i])
		}
		obs.UsedWeight = append(obs.UsedWeight, weight[i])
	}

	return obs, nil
}
