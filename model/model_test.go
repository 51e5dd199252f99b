package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntervalContains(t *testing.T) {
	iv := &Interval{Lower: 2, Upper: 3}
	require.True(t, iv.Contains(2))
	require.True(t, iv.Contains(2.5))
	require.True(t, iv.Contains(3))
	require.False(t, iv.Contains(1.999))
	require.False(t, iv.Contains(3.001))
}

func TestParamBoundsAndClamp(t *testing.T) {
	p := NewParam("free")
	require.True(t, p.InBounds(-1e300))
	require.True(t, p.InBounds(1e300))

	b := BoundedParam("width", 0, 10)
	require.False(t, b.InBounds(-1))
	require.True(t, b.InBounds(5))
	require.Equal(t, 0.0, b.Clamp(-1))
	require.Equal(t, 10.0, b.Clamp(11))
	require.Equal(t, 5.0, b.Clamp(5))
}

func TestFitResultDerived(t *testing.T) {
	res := &FitResult{
		Names:            []string{"slope", "intercept"},
		Popt:             []float64{2, 0},
		Sigma:            []float64{0.1, 0.2},
		ChiSquare:        1.5,
		DegreesOfFreedom: 3,
		Converged:        true,
	}

	require.InDelta(t, 0.5, res.ReducedChiSquare(), 1e-12)

	rel := res.RelativeSigma()
	require.InDelta(t, 0.05, rel[0], 1e-12)
	require.True(t, math.IsNaN(rel[1])) // zero parameter has undefined relative sigma

	v, ok := res.ParamValue("slope")
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	s, ok := res.ParamSigma("intercept")
	require.True(t, ok)
	require.Equal(t, 0.2, s)

	_, ok = res.ParamValue("missing")
	require.False(t, ok)

	require.Contains(t, res.String(), "slope=2")
	require.Contains(t, res.String(), "dof: 3")
}

func TestObservationsViews(t *testing.T) {
	obs := &Observations{
		RawX:  []float64{1, 2, 3},
		RawY:  []float64{4, 5, 6},
		Mask:  []bool{true, false, true},
		UsedX: []float64{1, 3},
		UsedY: []float64{4, 6},
	}
	require.Equal(t, 3, obs.RawCount())
	require.Equal(t, 2, obs.UsedCount())
	require.False(t, obs.IsEmpty())

	var nilObs *Observations
	require.True(t, nilObs.IsEmpty())
	require.True(t, (&Observations{}).IsEmpty())
}
