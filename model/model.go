package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/blalterman/SolarWindPy-sub009/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Interval is a closed numeric interval [Lower, Upper].
type Interval struct {
	Lower float64
	Upper float64
}

func (iv *Interval) Contains(x float64) bool {
	return x >= iv.Lower && x <= iv.Upper
}

// Param describes one named fit parameter and its allowed range.
// Min and Max default to unbounded; bounds with Min > Max are rejected
// during configuration validation.
type Param struct {
	Name string
	Min  float64
	Max  float64
}

// NewParam returns an unbounded parameter.
func NewParam(name string) Param {
	return Param{Name: name, Min: math.Inf(-1), Max: math.Inf(1)}
}

// BoundedParam returns a parameter constrained to [min, max].
func BoundedParam(name string, min, max float64) Param {
	return Param{Name: name, Min: min, Max: max}
}

func (p *Param) InBounds(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Clamp moves v to the nearest bound when it falls outside [Min, Max].
func (p *Param) Clamp(v float64) float64 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Observations is an immutable snapshot of one fit's input data.
// Raw arrays keep every supplied point for diagnostics and plotting,
// Used arrays keep the subset that survived masking. Mask has one entry
// per raw point. When LogY is set the used y values are log-transformed
// and the fit runs in log space.
type Observations struct {
	RawX      []float64
	RawY      []float64
	RawWeight []float64

	Mask []bool

	UsedX      []float64
	UsedY      []float64
	UsedWeight []float64

	LogY bool
}

func (o *Observations) RawCount() int {
	return len(o.RawX)
}

func (o *Observations) UsedCount() int {
	return len(o.UsedX)
}

func (o *Observations) IsEmpty() bool {
	if o == nil {
		return true
	}
	return len(o.UsedX) == 0
}

func (o *Observations) DebugString() string {
	return fmt.Sprintf("rawCount: %v, usedCount: %v, logY: %v", o.RawCount(), o.UsedCount(), o.LogY)
}

// FitResult holds the outcome of one converged fit. Results are only
// built after the solver succeeds, so Converged is true on every
// reachable result; non-convergence is reported as an error instead of
// a zero-filled result.
type FitResult struct {
	// Names holds the parameter names in Popt order.
	Names []string
	// Popt is the optimal parameter vector.
	Popt []float64
	// Covariance is the parameter covariance matrix in Popt order.
	// Entries are NaN when the Jacobian was rank deficient.
	Covariance *mat.Dense
	// Sigma is the square root of the covariance diagonal. A NaN entry
	// means the uncertainty is undefined, not zero.
	Sigma []float64
	// ChiSquare is the sum of squared weighted residuals at the optimum.
	ChiSquare float64
	// DegreesOfFreedom is the used point count minus the parameter count.
	DegreesOfFreedom int
	// RMSE is the root mean square of the weighted residuals.
	RMSE float64

	Converged bool

	// Raw is the solver-specific result, kept for diagnostics.
	Raw *optimize.Result
}

// ReducedChiSquare returns ChiSquare / DegreesOfFreedom.
func (r *FitResult) ReducedChiSquare() float64 {
	if r.DegreesOfFreedom <= 0 {
		return math.NaN()
	}
	return r.ChiSquare / float64(r.DegreesOfFreedom)
}

// RelativeSigma returns |Sigma[i] / Popt[i]| per parameter.
// Entries are NaN when the parameter is zero or the sigma is undefined.
func (r *FitResult) RelativeSigma() []float64 {
	res := make([]float64, len(r.Popt))
	for i := range r.Popt {
		if r.Popt[i] == 0 {
			res[i] = math.NaN()
			continue
		}
		res[i] = math.Abs(r.Sigma[i] / r.Popt[i])
	}
	return res
}

// ParamValue returns the fitted value of the named parameter.
func (r *FitResult) ParamValue(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Popt[i], true
		}
	}
	return 0, false
}

// ParamSigma returns the 1-sigma uncertainty of the named parameter.
func (r *FitResult) ParamSigma(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Sigma[i], true
		}
	}
	return 0, false
}

func (r *FitResult) String() string {
	parts := make([]string, 0, len(r.Names))
	for i, n := range r.Names {
		parts = append(parts, fmt.Sprintf("%s=%v±%v",
			n, utils.FormatFloat(r.Popt[i], 4), utils.FormatFloat(r.Sigma[i], 4)))
	}
	return fmt.Sprintf("FitResult{%s, chi2: %v, dof: %v}",
		strings.Join(parts, ", "), utils.FormatFloat(r.ChiSquare, 4), r.DegreesOfFreedom)
}
