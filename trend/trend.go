package trend

import (
	"context"
	"fmt"
	"sync"

	"github.com/blalterman/SolarWindPy-sub009/common"
	"github.com/blalterman/SolarWindPy-sub009/fitfunc"
	"github.com/blalterman/SolarWindPy-sub009/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Group holds one partition of the dataset, keyed by its bin value.
type Group struct {
	Key    float64
	X      []float64
	Y      []float64
	Weight []float64
}

// Config selects the two model stages and how the per-group fits run.
// StageModel and TrendModel are factories so each fit gets a fresh
// model value.
type Config struct {
	StageModel func() fitfunc.Model
	TrendModel func() fitfunc.Model

	// Filter is applied to each group's raw data before its stage-1 fit.
	Filter *fitfunc.FilterOptions

	// Engine configures the solver for both stages, default when nil.
	Engine *fitfunc.Engine

	// Workers > 1 runs the stage-1 fits concurrently. The fits are
	// mutually independent; results are merged after the join and the
	// stored collections stay in ascending key order either way.
	Workers int
}

func (cfg *Config) validate() error {
	if cfg.StageModel == nil {
		return fmt.Errorf("nil stage model factory: %w", common.ErrorConfiguration)
	}
	if cfg.TrendModel == nil {
		return fmt.Errorf("nil trend model factory: %w", common.ErrorConfiguration)
	}
	return nil
}

// TrendFit runs one stage-1 fit per group, excludes the failed groups,
// and fits a trend model to each surviving parameter as a function of
// the group key.
type TrendFit struct {
	cfg    Config
	keys   []float64 // ascending
	groups map[float64]Group

	mu      sync.Mutex
	states  map[float64]GroupState
	fits    map[float64]*fitfunc.FitFunction
	badFits map[float64]error
	popt1D  map[float64][]float64

	trendFits map[string]*fitfunc.FitFunction
	ran1D     bool
}

func NewTrendFit(cfg Config, groups []Group) (*TrendFit, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	byKey := make(map[float64]Group, len(groups))
	states := make(map[float64]GroupState, len(groups))
	for _, g := range groups {
		if _, dup := byKey[g.Key]; dup {
			return nil, fmt.Errorf("duplicate group key %v: %w", g.Key, common.ErrorConfiguration)
		}
		byKey[g.Key] = g
		states[g.Key] = StatePending
	}

	return &TrendFit{
		cfg:       cfg,
		keys:      sortedKeys(byKey),
		groups:    byKey,
		states:    states,
		fits:      map[float64]*fitfunc.FitFunction{},
		badFits:   map[float64]error{},
		popt1D:    map[float64][]float64{},
		trendFits: map[string]*fitfunc.FitFunction{},
	}, nil
}

// Fit1D runs the stage-1 fit of every group. A failed group is
// excluded and its reason recorded; the loop is never aborted by one
// group's failure.
func (t *TrendFit) Fit1D(ctx context.Context) error {
	logger := utils.GetLogger(ctx)
	logger.Info("begin 1d fits", zap.Int("groupCount", len(t.keys)), zap.Int("workers", t.cfg.Workers))

	if t.cfg.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(t.cfg.Workers)
		for _, key := range t.keys {
			key := key
			g.Go(func() error {
				t.fitGroup(gctx, key)
				return nil
			})
		}
		// Workers record failures as exclusions instead of returning them.
		_ = g.Wait()
	} else {
		for _, key := range t.keys {
			t.fitGroup(ctx, key)
		}
	}

	t.ran1D = true

	logger.Info("1d fits done",
		zap.Int("converged", len(t.popt1D)), zap.Int("excluded", len(t.badFits)))
	return nil
}

func (t *TrendFit) fitGroup(ctx context.Context, key float64) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during group fit",
				zap.Float64("key", key), zap.Any("recover", r), zap.String("stack", utils.GetPanicInfo()))
			t.exclude(key, fmt.Errorf("panic during fit of group %v: %v: %w",
				key, r, common.ErrorOptimizationFailed))
		}
	}()

	t.setState(key, StateFitting)

	group := t.groups[key]
	if len(group.X) == 0 {
		t.exclude(key, fmt.Errorf("no data for group %v: %w", key, common.ErrorInsufficientData))
		return
	}

	ff, err := fitfunc.NewFitFunction(t.cfg.StageModel(), group.X, group.Y, group.Weight, t.cfg.Filter)
	if err != nil {
		t.exclude(key, err)
		return
	}
	if t.cfg.Engine != nil {
		ff.SetEngine(t.cfg.Engine)
	}

	res, err := ff.Fit(ctx)
	if err != nil {
		t.exclude(key, err)
		return
	}

	t.mu.Lock()
	t.states[key] = StateConverged
	t.fits[key] = ff
	t.popt1D[key] = res.Popt
	t.mu.Unlock()
}

func (t *TrendFit) setState(key float64, s GroupState) {
	t.mu.Lock()
	t.states[key] = s
	t.mu.Unlock()
}

// exclude is terminal for the group within this orchestration run.
func (t *TrendFit) exclude(key float64, err error) {
	t.mu.Lock()
	t.states[key] = StateExcluded
	t.badFits[key] = err
	t.mu.Unlock()
}

// FitTrend fits one trend model per stage-1 parameter over the
// surviving groups, in ascending key order.
func (t *TrendFit) FitTrend(ctx context.Context) error {
	logger := utils.GetLogger(ctx)

	if !t.ran1D {
		return fmt.Errorf("stage-1 fits have not run: %w", common.ErrorNotFitted)
	}

	survivors := t.ConvergedKeys()
	trendParamCount := len(t.cfg.TrendModel().Params())
	if len(survivors) < trendParamCount+1 {
		return fmt.Errorf("%v converged groups for %v trend parameters: %w",
			len(survivors), trendParamCount, common.ErrorInsufficientTrendData)
	}

	stageNames := fitfunc.ParamNames(t.cfg.StageModel().Params())

	for pi, name := range stageNames {
		ys := make([]float64, len(survivors))
		for ki, key := range survivors {
			ys[ki] = t.popt1D[key][pi]
		}

		tf, err := fitfunc.NewFitFunction(t.cfg.TrendModel(), survivors, ys, nil, nil)
		if err != nil {
			return fmt.Errorf("trend fit of %q: %w", name, err)
		}
		if t.cfg.Engine != nil {
			tf.SetEngine(t.cfg.Engine)
		}

		if _, err := tf.Fit(ctx); err != nil {
			return fmt.Errorf("trend fit of %q: %w", name, err)
		}
		t.trendFits[name] = tf

		logger.Info("trend fit converged", zap.String("parameter", name))
	}

	return nil
}

// Keys returns all group keys in ascending order.
func (t *TrendFit) Keys() []float64 {
	return append([]float64(nil), t.keys...)
}

// ConvergedKeys returns the surviving group keys in ascending order.
func (t *TrendFit) ConvergedKeys() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := make([]float64, 0, len(t.popt1D))
	for _, key := range t.keys {
		if t.states[key] == StateConverged {
			res = append(res, key)
		}
	}
	return res
}

// State returns the stage-1 state of the given group.
func (t *TrendFit) State(key float64) GroupState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[key]
}

// GroupFit returns the converged stage-1 fit of the given group.
func (t *TrendFit) GroupFit(key float64) (*fitfunc.FitFunction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ff, ok := t.fits[key]
	return ff, ok
}

// Popt1D returns group key -> stage-1 optimal parameters for the
// converged groups. Iterate it with ConvergedKeys for ascending order.
func (t *TrendFit) Popt1D() map[float64][]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := make(map[float64][]float64, len(t.popt1D))
	for k, v := range t.popt1D {
		res[k] = append([]float64(nil), v...)
	}
	return res
}

// BadFits returns group key -> reason for every excluded group.
func (t *TrendFit) BadFits() map[float64]error {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := make(map[float64]error, len(t.badFits))
	for k, v := range t.badFits {
		res[k] = v
	}
	return res
}

// TrendFor returns the trend fit of the named stage-1 parameter.
func (t *TrendFit) TrendFor(param string) (*fitfunc.FitFunction, bool) {
	tf, ok := t.trendFits[param]
	return tf, ok
}
