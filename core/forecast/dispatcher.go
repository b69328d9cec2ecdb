package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/evaluate"
	"github.com/kilianp07/popcast/core/factory"
	"github.com/kilianp07/popcast/core/logger"
	"github.com/kilianp07/popcast/core/metrics"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/scenario"
)

// DefaultDegree is used when neither the request nor the step pins a
// polynomial degree.
const DefaultDegree = 2

// TreeOptions configures the tree-based series forecasters.
type TreeOptions struct {
	NEstimators  int
	MaxDepth     int
	LearningRate float64
	Seed         uint64
}

// Options tunes the dispatcher. Zero fields take the values of
// DefaultOptions.
type Options struct {
	// MinHistory is the minimum number of points for exponential smoothing.
	MinHistory int
	// TreeMinPoints is the minimum number of points for tree forecasters.
	TreeMinPoints int
	Trees         TreeOptions
	// Smoother and Booster select the optional implementations.
	Smoother factory.ModuleConfig
	Booster  factory.ModuleConfig
}

// DefaultOptions returns the dispatcher defaults.
func DefaultOptions() Options {
	return Options{
		MinHistory:    4,
		TreeMinPoints: 2,
		Trees:         TreeOptions{NEstimators: 100, MaxDepth: 6, LearningRate: 0.1, Seed: 42},
		Smoother:      factory.ModuleConfig{Type: HoltSmoother},
		Booster:       factory.ModuleConfig{Type: "xgboost"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MinHistory <= 0 {
		o.MinHistory = def.MinHistory
	}
	if o.TreeMinPoints <= 0 {
		o.TreeMinPoints = def.TreeMinPoints
	}
	if o.Trees.NEstimators <= 0 {
		o.Trees.NEstimators = def.Trees.NEstimators
	}
	if o.Trees.MaxDepth <= 0 {
		o.Trees.MaxDepth = def.Trees.MaxDepth
	}
	if o.Trees.LearningRate <= 0 {
		o.Trees.LearningRate = def.Trees.LearningRate
	}
	if o.Smoother.Type == "" {
		o.Smoother = def.Smoother
	}
	if o.Booster.Type == "" {
		o.Booster = def.Booster
	}
	return o
}

// Dispatcher maps forecast requests to results. It holds no mutable state
// and may be shared between goroutines.
type Dispatcher struct {
	opts Options
	log  logger.Logger
	sink metrics.MetricsSink
}

// NewDispatcher returns a dispatcher. log and sink may be nil.
func NewDispatcher(opts Options, log logger.Logger, sink metrics.MetricsSink) *Dispatcher {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Dispatcher{opts: opts.withDefaults(), log: logger.OrNop(log), sink: sink}
}

// Options returns the effective options.
func (d *Dispatcher) Options() Options { return d.opts }

// Forecast produces req.YearsAhead yearly values after the last valid point of
// series. Capability, data and fit problems fall through the chain of the
// requested method; only exhausting it returns an error, always a
// *ForecastFailure. series is not modified.
func (d *Dispatcher) Forecast(req Request, series model.TimeSeries, caps capability.Set) (Result, error) {
	start := time.Now()
	res := Result{Country: req.Country, Indicator: req.Indicator, Requested: req.Method}
	if req.YearsAhead < 1 {
		return res, d.failure(req, fmt.Sprintf("years_ahead must be >= 1, got %d", req.YearsAhead), nil)
	}
	steps, err := Chain(req.Method)
	if err != nil {
		return res, d.failure(req, err.Error(), nil)
	}
	valid := series.Valid()
	last, ok := valid.Last()
	if !ok {
		return res, d.failure(req, "series has no valid points", []Attempt{{Method: req.Method, Err: ErrInsufficientData}})
	}
	years := futureYears(last.Year, req.YearsAhead)

	if req.GrowthOverride != nil {
		vals := scenario.Compound(last.Value, *req.GrowthOverride, req.YearsAhead)[1:]
		res.MethodUsed = MethodGrowthOverride
		res.Predicted = toPoints(years, vals)
		d.record(res, time.Since(start))
		return res, nil
	}

	var attempts []Attempt
	for i, st := range steps {
		fit, warns, err := d.try(st, req, valid, caps)
		var vals []float64
		if err == nil {
			vals, err = fit.forecast(years)
			if err == nil && !finite(vals) {
				err = fmt.Errorf("%w: non-finite forecast", ErrFitFailure)
			}
		}
		if err != nil {
			attempts = append(attempts, Attempt{Method: st.Method, Err: err})
			if i+1 < len(steps) {
				d.fallback(&res, st, steps[i+1], err)
			}
			continue
		}

		res.MethodUsed = st.Method
		res.Predicted = toPoints(years, vals)
		res.Warnings = append(res.Warnings, warns...)
		used := st
		if p, ok := fit.(*polyFit); ok {
			res.Degree = p.degree
			used.Degree = p.degree
		}
		if res.MethodUsed != req.Method {
			res.Warnings = append(res.Warnings, fmt.Sprintf("requested %s, used %s", req.Method, used))
		}
		d.diagnose(&res, fit, valid)
		d.record(res, time.Since(start))
		return res, nil
	}
	return res, d.failure(req, "all methods in the fallback chain failed", attempts)
}

func (d *Dispatcher) try(st Step, req Request, s model.TimeSeries, caps capability.Set) (fitted, []string, error) {
	if st.Requires != "" && !caps.Has(st.Requires) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCapabilityUnavailable, st.Requires)
	}
	if need := st.MinPoints(d.opts); s.Len() < need {
		return nil, nil, fmt.Errorf("%w: %d points, need %d", ErrInsufficientData, s.Len(), need)
	}
	degree := st.Degree
	if degree == 0 {
		degree = req.Degree
	}
	if degree <= 0 {
		degree = DefaultDegree
	}
	return st.fit(d, s, degree)
}

func (d *Dispatcher) fallback(res *Result, from, to Step, cause error) {
	msg := fmt.Sprintf("%s not used (%v); falling back to %s", from, cause, to)
	res.Warnings = append(res.Warnings, msg)
	d.log.Warnf("%s: %s", res.Country, msg)
	if rec, ok := d.sink.(metrics.FallbackRecorder); ok {
		ev := metrics.FallbackEvent{
			Country: res.Country,
			From:    string(from.Method),
			To:      string(to.Method),
			Reason:  reason(cause),
			Time:    time.Now(),
		}
		if err := rec.RecordFallback(ev); err != nil {
			d.log.Errorf("record fallback: %v", err)
		}
	}
}

func (d *Dispatcher) diagnose(res *Result, fit fitted, s model.TimeSeries) {
	years, est := fit.inSample()
	actual := make([]float64, 0, len(years))
	pred := make([]float64, 0, len(years))
	for i, y := range years {
		if v, ok := s.ValueAt(y); ok {
			actual = append(actual, v)
			pred = append(pred, est[i])
		}
	}
	diag, warns, err := evaluate.Evaluate(actual, pred)
	if err != nil {
		d.log.Debugf("%s: no diagnostics: %v", res.Country, err)
		return
	}
	res.Diagnostics = &diag
	res.Warnings = append(res.Warnings, warns...)
}

func (d *Dispatcher) record(res Result, elapsed time.Duration) {
	ev := metrics.ForecastEvent{
		Country:   res.Country,
		Indicator: string(res.Indicator),
		Requested: string(res.Requested),
		Used:      string(res.MethodUsed),
		Fallback:  res.Fallback(),
		Points:    res.Predicted,
		Duration:  elapsed,
		Time:      time.Now(),
	}
	if err := d.sink.RecordForecast(ev); err != nil {
		d.log.Errorf("record forecast: %v", err)
	}
}

func (d *Dispatcher) failure(req Request, why string, attempts []Attempt) *ForecastFailure {
	f := &ForecastFailure{Country: req.Country, Requested: req.Method, Reason: why, Attempts: attempts}
	if len(attempts) > 0 {
		f.Reason = fmt.Sprintf("%s: last error: %v", why, attempts[len(attempts)-1].Err)
	}
	d.log.Errorf("%v", f)
	return f
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrCapabilityUnavailable):
		return "capability_unavailable"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	default:
		return "fit_failure"
	}
}

func futureYears(last, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = last + i + 1
	}
	return out
}

func toPoints(years []int, vals []float64) []model.Point {
	out := make([]model.Point, len(years))
	for i, y := range years {
		out[i] = model.Point{Year: y, Value: vals[i]}
	}
	return out
}

func finite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
