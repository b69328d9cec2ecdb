// Package smoothing provides the Holt linear trend smoother. Importing it
// registers the implementation with the forecast package; builds tagged
// nosmoothing leave it out.
package smoothing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/kilianp07/popcast/core/factory"
	"github.com/kilianp07/popcast/core/forecast"
)

func init() {
	if err := forecast.RegisterSmoother(forecast.HoltSmoother, New); err != nil {
		panic(err)
	}
}

// Config tunes the parameter search.
type Config struct {
	// MaxEvaluations bounds the SSE evaluations of one Nelder-Mead run.
	MaxEvaluations int `json:"max_evaluations"`
	// Alpha and Beta fix a parameter instead of searching it when in (0,1).
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Holt fits level and trend with smoothing parameters that minimize the
// one-step-ahead squared error.
type Holt struct {
	cfg Config
}

// New builds a Holt smoother from raw settings.
func New(conf map[string]any) (forecast.Smoother, error) {
	cfg := Config{MaxEvaluations: 2000}
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, fmt.Errorf("holt config: %w", err)
	}
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = 2000
	}
	if cfg.Alpha < 0 || cfg.Alpha >= 1 || cfg.Beta < 0 || cfg.Beta >= 1 {
		return nil, errors.New("holt config: alpha and beta must lie in [0,1)")
	}
	return &Holt{cfg: cfg}, nil
}

const eps = 1e-4

// minimize is replaced in tests to simulate optimizer failures.
var minimize = optimize.Minimize

// starting points of the search, in (alpha, beta)
var starts = [][2]float64{{0.3, 0.1}, {0.8, 0.2}, {0.5, 0.5}}

// Fit implements forecast.Smoother.
func (h *Holt) Fit(values []float64) (forecast.SmoothFit, error) {
	if len(values) < 3 {
		return forecast.SmoothFit{}, fmt.Errorf("holt needs at least 3 values, got %d", len(values))
	}
	scale := 0.0
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		scale = 1
	}
	ys := make([]float64, len(values))
	for i, v := range values {
		ys[i] = v / scale
	}

	problem := optimize.Problem{Func: func(x []float64) float64 {
		a, b := h.params(x)
		return sse(ys, a, b)
	}}
	settings := &optimize.Settings{FuncEvaluations: h.cfg.MaxEvaluations}

	bestF := math.Inf(1)
	var bestX []float64
	var lastErr error
	for _, s := range starts {
		res, err := minimize(problem, []float64{logit(s[0]), logit(s[1])}, settings, &optimize.NelderMead{})
		if res == nil {
			lastErr = err
			continue
		}
		if res.F < bestF && !math.IsNaN(res.F) {
			bestF, bestX = res.F, res.X
		}
	}
	if bestX == nil {
		if lastErr == nil {
			lastErr = errors.New("no finite solution")
		}
		return forecast.SmoothFit{}, fmt.Errorf("holt parameter search: %w", lastErr)
	}

	alpha, beta := h.params(bestX)
	level, trend, one := run(ys, alpha, beta)
	for i := range one {
		one[i] *= scale
	}
	return forecast.SmoothFit{Level: level * scale, Trend: trend * scale, Alpha: alpha, Beta: beta, OneStep: one}, nil
}

func (h *Holt) params(x []float64) (float64, float64) {
	a, b := logistic(x[0]), logistic(x[1])
	if h.cfg.Alpha > 0 {
		a = h.cfg.Alpha
	}
	if h.cfg.Beta > 0 {
		b = h.cfg.Beta
	}
	return a, b
}

// run applies the recursions with level0 = y0 and trend0 = y1 - y0.
func run(ys []float64, alpha, beta float64) (level, trend float64, one []float64) {
	level, trend = ys[0], ys[1]-ys[0]
	one = make([]float64, len(ys)-1)
	for t := 1; t < len(ys); t++ {
		f := level + trend
		one[t-1] = f
		prev := level
		level = alpha*ys[t] + (1-alpha)*f
		trend = beta*(level-prev) + (1-beta)*trend
	}
	return level, trend, one
}

func sse(ys []float64, alpha, beta float64) float64 {
	_, _, one := run(ys, alpha, beta)
	var s float64
	for i, f := range one {
		d := ys[i+1] - f
		s += d * d
	}
	return s
}

func logistic(x float64) float64 {
	v := 1 / (1 + math.Exp(-x))
	return math.Min(math.Max(v, eps), 1-eps)
}

func logit(p float64) float64 { return math.Log(p / (1 - p)) }
