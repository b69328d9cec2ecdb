package forecast

import (
	"fmt"

	"github.com/kilianp07/popcast/core/factory"
	"github.com/kilianp07/popcast/core/model"
)

// HoltSmoother is the registry name of the Holt linear trend smoother in
// infra/smoothing.
const HoltSmoother = "holt"

// Smoother fits a level and trend model to evenly spaced observations.
type Smoother interface {
	Fit(values []float64) (SmoothFit, error)
}

// SmoothFit is the final state of a level and trend smoother.
type SmoothFit struct {
	Level float64
	Trend float64
	Alpha float64
	Beta  float64
	// OneStep[i] is the one-step-ahead estimate of values[i+1].
	OneStep []float64
}

var smoothers = factory.NewRegistry[Smoother]()

// RegisterSmoother makes an optional smoother implementation available.
func RegisterSmoother(name string, f factory.Factory[Smoother]) error {
	return smoothers.Register(name, f)
}

// SmootherAvailable reports whether name was registered.
func SmootherAvailable(name string) bool { return smoothers.Has(name) }

type smoothFit struct {
	years []int
	last  int
	// step is the mean number of years between observations.
	step float64
	fit  SmoothFit
}

func fitSmoothing(d *Dispatcher, s model.TimeSeries, _ int) (fitted, []string, error) {
	cfg := d.opts.Smoother
	if !smoothers.Has(cfg.Type) {
		return nil, nil, fmt.Errorf("%w: smoother %q not linked in", ErrCapabilityUnavailable, cfg.Type)
	}
	sm, err := smoothers.Create(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}
	fit, err := sm.Fit(s.Values())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}
	if !finite([]float64{fit.Level, fit.Trend}) || !finite(fit.OneStep) {
		return nil, nil, fmt.Errorf("%w: non-finite smoothing state", ErrFitFailure)
	}
	years := make([]int, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		years = append(years, s.At(i).Year)
	}
	if len(fit.OneStep) != len(years) {
		return nil, nil, fmt.Errorf("%w: smoother returned %d estimates for %d points", ErrFitFailure, len(fit.OneStep), len(years))
	}
	last, _ := s.Last()
	step := float64(last.Year-s.At(0).Year) / float64(s.Len()-1)
	return &smoothFit{years: years, last: last.Year, step: step, fit: fit}, nil, nil
}

func (f *smoothFit) inSample() ([]int, []float64) {
	return f.years, f.fit.OneStep
}

// forecast treats each observation as one step of the mean spacing, so for
// yearly data a year h years after the last observation lies h steps ahead.
func (f *smoothFit) forecast(years []int) ([]float64, error) {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = f.fit.Level + float64(y-f.last)/f.step*f.fit.Trend
	}
	return out, nil
}
