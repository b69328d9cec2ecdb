// Package scenario projects compound-growth trajectories for named
// adjustments of a baseline growth rate.
package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/popcast/core/model"
)

// Scenario is a named adjustment added to the base annual growth rate.
type Scenario struct {
	Name  string  `json:"name" yaml:"name"`
	Delta float64 `json:"delta" yaml:"delta"`
}

// Projection is the trajectory of one scenario. Years are relative to the
// start value, which sits at year 0.
type Projection struct {
	Name   string        `json:"name"`
	Growth float64       `json:"growth"`
	Points []model.Point `json:"points"`
}

// Projections keeps the order in which scenarios were supplied.
type Projections []Projection

// Get returns the trajectory of the named scenario.
func (p Projections) Get(name string) ([]model.Point, bool) {
	for _, pr := range p {
		if pr.Name == name {
			return pr.Points, true
		}
	}
	return nil, false
}

// Project builds one trajectory per scenario from a shared start value:
// value[t] = value[t-1] * (1 + base + delta). The result has the order of
// scenarios.
func Project(start, base float64, scenarios []Scenario, yearsAhead int) Projections {
	out := make(Projections, 0, len(scenarios))
	for _, sc := range scenarios {
		g := base + sc.Delta
		vals := Compound(start, g, yearsAhead)
		pts := make([]model.Point, len(vals))
		for t, v := range vals {
			pts[t] = model.Point{Year: t, Value: v}
		}
		out = append(out, Projection{Name: sc.Name, Growth: g, Points: pts})
	}
	return out
}

// Compound returns start followed by yearsAhead compounded values.
func Compound(start, rate float64, yearsAhead int) []float64 {
	if yearsAhead < 0 {
		yearsAhead = 0
	}
	out := make([]float64, yearsAhead+1)
	out[0] = start
	for t := 1; t <= yearsAhead; t++ {
		out[t] = out[t-1] * (1 + rate)
	}
	return out
}

// ErrNoGrowth is returned when a base rate cannot be derived.
var ErrNoGrowth = errors.New("cannot derive growth rate")

// BaseGrowth is the compound annual growth rate over the last window years
// of s. A window of zero or less uses the whole series.
func BaseGrowth(s model.TimeSeries, window int) (float64, error) {
	v := s.Valid()
	last, ok := v.Last()
	if !ok || v.Len() < 2 {
		return 0, fmt.Errorf("%w: need 2 points", ErrNoGrowth)
	}
	first := v.At(0)
	if window > 0 {
		w := v.Since(last.Year - window)
		if w.Len() >= 2 {
			first = w.At(0)
		}
	}
	years := float64(last.Year - first.Year)
	if first.Value <= 0 || last.Value <= 0 || years <= 0 {
		return 0, fmt.Errorf("%w: non-positive values", ErrNoGrowth)
	}
	return math.Pow(last.Value/first.Value, 1/years) - 1, nil
}
