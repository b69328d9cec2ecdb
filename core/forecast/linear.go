package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/popcast/core/model"
)

type lineFit struct {
	years     []int
	center    float64
	intercept float64
	slope     float64
}

// fitLinear regresses value on the centered year by ordinary least squares.
func fitLinear(_ *Dispatcher, s model.TimeSeries, _ int) (fitted, []string, error) {
	xs := s.Years()
	ys := s.Values()
	c := stat.Mean(xs, nil)
	for i := range xs {
		xs[i] -= c
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if !finite([]float64{alpha, beta}) {
		return nil, nil, fmt.Errorf("%w: degenerate linear fit", ErrFitFailure)
	}
	years := make([]int, s.Len())
	for i := range years {
		years[i] = s.At(i).Year
	}
	return &lineFit{years: years, center: c, intercept: alpha, slope: beta}, nil, nil
}

func (l *lineFit) at(year int) float64 {
	return l.intercept + l.slope*(float64(year)-l.center)
}

func (l *lineFit) inSample() ([]int, []float64) {
	out := make([]float64, len(l.years))
	for i, y := range l.years {
		out[i] = l.at(y)
	}
	return l.years, out
}

func (l *lineFit) forecast(years []int) ([]float64, error) {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = l.at(y)
	}
	return out, nil
}
