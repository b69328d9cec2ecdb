package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/popcast/core/model"
)

type polyFit struct {
	years  []int
	degree int
	center float64
	scale  float64
	coef   []float64 // ascending powers
}

// fitPolynomial fits a least-squares polynomial in the scaled year. A degree
// the history cannot support is reduced to points-1 with a warning.
func fitPolynomial(_ *Dispatcher, s model.TimeSeries, degree int) (fitted, []string, error) {
	n := s.Len()
	var warns []string
	if degree < 1 {
		degree = 1
	}
	if n < degree+1 {
		warns = append(warns, fmt.Sprintf("polynomial degree reduced from %d to %d: only %d points", degree, n-1, n))
		degree = n - 1
	}
	xs := s.Years()
	c := stat.Mean(xs, nil)
	scale := 0.0
	for _, x := range xs {
		scale = math.Max(scale, math.Abs(x-c))
	}
	if scale == 0 {
		scale = 1
	}

	a := mat.NewDense(n, degree+1, nil)
	for i, x := range xs {
		t := (x - c) / scale
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}
	b := mat.NewVecDense(n, s.Values())
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, nil, fmt.Errorf("%w: polynomial degree %d: %v", ErrFitFailure, degree, err)
	}
	coef := make([]float64, degree+1)
	for j := range coef {
		coef[j] = sol.AtVec(j)
	}
	if !finite(coef) {
		return nil, nil, fmt.Errorf("%w: non-finite polynomial coefficients", ErrFitFailure)
	}
	years := make([]int, n)
	for i := range years {
		years[i] = s.At(i).Year
	}
	return &polyFit{years: years, degree: degree, center: c, scale: scale, coef: coef}, warns, nil
}

func (p *polyFit) at(year int) float64 {
	t := (float64(year) - p.center) / p.scale
	var v float64
	for j := len(p.coef) - 1; j >= 0; j-- {
		v = v*t + p.coef[j]
	}
	return v
}

func (p *polyFit) inSample() ([]int, []float64) {
	out := make([]float64, len(p.years))
	for i, y := range p.years {
		out[i] = p.at(y)
	}
	return p.years, out
}

func (p *polyFit) forecast(years []int) ([]float64, error) {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = p.at(y)
	}
	return out, nil
}
