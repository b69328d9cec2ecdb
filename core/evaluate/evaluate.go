// Package evaluate scores predictions against observed values.
package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WarnConstantActual is emitted when R2 is undefined because the observed
// values do not vary.
const WarnConstantActual = "actual values are constant; R2 reported as 0"

// ErrEmpty is returned when there is nothing to score.
var ErrEmpty = errors.New("no values to evaluate")

// Diagnostics summarizes fit accuracy.
type Diagnostics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
	N    int     `json:"n"`
}

// Evaluate computes MAE, RMSE and R2. R2 is defined as 0 when the actual
// series is constant.
func Evaluate(actual, predicted []float64) (Diagnostics, []string, error) {
	if len(actual) != len(predicted) {
		return Diagnostics{}, nil, fmt.Errorf("length mismatch: %d actual, %d predicted", len(actual), len(predicted))
	}
	n := len(actual)
	if n == 0 {
		return Diagnostics{}, nil, ErrEmpty
	}
	if !allFinite(actual) || !allFinite(predicted) {
		return Diagnostics{}, nil, errors.New("non-finite value in evaluation input")
	}
	d := Diagnostics{
		MAE:  floats.Distance(actual, predicted, 1) / float64(n),
		RMSE: floats.Distance(actual, predicted, 2) / math.Sqrt(float64(n)),
		N:    n,
	}
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i, a := range actual {
		r := a - predicted[i]
		ssRes += r * r
		dv := a - mean
		ssTot += dv * dv
	}
	if ssTot == 0 {
		return d, []string{WarnConstantActual}, nil
	}
	d.R2 = 1 - ssRes/ssTot
	return d, nil, nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
