package learn

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Regressor is a trainable model mapping feature rows to a scalar target.
type Regressor interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
	// FeatureImportances returns gain-based importances that sum to 1.
	FeatureImportances() []float64
}

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model not fitted")
	// ErrNonFinite is returned when inputs or outputs contain NaN or Inf.
	ErrNonFinite = errors.New("non-finite value")
)

func checkTraining(x mat.Matrix, y []float64) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return errors.New("empty feature matrix")
	}
	if r != len(y) {
		return fmt.Errorf("feature rows %d != targets %d", r, len(y))
	}
	for i := 0; i < r; i++ {
		if bad(y[i]) {
			return fmt.Errorf("target row %d: %w", i, ErrNonFinite)
		}
		for j := 0; j < c; j++ {
			if bad(x.At(i, j)) {
				return fmt.Errorf("feature (%d,%d): %w", i, j, ErrNonFinite)
			}
		}
	}
	return nil
}

func checkPredict(x mat.Matrix, nFeat int) error {
	if nFeat == 0 {
		return ErrNotFitted
	}
	if _, c := x.Dims(); c != nFeat {
		return fmt.Errorf("expected %d features, got %d", nFeat, c)
	}
	return nil
}

func bad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
