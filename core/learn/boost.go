package learn

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"
)

// GradientBoosting is a boosted tree ensemble trained with the pure Go
// LightGBM port from scigo.
type GradientBoosting struct {
	NEstimators  int
	LearningRate float64
	MaxDepth     int
	// NumLeaves caps the leaves per tree. Zero means 31.
	NumLeaves      int
	MinSamplesLeaf int
	// Subsample bags this fraction of rows every round. Zero or one uses
	// every row.
	Subsample float64
	// ColSample is the fraction of features drawn per tree.
	ColSample float64
	// Lambda and Alpha are the L2 and L1 penalties on leaf weights.
	Lambda float64
	Alpha  float64
	// Objective is a LightGBM objective name. Empty means squared loss.
	Objective string
	Seed      uint64

	reg         *lightgbm.LGBMRegressor
	nFeat       int
	importances []float64
}

func (b *GradientBoosting) regressor() *lightgbm.LGBMRegressor {
	reg := lightgbm.NewLGBMRegressor().
		WithNumIterations(b.NEstimators).
		WithLearningRate(b.LearningRate).
		WithMaxDepth(b.MaxDepth).
		WithRandomState(int(b.Seed % math.MaxInt32)).
		WithDeterministic(true)
	if reg.NumIterations <= 0 {
		reg.NumIterations = 100
	}
	if reg.LearningRate <= 0 {
		reg.LearningRate = 0.1
	}
	if reg.MaxDepth <= 0 {
		reg.MaxDepth = 6
	}
	if b.NumLeaves > 1 {
		reg.NumLeaves = b.NumLeaves
	}
	reg.MinChildSamples = max(1, b.MinSamplesLeaf)
	if b.Subsample > 0 && b.Subsample < 1 {
		reg.Subsample = b.Subsample
		reg.SubsampleFreq = 1
	}
	if b.ColSample > 0 && b.ColSample < 1 {
		reg.ColsampleBytree = b.ColSample
	}
	reg.RegLambda = b.Lambda
	reg.RegAlpha = b.Alpha
	if b.Objective != "" {
		reg.Objective = b.Objective
	}
	return reg
}

// Fit trains the ensemble.
func (b *GradientBoosting) Fit(x mat.Matrix, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}
	n, nFeat := x.Dims()
	target := mat.NewDense(n, 1, append([]float64(nil), y...))
	reg := b.regressor()
	if err := reg.Fit(mat.DenseCopyOf(x), target); err != nil {
		return fmt.Errorf("lightgbm: %w", err)
	}
	imp := make([]float64, nFeat)
	for j, v := range reg.GetFeatureImportance("gain") {
		if j < nFeat && !bad(v) {
			imp[j] = v
		}
	}
	b.reg = reg
	b.nFeat = nFeat
	b.importances = normalize(imp)
	return nil
}

// Predict evaluates the ensemble on every row of x.
func (b *GradientBoosting) Predict(x mat.Matrix) ([]float64, error) {
	if err := checkPredict(x, b.nFeat); err != nil {
		return nil, err
	}
	pred, err := b.reg.Predict(mat.DenseCopyOf(x))
	if err != nil {
		return nil, fmt.Errorf("lightgbm: %w", err)
	}
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = pred.At(i, 0)
		if bad(out[i]) {
			return nil, fmt.Errorf("prediction row %d: %w", i, ErrNonFinite)
		}
	}
	return out, nil
}

// FeatureImportances returns the normalized split gains reported by
// LightGBM.
func (b *GradientBoosting) FeatureImportances() []float64 {
	return append([]float64(nil), b.importances...)
}

// Trees returns the number of boosting rounds in the fitted model.
func (b *GradientBoosting) Trees() int {
	if b.reg == nil || b.reg.Model == nil {
		return 0
	}
	return len(b.reg.Model.Trees)
}
