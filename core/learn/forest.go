package learn

import (
	"gonum.org/v1/gonum/mat"
)

// RandomForest averages regression trees grown on bootstrap samples with
// per-split feature subsampling.
type RandomForest struct {
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	// MaxFeatures per split; zero uses a third of the features (at least one).
	MaxFeatures int
	Seed        uint64

	trees       []*Tree
	nFeat       int
	importances []float64
}

// Fit grows the forest.
func (f *RandomForest) Fit(x mat.Matrix, y []float64) error {
	if err := checkTraining(x, y); err != nil {
		return err
	}
	n, nFeat := x.Dims()
	est := f.NEstimators
	if est <= 0 {
		est = 100
	}
	maxFeat := f.MaxFeatures
	if maxFeat <= 0 {
		maxFeat = max(1, nFeat/3)
	}
	params := TreeParams{MaxDepth: f.MaxDepth, MinSamplesLeaf: f.MinSamplesLeaf, MaxFeatures: maxFeat}
	rng := newRand(f.Seed)

	grad := make([]float64, n)
	hess := make([]float64, n)
	for i, v := range y {
		grad[i] = -v
		hess[i] = 1
	}
	f.trees = make([]*Tree, 0, est)
	imp := make([]float64, nFeat)
	rows := make([]int, n)
	for t := 0; t < est; t++ {
		for i := range rows {
			rows[i] = rng.IntN(n)
		}
		tree := growTree(x, grad, hess, rows, params, rng)
		for j, g := range tree.gains {
			imp[j] += g
		}
		f.trees = append(f.trees, tree)
	}
	f.nFeat = nFeat
	f.importances = normalize(imp)
	return nil
}

// Predict averages the trees.
func (f *RandomForest) Predict(x mat.Matrix) ([]float64, error) {
	if err := checkPredict(x, f.nFeat); err != nil {
		return nil, err
	}
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		var sum float64
		for _, t := range f.trees {
			sum += t.predictRow(x, i)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// FeatureImportances returns normalized split gains summed over the forest.
func (f *RandomForest) FeatureImportances() []float64 {
	return append([]float64(nil), f.importances...)
}
