package density

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/evaluate"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/learn"
	"github.com/kilianp07/popcast/core/logger"
	"github.com/kilianp07/popcast/core/metrics"
)

// MinRows is the smallest dataset a model is trained on.
const MinRows = 5

// Params configures density model training.
type Params struct {
	NEstimators    int     `json:"n_estimators"`
	MaxDepth       int     `json:"max_depth"`
	LearningRate   float64 `json:"learning_rate"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
	Subsample      float64 `json:"subsample"`
	// Lambda is the L2 leaf penalty of the extended booster.
	Lambda       float64 `json:"lambda"`
	ColSample    float64 `json:"colsample"`
	TestFraction float64 `json:"test_fraction"`
	Seed         uint64  `json:"seed"`
	// Booster names the registered extended booster implementation.
	Booster string `json:"booster"`
}

// DefaultParams returns the training defaults.
func DefaultParams() Params {
	return Params{
		NEstimators:    100,
		MaxDepth:       6,
		LearningRate:   0.1,
		MinSamplesLeaf: 2,
		Subsample:      1,
		Lambda:         1,
		ColSample:      1,
		TestFraction:   0.2,
		Seed:           42,
		Booster:        learn.ExtendedBooster,
	}
}

func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.NEstimators <= 0 {
		p.NEstimators = def.NEstimators
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = def.MaxDepth
	}
	if p.LearningRate <= 0 {
		p.LearningRate = def.LearningRate
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		p.Subsample = def.Subsample
	}
	if p.ColSample <= 0 || p.ColSample > 1 {
		p.ColSample = def.ColSample
	}
	if p.TestFraction <= 0 || p.TestFraction >= 1 {
		p.TestFraction = def.TestFraction
	}
	if p.Booster == "" {
		p.Booster = def.Booster
	}
	return p
}

// Importance is the normalized gain of one feature.
type Importance struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// ModelResult is the outcome of one training run.
type ModelResult struct {
	Requested          forecast.Method      `json:"requested"`
	MethodUsed         forecast.Method      `json:"method_used"`
	Diagnostics        evaluate.Diagnostics `json:"diagnostics"`
	FeatureImportances []Importance         `json:"feature_importances"`
	TrainRows          int                  `json:"train_rows"`
	TestActual         []float64            `json:"test_actual"`
	TestPredicted      []float64            `json:"test_predicted"`
	Warnings           []string             `json:"warnings,omitempty"`
}

// Trainer fits density models. It is safe for concurrent use.
type Trainer struct {
	log  logger.Logger
	sink metrics.MetricsSink
}

// NewTrainer returns a trainer. log and sink may be nil.
func NewTrainer(log logger.Logger, sink metrics.MetricsSink) *Trainer {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Trainer{log: logger.OrNop(log), sink: sink}
}

// Train fits method on a deterministic train split of ds and scores it on
// the held-out rows. xgboost_ensemble falls back to gradient_boosting when
// the extended booster is disabled or not linked in.
func (t *Trainer) Train(ds *Dataset, method forecast.Method, p Params, caps capability.Set) (*ModelResult, error) {
	start := time.Now()
	p = p.withDefaults()
	if ds == nil || ds.Len() < MinRows {
		n := 0
		if ds != nil {
			n = ds.Len()
		}
		return nil, fmt.Errorf("%w: %d rows, need %d", forecast.ErrInsufficientData, n, MinRows)
	}
	res := &ModelResult{Requested: method, MethodUsed: method}

	if method == forecast.MethodXGBoost {
		var cause string
		switch {
		case !caps.Has(capability.BoostingExtended):
			cause = fmt.Sprintf("%s disabled", capability.BoostingExtended)
		case !learn.HasBooster(p.Booster):
			cause = fmt.Sprintf("booster %q not linked in", p.Booster)
		}
		if cause != "" {
			res.MethodUsed = forecast.MethodGradientBoosting
			msg := fmt.Sprintf("requested %s, used %s: %v: %s", method, res.MethodUsed, forecast.ErrCapabilityUnavailable, cause)
			res.Warnings = append(res.Warnings, msg)
			t.log.Warnf("density model: %s", msg)
			t.recordFallback(method, res.MethodUsed)
		}
	}

	reg, err := newRegressor(res.MethodUsed, p)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := split(ds.Len(), p.TestFraction, p.Seed)
	xTrain, yTrain := ds.subset(trainIdx)
	xTest, yTest := ds.subset(testIdx)
	if err := reg.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", forecast.ErrFitFailure, res.MethodUsed, err)
	}
	pred, err := reg.Predict(xTest)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", forecast.ErrFitFailure, res.MethodUsed, err)
	}
	diag, warns, err := evaluate.Evaluate(yTest, pred)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", res.MethodUsed, err)
	}
	res.Diagnostics = diag
	res.Warnings = append(res.Warnings, warns...)
	res.TrainRows = len(trainIdx)
	res.TestActual = yTest
	res.TestPredicted = pred
	res.FeatureImportances = rank(ds.Features, reg.FeatureImportances())

	if rec, ok := t.sink.(metrics.ModelRecorder); ok {
		ev := metrics.ModelEvent{
			Requested: string(method),
			Used:      string(res.MethodUsed),
			Rows:      ds.Len(),
			MAE:       diag.MAE,
			RMSE:      diag.RMSE,
			R2:        diag.R2,
			Duration:  time.Since(start),
			Time:      time.Now(),
		}
		if err := rec.RecordModel(ev); err != nil {
			t.log.Errorf("record model: %v", err)
		}
	}
	t.log.Infof("density model %s: mae=%.3f rmse=%.3f r2=%.3f", res.MethodUsed, diag.MAE, diag.RMSE, diag.R2)
	return res, nil
}

func newRegressor(m forecast.Method, p Params) (learn.Regressor, error) {
	switch m {
	case forecast.MethodRandomForest:
		return &learn.RandomForest{
			NEstimators:    p.NEstimators,
			MaxDepth:       p.MaxDepth,
			MinSamplesLeaf: p.MinSamplesLeaf,
			Seed:           p.Seed,
		}, nil
	case forecast.MethodGradientBoosting:
		return &learn.GradientBoosting{
			NEstimators:    p.NEstimators,
			LearningRate:   p.LearningRate,
			MaxDepth:       p.MaxDepth,
			MinSamplesLeaf: p.MinSamplesLeaf,
			Subsample:      p.Subsample,
			Seed:           p.Seed,
		}, nil
	case forecast.MethodXGBoost:
		reg, err := learn.NewBooster(boosterConfig(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", forecast.ErrFitFailure, err)
		}
		return reg, nil
	default:
		return nil, fmt.Errorf("density model method %q not supported", m)
	}
}

func (t *Trainer) recordFallback(from, to forecast.Method) {
	rec, ok := t.sink.(metrics.FallbackRecorder)
	if !ok {
		return
	}
	ev := metrics.FallbackEvent{From: string(from), To: string(to), Reason: "capability_unavailable", Time: time.Now()}
	if err := rec.RecordFallback(ev); err != nil {
		t.log.Errorf("record fallback: %v", err)
	}
}

// split shuffles row indices with a seeded generator and holds out
// round(frac*n) rows, keeping at least one row on each side.
func split(n int, frac float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	perm := rng.Perm(n)
	k := int(math.Round(frac * float64(n)))
	k = min(max(k, 1), n-1)
	test = append([]int(nil), perm[:k]...)
	train = append([]int(nil), perm[k:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test
}

func rank(features []string, imp []float64) []Importance {
	out := make([]Importance, len(features))
	for i, f := range features {
		out[i] = Importance{Feature: f}
		if i < len(imp) {
			out[i].Value = imp[i]
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}
