// Package boosting provides the regularized LightGBM booster used by the
// xgboost_ensemble method. Importing it registers the implementation; builds
// tagged noxgboost leave it out.
package boosting

import (
	"fmt"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"

	"github.com/kilianp07/popcast/core/factory"
	"github.com/kilianp07/popcast/core/learn"
)

func init() {
	if err := learn.RegisterBooster(learn.ExtendedBooster, New); err != nil {
		panic(err)
	}
}

// Config holds the booster hyper-parameters.
type Config struct {
	NEstimators    int     `json:"n_estimators"`
	MaxDepth       int     `json:"max_depth"`
	NumLeaves      int     `json:"num_leaves"`
	LearningRate   float64 `json:"learning_rate"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
	Subsample      float64 `json:"subsample"`
	ColSample      float64 `json:"colsample"`
	Lambda         float64 `json:"lambda"`
	Alpha          float64 `json:"alpha"`
	// Objective is a LightGBM regression objective such as regression,
	// huber or regression_l1.
	Objective string `json:"objective"`
	Seed      uint64 `json:"seed"`
}

// DefaultConfig mirrors the usual extreme gradient boosting defaults.
func DefaultConfig() Config {
	return Config{
		NEstimators:    100,
		MaxDepth:       6,
		NumLeaves:      31,
		LearningRate:   0.3,
		MinSamplesLeaf: 1,
		Subsample:      1,
		ColSample:      1,
		Lambda:         1,
		Objective:      "regression",
	}
}

// Validate rejects settings outside their domain.
func (c Config) Validate() error {
	if c.NEstimators <= 0 || c.MaxDepth <= 0 {
		return fmt.Errorf("n_estimators and max_depth must be positive")
	}
	if c.NumLeaves < 2 {
		return fmt.Errorf("num_leaves %d below 2", c.NumLeaves)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning_rate %v outside (0,1]", c.LearningRate)
	}
	if c.Subsample <= 0 || c.Subsample > 1 || c.ColSample <= 0 || c.ColSample > 1 {
		return fmt.Errorf("subsample and colsample must lie in (0,1]")
	}
	if c.Lambda < 0 || c.Alpha < 0 {
		return fmt.Errorf("lambda and alpha must be non-negative")
	}
	switch c.Objective {
	case "binary", "binary_logloss", "logistic", "multiclass", "softmax", "multiclassova", "multiclass_logloss", "lambdarank", "rank_xendcg":
		return fmt.Errorf("objective %q is not a regression objective", c.Objective)
	}
	if _, err := lightgbm.CreateObjectiveFunction(c.Objective, &lightgbm.TrainingParams{}); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	return nil
}

// New builds the booster from raw settings layered over DefaultConfig.
func New(conf map[string]any) (learn.Regressor, error) {
	cfg := DefaultConfig()
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, fmt.Errorf("booster config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("booster config: %w", err)
	}
	return &learn.GradientBoosting{
		NEstimators:    cfg.NEstimators,
		LearningRate:   cfg.LearningRate,
		MaxDepth:       cfg.MaxDepth,
		NumLeaves:      cfg.NumLeaves,
		MinSamplesLeaf: cfg.MinSamplesLeaf,
		Subsample:      cfg.Subsample,
		ColSample:      cfg.ColSample,
		Lambda:         cfg.Lambda,
		Alpha:          cfg.Alpha,
		Objective:      cfg.Objective,
		Seed:           cfg.Seed,
	}, nil
}
