package config

import (
	"fmt"

	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
)

// ModelConfig drives density model training.
type ModelConfig struct {
	Method string `json:"method"`
	// Years restricts the training rows. Empty uses every year.
	Years  []int          `json:"years"`
	Params density.Params `json:"params"`
}

// SetDefaults applies sane defaults.
func (c *ModelConfig) SetDefaults() {
	if c.Method == "" {
		c.Method = string(forecast.MethodRandomForest)
	}
	def := density.DefaultParams()
	p := &c.Params
	if p.NEstimators == 0 {
		p.NEstimators = def.NEstimators
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = def.MaxDepth
	}
	if p.LearningRate == 0 {
		p.LearningRate = def.LearningRate
	}
	if p.MinSamplesLeaf == 0 {
		p.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if p.Subsample == 0 {
		p.Subsample = def.Subsample
	}
	if p.Lambda == 0 {
		p.Lambda = def.Lambda
	}
	if p.ColSample == 0 {
		p.ColSample = def.ColSample
	}
	if p.TestFraction == 0 {
		p.TestFraction = def.TestFraction
	}
	if p.Seed == 0 {
		p.Seed = def.Seed
	}
	if p.Booster == "" {
		p.Booster = def.Booster
	}
}

// Validate checks the method and parameter ranges.
func (c ModelConfig) Validate() error {
	m, err := forecast.ParseMethod(c.Method)
	if err != nil {
		return err
	}
	switch m {
	case forecast.MethodRandomForest, forecast.MethodGradientBoosting, forecast.MethodXGBoost:
	default:
		return fmt.Errorf("method %s cannot train a density model", m)
	}
	p := c.Params
	if p.TestFraction <= 0 || p.TestFraction >= 1 {
		return fmt.Errorf("test_fraction %v outside (0,1)", p.TestFraction)
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return fmt.Errorf("subsample %v outside (0,1]", p.Subsample)
	}
	if p.NEstimators < 1 || p.MaxDepth < 1 {
		return fmt.Errorf("n_estimators and max_depth must be >= 1")
	}
	return nil
}
