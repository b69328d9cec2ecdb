package config

import (
	"fmt"

	"github.com/kilianp07/popcast/core/factory"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
)

// TreesConfig tunes the tree-based series forecasters.
type TreesConfig struct {
	NEstimators  int     `json:"n_estimators"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`
}

// ForecastConfig drives the forecast and analyze commands.
type ForecastConfig struct {
	Method        string   `json:"method"`
	Indicator     string   `json:"indicator"`
	YearsAhead    int      `json:"years_ahead"`
	Degree        int      `json:"degree"`
	MinHistory    int      `json:"min_history"`
	TreeMinPoints int      `json:"tree_min_points"`
	Countries     []string `json:"countries"`
	// Compare lists the methods analyze runs for every country.
	Compare  []string             `json:"compare"`
	Workers  int                  `json:"workers"`
	Trees    TreesConfig          `json:"trees"`
	Smoother factory.ModuleConfig `json:"smoother"`
	Booster  factory.ModuleConfig `json:"booster"`
}

// SetDefaults applies sane defaults.
func (c *ForecastConfig) SetDefaults() {
	def := forecast.DefaultOptions()
	if c.Method == "" {
		c.Method = string(forecast.MethodLinear)
	}
	if c.Indicator == "" {
		c.Indicator = string(model.IndicatorPopulation)
	}
	if c.YearsAhead == 0 {
		c.YearsAhead = 10
	}
	if c.Degree == 0 {
		c.Degree = forecast.DefaultDegree
	}
	if c.MinHistory == 0 {
		c.MinHistory = def.MinHistory
	}
	if c.TreeMinPoints == 0 {
		c.TreeMinPoints = def.TreeMinPoints
	}
	if len(c.Compare) == 0 {
		for _, m := range forecast.Methods {
			c.Compare = append(c.Compare, string(m))
		}
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Trees.NEstimators == 0 {
		c.Trees.NEstimators = def.Trees.NEstimators
	}
	if c.Trees.MaxDepth == 0 {
		c.Trees.MaxDepth = def.Trees.MaxDepth
	}
	if c.Trees.LearningRate == 0 {
		c.Trees.LearningRate = def.Trees.LearningRate
	}
	if c.Trees.Seed == 0 {
		c.Trees.Seed = def.Trees.Seed
	}
	if c.Smoother.Type == "" {
		c.Smoother = def.Smoother
	}
	if c.Booster.Type == "" {
		c.Booster = def.Booster
	}
}

// Validate checks method names and ranges.
func (c ForecastConfig) Validate() error {
	if _, err := forecast.ParseMethod(c.Method); err != nil {
		return err
	}
	for _, m := range c.Compare {
		if _, err := forecast.ParseMethod(m); err != nil {
			return fmt.Errorf("compare: %w", err)
		}
	}
	if _, err := model.ParseIndicator(c.Indicator); err != nil {
		return err
	}
	if c.YearsAhead < 1 {
		return fmt.Errorf("years_ahead must be >= 1, got %d", c.YearsAhead)
	}
	if c.Degree < 1 {
		return fmt.Errorf("degree must be >= 1, got %d", c.Degree)
	}
	if c.MinHistory < 3 {
		return fmt.Errorf("min_history must be >= 3, got %d", c.MinHistory)
	}
	if c.TreeMinPoints < 2 {
		return fmt.Errorf("tree_min_points must be >= 2, got %d", c.TreeMinPoints)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// Options converts the section into dispatcher options.
func (c ForecastConfig) Options() forecast.Options {
	return forecast.Options{
		MinHistory:    c.MinHistory,
		TreeMinPoints: c.TreeMinPoints,
		Trees: forecast.TreeOptions{
			NEstimators:  c.Trees.NEstimators,
			MaxDepth:     c.Trees.MaxDepth,
			LearningRate: c.Trees.LearningRate,
			Seed:         c.Trees.Seed,
		},
		Smoother: c.Smoother,
		Booster:  c.Booster,
	}
}
