package density

import "github.com/kilianp07/popcast/core/factory"

// boosterConfig maps training parameters onto the extended booster settings.
func boosterConfig(p Params) factory.ModuleConfig {
	return factory.ModuleConfig{
		Type: p.Booster,
		Conf: map[string]any{
			"n_estimators":     p.NEstimators,
			"max_depth":        p.MaxDepth,
			"learning_rate":    p.LearningRate,
			"min_samples_leaf": p.MinSamplesLeaf,
			"subsample":        p.Subsample,
			"lambda":           p.Lambda,
			"colsample":        p.ColSample,
			"seed":             p.Seed,
		},
	}
}
