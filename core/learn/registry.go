package learn

import "github.com/kilianp07/popcast/core/factory"

// ExtendedBooster is the registry name of the regularized booster shipped in
// infra/boosting.
const ExtendedBooster = "xgboost"

var boosters = factory.NewRegistry[Regressor]()

// RegisterBooster makes an optional booster implementation available.
func RegisterBooster(name string, f factory.Factory[Regressor]) error {
	return boosters.Register(name, f)
}

// HasBooster reports whether name was registered.
func HasBooster(name string) bool { return boosters.Has(name) }

// NewBooster builds a registered booster from its configuration.
func NewBooster(cfg factory.ModuleConfig) (Regressor, error) {
	return boosters.Create(cfg)
}
