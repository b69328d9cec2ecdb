package metrics

import "github.com/kilianp07/popcast/core/factory"

// Config defines the metrics sinks of a run.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
