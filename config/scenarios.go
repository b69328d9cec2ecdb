package config

import (
	"fmt"

	"github.com/kilianp07/popcast/core/scenario"
)

// ScenarioConfig is one inline growth scenario.
type ScenarioConfig struct {
	Name  string  `json:"name"`
	Delta float64 `json:"delta"`
}

// ScenariosConfig lists growth scenarios. Inline entries keep their list
// order; File points to an ordered name: delta YAML mapping used instead.
type ScenariosConfig struct {
	File  string           `json:"file"`
	List  []ScenarioConfig `json:"list"`
	Years int              `json:"years"`
	// Window is the number of trailing years used for the base growth rate.
	Window int `json:"window"`
}

// SetDefaults applies sane defaults.
func (c *ScenariosConfig) SetDefaults() {
	if c.File == "" && len(c.List) == 0 {
		c.List = []ScenarioConfig{{Name: "low", Delta: -0.005}, {Name: "baseline"}, {Name: "high", Delta: 0.005}}
	}
	if c.Years == 0 {
		c.Years = 10
	}
	if c.Window == 0 {
		c.Window = 10
	}
}

// Validate rejects duplicate or unnamed scenarios.
func (c ScenariosConfig) Validate() error {
	seen := map[string]bool{}
	for _, s := range c.List {
		if s.Name == "" {
			return fmt.Errorf("scenario without name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Years < 0 || c.Window < 1 {
		return fmt.Errorf("years must be >= 0 and window >= 1")
	}
	return nil
}

// Resolve returns the scenarios in their configured order.
func (c ScenariosConfig) Resolve() ([]scenario.Scenario, error) {
	if c.File != "" {
		return scenario.LoadFile(c.File)
	}
	out := make([]scenario.Scenario, len(c.List))
	for i, s := range c.List {
		out[i] = scenario.Scenario{Name: s.Name, Delta: s.Delta}
	}
	return out, nil
}
