package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/popcast/core/metrics"
)

type Config struct {
	Data         DataConfig         `json:"data"`
	Forecast     ForecastConfig     `json:"forecast"`
	Model        ModelConfig        `json:"model"`
	Scenarios    ScenariosConfig    `json:"scenarios"`
	Capabilities CapabilitiesConfig `json:"capabilities"`
	Output       OutputConfig       `json:"output"`
	Metrics      metrics.Config     `json:"metrics"`
	Monitoring   MonitoringConfig   `json:"monitoring"`
	Logging      LoggingConfig      `json:"logging"`
	// Regions overrides the built-in country to region table.
	Regions map[string]string `json:"regions"`
}

// Load reads the YAML or JSON file at path, applies K_ environment overrides
// (K_FORECAST__YEARS_AHEAD=20 sets forecast.years_ahead), fills defaults and
// validates every section. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Data.SetDefaults()
	c.Forecast.SetDefaults()
	c.Model.SetDefaults()
	c.Scenarios.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and prefixes errors with the section name.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"data", c.Data.Validate},
		{"forecast", c.Forecast.Validate},
		{"model", c.Model.Validate},
		{"scenarios", c.Scenarios.Validate},
		{"capabilities", c.Capabilities.Validate},
		{"output", c.Output.Validate},
		{"monitoring", c.Monitoring.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
