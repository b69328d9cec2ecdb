package config

import (
	"fmt"
	"strings"
)

// OutputConfig selects where and how results are written.
type OutputConfig struct {
	Dir string `json:"dir"`
	// Formats lists export formats: json, csv, parquet.
	Formats       []string `json:"formats"`
	DisableCharts bool     `json:"disable_charts"`
	// Store is the sqlite run database. Empty disables persistence.
	Store   string `json:"store"`
	NoColor bool   `json:"no_color"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{"json", "csv"}
	}
}

// Validate rejects unknown formats.
func (c OutputConfig) Validate() error {
	for _, f := range c.Formats {
		switch strings.ToLower(f) {
		case "json", "csv", "parquet":
		default:
			return fmt.Errorf("unknown output format %s", f)
		}
	}
	return nil
}
