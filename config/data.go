package config

import "fmt"

// DataConfig locates and cleans the input table.
type DataConfig struct {
	Path string `json:"path"`
	// MinYear drops observations before this year.
	MinYear      int     `json:"min_year"`
	MaxSkipRatio float64 `json:"max_skip_ratio"`
	// KeepAggregates keeps world and regional total rows.
	KeepAggregates bool `json:"keep_aggregates"`
}

// SetDefaults applies sane defaults.
func (c *DataConfig) SetDefaults() {
	if c.MinYear == 0 {
		c.MinYear = 1990
	}
	if c.MaxSkipRatio == 0 {
		c.MaxSkipRatio = 0.5
	}
}

// Validate checks value ranges. Path is checked by the commands reading data.
func (c DataConfig) Validate() error {
	if c.MaxSkipRatio < 0 || c.MaxSkipRatio > 1 {
		return fmt.Errorf("max_skip_ratio %v outside [0,1]", c.MaxSkipRatio)
	}
	return nil
}
