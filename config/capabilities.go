package config

import "github.com/kilianp07/popcast/core/capability"

// CapabilitiesConfig force-disables optional capabilities.
type CapabilitiesConfig struct {
	Disable []string `json:"disable"`
}

// Validate rejects unknown capability names.
func (c CapabilitiesConfig) Validate() error {
	for _, n := range c.Disable {
		if _, err := capability.Parse(n); err != nil {
			return err
		}
	}
	return nil
}
