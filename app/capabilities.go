package app

import (
	"fmt"

	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/learn"
)

// DetectCapabilities probes the optional implementations selected in cfg and
// applies capabilities.disable. The returned map explains every flag.
func DetectCapabilities(cfg *config.Config) (capability.Set, map[capability.Name]string, error) {
	smoother := cfg.Forecast.Smoother.Type
	booster := cfg.Model.Params.Booster
	probes := map[capability.Name]capability.Probe{
		capability.SmoothingExtended: func() bool { return forecast.SmootherAvailable(smoother) },
		capability.BoostingExtended: func() bool {
			return learn.HasBooster(booster) && learn.HasBooster(cfg.Forecast.Booster.Type)
		},
	}
	caps, err := capability.Detect(probes, cfg.Capabilities.Disable)
	if err != nil {
		return capability.Set{}, nil, err
	}

	reasons := map[capability.Name]string{
		capability.SmoothingExtended: fmt.Sprintf("smoother %s", smoother),
		capability.BoostingExtended:  fmt.Sprintf("booster %s", booster),
	}
	if !probes[capability.SmoothingExtended]() {
		reasons[capability.SmoothingExtended] = fmt.Sprintf("smoother %s not linked in", smoother)
	}
	if !probes[capability.BoostingExtended]() {
		reasons[capability.BoostingExtended] = fmt.Sprintf("booster %s not linked in", booster)
	}
	for _, d := range cfg.Capabilities.Disable {
		if n, err := capability.Parse(d); err == nil {
			reasons[n] = "disabled by config"
		}
	}
	return caps, reasons, nil
}
