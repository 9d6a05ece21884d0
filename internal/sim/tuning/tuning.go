// Package tuning loads operator-facing simulation parameters from YAML.
// Everything here is configuration data handed to the constructing context;
// there are no process-wide registries, so multiple simulation instances
// (tests, replays) never share mutable state.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	ProvinceCapacity  int `yaml:"province_capacity"`
	SoftProvinceLimit int `yaml:"soft_province_limit"`

	DecayEveryTicks    int `yaml:"decay_every_ticks"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
