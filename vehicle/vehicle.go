// Package vehicle holds the per-fleet cost/capacity constants and an
// optional YAML override file, grounded on the original implementation's
// Config/VehicleConfig structs in main.rs.
package vehicle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the capacity, transfer cost, and go cost of one vehicle kind.
type Config struct {
	Capacity     int   `yaml:"capacity"`
	TransferCost int64 `yaml:"transfer_cost"`
	GoCost       int64 `yaml:"go_cost"`
}

// FleetConfig groups the two fleets this planner schedules: depot-bound
// trucks and airport-bound airplanes.
type FleetConfig struct {
	Truck    Config `yaml:"truck"`
	Airplane Config `yaml:"airplane"`
}

// Default returns the fleet configuration used when no override file is
// supplied, matching the original implementation's hardcoded constants.
func Default() FleetConfig {
	return FleetConfig{
		Truck:    Config{Capacity: 4, TransferCost: 4, GoCost: 17},
		Airplane: Config{Capacity: 30, TransferCost: 25, GoCost: 1000},
	}
}

// LoadOverride reads a YAML file at path and overlays it onto Default():
// fields present in the file replace the default; fields absent keep the
// default. A missing or empty field set is not an error — the caller may
// pass a file that only tweaks one fleet.
func LoadOverride(path string) (FleetConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("vehicle: LoadOverride(%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("vehicle: LoadOverride(%s): %w", path, err)
	}

	return cfg, nil
}
