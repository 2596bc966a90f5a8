package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"verity/governor"
	"verity/lattice"
)

// Config is the full startup configuration. Every value defaults to the
// reference constant; a YAML file may override any subset, but verdicts are
// only reproducible across runs that share the same constants.
type Config struct {
	Lattice  lattice.Config  `yaml:"lattice"`
	Governor governor.Config `yaml:"governor"`
	Metrics  string          `yaml:"metrics"`
}

func DefaultConfig() Config {
	return Config{
		Lattice:  lattice.DefaultConfig(),
		Governor: governor.DefaultConfig(),
	}
}

// LoadConfig reads an optional YAML file over the defaults. An empty path
// means defaults only. Read or parse failures are fatal to the caller; a
// half-applied config would silently change every entropy value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
