package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration for kefctl. It mirrors the
// persistent flags; any flag given on the command line overrides the
// file value. Keep defaults and validation centralized so the rest of
// the code can assume a well-formed config.
type Config struct {
	Host          string  `yaml:"host"`
	Port          int     `yaml:"port"`
	VolumeStep    float64 `yaml:"volume_step"`
	MaximumVolume float64 `yaml:"maximum_volume"`

	// IntervalSec is the monitor polling cadence in seconds.
	IntervalSec int `yaml:"interval_seconds"`
}

func defaultCLIConfig() Config {
	return Config{
		Port:          50001,
		VolumeStep:    0.05,
		MaximumVolume: 1.0,
		IntervalSec:   15,
	}
}

// loadConfig reads the config file at path, applying defaults for
// anything unset. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultCLIConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 1 {
		return fmt.Errorf("volume_step %v must be in (0, 1]", c.VolumeStep)
	}
	if c.MaximumVolume <= 0 || c.MaximumVolume > 1 {
		return fmt.Errorf("maximum_volume %v must be in (0, 1]", c.MaximumVolume)
	}
	if c.IntervalSec <= 0 {
		return fmt.Errorf("interval_seconds %d must be positive", c.IntervalSec)
	}
	return nil
}
