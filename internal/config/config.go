// Package config loads tunables from a YAML file. Every field has a
// working default; a config file only needs to name the values it
// overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"card-tracer/internal/assign"
	"card-tracer/internal/detect"
)

// Config collects the tunables for a detection and inference run.
type Config struct {
	// Detect holds the card detection parameters.
	Detect detect.Params `yaml:"detect"`

	// ThresholdMultiplier scales the calibration distance into the
	// maximum dweller-to-tree assignment distance.
	ThresholdMultiplier float64 `yaml:"threshold_multiplier"`

	// OCRLanguage is the tesseract language code for card name reading.
	OCRLanguage string `yaml:"ocr_language"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Detect:              detect.DefaultParams(),
		ThresholdMultiplier: assign.DefaultThresholdMultiplier,
		OCRLanguage:         "eng",
	}
}

// Load reads a YAML config file over the defaults, so omitted fields
// keep their built-in values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if err := c.Detect.Validate(); err != nil {
		return err
	}
	if c.ThresholdMultiplier <= 0 {
		return fmt.Errorf("threshold_multiplier must be positive, got %g", c.ThresholdMultiplier)
	}
	if c.OCRLanguage == "" {
		return fmt.Errorf("ocr_language must not be empty")
	}
	return nil
}
