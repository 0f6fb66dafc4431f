// Package config loads segmentation parameters from JSON files.
//
// A parameter file only needs the fields it changes; everything else keeps
// the value from Default. Command-line flags override file values after
// loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/ctseg/internal/filter"
	"github.com/ironsheep/ctseg/internal/grid"
)

// DefaultConfigPath is where the bundled defaults file lives, relative to the
// repository root.
const DefaultConfigPath = "config/ctseg.defaults.json"

// maxFileSize bounds parameter files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the parameters of every segmentation pipeline.
type Config struct {
	// Connectivity is "4" or "8".
	Connectivity string `json:"connectivity"`

	Smoothing  Smoothing  `json:"smoothing"`
	Threshold  Threshold  `json:"threshold"`
	Confidence Confidence `json:"confidence"`
	Isolated   Isolated   `json:"isolated"`
	Watershed  Watershed  `json:"watershed"`
	Output     Output     `json:"output"`
	Batch      Batch      `json:"batch"`
}

// Smoothing configures the curvature-flow pass run before region growing.
type Smoothing struct {
	Enabled    bool    `json:"enabled"`
	Iterations int     `json:"iterations"`
	TimeStep   float64 `json:"time_step"`
}

// Threshold holds the bounds of a connected-threshold run.
type Threshold struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Confidence configures a confidence-connected run.
type Confidence struct {
	Radius     int     `json:"radius"`
	Multiplier float64 `json:"multiplier"`
	Iterations int     `json:"iterations"`
}

// Isolated configures an isolated-connected run.
type Isolated struct {
	Lower float64 `json:"lower"`
}

// Watershed configures a watershed run. Both values are fractions in [0, 1].
type Watershed struct {
	Threshold float64 `json:"threshold"`
	Level     float64 `json:"level"`
}

// Output configures written results.
type Output struct {
	// ReplaceValue is the 8-bit value region pixels take in mask images.
	ReplaceValue int `json:"replace_value"`
}

// Batch configures multi-slice runs.
type Batch struct {
	// Workers bounds concurrently processed slices. 0 uses GOMAXPROCS.
	Workers int `json:"workers"`
}

// Default returns the standard parameters: 5 smoothing iterations at
// dt 0.125, confidence radius 3 with multiplier 3 over 5 iterations,
// watershed threshold 0.01 and level 0.2, mask value 255, 4-connectivity.
func Default() *Config {
	return &Config{
		Connectivity: "4",
		Smoothing:    Smoothing{Enabled: true, Iterations: 5, TimeStep: 0.125},
		Threshold:    Threshold{Lower: 0, Upper: 0},
		Confidence:   Confidence{Radius: 3, Multiplier: 3, Iterations: 5},
		Isolated:     Isolated{Lower: 0},
		Watershed:    Watershed{Threshold: 0.01, Level: 0.2},
		Output:       Output{ReplaceValue: 255},
	}
}

// Load reads a JSON parameter file over the defaults and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every parameter and returns an error wrapping
// grid.ErrInvalidParameter for the first one out of range.
//
// Threshold bounds are only checked for order; pipelines that do not use
// them ignore them.
func (c *Config) Validate() error {
	if _, err := c.ConnectivityValue(); err != nil {
		return err
	}

	if c.Smoothing.Iterations < 0 {
		return invalid("smoothing.iterations must be non-negative, got %d", c.Smoothing.Iterations)
	}
	if c.Smoothing.Iterations > 0 && (c.Smoothing.TimeStep <= 0 || c.Smoothing.TimeStep > filter.MaxTimeStep) {
		return invalid("smoothing.time_step must be in (0, %g], got %g", filter.MaxTimeStep, c.Smoothing.TimeStep)
	}

	if c.Threshold.Lower > c.Threshold.Upper {
		return invalid("threshold.lower %g exceeds threshold.upper %g", c.Threshold.Lower, c.Threshold.Upper)
	}

	if c.Confidence.Radius < 0 {
		return invalid("confidence.radius must be non-negative, got %d", c.Confidence.Radius)
	}
	if c.Confidence.Multiplier < 0 {
		return invalid("confidence.multiplier must be non-negative, got %g", c.Confidence.Multiplier)
	}
	if c.Confidence.Iterations < 1 {
		return invalid("confidence.iterations must be at least 1, got %d", c.Confidence.Iterations)
	}

	if c.Watershed.Threshold < 0 || c.Watershed.Threshold > 1 {
		return invalid("watershed.threshold must be between 0 and 1, got %g", c.Watershed.Threshold)
	}
	if c.Watershed.Level < 0 || c.Watershed.Level > 1 {
		return invalid("watershed.level must be between 0 and 1, got %g", c.Watershed.Level)
	}

	if c.Output.ReplaceValue < 1 || c.Output.ReplaceValue > 255 {
		return invalid("output.replace_value must be in 1..255, got %d", c.Output.ReplaceValue)
	}
	if c.Batch.Workers < 0 {
		return invalid("batch.workers must be non-negative, got %d", c.Batch.Workers)
	}

	return nil
}

// ConnectivityValue parses the Connectivity field.
func (c *Config) ConnectivityValue() (grid.Connectivity, error) {
	return grid.ParseConnectivity(c.Connectivity)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{grid.ErrInvalidParameter}, args...)...)
}
