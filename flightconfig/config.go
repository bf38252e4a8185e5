// Package flightconfig loads the flight core's tuning parameters from YAML,
// with documented defaults matching the reference tuning so that an empty
// or partial file still produces a usable configuration.
package flightconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every construction-time tunable named in the external
// interfaces section: launch detection, VVE noise, apogee prediction, and
// landing detection.
type Config struct {
	// Windowed launch detector.
	LaunchThresholdMps2 float32 `yaml:"launch_threshold_mps2"`
	WindowSizeMs        uint32  `yaml:"window_size_ms"`
	WindowIntervalMs    uint32  `yaml:"window_interval_ms"`

	// Fast (tentative) launch detector.
	FastLaunchThresholdMps2 float32 `yaml:"fast_launch_threshold_mps2"`
	ConfirmationWindowMs    uint32  `yaml:"confirmation_window_ms"`

	// Vertical-velocity estimator.
	AccelVariance float64 `yaml:"accel_variance"`
	BaroVariance  float64 `yaml:"baro_variance"`

	// Apogee predictor.
	PredictorAlpha   float32 `yaml:"predictor_alpha"`
	MinClimbVelocity float32 `yaml:"min_climb_velocity_mps"`

	// Apogee detector and landing.
	ApogeeMarginM      float32 `yaml:"apogee_margin_m"`
	LandingVelocityMps float32 `yaml:"landing_velocity_mps"`
	LandingSampleCount int     `yaml:"landing_sample_count"`
}

// Default returns the documented reference tuning.
func Default() Config {
	return Config{
		LaunchThresholdMps2:     30.0,
		WindowSizeMs:            100,
		WindowIntervalMs:        5,
		FastLaunchThresholdMps2: 20.0,
		ConfirmationWindowMs:    500,
		AccelVariance:           1.05,
		BaroVariance:            10.0,
		PredictorAlpha:          0.2,
		MinClimbVelocity:        1.0,
		ApogeeMarginM:           2.0,
		LandingVelocityMps:      1.0,
		LandingSampleCount:      10,
	}
}

// LoadConfig reads a YAML tuning file, overlaying it on top of Default() so
// an omitted field keeps its documented default instead of zeroing out.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("flightconfig: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("flightconfig: parsing %s: %w", path, err)
	}

	return cfg, nil
}
