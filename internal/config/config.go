// Package config loads studio settings from a YAML file, falling back to
// defaults when the file or individual keys are absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"billboard-studio/internal/chroma"
	"billboard-studio/pkg/colorutil"
)

const (
	DefaultFileName = "billboard-studio.yaml"

	defaultToleranceMin = 1
	defaultToleranceMax = 255
)

// Config is the on-disk studio configuration.
type Config struct {
	// ChromaKey is the default detection target as a #rrggbb hex string.
	ChromaKey string `yaml:"chroma_key"`

	// Tolerance is the Euclidean RGB distance below which a pixel counts
	// as green screen.
	Tolerance int `yaml:"tolerance"`

	// DepthMultiplier scales the perspective padding applied to skewed
	// detections.
	DepthMultiplier int `yaml:"depth_multiplier"`

	// RefineCorners enables least-squares edge fitting on detections.
	RefineCorners bool `yaml:"refine_corners"`

	// Workers bounds the detection scan concurrency. Zero means one
	// worker per CPU.
	Workers int `yaml:"workers"`

	// PreviewDebounceMS is the quiet period before a preview render.
	PreviewDebounceMS int `yaml:"preview_debounce_ms"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ChromaKey:         colorutil.FormatHex(colorutil.ChromaKey),
		Tolerance:         40,
		DepthMultiplier:   10,
		RefineCorners:     true,
		Workers:           0,
		PreviewDebounceMS: 400,
		LogLevel:          "info",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "billboard-studio", DefaultFileName)
}

// Load reads the config at path. A missing file yields the defaults; a
// present but malformed or out-of-range file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c Config) Save(path string) error {
	if err := c.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c Config) validate() error {
	if _, err := colorutil.ParseHex(c.ChromaKey); err != nil {
		return fmt.Errorf("chroma_key: %w", err)
	}
	if c.Tolerance < defaultToleranceMin || c.Tolerance > defaultToleranceMax {
		return fmt.Errorf("tolerance %d out of range [%d,%d]",
			c.Tolerance, defaultToleranceMin, defaultToleranceMax)
	}
	if c.DepthMultiplier < 1 {
		return fmt.Errorf("depth_multiplier %d must be positive", c.DepthMultiplier)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	if c.PreviewDebounceMS < 0 {
		return fmt.Errorf("preview_debounce_ms %d must not be negative", c.PreviewDebounceMS)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// DetectParams converts the config into detection parameters.
func (c Config) DetectParams() chroma.Params {
	p := chroma.DefaultParams()
	if target, err := colorutil.ParseHex(c.ChromaKey); err == nil {
		p.Target = target
	}
	p.Tolerance = c.Tolerance
	p.DepthMultiplier = c.DepthMultiplier
	p.RefineCorners = c.RefineCorners
	p.Workers = c.Workers
	return p
}

// PreviewDebounce returns the preview quiet period as a duration.
func (c Config) PreviewDebounce() time.Duration {
	return time.Duration(c.PreviewDebounceMS) * time.Millisecond
}
