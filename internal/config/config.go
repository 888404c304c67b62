// Package config loads relaxfit settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. RELAXFIT_GRANULARITY.
const Prefix = "RELAXFIT"

// ErrInvalid is returned when a loaded value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the tunables of the relaxfit command.
type Config struct {
	Granularity    float64 `envconfig:"GRANULARITY" default:"0.05"`
	MaxIterations  int     `envconfig:"MAX_ITERATIONS" default:"500"`
	MaxEvaluations int     `envconfig:"MAX_EVALUATIONS" default:"5000"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"warn"`
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read reads the configuration without validating it, so callers can
// override values before calling Validate.
func Read() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if !(c.Granularity > 0) || math.IsInf(c.Granularity, 0) {
		return fmt.Errorf("%w: granularity %v", ErrInvalid, c.Granularity)
	}

	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalid, c.MaxIterations)
	}

	if c.MaxEvaluations <= 0 {
		return fmt.Errorf("%w: max evaluations %d", ErrInvalid, c.MaxEvaluations)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return lvl, nil
}
