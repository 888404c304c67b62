package session

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/cwbudde/algo-relax/relax/decay"
	"github.com/cwbudde/algo-relax/relax/group"
)

// Config defines configuration for a Session.
type Config struct {
	Granularity   float64
	Logger        *slog.Logger
	MeterProvider metric.MeterProvider
	DecayOptions  []decay.Option
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a 0.05 K granularity, a discarding logger and no
// metrics export.
func DefaultConfig() Config {
	return Config{
		Granularity: group.DefaultGranularity,
	}
}

// WithGranularity sets the temperature rounding step. Validation happens in
// New so an invalid value is reported rather than ignored.
func WithGranularity(g float64) Option {
	return func(cfg *Config) {
		cfg.Granularity = g
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithMeterProvider sets the provider the session's instruments are created
// from.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *Config) {
		if mp != nil {
			cfg.MeterProvider = mp
		}
	}
}

// WithDecayOptions configures the decay fitter.
func WithDecayOptions(opts ...decay.Option) Option {
	return func(cfg *Config) {
		cfg.DecayOptions = append(cfg.DecayOptions, opts...)
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
