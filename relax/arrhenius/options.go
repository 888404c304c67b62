package arrhenius

// Config defines configuration for the Arrhenius fitter.
type Config struct {
	RamanMin float64
	RamanMax float64

	MaxIterations  int
	MaxEvaluations int
	FTol           float64
	XTol           float64
	GTol           float64

	ConfidenceLevel float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RamanMin:        1,
		RamanMax:        9,
		MaxIterations:   500,
		MaxEvaluations:  5000,
		FTol:            1e-15,
		XTol:            1e-15,
		GTol:            1e-10,
		ConfidenceLevel: 0.95,
	}
}

// WithRamanExponentBounds sets the bounds of the Raman exponent n.
func WithRamanExponentBounds(lo, hi float64) Option {
	return func(cfg *Config) {
		if lo >= 0 && hi > lo {
			cfg.RamanMin, cfg.RamanMax = lo, hi
		}
	}
}

// WithIterationLimits caps accepted solver steps and residual evaluations.
func WithIterationLimits(maxIterations, maxEvaluations int) Option {
	return func(cfg *Config) {
		if maxIterations > 0 {
			cfg.MaxIterations = maxIterations
		}
		if maxEvaluations > 0 {
			cfg.MaxEvaluations = maxEvaluations
		}
	}
}

// WithTolerances sets the cost, step and gradient tolerances.
func WithTolerances(ftol, xtol, gtol float64) Option {
	return func(cfg *Config) {
		if ftol >= 0 {
			cfg.FTol = ftol
		}
		if xtol >= 0 {
			cfg.XTol = xtol
		}
		if gtol >= 0 {
			cfg.GTol = gtol
		}
	}
}

// WithConfidenceLevel sets the confidence level, e.g. 0.95.
func WithConfidenceLevel(level float64) Option {
	return func(cfg *Config) {
		if level > 0 && level < 1 {
			cfg.ConfidenceLevel = level
		}
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
