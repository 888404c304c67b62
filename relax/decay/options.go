package decay

// Seed is the starting point of a decay fit.
type Seed struct {
	Tau  float64
	Beta float64
}

// DefaultSeed returns the seed used for the first temperature of a sweep.
func DefaultSeed() Seed {
	return Seed{Tau: 10, Beta: 1}
}

// Config defines configuration for the decay fitter.
type Config struct {
	TauMin  float64
	TauMax  float64
	BetaMin float64
	BetaMax float64
	Seed    Seed

	MaxIterations  int
	MaxEvaluations int
	FTol           float64
	XTol           float64
	GTol           float64

	ConfidenceLevel float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults: tau in [1, 1e6], beta in [0.2, 1.7]
// and 95% confidence. FTol and XTol sit below float64 resolution, so an
// accepted step always decreases the cost by more than FTol allows and the
// cost test never fires. Fits stop on the gradient or zero-residual test,
// on a step that vanishes under heavy damping, or on the iteration cap.
func DefaultConfig() Config {
	return Config{
		TauMin:          1,
		TauMax:          1e6,
		BetaMin:         0.2,
		BetaMax:         1.7,
		Seed:            DefaultSeed(),
		MaxIterations:   500,
		MaxEvaluations:  5000,
		FTol:            1e-25,
		XTol:            1e-25,
		GTol:            1e-10,
		ConfidenceLevel: 0.95,
	}
}

// WithTauBounds sets the relaxation time bounds.
func WithTauBounds(lo, hi float64) Option {
	return func(cfg *Config) {
		if lo > 0 && hi > lo {
			cfg.TauMin, cfg.TauMax = lo, hi
		}
	}
}

// WithBetaBounds sets the stretching exponent bounds.
func WithBetaBounds(lo, hi float64) Option {
	return func(cfg *Config) {
		if lo > 0 && hi > lo {
			cfg.BetaMin, cfg.BetaMax = lo, hi
		}
	}
}

// WithSeed sets the starting point for the first fit of a sweep.
func WithSeed(s Seed) Option {
	return func(cfg *Config) {
		if s.Tau > 0 && s.Beta > 0 {
			cfg.Seed = s
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
