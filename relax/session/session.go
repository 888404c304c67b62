package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-relax/relax/arrhenius"
	"github.com/cwbudde/algo-relax/relax/decay"
	"github.com/cwbudde/algo-relax/relax/group"
	"github.com/cwbudde/algo-relax/relax/mechanism"
	"github.com/cwbudde/algo-relax/relax/sample"
)

// Session owns one analysis: the raw samples, the active temperature range
// and the results derived from them. It is not safe for concurrent use.
type Session struct {
	id          string
	samples     []sample.Raw
	granularity float64
	fitter      *decay.Fitter
	logger      *slog.Logger
	metrics     *instruments

	rng     Range
	lo, hi  float64
	groups  []group.Group
	results []decay.Result
	curve   arrhenius.Curve
}

// New validates the samples, groups them and fits every group over the
// unbounded range.
func New(samples []sample.Raw, opts ...Option) (*Session, error) {
	cfg := ApplyOptions(opts...)

	if !(cfg.Granularity > 0) || math.IsInf(cfg.Granularity, 0) {
		return nil, group.ErrInvalidGranularity
	}

	if err := sample.Validate(samples); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	id := uuid.NewString()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ins, err := newInstruments(cfg.MeterProvider, id)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		id:          id,
		samples:     append([]sample.Raw(nil), samples...),
		granularity: cfg.Granularity,
		fitter:      decay.NewFitter(cfg.DecayOptions...),
		logger:      logger.With("session", id),
		metrics:     ins,
	}

	if err := s.SelectRange(Unbounded()); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns the session identifier attached to logs and metrics.
func (s *Session) ID() string {
	return s.id
}

// Granularity returns the temperature rounding step.
func (s *Session) Granularity() float64 {
	return s.granularity
}

// Range returns the requested range.
func (s *Session) Range() Range {
	return s.rng
}

// ActiveRange returns the lowest and highest rounded temperature retained by
// the current range.
func (s *Session) ActiveRange() (lo, hi float64) {
	return s.lo, s.hi
}

// SelectRange keeps the samples whose rounded temperature lies in r,
// regroups them and re-fits every retained group. On error the previous
// state is left untouched.
func (s *Session) SelectRange(r Range) error {
	kept := make([]sample.Raw, 0, len(s.samples))
	for _, smp := range s.samples {
		if r.Contains(group.Round(smp.Temperature, s.granularity)) {
			kept = append(kept, smp)
		}
	}

	if len(kept) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySelection, r)
	}

	gs, err := group.ByTemperature(kept, s.granularity)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	groups := gs.Sorted()
	results := s.fitter.FitAll(groups)

	curve, err := arrhenius.CurveFromDecay(results)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	invalid := 0
	for _, res := range results {
		if res.Valid() {
			s.logger.Debug("decay fit",
				"temperature", res.Temperature,
				"tau", res.Tau,
				"beta", res.Beta,
				"iterations", res.Iterations)
			continue
		}

		invalid++
		s.logger.Warn("decay fit failed",
			"temperature", res.Temperature,
			"points", res.Points,
			"reason", res.Reason)
	}

	s.metrics.recordDecay(context.Background(), results)

	s.rng = r
	s.groups = groups
	s.results = results
	s.curve = curve
	s.lo, s.hi = groups[0].Temperature, groups[len(groups)-1].Temperature

	s.logger.Info("range selected",
		"range", r.String(),
		"groups", len(groups),
		"samples", len(kept),
		"invalid", invalid)

	return nil
}

// Groups returns the temperature groups of the active range in ascending
// order.
func (s *Session) Groups() []group.Group {
	return append([]group.Group(nil), s.groups...)
}

// DecayResults returns a copy of the per-group fit results.
func (s *Session) DecayResults() []decay.Result {
	out := make([]decay.Result, len(s.results))
	for i, r := range s.results {
		r.Times = append([]float64(nil), r.Times...)
		r.Moments = append([]float64(nil), r.Moments...)
		r.Fitted = append([]float64(nil), r.Fitted...)
		out[i] = r
	}
	return out
}

// TauCurve returns the relaxation times of the valid decay fits.
func (s *Session) TauCurve() arrhenius.Curve {
	return s.curve
}

// FitArrhenius fits the current tau curve to the mechanism model described
// by p. Each call computes a fresh result.
func (s *Session) FitArrhenius(p mechanism.Parameters, opts ...arrhenius.Option) (arrhenius.Result, error) {
	res, err := arrhenius.Fit(s.curve, p, opts...)
	if err != nil {
		s.logger.Warn("arrhenius fit rejected", "err", err)
		return arrhenius.Result{}, err
	}

	s.metrics.recordArrhenius(context.Background(), res)

	attrs := []any{
		"points", res.Points,
		"free", res.Free,
		"converged", res.Converged,
		"degenerate", res.Degenerate,
		"reason", res.Reason,
	}
	for _, e := range res.Estimates {
		if e.Mode != mechanism.Excluded {
			attrs = append(attrs, e.Name(), e.Value)
		}
	}
	s.logger.Info("arrhenius fit", attrs...)

	return res, nil
}
