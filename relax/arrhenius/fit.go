package arrhenius

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-relax/internal/lsq"
	"github.com/cwbudde/algo-relax/relax/mechanism"
	"github.com/cwbudde/algo-relax/relax/residual"
	"github.com/cwbudde/algo-relax/relax/table"
)

// ErrSeedNotFinite is returned when the model cannot be evaluated at the
// seed, e.g. a tunneling-only model seeded with qtm = 0.
var ErrSeedNotFinite = errors.New("arrhenius: model is not finite at the seed")

// Estimate is the outcome for one parameter slot.
type Estimate struct {
	Slot  mechanism.Slot
	Mode  mechanism.Mode // resolved mode; a slot whose partner is excluded reports Excluded
	Value float64        // NaN when excluded

	// CI is the distance from Value to the lower bound of the confidence
	// interval, NaN unless Applicable. It equals the half-width for every
	// slot but tau0, whose interval is symmetric in ln(tau0).
	CI float64

	// Applicable is true for free parameters whose interval is defined.
	Applicable bool

	// AtBound is set when a free parameter ended on its box constraint,
	// e.g. Ueff = 0 for a curve whose tau falls with temperature.
	AtBound bool
}

// Name returns the slot name.
func (e Estimate) Name() string {
	return e.Slot.String()
}

// Result is the outcome of an Arrhenius fit.
type Result struct {
	Estimates [mechanism.NumSlots]Estimate

	TMin float64
	TMax float64

	Points int
	Free   int
	DOF    int

	// Degenerate is set when there are no more points than free parameters
	// or the Jacobian is rank deficient; confidence intervals are then NaN.
	Degenerate bool
	Converged  bool
	Reason     string
	Iterations int
	RMS        float64 // of ln(tau) residuals
	Residuals  residual.Stats

	Model mechanism.Model
}

// Get returns the estimate of slot s.
func (r Result) Get(s mechanism.Slot) Estimate {
	if s < 0 || s >= mechanism.NumSlots {
		return Estimate{Slot: s, Value: math.NaN(), CI: math.NaN()}
	}
	return r.Estimates[s]
}

// Parameters returns the fitted values with the original modes, suitable
// for seeding a follow-up fit.
func (r Result) Parameters() mechanism.Parameters {
	return r.Model.Parameters()
}

// Predict returns the model relaxation time at each temperature.
func (r Result) Predict(temps []float64) []float64 {
	out := make([]float64, len(temps))
	for i, T := range temps {
		out[i] = r.Model.Tau(T)
	}
	return out
}

// Table returns one row per parameter slot in canonical order. Mode is
// encoded as 0 excluded, 1 seeded, 2 fixed.
func (r Result) Table() table.Table {
	t := table.New("slot", "mode", "value", "ci", "applicable")
	for _, e := range r.Estimates {
		applicable := 0.0
		if e.Applicable {
			applicable = 1
		}
		t.Append(float64(e.Slot), float64(e.Mode), e.Value, e.CI, applicable)
	}
	return t
}

// Fit fits ln(tau) of the curve to the mechanism model described by p.
// Only seeded slots are optimized; fixed slots are held and excluded slots
// are absent from the solver vector. A fit with no more points than free
// parameters is returned as Degenerate rather than failing.
func Fit(c Curve, p mechanism.Parameters, opts ...Option) (Result, error) {
	if c.Len() == 0 {
		return Result{}, ErrEmptyCurve
	}

	model, err := mechanism.NewModel(p)
	if err != nil {
		return Result{}, fmt.Errorf("arrhenius: %w", err)
	}

	cfg := ApplyOptions(opts...)

	temps := make([]float64, c.Len())
	logTau := make([]float64, c.Len())
	for i, pt := range c.points {
		temps[i] = pt.Temperature
		logTau[i] = math.Log(pt.Tau)
	}

	res := Result{
		Points: c.Len(),
		Free:   model.NumFree(),
	}
	res.TMin, res.TMax = c.Range()
	res.DOF = res.Points - res.Free

	if res.Free == 0 {
		res.Model = model
		res.Converged = true
		res.Reason = "no free parameters"
		res.Residuals = residual.Calculate(logResiduals(logTau, temps, model))
		res.RMS = res.Residuals.RMS
		fillEstimates(&res, model, nil)
		return res, nil
	}

	lower, upper := model.Bounds(cfg.RamanMin, cfg.RamanMax)
	grad := make([]float64, res.Free)

	prob := lsq.Problem{
		M: c.Len(),
		Residuals: func(dst, x []float64) {
			m := model.Unpack(x)
			for i, T := range temps {
				dst[i] = logTau[i] + m.LogRate(T)
			}
		},
		Jacobian: func(cols [][]float64, x []float64) {
			m := model.Unpack(x)
			for i, T := range temps {
				m.LogRateGradient(grad, T)
				for j := range cols {
					cols[j][i] = grad[j]
				}
			}
		},
		Lower: lower,
		Upper: upper,
	}

	settings := lsq.Settings{
		MaxIterations:  cfg.MaxIterations,
		MaxEvaluations: cfg.MaxEvaluations,
		FTol:           cfg.FTol,
		XTol:           cfg.XTol,
		GTol:           cfg.GTol,
		InitialDamping: lsq.DefaultSettings().InitialDamping,
	}

	sol, err := lsq.Solve(prob, model.Pack(), settings)
	if err != nil {
		if errors.Is(err, lsq.ErrNonFinite) {
			return Result{}, ErrSeedNotFinite
		}
		return Result{}, fmt.Errorf("arrhenius: %w", err)
	}

	fitted := model.Unpack(sol.X)

	res.Model = fitted
	res.Converged = sol.Converged()
	res.Reason = sol.Status.String()
	res.Iterations = sol.Iterations
	res.RMS = sol.RMS()
	res.Residuals = residual.Calculate(sol.Residuals)

	ci := lsq.Confidence(sol, cfg.ConfidenceLevel)
	res.Degenerate = ci.Degenerate || res.DOF <= 0

	var distances []float64
	if res.Converged && !res.Degenerate {
		distances = fitted.LowerDistances(ci.HalfWidth)
	}

	fillEstimates(&res, fitted, distances)

	for j, s := range fitted.Free() {
		if sol.X[j] <= lower[j] || sol.X[j] >= upper[j] {
			res.Estimates[s].AtBound = true
			res.Reason += "; " + s.String() + " at bound"
		}
	}

	return res, nil
}

// fillEstimates writes one estimate per slot. distances is indexed like
// m.Free(); nil leaves every interval undefined.
func fillEstimates(res *Result, m mechanism.Model, distances []float64) {
	params := m.Parameters()
	free := m.Free()

	for _, s := range mechanism.Slots() {
		p := params.Get(s)
		e := Estimate{Slot: s, Mode: p.Mode, Value: p.Value, CI: math.NaN()}

		if !p.Included() {
			e.Value = math.NaN()
		}

		for j, fs := range free {
			if fs == s && distances != nil && !math.IsNaN(distances[j]) {
				e.CI = distances[j]
				e.Applicable = true
			}
		}

		res.Estimates[s] = e
	}
}

func logResiduals(logTau, temps []float64, m mechanism.Model) []float64 {
	out := make([]float64, len(temps))
	for i, T := range temps {
		out[i] = logTau[i] + m.LogRate(T)
	}
	return out
}
