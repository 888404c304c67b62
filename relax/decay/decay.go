package decay

import (
	"errors"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-relax/internal/lsq"
	"github.com/cwbudde/algo-relax/relax/group"
	"github.com/cwbudde/algo-relax/relax/residual"
	"github.com/cwbudde/algo-relax/relax/table"
)

// Errors returned by FitCurve and FitGroup for inputs that cannot be fitted.
var (
	ErrLengthMismatch = errors.New("decay: times and moments differ in length")
	ErrTooFewPoints   = errors.New("decay: at least two points are required")
	ErrFlatCurve      = errors.New("decay: initial and final moment are equal")
	ErrNonFinite      = errors.New("decay: non-finite input")
)

// Result is the fit of one temperature group.
type Result struct {
	Temperature float64
	Points      int

	Tau    float64 // relaxation time, s
	TauCI  float64 // estimate minus lower confidence bound
	Beta   float64 // stretching exponent
	BetaCI float64

	M0  float64 // initial moment (fixed)
	MF  float64 // equilibrium moment (fixed)
	RMS float64

	// Residuals summarizes model minus observed moments; zero value when
	// the fit is invalid.
	Residuals residual.Stats

	Seed       Seed // starting point of the solve
	Iterations int
	Converged  bool
	Reason     string // solver status or the reason the group was skipped

	Times   []float64 // normalized times
	Moments []float64 // observed moments
	Fitted  []float64 // model moments at Times
}

// Valid reports whether the result may enter a tau(T) curve.
func (r Result) Valid() bool {
	return r.Converged && !math.IsNaN(r.Tau) && !math.IsNaN(r.Beta)
}

// Fitter fits stretched-exponential decays.
type Fitter struct {
	cfg Config
}

// NewFitter creates a fitter with the given options.
func NewFitter(opts ...Option) *Fitter {
	return &Fitter{cfg: ApplyOptions(opts...)}
}

// Config returns the fitter configuration.
func (f *Fitter) Config() Config {
	return f.cfg
}

// Model evaluates mf + (m0-mf)*exp(-(t/tau)^beta) at each time into dst.
func Model(dst, times []float64, m0, mf, tau, beta float64) {
	for i, t := range times {
		dst[i] = math.Exp(-math.Pow(t/tau, beta))
	}

	vecmath.ScaleBlockInPlace(dst, m0-mf)

	for i := range dst {
		dst[i] += mf
	}
}

// FitCurve fits tau and beta with m0 and mf held fixed. Failure to converge
// is reported through Result.Converged with NaN estimates, not as an error.
func (f *Fitter) FitCurve(times, moments []float64, m0, mf float64, seed Seed) (Result, error) {
	if len(times) != len(moments) {
		return Result{}, ErrLengthMismatch
	}

	if len(times) < 2 {
		return Result{}, ErrTooFewPoints
	}

	if !finite(m0) || !finite(mf) || !allFinite(times) || !allFinite(moments) {
		return Result{}, ErrNonFinite
	}

	if m0 == mf {
		return Result{}, ErrFlatCurve
	}

	amp := m0 - mf
	u := make([]float64, len(times))
	e := make([]float64, len(times))

	// eval fills u = (t/tau)^beta and e = exp(-u).
	eval := func(x []float64) {
		for i, t := range times {
			u[i] = math.Pow(t/x[0], x[1])
			e[i] = math.Exp(-u[i])
		}
	}

	prob := lsq.Problem{
		M: len(times),
		Residuals: func(dst, x []float64) {
			eval(x)
			for i := range dst {
				dst[i] = mf + amp*e[i] - moments[i]
			}
		},
		Jacobian: func(cols [][]float64, x []float64) {
			eval(x)
			tau, beta := x[0], x[1]
			for i, t := range times {
				if t <= 0 {
					cols[0][i], cols[1][i] = 0, 0
					continue
				}
				cols[0][i] = amp * e[i] * u[i] * beta / tau
				cols[1][i] = -amp * e[i] * u[i] * math.Log(t/tau)
			}
		},
		Lower: []float64{f.cfg.TauMin, f.cfg.BetaMin},
		Upper: []float64{f.cfg.TauMax, f.cfg.BetaMax},
	}

	res := Result{
		Points:  len(times),
		M0:      m0,
		MF:      mf,
		Seed:    seed,
		Times:   append([]float64(nil), times...),
		Moments: append([]float64(nil), moments...),
		Fitted:  make([]float64, len(times)),
	}

	sol, err := lsq.Solve(prob, []float64{seed.Tau, seed.Beta}, f.settings())
	if err != nil {
		return Result{}, err
	}

	res.Iterations = sol.Iterations
	res.Converged = sol.Converged()
	res.Reason = sol.Status.String()

	if !res.Converged {
		markInvalid(&res)
		return res, nil
	}

	ci := lsq.Confidence(sol, f.cfg.ConfidenceLevel)

	res.Tau, res.Beta = sol.X[0], sol.X[1]
	res.TauCI, res.BetaCI = ci.HalfWidth[0], ci.HalfWidth[1]
	res.RMS = sol.RMS()
	res.Residuals = residual.Calculate(sol.Residuals)
	Model(res.Fitted, times, m0, mf, res.Tau, res.Beta)

	return res, nil
}

// FitGroup fits one temperature group with m0 and mf fixed to the group's
// observed maximum and minimum moment.
func (f *Fitter) FitGroup(g group.Group, seed Seed) (Result, error) {
	m0, mf := g.MomentRange()

	res, err := f.FitCurve(g.Times, g.Moments, m0, mf, seed)
	if err != nil {
		return Result{}, err
	}

	res.Temperature = g.Temperature

	return res, nil
}

// FitAll fits every group in ascending temperature order. Each fit is seeded
// from the last successful solution of a lower temperature, starting from the
// configured seed. A group that cannot be fitted yields an invalid result
// (NaN estimates) and does not advance the seed.
func (f *Fitter) FitAll(groups []group.Group) []Result {
	ordered := append([]group.Group(nil), groups...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Temperature < ordered[j].Temperature
	})

	out := make([]Result, 0, len(ordered))
	seed := f.cfg.Seed

	for _, g := range ordered {
		res, err := f.FitGroup(g, seed)
		if err != nil {
			res = skipped(g, seed, err)
		}

		if res.Valid() {
			seed = Seed{Tau: res.Tau, Beta: res.Beta}
		}

		out = append(out, res)
	}

	return out
}

func (f *Fitter) settings() lsq.Settings {
	s := lsq.DefaultSettings()
	s.MaxIterations = f.cfg.MaxIterations
	s.MaxEvaluations = f.cfg.MaxEvaluations
	s.FTol = f.cfg.FTol
	s.XTol = f.cfg.XTol
	s.GTol = f.cfg.GTol
	return s
}

func skipped(g group.Group, seed Seed, err error) Result {
	m0, mf := g.MomentRange()
	res := Result{
		Temperature: g.Temperature,
		Points:      len(g.Times),
		M0:          m0,
		MF:          mf,
		Seed:        seed,
		Reason:      err.Error(),
		Times:       append([]float64(nil), g.Times...),
		Moments:     append([]float64(nil), g.Moments...),
		Fitted:      make([]float64, len(g.Times)),
	}
	markInvalid(&res)
	return res
}

func markInvalid(r *Result) {
	nan := math.NaN()
	r.Converged = false
	r.Tau, r.TauCI, r.Beta, r.BetaCI, r.RMS = nan, nan, nan, nan, nan
	for i := range r.Fitted {
		r.Fitted[i] = nan
	}
}

// Table returns one row per result.
func Table(results []Result) table.Table {
	t := table.New("T", "tau", "tau_ci", "beta", "beta_ci", "m0", "mf", "rms", "runs_z", "points", "iterations", "converged")
	for _, r := range results {
		conv := 0.0
		if r.Converged {
			conv = 1
		}
		runsZ := math.NaN()
		if r.Residuals.Length > 0 {
			runsZ = r.Residuals.RunsZ
		}
		t.Append(r.Temperature, r.Tau, r.TauCI, r.Beta, r.BetaCI, r.M0, r.MF, r.RMS, runsZ,
			float64(r.Points), float64(r.Iterations), conv)
	}
	return t
}

// TraceTable returns the observed and model moments of one result for
// overlay plotting.
func TraceTable(r Result) table.Table {
	t := table.New("time", "moment", "fit")
	for i := range r.Times {
		t.Append(r.Times[i], r.Moments[i], r.Fitted[i])
	}
	return t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if !finite(x) {
			return false
		}
	}
	return true
}
