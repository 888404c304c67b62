package lsq

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by Solve for malformed problems. Failing to converge is not
// an error; it is reported through Result.Status.
var (
	ErrDimension = errors.New("lsq: dimension mismatch")
	ErrBounds    = errors.New("lsq: lower bound exceeds upper bound")
	ErrNonFinite = errors.New("lsq: non-finite residual at start point")
)

const (
	minDamping = 1e-15
	maxDamping = 1e32
)

// ResidualFunc writes the M residuals at x into dst.
type ResidualFunc func(dst, x []float64)

// JacobianFunc writes the Jacobian at x into cols, one slice of length M per
// parameter (column-major).
type JacobianFunc func(cols [][]float64, x []float64)

// Problem describes a box-constrained nonlinear least-squares problem.
type Problem struct {
	Residuals ResidualFunc
	Jacobian  JacobianFunc // nil selects forward differences
	M         int          // number of residuals

	// Lower and Upper bound each parameter. A nil slice leaves that side
	// unbounded; individual entries may be ±Inf.
	Lower []float64
	Upper []float64
}

// Status describes why the solver stopped.
type Status int

const (
	StatusNone Status = iota
	StatusZeroResidual
	StatusGradient
	StatusStep
	StatusCost
	StatusIterationLimit
	StatusEvaluationLimit
	StatusDampingOverflow
)

func (s Status) String() string {
	switch s {
	case StatusZeroResidual:
		return "zero residual"
	case StatusGradient:
		return "gradient tolerance"
	case StatusStep:
		return "step tolerance"
	case StatusCost:
		return "cost tolerance"
	case StatusIterationLimit:
		return "iteration limit"
	case StatusEvaluationLimit:
		return "evaluation limit"
	case StatusDampingOverflow:
		return "damping overflow"
	default:
		return "none"
	}
}

// Converged reports whether s is one of the successful termination criteria.
func (s Status) Converged() bool {
	return s >= StatusZeroResidual && s <= StatusCost
}

// Settings controls termination of Solve.
type Settings struct {
	MaxIterations  int     // accepted steps
	MaxEvaluations int     // residual evaluations, including rejected trials
	FTol           float64 // relative cost decrease
	XTol           float64 // relative step length
	GTol           float64 // cosine between residual and Jacobian columns
	InitialDamping float64
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:  200,
		MaxEvaluations: 2000,
		FTol:           1e-12,
		XTol:           1e-12,
		GTol:           1e-10,
		InitialDamping: 1e-3,
	}
}

// Result holds the solver state at termination.
type Result struct {
	X           []float64
	Residuals   []float64
	Jacobian    [][]float64 // columns at X
	Cost        float64     // 0.5 * sum of squared residuals
	Iterations  int
	Evaluations int
	Status      Status
}

// Converged reports whether the solver met a convergence criterion.
func (r Result) Converged() bool {
	return r.Status.Converged()
}

// RMS returns the root-mean-square residual.
func (r Result) RMS() float64 {
	if len(r.Residuals) == 0 {
		return math.NaN()
	}

	return math.Sqrt(2 * r.Cost / float64(len(r.Residuals)))
}

// Solve minimizes 0.5*||r(x)||² over the box [Lower, Upper] starting at x0
// with a projected Levenberg–Marquardt iteration using Marquardt's diagonal
// scaling. x0 is clamped into the box before the first evaluation.
func Solve(p Problem, x0 []float64, s Settings) (Result, error) {
	n := len(x0)
	if n == 0 || p.M <= 0 || p.Residuals == nil {
		return Result{}, ErrDimension
	}

	lower, upper, err := resolveBounds(p, n)
	if err != nil {
		return Result{}, err
	}

	s = sanitize(s)

	x := make([]float64, n)
	copy(x, x0)
	project(x, lower, upper)

	r := make([]float64, p.M)
	p.Residuals(r, x)

	if !allFinite(r) {
		return Result{}, ErrNonFinite
	}

	cost := halfSquare(r)
	jac := newColumns(n, p.M)
	evalJacobian(p, jac, x, r, upper)

	var (
		trial     = make([]float64, n)
		step      = make([]float64, n)
		grad      = make([]float64, n)
		cosines   = make([]float64, n)
		rTrial    = make([]float64, p.M)
		lambda    = s.InitialDamping
		evals     = 1
		iters     = 0
		status    = StatusNone
		normal    = mat.NewSymDense(n, nil)
		scale     = make([]float64, n)
		damped    = mat.NewSymDense(n, nil)
		chol      mat.Cholesky
		stepVec   = mat.NewVecDense(n, step)
		rhs       = mat.NewVecDense(n, nil)
		converged bool
	)

outer:
	for iters < s.MaxIterations {
		rnorm := math.Sqrt(2 * cost)
		if rnorm == 0 {
			status = StatusZeroResidual
			break
		}

		for j, col := range jac {
			grad[j] = vecmath.DotProduct(col, r)

			cn := math.Sqrt(vecmath.DotProduct(col, col))
			if cn > 0 {
				cosines[j] = grad[j] / (cn * rnorm)
			} else {
				cosines[j] = 0
			}
		}

		if vecmath.MaxAbs(cosines) <= s.GTol {
			status = StatusGradient
			break
		}

		fillNormal(normal, scale, jac)

		for j := range grad {
			rhs.SetVec(j, -grad[j])
		}

		for {
			if lambda > maxDamping {
				status = StatusDampingOverflow
				break outer
			}

			for i := range n {
				for j := i; j < n; j++ {
					v := normal.At(i, j)
					if i == j {
						v += lambda * scale[i]
					}
					damped.SetSym(i, j, v)
				}
			}

			if !chol.Factorize(damped) {
				lambda *= 10
				continue
			}

			// A Condition error still leaves a usable solution; only a
			// non-finite step is rejected.
			_ = chol.SolveVecTo(stepVec, rhs)
			if !allFinite(step) {
				lambda *= 10
				continue
			}

			for i := range trial {
				trial[i] = clamp(x[i]+step[i], lower[i], upper[i])
				step[i] = trial[i] - x[i]
			}

			if norm(step) <= s.XTol*(s.XTol+norm(x)) {
				status = StatusStep
				break outer
			}

			if evals >= s.MaxEvaluations {
				status = StatusEvaluationLimit
				break outer
			}

			p.Residuals(rTrial, trial)
			evals++

			trialCost := halfSquare(rTrial)
			if !(trialCost < cost) {
				lambda *= 10
				continue
			}

			decrease := cost - trialCost
			previous := cost

			copy(x, trial)
			copy(r, rTrial)
			cost = trialCost
			evalJacobian(p, jac, x, r, upper)
			iters++
			lambda = math.Max(lambda/10, minDamping)

			if decrease <= s.FTol*previous {
				status = StatusCost
				converged = true
			}

			break
		}

		if converged {
			break
		}
	}

	if status == StatusNone {
		status = StatusIterationLimit
	}

	return Result{
		X:           x,
		Residuals:   r,
		Jacobian:    jac,
		Cost:        cost,
		Iterations:  iters,
		Evaluations: evals,
		Status:      status,
	}, nil
}

func sanitize(s Settings) Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = d.MaxEvaluations
	}
	if s.InitialDamping <= 0 {
		s.InitialDamping = d.InitialDamping
	}
	if s.FTol < 0 {
		s.FTol = 0
	}
	if s.XTol < 0 {
		s.XTol = 0
	}
	if s.GTol < 0 {
		s.GTol = 0
	}
	return s
}

func resolveBounds(p Problem, n int) (lower, upper []float64, err error) {
	lower = make([]float64, n)
	upper = make([]float64, n)

	for i := range n {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}

	if p.Lower != nil {
		if len(p.Lower) != n {
			return nil, nil, ErrDimension
		}
		copy(lower, p.Lower)
	}

	if p.Upper != nil {
		if len(p.Upper) != n {
			return nil, nil, ErrDimension
		}
		copy(upper, p.Upper)
	}

	for i := range n {
		if math.IsNaN(lower[i]) || math.IsNaN(upper[i]) || lower[i] > upper[i] {
			return nil, nil, ErrBounds
		}
	}

	return lower, upper, nil
}

// fillNormal writes JᵀJ into normal and the Marquardt scaling diagonal into
// scale. Zero diagonal entries are floored so the damped system stays
// positive definite for large enough damping.
func fillNormal(normal *mat.SymDense, scale []float64, cols [][]float64) {
	maxDiag := 0.0

	for i := range cols {
		for j := i; j < len(cols); j++ {
			normal.SetSym(i, j, vecmath.DotProduct(cols[i], cols[j]))
		}

		scale[i] = normal.At(i, i)
		maxDiag = math.Max(maxDiag, scale[i])
	}

	floor := maxDiag * 1e-15
	if floor == 0 {
		floor = 1
	}

	for i := range scale {
		if !(scale[i] > floor) {
			scale[i] = floor
		}
	}
}

func evalJacobian(p Problem, cols [][]float64, x, r, upper []float64) {
	if p.Jacobian != nil {
		p.Jacobian(cols, x)
		return
	}

	forwardDifference(p.Residuals, cols, x, r, upper)
}

// forwardDifference approximates the Jacobian column by column, stepping
// backwards where a forward step would leave the box.
func forwardDifference(f ResidualFunc, cols [][]float64, x, r, upper []float64) {
	eps := math.Sqrt(2.220446049250313e-16)
	xh := make([]float64, len(x))
	copy(xh, x)

	for j, col := range cols {
		h := eps * math.Max(math.Abs(x[j]), 1)
		if x[j]+h > upper[j] {
			h = -h
		}

		xh[j] = x[j] + h
		f(col, xh)
		xh[j] = x[j]

		for i := range col {
			col[i] = (col[i] - r[i]) / h
		}
	}
}

func newColumns(n, m int) [][]float64 {
	backing := make([]float64, n*m)
	cols := make([][]float64, n)

	for j := range cols {
		cols[j] = backing[j*m : (j+1)*m : (j+1)*m]
	}

	return cols
}

func project(x, lower, upper []float64) {
	for i := range x {
		x[i] = clamp(x[i], lower[i], upper[i])
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func halfSquare(r []float64) float64 {
	return 0.5 * vecmath.DotProduct(r, r)
}

func norm(v []float64) float64 {
	return math.Sqrt(vecmath.DotProduct(v, v))
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
