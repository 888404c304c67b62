package lsq

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-relax/internal/testutil"
)

func lineProblem(x, y []float64) Problem {
	return Problem{
		M: len(x),
		Residuals: func(dst, p []float64) {
			for i := range x {
				dst[i] = p[0] + p[1]*x[i] - y[i]
			}
		},
		Jacobian: func(cols [][]float64, _ []float64) {
			for i := range x {
				cols[0][i] = 1
				cols[1][i] = x[i]
			}
		},
	}
}

func TestSolveLinearExact(t *testing.T) {
	x := testutil.LinearTimes(0, 1, 10)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 1 + 2*x[i]
	}

	res, err := Solve(lineProblem(x, y), []float64{0, 0}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !res.Converged() {
		t.Fatalf("not converged: %v", res.Status)
	}

	testutil.RequireNearlyEqual(t, "intercept", res.X[0], 1, 1e-9)
	testutil.RequireNearlyEqual(t, "slope", res.X[1], 2, 1e-9)
}

func TestSolveForwardDifference(t *testing.T) {
	x := testutil.LinearTimes(0, 0.5, 12)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 3 * math.Exp(-0.7*x[i])
	}

	p := Problem{
		M: len(x),
		Residuals: func(dst, q []float64) {
			for i := range x {
				dst[i] = q[0]*math.Exp(-q[1]*x[i]) - y[i]
			}
		},
	}

	res, err := Solve(p, []float64{1, 0.1}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !res.Converged() {
		t.Fatalf("not converged: %v", res.Status)
	}

	testutil.RequireNearlyEqual(t, "amplitude", res.X[0], 3, 1e-6)
	testutil.RequireNearlyEqual(t, "rate", res.X[1], 0.7, 1e-6)
}

func TestSolveRosenbrock(t *testing.T) {
	p := Problem{
		M: 2,
		Residuals: func(dst, x []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
		},
		Jacobian: func(cols [][]float64, x []float64) {
			cols[0][0] = -20 * x[0]
			cols[0][1] = -1
			cols[1][0] = 10
			cols[1][1] = 0
		},
	}

	res, err := Solve(p, []float64{-1.2, 1}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !res.Converged() {
		t.Fatalf("not converged: %v", res.Status)
	}

	testutil.RequireSliceNearlyEqual(t, res.X, []float64{1, 1}, 1e-6)
}

func TestSolveRespectsBounds(t *testing.T) {
	x := testutil.LinearTimes(1, 1, 5)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 3 * x[i]
	}

	p := Problem{
		M: len(x),
		Residuals: func(dst, q []float64) {
			for i := range x {
				dst[i] = q[0]*x[i] - y[i]
			}
		},
		Lower: []float64{0},
		Upper: []float64{2},
	}

	res, err := Solve(p, []float64{10}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if !res.Converged() {
		t.Fatalf("not converged: %v", res.Status)
	}

	if res.X[0] != 2 {
		t.Fatalf("slope = %v, want upper bound 2", res.X[0])
	}
}

func TestSolveEvaluationLimit(t *testing.T) {
	p := Problem{
		M: 2,
		Residuals: func(dst, x []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
		},
	}

	s := DefaultSettings()
	s.MaxEvaluations = 3

	res, err := Solve(p, []float64{-1.2, 1}, s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if res.Converged() {
		t.Fatalf("expected non-convergence, got %v", res.Status)
	}

	if res.Status != StatusEvaluationLimit {
		t.Fatalf("status = %v, want %v", res.Status, StatusEvaluationLimit)
	}
}

func TestSolveErrors(t *testing.T) {
	ok := func(dst, x []float64) { dst[0] = x[0] }

	tests := []struct {
		name string
		p    Problem
		x0   []float64
		want error
	}{
		{"no parameters", Problem{M: 1, Residuals: ok}, nil, ErrDimension},
		{"no residuals", Problem{M: 0, Residuals: ok}, []float64{1}, ErrDimension},
		{"nil func", Problem{M: 1}, []float64{1}, ErrDimension},
		{"bound length", Problem{M: 1, Residuals: ok, Lower: []float64{0, 0}}, []float64{1}, ErrDimension},
		{"crossed bounds", Problem{M: 1, Residuals: ok, Lower: []float64{2}, Upper: []float64{1}}, []float64{1}, ErrBounds},
		{"nan start", Problem{M: 1, Residuals: func(dst, _ []float64) { dst[0] = math.NaN() }}, []float64{1}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.p, tt.x0, DefaultSettings())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Solve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	if StatusStep.String() != "step tolerance" {
		t.Fatalf("String() = %q", StatusStep.String())
	}
	if StatusIterationLimit.Converged() {
		t.Fatal("iteration limit must not count as converged")
	}
	if !StatusZeroResidual.Converged() {
		t.Fatal("zero residual must count as converged")
	}
}
