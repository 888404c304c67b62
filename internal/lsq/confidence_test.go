package lsq

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-relax/internal/testutil"
)

func TestConfidenceMatchesClosedFormRegression(t *testing.T) {
	x := testutil.LinearTimes(0, 1, 10)
	noise := testutil.DeterministicNoise(7, 0.3, len(x))
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 1 + 2*x[i] + noise[i]
	}

	res, err := Solve(lineProblem(x, y), []float64{0, 0}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	// Ordinary least squares by hand.
	n := float64(len(x))
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var sxx, sxy float64
	for i := range x {
		sxx += (x[i] - mx) * (x[i] - mx)
		sxy += (x[i] - mx) * (y[i] - my)
	}
	slope := sxy / sxx
	intercept := my - slope*mx

	var ssr float64
	for i := range x {
		d := y[i] - intercept - slope*x[i]
		ssr += d * d
	}
	s2 := ssr / (n - 2)
	seSlope := math.Sqrt(s2 / sxx)
	seIntercept := math.Sqrt(s2 * (1/n + mx*mx/sxx))

	testutil.RequireNearlyEqual(t, "slope", res.X[1], slope, 1e-9)
	testutil.RequireNearlyEqual(t, "intercept", res.X[0], intercept, 1e-9)

	ci := Confidence(res, 0.95)
	if ci.Degenerate {
		t.Fatal("unexpected degenerate interval")
	}
	if ci.DOF != 8 {
		t.Fatalf("DOF = %d, want 8", ci.DOF)
	}

	// t_{0.975, 8} = 2.306004...
	testutil.RequireNearlyEqual(t, "quantile", ci.Quantile, 2.306004135, 1e-6)
	testutil.RequireRelNearlyEqual(t, "se slope", ci.StdErr[1], seSlope, 1e-6)
	testutil.RequireRelNearlyEqual(t, "se intercept", ci.StdErr[0], seIntercept, 1e-6)
	testutil.RequireRelNearlyEqual(t, "half-width slope", ci.HalfWidth[1], ci.Quantile*seSlope, 1e-6)
}

func TestConfidenceDegenerate(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, 5}

	res, err := Solve(lineProblem(x, y), []float64{0, 0}, DefaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	ci := Confidence(res, 0.95)
	if !ci.Degenerate {
		t.Fatal("expected degenerate interval with zero degrees of freedom")
	}

	for j, hw := range ci.HalfWidth {
		if !math.IsNaN(hw) {
			t.Fatalf("half-width %d = %v, want NaN", j, hw)
		}
	}
}

func TestConfidenceSingularJacobian(t *testing.T) {
	res := Result{
		X:         []float64{1, 1},
		Residuals: []float64{0.1, -0.1, 0.2},
		Jacobian:  [][]float64{{1, 1, 1}, {2, 2, 2}},
		Cost:      0.03,
	}

	ci := Confidence(res, 0.95)
	if !ci.Degenerate {
		t.Fatal("expected degenerate interval for collinear columns")
	}
}

func TestConfidenceInvalidLevel(t *testing.T) {
	res := Result{
		X:         []float64{1},
		Residuals: []float64{0.1, -0.1},
		Jacobian:  [][]float64{{1, 1}},
		Cost:      0.01,
	}

	if ci := Confidence(res, 1.5); !ci.Degenerate {
		t.Fatal("expected degenerate interval for level outside (0, 1)")
	}
}
