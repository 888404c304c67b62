package residual

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-relax/internal/testutil"
)

func TestCalculateAlternating(t *testing.T) {
	s := Calculate([]float64{1, -1, 1, -1})

	if s.Length != 4 || s.SignChanges != 3 || s.Positive != 2 || s.Negative != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}

	testutil.RequireNearlyEqual(t, "mean", s.Mean, 0, 1e-15)
	testutil.RequireNearlyEqual(t, "rms", s.RMS, 1, 1e-15)
	testutil.RequireNearlyEqual(t, "variance", s.Variance, 1, 1e-15)

	// mu = 3, var = 2*4*(8-4)/(16*3) = 2/3.
	testutil.RequireNearlyEqual(t, "runsZ", s.RunsZ, 1/math.Sqrt(2.0/3.0), 1e-12)
}

func TestCalculateSystematicMisfit(t *testing.T) {
	r := []float64{1, 2, 3, 2, 1, -1, -2, -3, -2, -1}

	s := Calculate(r)

	if s.SignChanges != 1 {
		t.Fatalf("sign changes = %d, want 1", s.SignChanges)
	}

	if !(s.RunsZ < -2) {
		t.Fatalf("runsZ = %v, want strongly negative", s.RunsZ)
	}

	if s.MaxAbsPos != 2 {
		t.Fatalf("max position = %d, want 2", s.MaxAbsPos)
	}
	testutil.RequireNearlyEqual(t, "maxAbs", s.MaxAbs, 3, 0)
	testutil.RequireNearlyEqual(t, "skewness", s.Skewness, 0, 1e-12)
}

func TestCalculateMomentsMatchTwoPass(t *testing.T) {
	r := testutil.DeterministicNoise(3, 1, 257)

	s := Calculate(r)

	var mean float64
	for _, x := range r {
		mean += x
	}
	mean /= float64(len(r))

	var m2, m3, m4 float64
	for _, x := range r {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(r))
	v := m2 / n

	testutil.RequireNearlyEqual(t, "mean", s.Mean, mean, 1e-12)
	testutil.RequireNearlyEqual(t, "variance", s.Variance, v, 1e-12)
	testutil.RequireNearlyEqual(t, "skewness", s.Skewness, (m3/n)/(v*math.Sqrt(v)), 1e-9)
	testutil.RequireNearlyEqual(t, "kurtosis", s.Kurtosis, (m4/n)/(v*v)-3, 1e-9)
}

func TestCalculateZeros(t *testing.T) {
	s := Calculate([]float64{1, 0, -1, 0, 0})

	if s.SignChanges != 1 || s.Positive != 1 || s.Negative != 1 {
		t.Fatalf("zeros must not count as signs: %+v", s)
	}

	empty := Calculate(nil)
	if empty.Length != 0 || !math.IsNaN(empty.RunsZ) {
		t.Fatalf("empty: %+v", empty)
	}

	allZero := Calculate([]float64{0, 0, 0})
	if !math.IsNaN(allZero.RunsZ) || allZero.Skewness != 0 {
		t.Fatalf("all zero: %+v", allZero)
	}
}
