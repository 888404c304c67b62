package group

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-relax/internal/testutil"
	"github.com/cwbudde/algo-relax/relax/sample"
)

func TestByTemperatureEverySampleInOneGroup(t *testing.T) {
	temps := []float64{1.8, 2.0, 2.2, 2.4}
	times := testutil.LinearTimes(0, 10, 15)
	samples := testutil.SweepSamples(temps, times, 1234, 1, 0, 0.8, func(T float64) float64 { return 20 * T })

	// Jitter temperatures within a bin the way a real sweep drifts.
	jitter := testutil.DeterministicNoise(3, 0.02, len(samples))
	for i := range samples {
		samples[i].Temperature += jitter[i]
	}

	gs, err := ByTemperature(samples, DefaultGranularity)
	if err != nil {
		t.Fatalf("ByTemperature: %v", err)
	}

	if gs.Len() != len(samples) {
		t.Fatalf("grouped %d samples, want %d", gs.Len(), len(samples))
	}

	for k, g := range gs {
		if g.Key != k {
			t.Fatalf("group key %d stored under %d", g.Key, k)
		}

		minTime := math.Inf(1)
		for i, s := range g.Samples {
			if Key(s.Temperature, DefaultGranularity) != k {
				t.Fatalf("sample %+v in group %d", s, k)
			}
			minTime = math.Min(minTime, g.Times[i])
		}

		if minTime != 0 {
			t.Fatalf("group %v: min normalized time = %v, want 0", g.Temperature, minTime)
		}
	}

	if len(gs) != len(temps) {
		t.Fatalf("got %d groups, want %d", len(gs), len(temps))
	}
}

func TestByTemperaturePreservesOrder(t *testing.T) {
	samples := []sample.Raw{
		{Temperature: 5.01, Time: 300, Moment: 3},
		{Temperature: 7.00, Time: 10, Moment: 9},
		{Temperature: 4.99, Time: 100, Moment: 5},
		{Temperature: 5.00, Time: 200, Moment: 4},
	}

	gs, err := ByTemperature(samples, DefaultGranularity)
	if err != nil {
		t.Fatalf("ByTemperature: %v", err)
	}

	g, ok := gs[100]
	if !ok {
		t.Fatalf("missing 5 K group, have %v", gs.Sorted())
	}

	testutil.RequireSliceNearlyEqual(t, g.Times, []float64{200, 0, 100}, 0)
	testutil.RequireSliceNearlyEqual(t, g.Moments, []float64{3, 5, 4}, 0)
	testutil.RequireNearlyEqual(t, "mean temperature", g.MeanTemperature, 5, 1e-12)

	maxM, minM := g.MomentRange()
	if maxM != 5 || minM != 3 {
		t.Fatalf("MomentRange = %v, %v, want 5, 3", maxM, minM)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		T    float64
		g    float64
		want int64
	}{
		{2.5, 1, 3},
		{3.5, 1, 4},
		{2.49, 1, 2},
		{5.024, 0.05, 100},
		{5.026, 0.05, 101},
		{2.175, 0.05, 44},
		{1.075, 0.05, 22},
		{2.125, 0.05, 43},
		{-2.175, 0.05, -44},
		{2.1749, 0.05, 43},
		{0, 0.05, 0},
	}

	for _, tt := range tests {
		if got := Key(tt.T, tt.g); got != tt.want {
			t.Errorf("Key(%v, %v) = %d, want %d", tt.T, tt.g, got, tt.want)
		}
	}
}

func TestSortedAscending(t *testing.T) {
	samples := []sample.Raw{
		{Temperature: 9, Time: 0, Moment: 1},
		{Temperature: 3, Time: 0, Moment: 1},
		{Temperature: 6, Time: 0, Moment: 1},
	}

	gs, err := ByTemperature(samples, 1)
	if err != nil {
		t.Fatalf("ByTemperature: %v", err)
	}

	sorted := gs.Sorted()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Temperature >= sorted[i].Temperature {
			t.Fatalf("not ascending at %d: %v >= %v", i, sorted[i-1].Temperature, sorted[i].Temperature)
		}
	}
}

func TestByTemperatureEmpty(t *testing.T) {
	gs, err := ByTemperature(nil, DefaultGranularity)
	if err != nil {
		t.Fatalf("ByTemperature: %v", err)
	}
	if gs == nil || len(gs) != 0 {
		t.Fatalf("got %v, want empty map", gs)
	}
}

func TestByTemperatureErrors(t *testing.T) {
	if _, err := ByTemperature(nil, 0); !errors.Is(err, ErrInvalidGranularity) {
		t.Fatalf("granularity 0: err = %v", err)
	}

	bad := []sample.Raw{{Temperature: -1, Time: 0, Moment: 1}}
	if _, err := ByTemperature(bad, DefaultGranularity); !errors.Is(err, sample.ErrInvalidTemperature) {
		t.Fatalf("negative temperature: err = %v", err)
	}
}
