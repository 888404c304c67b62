package arrhenius

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-relax/internal/testutil"
	"github.com/cwbudde/algo-relax/relax/decay"
)

func TestNewCurveSortsAndCopies(t *testing.T) {
	in := []Point{
		{Temperature: 10, Tau: 2},
		{Temperature: 5, Tau: 8},
		{Temperature: 7.5, Tau: 4},
	}

	c, err := NewCurve(in)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	in[0].Tau = 99

	ps := c.Points()
	want := []float64{5, 7.5, 10}
	for i, p := range ps {
		testutil.RequireNearlyEqual(t, "T", p.Temperature, want[i], 0)
	}

	if ps[2].Tau != 2 {
		t.Fatalf("curve aliases its input: tau = %v", ps[2].Tau)
	}

	lo, hi := c.Range()
	testutil.RequireNearlyEqual(t, "lo", lo, 5, 0)
	testutil.RequireNearlyEqual(t, "hi", hi, 10, 0)
}

func TestNewCurveRejectsInvalidPoints(t *testing.T) {
	tests := []struct {
		name string
		p    Point
	}{
		{"zero temperature", Point{Temperature: 0, Tau: 1}},
		{"negative temperature", Point{Temperature: -1, Tau: 1}},
		{"zero tau", Point{Temperature: 5, Tau: 0}},
		{"negative tau", Point{Temperature: 5, Tau: -2}},
		{"nan tau", Point{Temperature: 5, Tau: math.NaN()}},
		{"inf temperature", Point{Temperature: math.Inf(1), Tau: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve([]Point{{Temperature: 2, Tau: 1}, tt.p})
			if !errors.Is(err, ErrInvalidPoint) {
				t.Fatalf("got %v, want ErrInvalidPoint", err)
			}
		})
	}
}

func TestCurveFromDecaySkipsInvalid(t *testing.T) {
	nan := math.NaN()
	results := []decay.Result{
		{Temperature: 2, Tau: 100, TauCI: 1, Beta: 0.9, Converged: true},
		{Temperature: 2.5, Tau: nan, TauCI: nan, Beta: nan},
		{Temperature: 3, Tau: 50, TauCI: 0.5, Beta: 0.95, Converged: true},
	}

	c, err := CurveFromDecay(results)
	if err != nil {
		t.Fatalf("CurveFromDecay: %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}

	ps := c.Points()
	testutil.RequireNearlyEqual(t, "tau[0]", ps[0].Tau, 100, 0)
	testutil.RequireNearlyEqual(t, "ci[1]", ps[1].TauCI, 0.5, 0)
}

func TestCurveRestrict(t *testing.T) {
	c := curveOf(t, []float64{2, 3, 4, 5}, []float64{4, 3, 2, 1})

	r := c.Restrict(3, 4)
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}

	if e := c.Restrict(10, 20); e.Len() != 0 {
		t.Fatalf("len = %d, want 0", e.Len())
	}

	lo, hi := Curve{}.Range()
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Fatalf("empty range = [%v, %v], want NaN", lo, hi)
	}
}

func TestCurveTable(t *testing.T) {
	c := curveOf(t, []float64{4, 2}, []float64{math.E, 1})

	tb := c.Table()

	invT, err := tb.Column("inv_T")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, invT, []float64{0.5, 0.25}, 0)

	lnTau, err := tb.Column("ln_tau")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, lnTau, []float64{0, 1}, 1e-15)
}
