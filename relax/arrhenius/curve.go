package arrhenius

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-relax/relax/decay"
	"github.com/cwbudde/algo-relax/relax/table"
)

// Errors returned when building or fitting a curve.
var (
	ErrEmptyCurve   = errors.New("arrhenius: tau curve is empty")
	ErrInvalidPoint = errors.New("arrhenius: temperature and tau must be positive and finite")
)

// Point is one (temperature, relaxation time) pair.
type Point struct {
	Temperature float64 // K
	Tau         float64 // s
	TauCI       float64 // may be NaN
}

// Curve is an immutable tau(T) sequence ordered by ascending temperature.
type Curve struct {
	points []Point
}

// NewCurve validates and sorts points into a curve.
func NewCurve(points []Point) (Curve, error) {
	ps := append([]Point(nil), points...)

	for i, p := range ps {
		if !(p.Temperature > 0) || math.IsInf(p.Temperature, 0) || !(p.Tau > 0) || math.IsInf(p.Tau, 0) {
			return Curve{}, fmt.Errorf("point %d (T=%v, tau=%v): %w", i, p.Temperature, p.Tau, ErrInvalidPoint)
		}
	}

	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Temperature < ps[j].Temperature })

	return Curve{points: ps}, nil
}

// CurveFromDecay builds a curve from the valid decay results; invalid rows
// (non-converged or skipped groups) are left out.
func CurveFromDecay(results []decay.Result) (Curve, error) {
	ps := make([]Point, 0, len(results))
	for _, r := range results {
		if !r.Valid() {
			continue
		}
		ps = append(ps, Point{Temperature: r.Temperature, Tau: r.Tau, TauCI: r.TauCI})
	}

	return NewCurve(ps)
}

// Len returns the number of points.
func (c Curve) Len() int {
	return len(c.points)
}

// Points returns a copy of the points.
func (c Curve) Points() []Point {
	return append([]Point(nil), c.points...)
}

// Range returns the lowest and highest temperature, or NaN for an empty
// curve.
func (c Curve) Range() (lo, hi float64) {
	if len(c.points) == 0 {
		return math.NaN(), math.NaN()
	}
	return c.points[0].Temperature, c.points[len(c.points)-1].Temperature
}

// Restrict returns the points with lo <= T <= hi.
func (c Curve) Restrict(lo, hi float64) Curve {
	var ps []Point
	for _, p := range c.points {
		if p.Temperature >= lo && p.Temperature <= hi {
			ps = append(ps, p)
		}
	}
	return Curve{points: ps}
}

// Table returns the curve with its Arrhenius-plot coordinates.
func (c Curve) Table() table.Table {
	t := table.New("T", "tau", "tau_ci", "inv_T", "ln_tau")
	for _, p := range c.points {
		t.Append(p.Temperature, p.Tau, p.TauCI, 1/p.Temperature, math.Log(p.Tau))
	}
	return t
}
