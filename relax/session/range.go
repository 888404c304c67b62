package session

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by range selection.
var (
	ErrInvalidRange   = errors.New("session: range bounds must be finite with lo <= hi")
	ErrEmptySelection = errors.New("session: no samples in the selected range")
)

// Range is a closed temperature interval. The zero value is unbounded.
type Range struct {
	lo, hi  float64
	bounded bool
}

// Unbounded returns the range that keeps every temperature.
func Unbounded() Range {
	return Range{}
}

// Between returns the closed range [lo, hi].
func Between(lo, hi float64) (Range, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return Range{}, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, lo, hi)
	}

	return Range{lo: lo, hi: hi, bounded: true}, nil
}

// Bounded reports whether the range restricts temperatures.
func (r Range) Bounded() bool {
	return r.bounded
}

// Bounds returns the interval ends; an unbounded range reports ±Inf.
func (r Range) Bounds() (lo, hi float64) {
	if !r.bounded {
		return math.Inf(-1), math.Inf(1)
	}
	return r.lo, r.hi
}

// Contains reports whether T lies within the range.
func (r Range) Contains(T float64) bool {
	lo, hi := r.Bounds()
	return T >= lo && T <= hi
}

func (r Range) String() string {
	if !r.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("[%g, %g] K", r.lo, r.hi)
}
