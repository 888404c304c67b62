// Package group bins raw magnetometer samples into temperature groups so
// each decay curve can be fitted independently.
//
// Temperatures are rounded to a fixed granularity (DefaultGranularity,
// 0.05 K) with round-half-away-from-zero. Within a group the sample order of
// the input is preserved and times are re-anchored so the earliest sample of
// the group sits at t = 0.
package group

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-relax/relax/sample"
)

// DefaultGranularity is the default temperature rounding step in kelvin.
const DefaultGranularity = 0.05

// ErrInvalidGranularity is returned for a non-positive or non-finite
// rounding step.
var ErrInvalidGranularity = errors.New("group: granularity must be positive and finite")

// Group is the set of samples sharing one rounded temperature.
type Group struct {
	Key             int64   // round(T / granularity)
	Temperature     float64 // Key * granularity
	MeanTemperature float64 // mean of the raw sample temperatures
	Samples         []sample.Raw

	// Times holds the sample times shifted so the minimum is exactly 0.
	Times   []float64
	Moments []float64
}

// Len returns the number of samples in the group.
func (g Group) Len() int {
	return len(g.Samples)
}

// MomentRange returns the maximum and minimum moment of the group.
func (g Group) MomentRange() (maxMoment, minMoment float64) {
	if len(g.Moments) == 0 {
		return math.NaN(), math.NaN()
	}

	maxMoment, minMoment = g.Moments[0], g.Moments[0]
	for _, m := range g.Moments[1:] {
		maxMoment = math.Max(maxMoment, m)
		minMoment = math.Min(minMoment, m)
	}

	return maxMoment, minMoment
}

// Groups maps a rounded-temperature key to its group.
type Groups map[int64]Group

// Len returns the total number of samples across all groups.
func (gs Groups) Len() int {
	n := 0
	for _, g := range gs {
		n += g.Len()
	}
	return n
}

// Sorted returns the groups ordered by ascending temperature.
func (gs Groups) Sorted() []Group {
	out := make([]Group, 0, len(gs))
	for _, g := range gs {
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// tieTolerance is the relative distance from a half step within which
// T/granularity counts as an exact tie; 2.175/0.05 evaluates to 43.4999...
const tieTolerance = 1e-9

// Key returns the rounding key of temperature T at the given granularity.
// Ties round away from zero, including decimal ties that the division
// leaves a few ulps short of the half step.
func Key(T, granularity float64) int64 {
	q := T / granularity
	half := math.Trunc(q) + math.Copysign(0.5, q)

	if math.Abs(q-half) <= tieTolerance*math.Max(1, math.Abs(q)) {
		return int64(half + math.Copysign(0.5, q))
	}

	return int64(math.Round(q))
}

// Round returns T rounded to the nearest multiple of granularity.
func Round(T, granularity float64) float64 {
	return float64(Key(T, granularity)) * granularity
}

// ByTemperature groups samples by rounded temperature. Invalid samples are
// rejected before any grouping takes place. An empty input yields an empty,
// non-nil map.
func ByTemperature(samples []sample.Raw, granularity float64) (Groups, error) {
	if !(granularity > 0) || math.IsInf(granularity, 0) {
		return nil, ErrInvalidGranularity
	}

	if err := sample.Validate(samples); err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}

	members := make(map[int64][]sample.Raw)
	for _, s := range samples {
		k := Key(s.Temperature, granularity)
		members[k] = append(members[k], s)
	}

	out := make(Groups, len(members))
	for k, ss := range members {
		out[k] = build(k, granularity, ss)
	}

	return out, nil
}

func build(key int64, granularity float64, ss []sample.Raw) Group {
	temps := make([]float64, len(ss))
	times := make([]float64, len(ss))
	moments := make([]float64, len(ss))

	origin := math.Inf(1)
	for i, s := range ss {
		temps[i] = s.Temperature
		times[i] = s.Time
		moments[i] = s.Moment
		origin = math.Min(origin, s.Time)
	}

	for i := range times {
		times[i] -= origin
	}

	return Group{
		Key:             key,
		Temperature:     float64(key) * granularity,
		MeanTemperature: vecmath.Sum(temps) / float64(len(temps)),
		Samples:         ss,
		Times:           times,
		Moments:         moments,
	}
}
