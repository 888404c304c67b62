// Package sample defines the raw magnetometer record consumed by the
// relaxation analysis and its domain validation.
package sample

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Validate.
var (
	ErrInvalidTemperature = errors.New("sample: temperature must be positive and finite")
	ErrInvalidTime        = errors.New("sample: time must be non-negative and finite")
	ErrInvalidMoment      = errors.New("sample: moment must be finite")
)

// Raw is one measurement record with a background-corrected moment.
type Raw struct {
	Temperature float64 // K
	Time        float64 // s elapsed since the field step
	Moment      float64 // emu
	Field       float64 // Oe
}

// Check validates a single record.
func (r Raw) Check() error {
	switch {
	case !(r.Temperature > 0) || math.IsInf(r.Temperature, 0):
		return ErrInvalidTemperature
	case !(r.Time >= 0) || math.IsInf(r.Time, 0):
		return ErrInvalidTime
	case math.IsNaN(r.Moment) || math.IsInf(r.Moment, 0):
		return ErrInvalidMoment
	}

	return nil
}

// Validate checks every record and reports the first offending row.
func Validate(samples []Raw) error {
	for i, s := range samples {
		if err := s.Check(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	return nil
}
