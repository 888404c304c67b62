package mechanism

import "math"

// Mode selects how a parameter slot takes part in a fit.
type Mode uint8

const (
	// Excluded removes the slot (and the term it governs) from the model.
	// It is the zero value, so an empty Parameters describes no mechanism.
	Excluded Mode = iota
	// Seeded marks a free parameter; Value is the starting point.
	Seeded
	// Fixed holds the parameter at Value during optimization.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Seeded:
		return "seeded"
	case Fixed:
		return "fixed"
	default:
		return "excluded"
	}
}

// Param is one parameter slot.
type Param struct {
	Mode  Mode
	Value float64
}

// Seed returns a free parameter starting at v. A NaN v selects the slot's
// default seed.
func Seed(v float64) Param { return Param{Mode: Seeded, Value: v} }

// Fix returns a parameter held at v.
func Fix(v float64) Param { return Param{Mode: Fixed, Value: v} }

// Exclude returns an excluded parameter.
func Exclude() Param { return Param{Mode: Excluded, Value: math.NaN()} }

// Included reports whether the slot takes part in the model.
func (p Param) Included() bool { return p.Mode != Excluded }

// Slot names one of the five mechanism parameters.
type Slot int

const (
	SlotUeff Slot = iota // effective barrier, K
	SlotTau0             // attempt time, s
	SlotQTM              // tunneling rate, 1/s
	SlotC                // Raman prefactor, s⁻¹ K⁻ⁿ
	SlotN                // Raman exponent
	NumSlots
)

var slotNames = [NumSlots]string{"Ueff", "tau0", "qtm", "C", "n"}

func (s Slot) String() string {
	if s < 0 || s >= NumSlots {
		return "unknown"
	}
	return slotNames[s]
}

// Slots returns all slots in canonical order.
func Slots() []Slot {
	return []Slot{SlotUeff, SlotTau0, SlotQTM, SlotC, SlotN}
}

// defaultSeeds are used for Seeded slots whose value is NaN.
var defaultSeeds = [NumSlots]float64{100, 1e-8, 1, 1e-3, 5}

// Parameters is an immutable snapshot of the five mechanism slots. The zero
// value has every slot excluded.
type Parameters struct {
	Ueff Param
	Tau0 Param
	QTM  Param
	C    Param
	N    Param
}

// Get returns the slot s.
func (p Parameters) Get(s Slot) Param {
	switch s {
	case SlotUeff:
		return p.Ueff
	case SlotTau0:
		return p.Tau0
	case SlotQTM:
		return p.QTM
	case SlotC:
		return p.C
	case SlotN:
		return p.N
	default:
		return Exclude()
	}
}

// With returns a copy of p with slot s replaced.
func (p Parameters) With(s Slot, v Param) Parameters {
	switch s {
	case SlotUeff:
		p.Ueff = v
	case SlotTau0:
		p.Tau0 = v
	case SlotQTM:
		p.QTM = v
	case SlotC:
		p.C = v
	case SlotN:
		p.N = v
	}
	return p
}

// Orbach returns parameters for a pure Orbach fit with both slots seeded.
func Orbach(ueff, tau0 float64) Parameters {
	return Parameters{Ueff: Seed(ueff), Tau0: Seed(tau0)}
}
