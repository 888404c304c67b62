package mechanism

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by NewModel.
var (
	ErrNoMechanism      = errors.New("mechanism: no relaxation term is included")
	ErrInvalidParameter = errors.New("mechanism: invalid parameter value")
)

// Model evaluates the combined relaxation rate
//
//	1/tau(T) = exp(-Ueff/T)/tau0 + qtm + C*T^n
//
// over the terms whose slots are included. The Orbach term needs both Ueff and
// tau0, the Raman term both C and n; a slot whose partner is excluded is
// itself treated as excluded.
//
// Free parameters are exposed to solvers in internal coordinates, which are
// the physical values except for tau0, carried as ln(tau0).
type Model struct {
	params    Parameters
	orbach    bool
	tunneling bool
	raman     bool
	free      []Slot
}

// NewModel resolves a parameter snapshot into a model.
func NewModel(p Parameters) (Model, error) {
	m := Model{
		orbach:    p.Ueff.Included() && p.Tau0.Included(),
		tunneling: p.QTM.Included(),
		raman:     p.C.Included() && p.N.Included(),
	}

	if !m.orbach {
		p.Ueff, p.Tau0 = Exclude(), Exclude()
	}
	if !m.raman {
		p.C, p.N = Exclude(), Exclude()
	}

	if !m.orbach && !m.tunneling && !m.raman {
		return Model{}, ErrNoMechanism
	}

	for _, s := range Slots() {
		v := p.Get(s)
		if !v.Included() {
			continue
		}

		if v.Mode == Seeded && math.IsNaN(v.Value) {
			v.Value = defaultSeeds[s]
			p = p.With(s, v)
		}

		if err := checkValue(s, v.Value); err != nil {
			return Model{}, err
		}

		if v.Mode == Seeded {
			m.free = append(m.free, s)
		}
	}

	m.params = p

	return m, nil
}

func checkValue(s Slot, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, s, v)
	}

	switch s {
	case SlotTau0:
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, s, v)
		}
	case SlotUeff, SlotQTM, SlotC:
		if v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParameter, s, v)
		}
	}

	return nil
}

// Parameters returns the resolved snapshot: partner exclusions applied and
// default seeds filled in.
func (m Model) Parameters() Parameters { return m.params }

// Orbach reports whether the thermally activated term is active.
func (m Model) Orbach() bool { return m.orbach }

// Tunneling reports whether the QTM term is active.
func (m Model) Tunneling() bool { return m.tunneling }

// Raman reports whether the power-law term is active.
func (m Model) Raman() bool { return m.raman }

// Active reports whether slot s contributes to the model.
func (m Model) Active(s Slot) bool { return m.params.Get(s).Included() }

// Free returns the free slots in canonical order.
func (m Model) Free() []Slot {
	out := make([]Slot, len(m.free))
	copy(out, m.free)
	return out
}

// NumFree returns the number of free parameters.
func (m Model) NumFree() int { return len(m.free) }

// Rate returns 1/tau at temperature T. T must be positive.
func (m Model) Rate(T float64) float64 {
	return math.Exp(m.LogRate(T))
}

// Tau returns the relaxation time at temperature T.
func (m Model) Tau(T float64) float64 {
	return math.Exp(-m.LogRate(T))
}

// LogRate returns ln(1/tau) at temperature T, combining the active terms with
// a log-sum-exp so a vanishing Orbach rate does not underflow.
func (m Model) LogRate(T float64) float64 {
	lo, lq, lr := m.termLogs(T)
	return logSumExp(lo, lq, lr)
}

// termLogs returns the natural log of each term; inactive terms are -Inf.
func (m Model) termLogs(T float64) (orbach, tunneling, raman float64) {
	orbach, tunneling, raman = math.Inf(-1), math.Inf(-1), math.Inf(-1)

	if m.orbach {
		orbach = -m.params.Ueff.Value/T - math.Log(m.params.Tau0.Value)
	}
	if m.tunneling {
		tunneling = math.Log(m.params.QTM.Value)
	}
	if m.raman {
		raman = math.Log(m.params.C.Value) + m.params.N.Value*math.Log(T)
	}

	return orbach, tunneling, raman
}

// LogRateGradient writes d ln(rate)/dθ at T into dst for every free
// parameter θ, in internal coordinates.
func (m Model) LogRateGradient(dst []float64, T float64) {
	lo, lq, lr := m.termLogs(T)
	lse := logSumExp(lo, lq, lr)
	wo := math.Exp(lo - lse)
	wr := math.Exp(lr - lse)

	for i, s := range m.free {
		switch s {
		case SlotUeff:
			dst[i] = -wo / T
		case SlotTau0:
			dst[i] = -wo
		case SlotQTM:
			dst[i] = math.Exp(-lse)
		case SlotC:
			dst[i] = math.Exp(m.params.N.Value*math.Log(T) - lse)
		case SlotN:
			dst[i] = wr * math.Log(T)
		}
	}
}

// Pack returns the free parameter values in internal coordinates.
func (m Model) Pack() []float64 {
	x := make([]float64, len(m.free))
	for i, s := range m.free {
		x[i] = toInternal(s, m.params.Get(s).Value)
	}
	return x
}

// Unpack returns a copy of m with the free parameters taken from x
// (internal coordinates). Modes are unchanged.
func (m Model) Unpack(x []float64) Model {
	out := m
	for i, s := range m.free {
		v := m.params.Get(s)
		v.Value = toPhysical(s, x[i])
		out.params = out.params.With(s, v)
	}
	return out
}

// Bounds returns the box constraints of the free parameters in internal
// coordinates; nLow and nHigh bound the Raman exponent.
func (m Model) Bounds(nLow, nHigh float64) (lower, upper []float64) {
	lower = make([]float64, len(m.free))
	upper = make([]float64, len(m.free))

	for i, s := range m.free {
		switch s {
		case SlotTau0:
			lower[i], upper[i] = math.Inf(-1), math.Inf(1)
		case SlotN:
			lower[i], upper[i] = nLow, nHigh
		default:
			lower[i], upper[i] = 0, math.Inf(1)
		}
	}

	return lower, upper
}

// LowerDistances converts interval half-widths h in internal coordinates
// into physical distances from each free value to its lower interval bound.
// tau0 is fitted as ln(tau0), so its interval is asymmetric and the lower
// distance is tau0·(1 − e^−h); the other slots are linear and keep h.
func (m Model) LowerDistances(h []float64) []float64 {
	out := make([]float64, len(m.free))
	for i, s := range m.free {
		if s == SlotTau0 {
			out[i] = -m.params.Tau0.Value * math.Expm1(-h[i])
		} else {
			out[i] = h[i]
		}
	}
	return out
}

func toInternal(s Slot, v float64) float64 {
	if s == SlotTau0 {
		return math.Log(v)
	}
	return v
}

func toPhysical(s Slot, v float64) float64 {
	if s == SlotTau0 {
		return math.Exp(v)
	}
	return v
}

func logSumExp(xs ...float64) float64 {
	peak := math.Inf(-1)
	for _, x := range xs {
		peak = math.Max(peak, x)
	}

	if math.IsInf(peak, 0) {
		return peak
	}

	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - peak)
	}

	return peak + math.Log(sum)
}
