package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-relax/relax/sample"
)

// LinearTimes returns n evenly spaced times starting at start.
func LinearTimes(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// StretchedDecay evaluates mf + (m0-mf)*exp(-(t/tau)^beta) at each time.
func StretchedDecay(times []float64, m0, mf, tau, beta float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = mf + (m0-mf)*math.Exp(-math.Pow(t/tau, beta))
	}
	return out
}

// ArrheniusTau returns tau0*exp(ueff/T) for each temperature.
func ArrheniusTau(temps []float64, ueff, tau0 float64) []float64 {
	out := make([]float64, len(temps))
	for i, T := range temps {
		out[i] = tau0 * math.Exp(ueff/T)
	}
	return out
}

// DeterministicNoise generates uniform noise with a fixed seed for
// reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// SweepSamples builds a temperature sweep: for every temperature a decay
// curve sampled at times (offset by startTime) with relaxation time tauOf(T).
// Temperatures are emitted in the given order.
func SweepSamples(temps, times []float64, startTime, m0, mf, beta float64, tauOf func(T float64) float64) []sample.Raw {
	out := make([]sample.Raw, 0, len(temps)*len(times))
	for _, T := range temps {
		moments := StretchedDecay(times, m0, mf, tauOf(T), beta)
		for i, t := range times {
			out = append(out, sample.Raw{
				Temperature: T,
				Time:        startTime + t,
				Moment:      moments[i],
			})
		}
	}
	return out
}
