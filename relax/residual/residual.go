// Package residual summarizes the residuals of a fit.
//
// Besides the usual moments it reports how often the residuals change sign.
// A systematic misfit leaves long runs of one sign, which the Wald-Wolfowitz
// runs statistic (RunsZ) turns into a z-score: values far below zero mean too
// few runs for random scatter.
package residual

import "math"

// Stats holds residual statistics.
type Stats struct {
	Length    int
	Mean      float64
	RMS       float64
	MaxAbs    float64
	MaxAbsPos int
	Variance  float64 // population variance
	Skewness  float64
	Kurtosis  float64 // excess kurtosis

	Positive    int // residuals > 0
	Negative    int // residuals < 0
	SignChanges int // consecutive nonzero residuals of opposite sign
	RunsZ       float64
}

// Calculate computes all statistics in a single pass using Welford's online
// algorithm for the higher-order moments. Zero residuals count towards the
// moments but are skipped by the sign statistics.
func Calculate(residuals []float64) Stats {
	n := len(residuals)
	if n == 0 {
		return Stats{RunsZ: math.NaN()}
	}

	var (
		mean, m2, m3, m4 float64
		sumSq            float64
		maxAbs           float64
		maxAbsPos        int
		pos, neg         int
		changes          int
		last             float64
	)

	for i, x := range residuals {
		ni := float64(i + 1)
		delta := x - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)

		// M4 before M3 before M2.
		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(i)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		sumSq += x * x

		if a := math.Abs(x); a > maxAbs {
			maxAbs = a
			maxAbsPos = i
		}

		switch {
		case x > 0:
			pos++
		case x < 0:
			neg++
		default:
			continue
		}

		if last*x < 0 {
			changes++
		}
		last = x
	}

	nf := float64(n)
	variance := m2 / nf

	var skewness, kurtosis float64
	if variance > 0 {
		skewness = (m3 / nf) / (variance * math.Sqrt(variance))
		kurtosis = (m4/nf)/(variance*variance) - 3
	}

	return Stats{
		Length:      n,
		Mean:        mean,
		RMS:         math.Sqrt(sumSq / nf),
		MaxAbs:      maxAbs,
		MaxAbsPos:   maxAbsPos,
		Variance:    variance,
		Skewness:    skewness,
		Kurtosis:    kurtosis,
		Positive:    pos,
		Negative:    neg,
		SignChanges: changes,
		RunsZ:       runsZ(pos, neg, changes+1),
	}
}

// runsZ returns the Wald-Wolfowitz z-score of observing runs runs among
// pos positive and neg negative values, or NaN when either sign is absent.
func runsZ(pos, neg, runs int) float64 {
	if pos == 0 || neg == 0 {
		return math.NaN()
	}

	n1, n2 := float64(pos), float64(neg)
	n := n1 + n2
	mu := 2*n1*n2/n + 1
	variance := 2 * n1 * n2 * (2*n1*n2 - n) / (n * n * (n - 1))

	if !(variance > 0) {
		return math.NaN()
	}

	return (float64(runs) - mu) / math.Sqrt(variance)
}
