package lsq

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Interval holds linearized confidence intervals for a solution.
type Interval struct {
	Level      float64
	DOF        int
	Quantile   float64   // two-sided Student-t quantile for Level
	StdErr     []float64 // sqrt of the covariance diagonal
	HalfWidth  []float64 // Quantile * StdErr
	Degenerate bool      // no residual degrees of freedom or singular JᵀJ
}

// Confidence derives confidence half-widths at the given level (e.g. 0.95)
// from the residuals and Jacobian stored in res:
//
//	cov = s² (JᵀJ)⁻¹,  s² = Σr² / (M - N)
//	halfWidth_j = t_{(1+level)/2, M-N} * sqrt(cov_jj)
//
// A result with M <= N, a singular JᵀJ or a level outside (0, 1) yields NaN
// half-widths and Degenerate set.
func Confidence(res Result, level float64) Interval {
	n := len(res.X)
	m := len(res.Residuals)

	iv := Interval{
		Level:     level,
		DOF:       m - n,
		Quantile:  math.NaN(),
		StdErr:    nanSlice(n),
		HalfWidth: nanSlice(n),
	}

	if n == 0 || iv.DOF <= 0 || !(level > 0 && level < 1) || len(res.Jacobian) != n {
		iv.Degenerate = true
		return iv
	}

	normal := mat.NewSymDense(n, nil)
	scale := make([]float64, n)
	fillNormal(normal, scale, res.Jacobian)

	var chol mat.Cholesky
	if !chol.Factorize(normal) {
		iv.Degenerate = true
		return iv
	}

	var cov mat.SymDense
	// Ill-conditioning is reflected in the size of the intervals.
	_ = chol.InverseTo(&cov)

	s2 := 2 * res.Cost / float64(iv.DOF)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(iv.DOF)}
	iv.Quantile = t.Quantile(0.5 + level/2)

	for j := range n {
		v := cov.At(j, j) * s2
		if v < 0 || math.IsNaN(v) {
			iv.Degenerate = true
			continue
		}

		iv.StdErr[j] = math.Sqrt(v)
		iv.HalfWidth[j] = iv.Quantile * iv.StdErr[j]
	}

	return iv
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
