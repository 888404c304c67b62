// Package lsq provides the bounded nonlinear least-squares solver shared by
// the decay and Arrhenius fitters.
//
// The solver is a projected Levenberg–Marquardt iteration: each damped
// Gauss-Newton step is clamped onto the parameter box, accepted if it lowers
// the cost and rejected (with increased damping) otherwise. Normal equations
// are solved with a Cholesky factorization from gonum/mat, and vector
// reductions use algo-vecmath kernels.
//
// # Usage
//
//	res, err := lsq.Solve(lsq.Problem{
//		Residuals: f,
//		Jacobian:  jac,
//		M:         len(y),
//		Lower:     []float64{1, 0.2},
//		Upper:     []float64{1e6, 1.7},
//	}, []float64{10, 1}, lsq.DefaultSettings())
//	ci := lsq.Confidence(res, 0.95)
package lsq
