// Package decay extracts relaxation times from magnetization decay curves.
//
// Each temperature group is fitted to a stretched exponential
//
//	m(t) = mf + (m0 - mf) * exp(-(t/tau)^beta)
//
// where m0 and mf are held at the group's observed maximum and minimum moment
// and only tau (bounded to [1, 1e6] s) and beta (bounded to [0.2, 1.7]) are
// free. Confidence half-widths come from the linearized covariance of the
// bounded least-squares solution.
//
// FitAll walks a temperature sweep in ascending order and seeds every fit
// from the last converged solution, so neighbouring temperatures start close
// to their optimum. Groups that cannot be fitted produce NaN rows instead of
// failing the batch.
//
// # Usage
//
//	fitter := decay.NewFitter()
//	results := fitter.FitAll(groups.Sorted())
//	for _, r := range results {
//		fmt.Printf("%.2f K: tau = %.1f ± %.1f s\n", r.Temperature, r.Tau, r.TauCI)
//	}
package decay
