// Package arrhenius fits relaxation times tau(T) to a sum of competing
// relaxation mechanisms.
//
// A Curve holds the (T, tau) points extracted by package decay, ordered by
// temperature. Fit minimizes the squared difference of ln(tau) and
// -ln(rate(T)) over the seeded parameters of a mechanism.Model; fixed
// parameters are held and excluded ones are absent. Fitting in log space
// keeps the residuals of fast and slow temperatures on the same scale.
//
// Each parameter slot gets an Estimate carrying a 95% confidence
// half-width. Fixed and excluded slots, and fits with no residual degrees of
// freedom, report NaN intervals.
package arrhenius
