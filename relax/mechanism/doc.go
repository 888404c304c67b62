// Package mechanism models the temperature dependence of magnetic relaxation
// as a sum of competing rate mechanisms:
//
//   - Orbach: thermally activated, exp(-Ueff/T)/tau0
//   - QTM: temperature independent quantum tunneling rate, qtm
//   - Raman: power law, C*T^n
//
// Each of the five parameters (Ueff, tau0, qtm, C, n) is a tagged slot that is
// either Seeded (free, with a starting value), Fixed, or Excluded. Excluding a
// slot removes its term from the sum and its coordinate from the solver
// vector entirely, so pure Orbach, Orbach+QTM and full four-term models are
// selected by toggling slots.
//
// # Usage
//
//	p := mechanism.Parameters{
//		Ueff: mechanism.Seed(80),
//		Tau0: mechanism.Seed(1e-9),
//		QTM:  mechanism.Seed(10),
//	}
//	m, err := mechanism.NewModel(p)
//	tau := m.Tau(4.5)
package mechanism
