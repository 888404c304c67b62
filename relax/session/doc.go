// Package session ties the relaxation analysis together.
//
// A Session owns the raw samples of one measurement. Selecting a
// temperature range regroups the samples that fall inside it, re-fits every
// group's decay curve and rebuilds the tau(T) curve that Arrhenius fits run
// against. Selection is all-or-nothing: an invalid or empty range leaves the
// previous results in place.
//
//	s, err := session.New(samples, session.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	r, _ := session.Between(2, 6)
//	if err := s.SelectRange(r); err != nil {
//		return err
//	}
//	res, err := s.FitArrhenius(mechanism.Orbach(math.NaN(), math.NaN()))
package session
