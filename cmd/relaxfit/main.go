// Command relaxfit extracts magnetic relaxation times from a temperature
// sweep of decay measurements and fits them to relaxation mechanisms.
//
// Input is a CSV table with the columns temperature (K), time (s), moment
// (emu) and field (Oe); a leading header row is skipped. Moments must already
// be corrected.
//
// Examples:
//
//	relaxfit decay sweep.csv
//	relaxfit decay --tmin 2 --tmax 6 --curve sweep.csv
//	relaxfit arrhenius --qtm seed:1 sweep.csv
//	relaxfit arrhenius --c seed:1e-3 --n fix:9 < sweep.csv
//
// Settings not given as flags are read from RELAXFIT_GRANULARITY,
// RELAXFIT_MAX_ITERATIONS, RELAXFIT_MAX_EVALUATIONS and RELAXFIT_LOG_LEVEL.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
