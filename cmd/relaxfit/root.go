package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-relax/internal/config"
	"github.com/cwbudde/algo-relax/relax/arrhenius"
	"github.com/cwbudde/algo-relax/relax/decay"
	"github.com/cwbudde/algo-relax/relax/mechanism"
	"github.com/cwbudde/algo-relax/relax/session"
	"github.com/cwbudde/algo-relax/relax/table"
)

type rootFlags struct {
	granularity    float64
	maxIterations  int
	maxEvaluations int
	logLevel       string
	tmin           float64
	tmax           float64
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "relaxfit",
		Short: "Magnetic relaxation time extraction and mechanism fitting",
		Long: `relaxfit groups a temperature sweep of magnetization decays by temperature,
fits each decay to a stretched exponential and fits the resulting relaxation
times to a sum of Orbach, tunneling and Raman mechanisms.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.Float64Var(&flags.granularity, "granularity", 0, "temperature rounding step in K (default from RELAXFIT_GRANULARITY)")
	pf.IntVar(&flags.maxIterations, "max-iterations", 0, "solver iteration cap per fit")
	pf.IntVar(&flags.maxEvaluations, "max-evaluations", 0, "solver evaluation cap per fit")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.Float64Var(&flags.tmin, "tmin", math.Inf(-1), "lowest rounded temperature to keep")
	pf.Float64Var(&flags.tmax, "tmax", math.Inf(1), "highest rounded temperature to keep")

	cmd.AddCommand(newDecayCmd(&flags), newArrheniusCmd(&flags))

	return cmd
}

func newDecayCmd(flags *rootFlags) *cobra.Command {
	var curve bool
	var trace float64

	cmd := &cobra.Command{
		Use:   "decay [file]",
		Short: "Fit every temperature group to a stretched exponential",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch {
			case cmd.Flags().Changed("trace"):
				for _, r := range s.DecayResults() {
					if math.Abs(r.Temperature-trace) <= s.Granularity()/2 {
						return writeTable(out, decay.TraceTable(r))
					}
				}
				return fmt.Errorf("no group at %g K", trace)
			case curve:
				return writeTable(out, s.TauCurve().Table())
			default:
				return writeTable(out, decay.Table(s.DecayResults()))
			}
		},
	}

	cmd.Flags().BoolVar(&curve, "curve", false, "print the tau(T) curve instead of the per-group table")
	cmd.Flags().Float64Var(&trace, "trace", 0, "print observed and fitted moments of the group at this temperature")

	return cmd
}

func newArrheniusCmd(flags *rootFlags) *cobra.Command {
	var specs [mechanism.NumSlots]string
	var nmin, nmax float64

	cmd := &cobra.Command{
		Use:   "arrhenius [file]",
		Short: "Fit relaxation times to Orbach, tunneling and Raman mechanisms",
		Long: `Each mechanism parameter is given as off, seed, seed:<value> or fix:<value>.
The Orbach term needs both ueff and tau0, the Raman term both c and n.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseParameters(specs)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, flags, args)
			if err != nil {
				return err
			}

			res, err := s.FitArrhenius(p,
				arrhenius.WithRamanExponentBounds(nmin, nmax),
				arrhenius.WithIterationLimits(flags.maxIterations, flags.maxEvaluations))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "points=%d free=%d dof=%d converged=%t degenerate=%t reason=%q rms=%.4g\n",
				res.Points, res.Free, res.DOF, res.Converged, res.Degenerate, res.Reason, res.RMS)

			return writeEstimates(out, res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&specs[mechanism.SlotUeff], "ueff", "seed", "effective barrier Ueff (K)")
	f.StringVar(&specs[mechanism.SlotTau0], "tau0", "seed", "attempt time tau0 (s)")
	f.StringVar(&specs[mechanism.SlotQTM], "qtm", "off", "tunneling rate (1/s)")
	f.StringVar(&specs[mechanism.SlotC], "c", "off", "Raman prefactor C")
	f.StringVar(&specs[mechanism.SlotN], "n", "off", "Raman exponent n")
	f.Float64Var(&nmin, "nmin", 1, "lower bound of the Raman exponent")
	f.Float64Var(&nmax, "nmax", 9, "upper bound of the Raman exponent")

	return cmd
}

// openSession merges environment and flag settings, reads the samples and
// applies the temperature range.
func openSession(cmd *cobra.Command, flags *rootFlags, args []string) (*session.Session, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("granularity") {
		cfg.Granularity = flags.granularity
	}
	if pf.Changed("max-iterations") {
		cfg.MaxIterations = flags.maxIterations
	}
	if pf.Changed("max-evaluations") {
		cfg.MaxEvaluations = flags.maxEvaluations
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	flags.maxIterations, flags.maxEvaluations = cfg.MaxIterations, cfg.MaxEvaluations

	lvl, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	samples, err := readSamples(in)
	if err != nil {
		return nil, err
	}

	s, err := session.New(samples,
		session.WithGranularity(cfg.Granularity),
		session.WithLogger(logger),
		session.WithDecayOptions(decay.WithIterationLimits(cfg.MaxIterations, cfg.MaxEvaluations)))
	if err != nil {
		return nil, err
	}

	if pf.Changed("tmin") || pf.Changed("tmax") {
		r, err := session.Between(clampInf(flags.tmin), clampInf(flags.tmax))
		if err != nil {
			return nil, err
		}
		if err := s.SelectRange(r); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func writeTable(w io.Writer, t table.Table) error {
	_, err := t.WriteTo(w)
	return err
}

func writeEstimates(w io.Writer, res arrhenius.Result) error {
	for _, e := range res.Estimates {
		if e.Mode == mechanism.Excluded {
			continue
		}

		label := fmt.Sprintf("%s (%s)", e.Name(), e.Mode)
		if !e.Applicable {
			if _, err := fmt.Fprintf(w, "%-16s %14.6g\n", label, e.Value); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%-16s %14.6g ± %.4g\n", label, e.Value, e.CI); err != nil {
			return err
		}
	}

	return nil
}

// clampInf maps the open ends of the --tmin/--tmax defaults to finite
// extremes.
func clampInf(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
