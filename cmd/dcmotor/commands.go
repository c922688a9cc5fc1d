package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dcmotor/internal/analysis"
	"github.com/san-kum/dcmotor/internal/automation"
	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/experiment"
	"github.com/san-kum/dcmotor/internal/export"
	"github.com/san-kum/dcmotor/internal/metrics"
	"github.com/san-kum/dcmotor/internal/optim"
	"github.com/san-kum/dcmotor/internal/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func newRunCmd(opts *options) *cobra.Command {
	var asJSON, trace bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and print metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			if trace {
				exp.Simulator().AddObserver(sim.ObserverFunc(func(s sim.Sample) {
					log.Debug("sample",
						zap.Int("step", s.Step),
						zap.Float64("t", s.Time),
						zap.Float64("speed", s.Speed),
						zap.Float64("output", s.Output),
						zap.Float64("current", s.Current))
				}))
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			if asJSON {
				return export.JSON(out, automation.MetaFor(exp.Config()), result)
			}

			fmt.Fprintln(out, heading.Render("dc motor pid run"))
			fmt.Fprintf(out, "gains kp=%g ki=%g kd=%g  target=%g  integrator=%s\n",
				result.Gains.Kp, result.Gains.Ki, result.Gains.Kd, result.Target, exp.Config().Integrator)
			fmt.Fprintf(out, "completed %d steps in %v\n\n", result.Series.Len(), elapsed)
			printSamples(out, result.Series, 5)
			fmt.Fprintln(out)
			printMetrics(out, result)
			if result.NonFinite > 0 {
				fmt.Fprintln(out, warn.Render(fmt.Sprintf("warning: %d non-finite values absorbed by clamping", result.NonFinite)))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, export.ChartMany([][]float64{result.Series.Speed, result.Series.Target}, "speed / target", 70, 12))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as json")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every sample (needs --verbose)")
	return cmd
}

func newPlotCmd(opts *options) *cobra.Command {
	var out string
	var width, height float64

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "render speed, output, current and voltage panels to png",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := export.PNG(out, result, width, height); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dcmotor.png", "output file")
	cmd.Flags().Float64Var(&width, "width", 8, "width in inches")
	cmd.Flags().Float64Var(&height, "height", 10, "height in inches")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "export the sampled series (csv, json, xlsx)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				switch format {
				case "csv":
					return export.CSV(cmd.OutOrStdout(), result.Series)
				case "json":
					return export.JSON(cmd.OutOrStdout(), automation.MetaFor(exp.Config()), result)
				default:
					return fmt.Errorf("%s export needs --out", format)
				}
			}

			if err := automation.WriteExport(out, format, exp.Config(), result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d samples to %s\n", result.Series.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout for csv/json when empty)")
	return cmd
}

func newTuneCmd(opts *options) *cobra.Command {
	var kpAxis, kiAxis, kdAxis, metric string
	var workers int

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search pid gains minimising a metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			var names []string
			var ranges [][]float64
			for _, a := range []struct{ name, axis string }{{"kp", kpAxis}, {"ki", kiAxis}, {"kd", kdAxis}} {
				if a.axis == "" {
					continue
				}
				values, err := parseAxis(a.axis)
				if err != nil {
					return fmt.Errorf("--%s: %w", a.name, err)
				}
				names = append(names, a.name)
				ranges = append(ranges, values)
			}
			if len(names) == 0 {
				return fmt.Errorf("no axes given, use --kp-range, --ki-range or --kd-range")
			}

			gs := optim.NewGridSearch(names, ranges)
			gs.SetWorkers(workers)

			cfg := exp.Config()
			start := time.Now()
			best, err := gs.Search(cmd.Context(), exp.Simulator(), cfg.Gains, cfg.Target, metric)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading.Render("grid search"))
			fmt.Fprintf(out, "searched in %v\n", time.Since(start))
			fmt.Fprintf(out, "best %s = %.6f at kp=%g ki=%g kd=%g\n", metric, best.Value, best.Gains.Kp, best.Gains.Ki, best.Gains.Kd)
			return nil
		},
	}
	cmd.Flags().StringVar(&kpAxis, "kp-range", "", "kp axis as lo:hi:n")
	cmd.Flags().StringVar(&kiAxis, "ki-range", "", "ki axis as lo:hi:n")
	cmd.Flags().StringVar(&kdAxis, "kd-range", "", "kd axis as lo:hi:n")
	cmd.Flags().StringVar(&metric, "metric", "iae", fmt.Sprintf("metric to minimise (%s)", strings.Join(metrics.Names, ", ")))
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all cpus)")
	return cmd
}

// parseAxis reads "lo:hi:n" or a single value.
func parseAxis(axis string) ([]float64, error) {
	parts := strings.Split(axis, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		return []float64{v}, nil
	case 3:
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("axis needs at least one point, got %d", n)
		}
		return optim.Linspace(lo, hi, n), nil
	}
	return nil, fmt.Errorf("expected lo:hi:n, got %q", axis)
}

func newCompareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			log := opts.logger()
			defer log.Sync()

			registry := experiment.NewRegistry()
			if len(args) == 0 {
				args = registry.ListIntegrators()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "comparing integrators (dt=%.4f, duration=%.2fs)\n\n", base.Dt, base.Duration)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATOR\tFINAL_SPEED\tDIVERGENCE\tIAE\tTIME")

			var reference []float64
			for _, name := range args {
				cfg := base.Clone()
				cfg.Integrator = name
				exp := experiment.New(cfg)
				if err := exp.Setup(registry, log); err != nil {
					fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", name, err)
					continue
				}

				start := time.Now()
				result, err := exp.Run(cmd.Context())
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				speed := result.Series.Speed
				if reference == nil {
					reference = speed
				}
				fmt.Fprintf(w, "%s\t%.6f\t%.3e\t%.6f\t%v\n",
					name, speed[len(speed)-1], divergence(reference, speed), result.Metrics["iae"], elapsed)
			}
			return w.Flush()
		},
	}
}

// divergence is the Euclidean distance between two speed trajectories.
func divergence(a, b []float64) float64 {
	return dynamo.State(b).Sub(a).Norm()
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "frequency analysis of the speed error and pid output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}

			s := result.Series
			errSignal := make([]float64, s.Len())
			for i := range errSignal {
				errSignal[i] = s.Target[i] - s.Speed[i]
			}
			dt := exp.Config().Dt

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading.Render("spectral analysis"))
			for _, sig := range []struct {
				name   string
				values []float64
			}{
				{"speed error", errSignal},
				{"pid output", s.Output},
				{"armature current", s.Current},
			} {
				f, share := analysis.DominantFrequency(sig.values, dt)
				fmt.Fprintf(out, "%-18s dominant %.3f Hz (%.1f%% of power)\n", sig.name, f, share*100)
			}

			padded := make([]float64, analysis.NextPow2(len(errSignal)))
			copy(padded, errSignal)
			spectrum := analysis.PowerSpectrum(padded)
			if len(spectrum) > 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, export.Chart(spectrum[1:], "power spectrum (speed error)", 70, 10))
			}
			return nil
		},
	}
}

func newScenarioCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			log := opts.logger()
			defer log.Sync()

			results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading.Render(sc.Name))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tKP\tKI\tKD\tTARGET\tIAE\tOVERSHOOT\tFILES")
			for _, r := range results {
				g := r.Result.Gains
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%.4f\t%.2f%%\t%s\n",
					r.Name, g.Kp, g.Ki, g.Kd, r.Result.Target,
					r.Result.Metrics["iae"], r.Result.Metrics["overshoot"], strings.Join(r.Files, " "))
			}
			return w.Flush()
		},
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	var param string
	var lo, hi float64
	var steps, workers int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one input and tabulate the step response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			log := opts.logger()
			defer log.Sync()

			results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Base:      cfg,
				ParamName: param,
				ParamMin:  lo,
				ParamMax:  hi,
				NumSteps:  steps,
				Workers:   workers,
			}, experiment.NewRegistry(), log)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tFINAL\tPEAK\tOVERSHOOT\tSETTLE\tIAE\n", strings.ToUpper(param))
			for _, r := range results {
				fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%.2f%%\t%.2fs\t%.4f\n",
					r.ParamValue, r.FinalSpeed, r.PeakSpeed, r.Overshoot, r.SettlingTime, r.IAE)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&param, "param", "kp", "kp, ki, kd or target")
	cmd.Flags().Float64Var(&lo, "min", 0, "first value")
	cmd.Flags().Float64Var(&hi, "max", 50, "last value")
	cmd.Flags().IntVar(&steps, "steps", 11, "number of points")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all cpus)")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tKP\tKI\tKD\tTARGET")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\n", name, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Target)
			}
			return w.Flush()
		},
	}
}

func printSamples(w io.Writer, s sim.Series, n int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(sim.Columns, "\t")))
	row := func(i int) {
		vals := s.Row(i)
		parts := make([]string, len(vals))
		for j, v := range vals {
			parts[j] = strconv.FormatFloat(v, 'f', 4, 64)
		}
		fmt.Fprintln(tw, strings.Join(parts, "\t"))
	}
	for i := 0; i < n && i < s.Len(); i++ {
		row(i)
	}
	if s.Len() > n {
		fmt.Fprintln(tw, "...")
		row(s.Len() - 1)
	}
	tw.Flush()
}

func printMetrics(w io.Writer, r *sim.Result) {
	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "metrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %.6f\n", name, r.Metrics[name])
	}
}
