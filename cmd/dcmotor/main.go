package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/experiment"
	"github.com/san-kum/dcmotor/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configFile string
	preset     string
	integrator string
	verbose    bool

	kp       float64
	ki       float64
	kd       float64
	target   float64
	dt       float64
	duration float64
}

// main registers the commands and opens the dashboard when no subcommand is
// given.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "dcmotor",
		Short:        "closed-loop dc motor pid simulation lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			log := opts.logger()
			defer log.Sync()
			return tui.Run(cfg, experiment.NewRegistry(), log)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&opts.preset, "preset", "", "use preset configuration")
	pf.StringVar(&opts.integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	pf.Float64Var(&opts.kp, "kp", config.DefaultKp, "proportional gain")
	pf.Float64Var(&opts.ki, "ki", config.DefaultKi, "integral gain")
	pf.Float64Var(&opts.kd, "kd", config.DefaultKd, "derivative gain")
	pf.Float64Var(&opts.target, "target", config.DefaultTarget, "target speed")
	pf.Float64Var(&opts.dt, "dt", 0.01, "timestep")
	pf.Float64Var(&opts.duration, "time", 2.5, "duration")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newPlotCmd(opts),
		newExportCmd(opts),
		newTuneCmd(opts),
		newCompareCmd(opts),
		newAnalyzeCmd(opts),
		newScenarioCmd(opts),
		newSweepCmd(opts),
		newPresetsCmd(),
	)
	return rootCmd
}

// resolve builds the run configuration. A config file overrides the preset
// and explicitly set flags override both.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.preset != "" {
		cfg = config.GetPreset(o.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
	}

	if o.configFile != "" {
		loaded, err := config.LoadOnto(o.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("kp") {
		cfg.Gains.Kp = o.kp
	}
	if flags.Changed("ki") {
		cfg.Gains.Ki = o.ki
	}
	if flags.Changed("kd") {
		cfg.Gains.Kd = o.kd
	}
	if flags.Changed("target") {
		cfg.Target = o.target
	}
	if flags.Changed("integrator") {
		cfg.Integrator = o.integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = o.dt
	}
	if flags.Changed("time") {
		cfg.Duration = o.duration
	}
	return cfg, nil
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// setup resolves the configuration and prepares an experiment.
func (o *options) setup(cmd *cobra.Command) (*experiment.Experiment, *zap.Logger, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := o.logger()
	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), log); err != nil {
		return nil, nil, err
	}
	return exp, log, nil
}
