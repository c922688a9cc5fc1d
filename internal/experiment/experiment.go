package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/sim"
	"go.uber.org/zap"
)

type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Experiment{cfg: cfg}
}

// Setup resolves the integrator and builds a simulator with the default
// metrics attached. A nil logger discards log output.
func (e *Experiment) Setup(reg *Registry, log *zap.Logger) error {
	if reg == nil {
		reg = NewRegistry()
	}
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	simCfg := e.cfg.SimConfig(integ)
	if err := simCfg.Validate(); err != nil {
		return err
	}

	e.simulator = sim.New(simCfg)
	e.simulator.SetLogger(log)
	for _, fn := range reg.DefaultMetrics(simCfg.OutputLimit) {
		e.simulator.AddMetric(fn)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Gains, e.cfg.Target)
}

// Simulator returns the underlying simulator for adding observers or sweeping.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
