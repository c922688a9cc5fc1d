package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/experiment"
	"github.com/san-kum/dcmotor/internal/optim"
	"github.com/san-kum/dcmotor/internal/sim"
	"go.uber.org/zap"
)

// ParameterSweep varies one input (kp, ki, kd or target) over a range
// while the rest of Base stays fixed.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

// SweepResult summarises one sweep point.
type SweepResult struct {
	ParamValue   float64
	FinalSpeed   float64
	PeakSpeed    float64
	Overshoot    float64
	SettlingTime float64
	IAE          float64
}

// RunSweep executes a parameter sweep in parallel
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log *zap.Logger) ([]SweepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	exp := experiment.New(base)
	if err := exp.Setup(registry, log); err != nil {
		return nil, err
	}

	values := optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	cases := make([]sim.Case, len(values))
	for i, v := range values {
		c := sim.Case{Gains: base.Gains, Target: base.Target}
		switch sweep.ParamName {
		case "kp":
			c.Gains.Kp = v
		case "ki":
			c.Gains.Ki = v
		case "kd":
			c.Gains.Kd = v
		case "target":
			c.Target = v
		default:
			return nil, fmt.Errorf("cannot sweep %s", sweep.ParamName)
		}
		c.Name = fmt.Sprintf("%s=%g", sweep.ParamName, v)
		cases[i] = c
	}

	runs, err := exp.Simulator().Sweep(ctx, cases, sweep.Workers)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		speed := r.Series.Speed
		peak := 0.0
		for _, v := range speed {
			if v > peak {
				peak = v
			}
		}
		results[i] = SweepResult{
			ParamValue:   values[i],
			FinalSpeed:   speed[len(speed)-1],
			PeakSpeed:    peak,
			Overshoot:    r.Metrics["overshoot"],
			SettlingTime: r.Metrics["settling_time"],
			IAE:          r.Metrics["iae"],
		}
	}
	return results, nil
}
