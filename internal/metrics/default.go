package metrics

import "github.com/san-kum/dcmotor/internal/sim"

// Default returns constructors for the standard step-response metrics.
func Default(outputLimit float64) []func() sim.Metric {
	return []func() sim.Metric{
		func() sim.Metric { return NewIAE() },
		func() sim.Metric { return NewISE() },
		func() sim.Metric { return NewOvershoot() },
		func() sim.Metric { return NewRiseTime() },
		func() sim.Metric { return NewSettlingTime() },
		func() sim.Metric { return NewSteadyStateError() },
		func() sim.Metric { return NewControlEffort() },
		func() sim.Metric { return NewSaturation(outputLimit) },
	}
}

// Names lists the metric names produced by Default, in order.
var Names = []string{"iae", "ise", "overshoot", "rise_time", "settling_time", "steady_state_error", "control_effort", "saturation"}
