package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/sim"
)

func feed(m sim.Metric, target float64, speeds ...float64) {
	for k, v := range speeds {
		m.Observe(sim.Sample{Step: k, Time: float64(k) * 0.1, Dt: 0.1, Speed: v, Target: target})
	}
}

func TestIAE(t *testing.T) {
	m := NewIAE()
	feed(m, 2, 0, 1, 3)

	// (2 + 1 + 1) * 0.1
	if math.Abs(m.Value()-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestISE(t *testing.T) {
	m := NewISE()
	feed(m, 2, 0, 1, 3)

	// (4 + 1 + 1) * 0.1
	if math.Abs(m.Value()-0.6) > 1e-12 {
		t.Errorf("expected 0.6, got %f", m.Value())
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		speeds   []float64
		expected float64
	}{
		{"overshoots", 4, []float64{1, 3, 5, 4}, 25},
		{"never reaches", 4, []float64{1, 2, 3}, 0},
		{"zero target", 0, []float64{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOvershoot()
			feed(m, tt.target, tt.speeds...)
			if math.Abs(m.Value()-tt.expected) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.expected, m.Value())
			}
		})
	}
}

func TestRiseTime(t *testing.T) {
	m := NewRiseTime()
	feed(m, 10, 2, 5, 9, 10)
	if math.Abs(m.Value()-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", m.Value())
	}

	m.Reset()
	feed(m, 10, 1, 2, 3)
	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("expected horizon 0.3 when never reached, got %f", m.Value())
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime()
	feed(m, 10, 5, 11, 9.9, 10.1, 10)

	// last sample outside the 2% band is at t=0.1
	if math.Abs(m.Value()-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", m.Value())
	}
}

func TestSteadyStateError(t *testing.T) {
	m := NewSteadyStateError()
	feed(m, 5, 0, 4, 4.5)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestControlEffortAndSaturation(t *testing.T) {
	ce := NewControlEffort()
	sat := NewSaturation(72)

	for _, u := range []float64{72, 36, 0, 12} {
		smp := sim.Sample{Output: u}
		ce.Observe(smp)
		sat.Observe(smp)
	}

	if math.Abs(ce.Value()-30) > 1e-12 {
		t.Errorf("control effort: expected 30, got %f", ce.Value())
	}
	if math.Abs(sat.Value()-0.5) > 1e-12 {
		t.Errorf("saturation: expected 0.5, got %f", sat.Value())
	}

	ce.Reset()
	sat.Reset()
	if ce.Value() != 0 || sat.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestDefaultMetricsOnDefaultRun(t *testing.T) {
	s := sim.New(sim.DefaultConfig())
	for _, fn := range Default(sim.DefaultOutputLimit) {
		s.AddMetric(fn)
	}

	result, err := s.Run(context.Background(), control.Gains{Kp: 15, Ki: 5, Kd: 0.04}, 5)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range Names {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}

	expected := map[string]float64{
		"iae":                0.72125,
		"overshoot":          8.86,
		"rise_time":          0.21,
		"settling_time":      0.85,
		"control_effort":     33.457,
		"saturation":         0.008,
		"steady_state_error": 0,
	}
	for name, want := range expected {
		if got := result.Metrics[name]; math.Abs(got-want) > 1e-2 {
			t.Errorf("%s: got %f, want ~%f", name, got, want)
		}
	}
}
