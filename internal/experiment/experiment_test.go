package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/integrators"
	"github.com/san-kum/dcmotor/internal/metrics"
	"github.com/san-kum/dcmotor/internal/sim"
)

func TestRegistryIntegrators(t *testing.T) {
	reg := NewRegistry()

	integ, err := reg.GetIntegrator("euler")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := integ.(*integrators.Euler); !ok {
		t.Errorf("expected *Euler, got %T", integ)
	}

	integ, err = reg.GetIntegrator("rk4")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := integ.(*integrators.RK4); !ok {
		t.Errorf("expected *RK4, got %T", integ)
	}

	if _, err := reg.GetIntegrator("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	names := reg.ListIntegrators()
	if len(names) != 2 || names[0] != "euler" || names[1] != "rk4" {
		t.Errorf("unexpected integrator list %v", names)
	}
}

func TestRunWithoutSetup(t *testing.T) {
	exp := New(nil)
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestDefaultExperiment(t *testing.T) {
	exp := New(config.DefaultConfig())
	if err := exp.Setup(NewRegistry(), nil); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Series.Len() != 250 {
		t.Errorf("expected 250 samples, got %d", result.Series.Len())
	}
	if result.Series.Output[0] != 72 {
		t.Errorf("expected saturated first output, got %f", result.Series.Output[0])
	}
	for _, name := range metrics.Names {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if math.Abs(result.Series.Speed[249]-5) > 1e-3 {
		t.Errorf("expected final speed near 5, got %f", result.Series.Speed[249])
	}
}

func TestSetupErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "leapfrog"
	if err := New(cfg).Setup(nil, nil); err == nil {
		t.Error("expected unknown integrator error")
	}

	cfg = config.DefaultConfig()
	cfg.Dt = 0
	err := New(cfg).Setup(nil, nil)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSimulatorObserver(t *testing.T) {
	exp := New(config.GetPreset("p_only"))
	if err := exp.Setup(nil, nil); err != nil {
		t.Fatal(err)
	}

	count := 0
	exp.Simulator().AddObserver(sim.ObserverFunc(func(sim.Sample) { count++ }))

	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if count != 250 {
		t.Errorf("expected 250 observed samples, got %d", count)
	}
}
