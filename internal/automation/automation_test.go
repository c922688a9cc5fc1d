package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/experiment"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const scenarioYAML = `
name: gain study
description: compare presets
steps:
  - name: baseline
    export: [csv, json]
  - name: slow
    preset: sluggish
    target: 3
    export: [xlsx]
  - preset: p_only
    integrator: rk4
    kd: 0.02
`

func writeScenario(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, t.TempDir(), scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if sc.Name != "gain study" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Target == nil || *sc.Steps[1].Target != 3 {
		t.Error("target override not parsed")
	}
	if sc.Steps[0].Kp != nil {
		t.Error("unset gain should stay nil")
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadScenario(writeScenario(t, dir, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestStepConfig(t *testing.T) {
	kd := 0.02
	step := ScenarioStep{Preset: "p_only", Integrator: "rk4", Kd: &kd}

	cfg, err := step.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gains.Kp != 15 || cfg.Gains.Ki != 0 || cfg.Gains.Kd != 0.02 {
		t.Errorf("unexpected gains %+v", cfg.Gains)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected rk4, got %s", cfg.Integrator)
	}
	if config.GetPreset("p_only").Gains.Kd != 0 {
		t.Error("step override leaked into the preset")
	}

	if _, err := (ScenarioStep{Preset: "turbo"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	sc, err := LoadScenario(writeScenario(t, dir, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	sc.OutputDir = filepath.Join(dir, "out")

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[2].Name != "step3" {
		t.Errorf("expected generated name step3, got %s", results[2].Name)
	}
	if results[1].Result.Target != 3 {
		t.Errorf("expected target 3, got %f", results[1].Result.Target)
	}

	for _, name := range []string{"baseline.csv", "baseline.json", "slow.xlsx"} {
		if _, err := os.Stat(filepath.Join(sc.OutputDir, name)); err != nil {
			t.Errorf("expected export %s: %v", name, err)
		}
	}
	if len(results[2].Files) != 0 {
		t.Errorf("step without exports wrote %v", results[2].Files)
	}
}

func TestRunScenarioBadExport(t *testing.T) {
	sc := &Scenario{
		OutputDir: t.TempDir(),
		Steps:     []ScenarioStep{{Name: "x", Export: []string{"bmp"}}},
	}
	if _, err := RunScenario(context.Background(), sc, nil, nil); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		ParamName: "target",
		ParamMin:  1,
		ParamMax:  5,
		NumSteps:  5,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	for i, r := range results {
		if r.ParamValue != float64(i+1) {
			t.Errorf("point %d: expected value %d, got %f", i, i+1, r.ParamValue)
		}
		if r.PeakSpeed < r.FinalSpeed {
			t.Errorf("point %d: peak %f below final %f", i, r.PeakSpeed, r.FinalSpeed)
		}
		if r.PeakSpeed > 20 {
			t.Errorf("point %d: peak above speed ceiling", i)
		}
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{ParamName: "mass", NumSteps: 2}, nil, nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunSweepLogsEachRun(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sweep := &ParameterSweep{
		ParamName: "kp",
		ParamMin:  5,
		ParamMax:  15,
		NumSteps:  3,
		Workers:   2,
	}

	if _, err := RunSweep(context.Background(), sweep, nil, zap.New(core)); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if n := logs.FilterMessage("run complete").Len(); n != 3 {
		t.Errorf("expected 3 run logs, got %d", n)
	}
}
