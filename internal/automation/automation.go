package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/experiment"
	"github.com/san-kum/dcmotor/internal/export"
	"github.com/san-kum/dcmotor/internal/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted batch of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	OutputDir   string         `yaml:"output_dir"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Unset fields fall back to the preset, which
// falls back to the default configuration.
type ScenarioStep struct {
	Name       string   `yaml:"name"`
	Preset     string   `yaml:"preset"`
	Integrator string   `yaml:"integrator"`
	Kp         *float64 `yaml:"kp"`
	Ki         *float64 `yaml:"ki"`
	Kd         *float64 `yaml:"kd"`
	Target     *float64 `yaml:"target"`
	Duration   *float64 `yaml:"duration"`
	Export     []string `yaml:"export"`
}

type StepResult struct {
	Name   string
	Result *sim.Result
	Files  []string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Kp != nil {
		cfg.Gains.Kp = *s.Kp
	}
	if s.Ki != nil {
		cfg.Gains.Ki = *s.Ki
	}
	if s.Kd != nil {
		cfg.Gains.Kd = *s.Kd
	}
	if s.Target != nil {
		cfg.Target = *s.Target
	}
	if s.Duration != nil {
		cfg.Duration = *s.Duration
	}
	return cfg, nil
}

// RunScenario executes all steps in order and writes the exports each step
// asks for into the scenario's output directory.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	outDir := scenario.OutputDir
	if outDir == "" {
		outDir = "."
	}

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		log.Info("running step",
			zap.String("scenario", scenario.Name),
			zap.String("step", name),
			zap.Int("index", i+1),
			zap.Int("total", len(scenario.Steps)))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, log); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		for _, format := range step.Export {
			path := filepath.Join(outDir, name+"."+format)
			if err := WriteExport(path, format, cfg, result); err != nil {
				return results, fmt.Errorf("step %d export %s: %w", i+1, format, err)
			}
			sr.Files = append(sr.Files, path)
			log.Debug("wrote export", zap.String("path", path))
		}

		results = append(results, sr)
	}

	return results, nil
}

// WriteExport writes result to path in the named format: csv, json, xlsx
// or png.
func WriteExport(path, format string, cfg *config.Config, result *sim.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	switch format {
	case "png":
		return export.PNG(path, result, 8, 10)
	case "xlsx":
		return export.XLSX(path, MetaFor(cfg), result)
	case "csv", "json":
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if format == "csv" {
		err = export.CSV(f, result.Series)
	} else {
		err = export.JSON(f, MetaFor(cfg), result)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func MetaFor(cfg *config.Config) export.Meta {
	return export.Meta{
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		OutputLimit: cfg.OutputLimit,
		MaxSpeed:    cfg.MaxSpeed,
		Motor:       cfg.Motor,
	}
}
