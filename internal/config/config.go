package config

import (
	"fmt"
	"os"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/models"
	"github.com/san-kum/dcmotor/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKp         = 15.0
	DefaultKi         = 5.0
	DefaultKd         = 0.04
	DefaultTarget     = 5.0
	DefaultIntegrator = "euler"
)

type Config struct {
	Gains             control.Gains      `yaml:"gains"`
	Target            float64            `yaml:"target"`
	Dt                float64            `yaml:"dt"`
	Duration          float64            `yaml:"duration"`
	OutputLimit       float64            `yaml:"output_limit"`
	MaxSpeed          float64            `yaml:"max_speed"`
	InitialSpeedFloor float64            `yaml:"initial_speed_floor"`
	Integrator        string             `yaml:"integrator"`
	Motor             models.MotorParams `yaml:"motor"`
}

func DefaultConfig() *Config {
	return &Config{
		Gains: control.Gains{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
		Target:            DefaultTarget,
		Dt:                sim.DefaultDt,
		Duration:          sim.DefaultDuration,
		OutputLimit:       sim.DefaultOutputLimit,
		MaxSpeed:          sim.DefaultMaxSpeed,
		InitialSpeedFloor: sim.DefaultInitialSpeedFloor,
		Integrator:        DefaultIntegrator,
		Motor:             models.DefaultMotorParams(),
	}
}

// Load reads a YAML file on top of DefaultConfig, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a YAML file on top of a copy of base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig converts the file settings into driver settings using the given
// integrator.
func (c *Config) SimConfig(integ dynamo.Integrator) sim.Config {
	return sim.Config{
		Dt:                c.Dt,
		Duration:          c.Duration,
		OutputLimit:       c.OutputLimit,
		MaxSpeed:          c.MaxSpeed,
		InitialSpeedFloor: c.InitialSpeedFloor,
		Motor:             c.Motor,
		Integrator:        integ,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
