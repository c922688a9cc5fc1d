package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/integrators"
	"github.com/san-kum/dcmotor/internal/models"
)

const (
	DefaultDt                = 0.01
	DefaultDuration          = 2.5
	DefaultOutputLimit       = 72.0
	DefaultMaxSpeed          = 20.0
	DefaultInitialSpeedFloor = 0.0
)

// Metric accumulates a scalar over the samples of one run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer is notified of every recorded sample. Observers attached to a
// Simulator that runs concurrently must be safe for concurrent use.
type Observer interface {
	OnSample(s Sample)
}

type ObserverFunc func(s Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

type Config struct {
	Dt                float64
	Duration          float64
	OutputLimit       float64
	MaxSpeed          float64
	InitialSpeedFloor float64
	Motor             models.MotorParams
	Integrator        dynamo.Integrator
}

func DefaultConfig() Config {
	return Config{
		Dt:                DefaultDt,
		Duration:          DefaultDuration,
		OutputLimit:       DefaultOutputLimit,
		MaxSpeed:          DefaultMaxSpeed,
		InitialSpeedFloor: DefaultInitialSpeedFloor,
		Motor:             models.DefaultMotorParams(),
		Integrator:        integrators.NewEuler(),
	}
}

// Steps is the number of grid points. It is derived from a rounded integer
// count rather than by accumulating Dt, so 2.5/0.01 is always 250.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"dt": c.Dt, "duration": c.Duration, "output limit": c.OutputLimit,
		"max speed": c.MaxSpeed, "initial speed floor": c.InitialSpeedFloor,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", dynamo.ErrInvalidConfig, name)
		}
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, c.Duration)
	}
	if c.Steps() < 1 {
		return fmt.Errorf("%w: duration %f shorter than one step of %f", dynamo.ErrInvalidConfig, c.Duration, c.Dt)
	}
	if c.OutputLimit < 0 {
		return fmt.Errorf("%w: output limit must be non-negative, got %f", dynamo.ErrInvalidConfig, c.OutputLimit)
	}
	if c.MaxSpeed < 0 {
		return fmt.Errorf("%w: max speed must be non-negative, got %f", dynamo.ErrInvalidConfig, c.MaxSpeed)
	}
	if c.InitialSpeedFloor < 0 {
		return fmt.Errorf("%w: initial speed floor must be non-negative, got %f", dynamo.ErrInvalidConfig, c.InitialSpeedFloor)
	}
	return c.Motor.Validate()
}

// Sample is one recorded grid point.
type Sample struct {
	Step    int
	Time    float64
	Dt      float64
	Error   float64
	Speed   float64
	Target  float64
	Output  float64
	Current float64
	Voltage float64
}

// Series holds the index-aligned trajectories of one run.
type Series struct {
	Time    []float64 `json:"time"`
	Speed   []float64 `json:"speed"`
	Target  []float64 `json:"target_speed"`
	Output  []float64 `json:"pid_output"`
	Current []float64 `json:"current"`
	Voltage []float64 `json:"armature_voltage"`
}

var Columns = []string{"time", "speed", "target_speed", "pid_output", "current", "armature_voltage"}

func NewSeries(capacity int) Series {
	return Series{
		Time:    make([]float64, 0, capacity),
		Speed:   make([]float64, 0, capacity),
		Target:  make([]float64, 0, capacity),
		Output:  make([]float64, 0, capacity),
		Current: make([]float64, 0, capacity),
		Voltage: make([]float64, 0, capacity),
	}
}

func (s *Series) Append(smp Sample) {
	s.Time = append(s.Time, smp.Time)
	s.Speed = append(s.Speed, smp.Speed)
	s.Target = append(s.Target, smp.Target)
	s.Output = append(s.Output, smp.Output)
	s.Current = append(s.Current, smp.Current)
	s.Voltage = append(s.Voltage, smp.Voltage)
}

func (s Series) Len() int { return len(s.Time) }

// Row returns sample i in Columns order.
func (s Series) Row(i int) []float64 {
	return []float64{s.Time[i], s.Speed[i], s.Target[i], s.Output[i], s.Current[i], s.Voltage[i]}
}

type Result struct {
	Gains     control.Gains      `json:"gains"`
	Target    float64            `json:"target_speed"`
	Series    Series             `json:"series"`
	Metrics   map[string]float64 `json:"metrics"`
	NonFinite int                `json:"non_finite"`
}
