package sim

import (
	"context"
	"math"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/models"
	"go.uber.org/zap"
)

// Simulator drives the closed loop of one PID controller and one motor over
// a fixed time grid. It holds no per-run state: every Run builds its own
// controller, motor and metrics, so Run may be called concurrently.
type Simulator struct {
	cfg        Config
	newMetrics []func() Metric
	observers  []Observer
	log        *zap.Logger
}

func New(cfg Config) *Simulator {
	if cfg.Integrator == nil {
		cfg.Integrator = DefaultConfig().Integrator
	}
	return &Simulator{
		cfg:        cfg,
		newMetrics: make([]func() Metric, 0),
		observers:  make([]Observer, 0),
		log:        zap.NewNop(),
	}
}

// AddMetric registers a metric constructor; a fresh metric is built per run.
func (s *Simulator) AddMetric(fn func() Metric) { s.newMetrics = append(s.newMetrics, fn) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

func (s *Simulator) Config() Config { return s.cfg }

// Run simulates the loop for the given gains and target speed. Configuration
// errors are returned before any computation. Numeric blow-ups are absorbed
// by the speed and output clamps and only counted in Result.NonFinite.
// Cancelling ctx abandons the run without a partial result.
func (s *Simulator) Run(ctx context.Context, gains control.Gains, target float64) (*Result, error) {
	cfg := s.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pid, err := control.New(gains, cfg.Dt, cfg.OutputLimit)
	if err != nil {
		return nil, err
	}
	motor, err := models.NewMotor(cfg.Motor, cfg.Integrator, cfg.Dt)
	if err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Gains:   gains,
		Target:  target,
		Series:  NewSeries(steps),
		Metrics: make(map[string]float64),
	}

	metrics := make([]Metric, 0, len(s.newMetrics))
	for _, fn := range s.newMetrics {
		m := fn()
		m.Reset()
		metrics = append(metrics, m)
	}

	speed := 0.0
	nonFinite := 0

	for k := 0; k < steps; k++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := float64(k) * cfg.Dt

		e := target - speed
		u := pid.Step(e)
		current, raw, voltage := motor.Step(u)

		if !(dynamo.State{current, raw, voltage}).IsValid() {
			nonFinite++
		}

		speed = dynamo.Clamp(raw, 0, cfg.MaxSpeed)
		if t < cfg.Dt && math.Abs(speed) < cfg.InitialSpeedFloor {
			speed = dynamo.Sign(target) * cfg.InitialSpeedFloor
		}

		smp := Sample{
			Step:    k,
			Time:    t,
			Dt:      cfg.Dt,
			Error:   e,
			Speed:   speed,
			Target:  target,
			Output:  u,
			Current: current,
			Voltage: voltage,
		}
		result.Series.Append(smp)

		for _, m := range metrics {
			m.Observe(smp)
		}
		for _, obs := range s.observers {
			obs.OnSample(smp)
		}
	}

	result.NonFinite = nonFinite + pid.NonFinite()
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if result.NonFinite > 0 {
		s.log.Warn("non-finite values absorbed by clamping",
			zap.Error(dynamo.ErrNonFinite),
			zap.Int("events", result.NonFinite),
			zap.Float64("kp", gains.Kp), zap.Float64("ki", gains.Ki), zap.Float64("kd", gains.Kd),
			zap.Float64("target", target))
	}
	s.log.Debug("run complete",
		zap.Int("steps", steps),
		zap.Float64("final_speed", speed),
		zap.Float64("target", target))

	return result, nil
}
