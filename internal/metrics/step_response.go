package metrics

import (
	"math"

	"github.com/san-kum/dcmotor/internal/sim"
)

// SettlingBand is the relative tolerance used by SettlingTime.
const SettlingBand = 0.02

// Overshoot is the peak speed above target in percent of the target.
// Targets at or below zero report 0.
type Overshoot struct {
	peak   float64
	target float64
	seen   bool
}

func NewOvershoot() *Overshoot { return &Overshoot{} }

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(s sim.Sample) {
	if !o.seen || s.Speed > o.peak {
		o.peak = s.Speed
	}
	o.target = s.Target
	o.seen = true
}

func (o *Overshoot) Value() float64 {
	if !o.seen || o.target <= 0 || o.peak <= o.target {
		return 0
	}
	return (o.peak - o.target) / o.target * 100
}

func (o *Overshoot) Reset() { *o = Overshoot{} }

// RiseTime is the first time the speed reaches 90% of the target. A run that
// never gets there reports the full horizon.
type RiseTime struct {
	rise    float64
	horizon float64
	reached bool
	target  float64
}

func NewRiseTime() *RiseTime { return &RiseTime{} }

func (r *RiseTime) Name() string { return "rise_time" }

func (r *RiseTime) Observe(s sim.Sample) {
	r.horizon = s.Time + s.Dt
	r.target = s.Target
	if !r.reached && s.Speed >= 0.9*s.Target {
		r.rise = s.Time
		r.reached = true
	}
}

func (r *RiseTime) Value() float64 {
	if r.target <= 0 {
		return 0
	}
	if !r.reached {
		return r.horizon
	}
	return r.rise
}

func (r *RiseTime) Reset() { *r = RiseTime{} }

// SettlingTime is the time after which the speed stays within SettlingBand
// of the target for the rest of the run. The band is absolute (0.02) for a
// zero target.
type SettlingTime struct {
	settle float64
}

func NewSettlingTime() *SettlingTime { return &SettlingTime{} }

func (st *SettlingTime) Name() string { return "settling_time" }

func (st *SettlingTime) Observe(s sim.Sample) {
	band := SettlingBand * math.Abs(s.Target)
	if s.Target == 0 {
		band = SettlingBand
	}
	if math.Abs(s.Target-s.Speed) > band {
		st.settle = s.Time + s.Dt
	}
}

func (st *SettlingTime) Value() float64 { return st.settle }
func (st *SettlingTime) Reset()         { st.settle = 0 }

// SteadyStateError is the absolute tracking error at the last sample.
type SteadyStateError struct {
	last float64
}

func NewSteadyStateError() *SteadyStateError { return &SteadyStateError{} }

func (m *SteadyStateError) Name() string { return "steady_state_error" }

func (m *SteadyStateError) Observe(s sim.Sample) {
	m.last = math.Abs(s.Target - s.Speed)
}

func (m *SteadyStateError) Value() float64 { return m.last }
func (m *SteadyStateError) Reset()         { m.last = 0 }
