package control

import (
	"fmt"
	"math"

	"github.com/san-kum/dcmotor/internal/dynamo"
)

type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`
}

// Diagnostics is the internal state of the most recent Step.
type Diagnostics struct {
	Error      float64 `json:"error"`
	Integral   float64 `json:"integral"`
	Derivative float64 `json:"derivative"`
	Raw        float64 `json:"raw"`
	Output     float64 `json:"output"`
	Saturated  bool    `json:"saturated"`
}

// PID is a discrete speed controller with the series gain structure
//
//	u = Kp * (e + Ki*∫e + Kd*de/dt)
//
// saturated to [0, limit]. A PID carries state for exactly one run.
type PID struct {
	Gains
	dt       float64
	limit    float64
	integral float64
	prevErr  float64
	last     Diagnostics
	nonFin   int
}

func New(g Gains, dt, limit float64) (*PID, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: controller step must be positive, got %g", dynamo.ErrInvalidConfig, dt)
	}
	if limit < 0 || math.IsNaN(limit) {
		return nil, fmt.Errorf("%w: output limit must be non-negative, got %g", dynamo.ErrInvalidConfig, limit)
	}
	return &PID{Gains: g, dt: dt, limit: limit}, nil
}

// Step converts a speed error into a saturated control output. The previous
// error is updated only after the output has been computed.
func (p *PID) Step(err float64) float64 {
	p.integral += float64(err * p.dt)
	derivative := (err - p.prevErr) / p.dt

	raw := p.Kp * (err + float64(p.Ki*p.integral) + float64(p.Kd*derivative))
	if math.IsNaN(raw) {
		p.nonFin++
	}
	out := dynamo.Clamp(raw, 0, p.limit)

	p.last = Diagnostics{
		Error:      err,
		Integral:   p.integral,
		Derivative: derivative,
		Raw:        raw,
		Output:     out,
		Saturated:  out != raw,
	}
	p.prevErr = err

	return out
}

func (p *PID) Diagnostics() Diagnostics { return p.last }

// NonFinite reports how many outputs were NaN before saturation.
func (p *PID) NonFinite() int { return p.nonFin }

func (p *PID) Limit() float64 { return p.limit }
