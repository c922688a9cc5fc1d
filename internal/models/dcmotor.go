package models

import (
	"fmt"
	"math"

	"github.com/san-kum/dcmotor/internal/dynamo"
	"github.com/san-kum/dcmotor/internal/integrators"
)

// MotorParams are the electrical and mechanical constants of a brushed DC
// motor. Mm is a constant drive torque that acts regardless of the applied
// voltage.
type MotorParams struct {
	R  float64 `yaml:"r" json:"r"`
	L  float64 `yaml:"l" json:"l"`
	B  float64 `yaml:"b" json:"b"`
	J  float64 `yaml:"j" json:"j"`
	Km float64 `yaml:"km" json:"km"`
	Ke float64 `yaml:"ke" json:"ke"`
	Mm float64 `yaml:"mm" json:"mm"`
}

func DefaultMotorParams() MotorParams {
	return MotorParams{
		R:  2.0,
		L:  0.1,
		B:  0.5,
		J:  0.1,
		Km: 0.1,
		Ke: 0.1,
		Mm: 1,
	}
}

func (p MotorParams) Validate() error {
	for name, v := range map[string]float64{"R": p.R, "L": p.L, "B": p.B, "J": p.J, "Km": p.Km, "Ke": p.Ke, "Mm": p.Mm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: motor %s is not finite", dynamo.ErrInvalidConfig, name)
		}
	}
	if p.L <= 0 {
		return fmt.Errorf("%w: motor inductance must be positive, got %g", dynamo.ErrInvalidConfig, p.L)
	}
	if p.J <= 0 {
		return fmt.Errorf("%w: motor inertia must be positive, got %g", dynamo.ErrInvalidConfig, p.J)
	}
	return nil
}

// DCMotor is the continuous plant on state [E, I] driven by control [V]:
//
//	dE/dt = (Km*I + Mm - B*E) / J
//	dI/dt = (V - R*I - Ke*E) / L
type DCMotor struct {
	MotorParams
}

func NewDCMotor(p MotorParams) *DCMotor {
	return &DCMotor{MotorParams: p}
}

func (m *DCMotor) StateDim() int   { return 2 }
func (m *DCMotor) ControlDim() int { return 1 }

func (m *DCMotor) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	e, i := x[0], x[1]

	voltage := 0.0
	if len(u) > 0 {
		voltage = u[0]
	}

	// explicit conversions stop multiply-add fusion so results match on every GOARCH
	de := (float64(m.Km*i) + m.Mm - float64(m.B*e)) / m.J
	di := (voltage - float64(m.R*i) - float64(m.Ke*e)) / m.L
	return dynamo.State{de, di}
}

// ArmatureVoltage is the terminal voltage R*I + Ke*E.
func (m *DCMotor) ArmatureVoltage(e, i float64) float64 {
	return float64(m.R*i) + float64(m.Ke*e)
}

// Motor holds the per-run state of one motor. It is not safe for concurrent
// use; each run owns its own Motor.
type Motor struct {
	plant *DCMotor
	integ dynamo.Integrator
	dt    float64
	t     float64
	x     dynamo.State
}

// NewMotor returns a motor at rest. A nil integrator selects forward Euler.
func NewMotor(p MotorParams, integ dynamo.Integrator, dt float64) (*Motor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: motor step must be positive, got %g", dynamo.ErrInvalidConfig, dt)
	}
	if integ == nil {
		integ = integrators.NewEuler()
	}
	return &Motor{
		plant: NewDCMotor(p),
		integ: integ,
		dt:    dt,
		x:     dynamo.State{0, 0},
	}, nil
}

// Step advances the motor by one step under the applied voltage and returns
// the new armature current, the raw (unclamped) speed state and the armature
// voltage computed from the updated state.
func (m *Motor) Step(voltage float64) (current, speed, armature float64) {
	m.x = m.integ.Step(m.plant, m.x, dynamo.Control{voltage}, m.t, m.dt)
	m.t += m.dt

	speed, current = m.x[0], m.x[1]
	return current, speed, m.plant.ArmatureVoltage(speed, current)
}

func (m *Motor) Current() float64 { return m.x[1] }
func (m *Motor) Speed() float64   { return m.x[0] }
