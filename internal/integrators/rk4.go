package integrators

import "github.com/san-kum/dcmotor/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta step. It keeps no scratch
// state between calls, so one value may be shared by concurrent runs.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := dt * 0.5

	k1 := sys.Derive(x, u, t).Clone()
	k2 := sys.Derive(x.Add(k1.Scale(half)), u, t+half).Clone()
	k3 := sys.Derive(x.Add(k2.Scale(half)), u, t+half).Clone()
	k4 := sys.Derive(x.Add(k3.Scale(dt)), u, t+dt)

	slope := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return x.Add(slope.Scale(dt / 6.0))
}
