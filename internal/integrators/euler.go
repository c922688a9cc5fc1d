package integrators

import "github.com/san-kum/dcmotor/internal/dynamo"

// Euler is the explicit forward Euler step. Every derivative component is
// evaluated from the pre-step state, so coupled states never see each
// other's updated values within one step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := sys.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + float64(dt*dx[i])
	}
	return result
}
