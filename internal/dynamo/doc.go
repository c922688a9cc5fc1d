// Package dynamo provides the state primitives shared by the motor model,
// the integrators and the simulation driver.
//
//   - [State]: vector representing plant state
//   - [System]: interface for ODE plants (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//
// It imports nothing else from this module.
package dynamo
