package dynamo

import "errors"

// Domain errors shared by the engine packages.
var (
	// ErrInvalidConfig indicates a fixed engine constant (step, horizon, limits,
	// plant parameters) that cannot produce a meaningful trajectory.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNonFinite marks a NaN or Inf produced during a run. It is absorbed by
	// clamping and only ever reported as a counted event.
	ErrNonFinite = errors.New("dynamo: non-finite value")
)
