package config

import "math"

// Range is the interactive range of one input. The engine accepts values
// outside it; only the dashboard enforces it.
type Range struct {
	Name    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

var Ranges = []Range{
	{Name: "Kp", Min: 0, Max: 50, Step: 0.1, Default: DefaultKp},
	{Name: "Ki", Min: 0, Max: 30, Step: 0.1, Default: DefaultKi},
	{Name: "Kd", Min: 0, Max: 0.1, Step: 0.001, Default: DefaultKd},
	{Name: "Target", Min: 0, Max: 10, Step: 0.01, Default: DefaultTarget},
}

// Nudge moves v by steps increments, snaps it to the step grid and keeps it
// inside the range.
func (r Range) Nudge(v float64, steps int) float64 {
	n := math.Round((v-r.Min)/r.Step) + float64(steps)
	out := r.Min + n*r.Step
	if out < r.Min {
		out = r.Min
	}
	if out > r.Max {
		out = r.Max
	}
	// trim the representation error of repeated steps
	return math.Round(out/r.Step) * r.Step
}
