package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/sim"
)

// GridSearch evaluates every combination of the given gain values and keeps
// the one minimising a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// SetWorkers bounds the number of concurrent runs; 0 means GOMAXPROCS.
func (g *GridSearch) SetWorkers(n int) { g.workers = n }

type Candidate struct {
	Gains control.Gains
	Value float64
}

// Search runs the grid around base and returns the best gains with their
// metric value. Runs whose metric is NaN are skipped; ties keep the first
// combination in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	s *sim.Simulator,
	base control.Gains,
	target float64,
	metricName string,
) (Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Candidate{}, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var cases []sim.Case
	if err := g.searchRecursive(0, base, target, &cases); err != nil {
		return Candidate{}, err
	}
	if len(cases) == 0 {
		return Candidate{}, fmt.Errorf("grid search: empty grid")
	}

	results, err := s.Sweep(ctx, cases, g.workers)
	if err != nil {
		return Candidate{}, err
	}

	best := Candidate{Value: math.Inf(1)}
	found := false
	for i, r := range results {
		val, ok := r.Metrics[metricName]
		if !ok {
			return Candidate{}, fmt.Errorf("grid search: metric %q not recorded", metricName)
		}
		if math.IsNaN(val) {
			continue
		}
		if !found || val < best.Value {
			best = Candidate{Gains: cases[i].Gains, Value: val}
			found = true
		}
	}
	if !found {
		return Candidate{}, fmt.Errorf("grid search: no finite %s in %d runs", metricName, len(cases))
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(depth int, current control.Gains, target float64, cases *[]sim.Case) error {
	if depth == len(g.paramNames) {
		*cases = append(*cases, sim.Case{
			Name:   fmt.Sprintf("kp=%g ki=%g kd=%g", current.Kp, current.Ki, current.Kd),
			Gains:  current,
			Target: target,
		})
		return nil
	}

	for _, val := range g.ranges[depth] {
		next, err := setGain(current, g.paramNames[depth], val)
		if err != nil {
			return err
		}
		if err := g.searchRecursive(depth+1, next, target, cases); err != nil {
			return err
		}
	}
	return nil
}

func setGain(g control.Gains, name string, v float64) (control.Gains, error) {
	switch name {
	case "kp":
		g.Kp = v
	case "ki":
		g.Ki = v
	case "kd":
		g.Kd = v
	default:
		return g, fmt.Errorf("unknown gain: %s", name)
	}
	return g, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
