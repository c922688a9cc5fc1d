package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/dcmotor/internal/control"
	"golang.org/x/sync/errgroup"
)

// Case is one parameter set of a sweep.
type Case struct {
	Name   string
	Gains  control.Gains
	Target float64
}

// Sweep runs independent cases in parallel on at most workers goroutines
// (GOMAXPROCS when workers <= 0). Results are returned in input order. The
// first failing case cancels the rest.
func (s *Simulator) Sweep(ctx context.Context, cases []Case, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range cases {
		g.Go(func() error {
			r, err := s.Run(ctx, c.Gains, c.Target)
			if err != nil {
				return fmt.Errorf("case %d (%s): %w", i, c.Name, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
