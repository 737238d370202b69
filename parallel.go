package rfid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelEvaler evaluates points concurrently on up to Workers goroutines.
// If Workers < 1, runtime.NumCPU() is used.  Results keep the order of the
// input points so reductions over them are deterministic.
type ParallelEvaler struct {
	Workers int
}

func (ev ParallelEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	workers := ev.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	results = make([]Point, len(points))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range points {
		g.Go(func() error {
			val, err := obj.Objective(p.pos)
			p.Val = val
			results[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		// goroutines are not cancelled, so every point was attempted
		return nil, len(points), err
	}
	return results, len(points), nil
}
