// Package metrics records optimizer progress.
package metrics

import "time"

// Collector receives optimizer events.  All methods are called from the
// goroutine driving the iterator, including cache lookups, which are
// reported before work is handed to evaluation workers.
type Collector interface {
	// RecordIteration is called once per swarm iteration with the incumbent
	// best fitness, the number of objective evaluations performed and the
	// wall time the iteration took.
	RecordIteration(best float64, evals int, d time.Duration)
	// RecordRejected reports antenna moves reverted by repair.
	RecordRejected(n int)
	// RecordCacheLookup reports one placement cache lookup.
	RecordCacheLookup(hit bool)
}

// Nop discards everything.
type Nop struct{}

var _ Collector = Nop{}

func (Nop) RecordIteration(float64, int, time.Duration) {}
func (Nop) RecordRejected(int)                          {}
func (Nop) RecordCacheLookup(bool)                      {}
