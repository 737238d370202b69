// Package rfid holds the shared plumbing for searching antenna placements on
// a discretized floor plan: placement and point types, objective and
// evaluator interfaces, and serial, parallel and caching evaluators.
package rfid

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// Cell is an integer (row, col) coordinate on a floor plan grid.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Placement is an ordered assignment of antenna coordinates. Duplicate cells
// are allowed.
type Placement []Cell

// Clone returns an independent copy of p.
func (p Placement) Clone() Placement {
	if p == nil {
		return nil
	}
	dup := make(Placement, len(p))
	copy(dup, p)
	return dup
}

// Floats flattens p into [r0, c0, r1, c1, ...].
func (p Placement) Floats() []float64 {
	v := make([]float64, 2*len(p))
	for i, c := range p {
		v[2*i] = float64(c.Row)
		v[2*i+1] = float64(c.Col)
	}
	return v
}

type Point struct {
	pos Placement
	Val float64
}

// NewPoint copies pos so later changes to the caller's slice do not leak
// into the point.
func NewPoint(pos Placement, val float64) Point {
	return Point{pos: pos.Clone(), Val: val}
}

func (p Point) At(i int) Cell { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() Placement { return p.pos.Clone() }

type Objectiver interface {
	// Objective scores the placement p.  The objective function must be
	// framed so that higher values are better.  If the evaluation fails,
	// negative infinity should be returned along with an error.
	// Implementations used with ParallelEvaler must be safe for concurrent
	// use.
	Objective(p Placement) (float64, error)
}

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of function evaluations n.  Results are returned in the same order as
	// points.  Unevaluated points should not be returned in the results
	// slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	var firstErr error
	for _, p := range points {
		p.Val, err = obj.Objective(p.pos)
		results = append(results, p)
		if err != nil {
			if !ev.ContinueOnErr {
				return results, len(results), err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return results, len(results), firstErr
}

type ObjectiveFunc func(Placement) float64

func (fn ObjectiveFunc) Objective(p Placement) (float64, error) { return fn(p), nil }

// ObjectiverFunc adapts a fallible function to Objectiver.
type ObjectiverFunc func(Placement) (float64, error)

func (fn ObjectiverFunc) Objective(p Placement) (float64, error) { return fn(p) }

// ObjectiveLogger wraps an Objectiver and logs every evaluation at debug
// level.
type ObjectiveLogger struct {
	Objectiver
	Logger *slog.Logger
	count  atomic.Int64
}

func NewObjectiveLogger(obj Objectiver, l *slog.Logger) *ObjectiveLogger {
	if l == nil {
		l = slog.Default()
	}
	return &ObjectiveLogger{Objectiver: obj, Logger: l}
}

func (ol *ObjectiveLogger) Objective(p Placement) (float64, error) {
	val, err := ol.Objectiver.Objective(p)
	n := ol.count.Add(1)
	if err != nil {
		ol.Logger.Debug("objective failed", "eval", n, "placement", p, "error", err)
		return math.Inf(-1), err
	}
	ol.Logger.Debug("objective", "eval", n, "placement", p, "val", val)
	return val, nil
}

// Count reports the number of objective evaluations seen so far.
func (ol *ObjectiveLogger) Count() int { return int(ol.count.Load()) }
