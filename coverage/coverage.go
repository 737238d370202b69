// Package coverage scores antenna placements on a floor plan.
//
// Each antenna propagates an exponentially decaying signal over a 9x9 window
// of free cells.  Obstacle cells mirrored across the antenna's row or column
// from a reached cell receive half the decay as a wall echo, and reached
// cells in the grid's critical zone receive a flat bonus per antenna and
// offset.  The coverage score is the mean signal over free cells; fitness is
// the coverage score minus a weighted repulsion penalty that grows as
// antennas cluster.  Higher fitness is better.
package coverage

import (
	"fmt"
	"math"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/grid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultSignalRange        = 0.46
	DefaultRepulsionWeight    = 0.7
	DefaultCriticalZoneWeight = 1.8
)

const (
	// WindowRadius is the half-width of the square propagation window.
	WindowRadius = 4
	// MaxDistance excludes window offsets at or beyond this Euclidean
	// distance from the antenna.
	MaxDistance = 8.0
	// RepulsionScale is the distance scale of the pairwise penalty
	// exp(-d/RepulsionScale).
	RepulsionScale = 3.0
)

type Option func(*Evaluator)

// SignalRange sets the decay length of exp(-d/r).
func SignalRange(r float64) Option {
	return func(e *Evaluator) { e.signalRange = r }
}

func RepulsionWeight(w float64) Option {
	return func(e *Evaluator) { e.repulsionWeight = w }
}

func CriticalZoneWeight(w float64) Option {
	return func(e *Evaluator) { e.criticalZoneWeight = w }
}

type offset struct {
	dr, dc int
	decay  float64
}

// Evaluator is immutable after construction and safe for concurrent use.
type Evaluator struct {
	g                  *grid.Grid
	signalRange        float64
	repulsionWeight    float64
	criticalZoneWeight float64
	footprint          []offset
}

// Result is the full breakdown of a single evaluation.
type Result struct {
	Fitness   float64
	Coverage  float64
	Repulsion float64
	// Map holds the accumulated signal per cell.  Obstacle cells carry
	// reflected energy, which is not part of the coverage score.
	Map *mat.Dense
}

func New(g *grid.Grid, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		g:                  g,
		signalRange:        DefaultSignalRange,
		repulsionWeight:    DefaultRepulsionWeight,
		criticalZoneWeight: DefaultCriticalZoneWeight,
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case g == nil:
		return nil, fmt.Errorf("coverage: nil grid: %w", rfid.ErrConfig)
	case g.NumFree() == 0:
		return nil, fmt.Errorf("coverage: grid has no free cells: %w", rfid.ErrConfig)
	case !(e.signalRange > 0):
		return nil, fmt.Errorf("coverage: signal range %v must be positive: %w", e.signalRange, rfid.ErrConfig)
	}
	if err := checkWeights(e.repulsionWeight, e.criticalZoneWeight); err != nil {
		return nil, err
	}

	e.footprint = footprint(e.signalRange)
	return e, nil
}

func footprint(signalRange float64) []offset {
	fp := make([]offset, 0, (2*WindowRadius+1)*(2*WindowRadius+1))
	for i := -WindowRadius; i <= WindowRadius; i++ {
		for j := -WindowRadius; j <= WindowRadius; j++ {
			d := math.Sqrt(float64(i*i + j*j))
			if d < MaxDistance {
				fp = append(fp, offset{dr: i, dc: j, decay: math.Exp(-d / signalRange)})
			}
		}
	}
	return fp
}

func checkWeights(repulsion, critical float64) error {
	if !(repulsion >= 0) {
		return fmt.Errorf("coverage: repulsion weight %v must be non-negative: %w", repulsion, rfid.ErrConfig)
	}
	if !(critical >= 0) {
		return fmt.Errorf("coverage: critical zone weight %v must be non-negative: %w", critical, rfid.ErrConfig)
	}
	return nil
}

func (e *Evaluator) Grid() *grid.Grid { return e.g }

func (e *Evaluator) SignalRange() float64        { return e.signalRange }
func (e *Evaluator) RepulsionWeight() float64    { return e.repulsionWeight }
func (e *Evaluator) CriticalZoneWeight() float64 { return e.criticalZoneWeight }

// Objective scores p with the evaluator's configured weights.
func (e *Evaluator) Objective(p rfid.Placement) (float64, error) {
	return e.Evaluate(p, e.repulsionWeight, e.criticalZoneWeight)
}

// Evaluate returns the fitness of p.  It is pure: identical inputs yield
// bitwise identical outputs.
func (e *Evaluator) Evaluate(p rfid.Placement, repulsionWeight, criticalZoneWeight float64) (float64, error) {
	r, err := e.Detail(p, repulsionWeight, criticalZoneWeight)
	if err != nil {
		return math.Inf(-1), err
	}
	return r.Fitness, nil
}

// Detail is Evaluate plus the coverage map and score components.
func (e *Evaluator) Detail(p rfid.Placement, repulsionWeight, criticalZoneWeight float64) (*Result, error) {
	if err := checkWeights(repulsionWeight, criticalZoneWeight); err != nil {
		return nil, err
	}
	if err := e.check(p); err != nil {
		return nil, err
	}

	m := e.propagate(p, criticalZoneWeight)
	cov := e.freeMean(m)
	rep := Repulsion(p)
	return &Result{
		Fitness:   cov - repulsionWeight*rep,
		Coverage:  cov,
		Repulsion: rep,
		Map:       m,
	}, nil
}

func (e *Evaluator) check(p rfid.Placement) error {
	for i, c := range p {
		if !e.g.InBounds(c) {
			return fmt.Errorf("coverage: antenna %d at %v is out of bounds: %w", i, c, rfid.ErrPrecondition)
		}
		if !e.g.Valid(c) {
			return fmt.Errorf("coverage: antenna %d at %v is on an obstacle: %w", i, c, rfid.ErrPrecondition)
		}
	}
	return nil
}

func (e *Evaluator) propagate(p rfid.Placement, criticalZoneWeight float64) *mat.Dense {
	rows, cols := e.g.Dims()
	m := mat.NewDense(rows, cols, nil)
	add := func(c rfid.Cell, v float64) {
		m.Set(c.Row, c.Col, m.At(c.Row, c.Col)+v)
	}

	for _, a := range p {
		for _, o := range e.footprint {
			n := rfid.Cell{Row: a.Row + o.dr, Col: a.Col + o.dc}
			if !e.g.Valid(n) {
				continue
			}
			add(n, o.decay)

			echoes := [2]rfid.Cell{
				{Row: n.Row, Col: 2*n.Col - a.Col},
				{Row: 2*n.Row - a.Row, Col: n.Col},
			}
			for _, r := range echoes {
				if e.g.InBounds(r) && e.g.At(r) == grid.Obstacle {
					add(r, o.decay/2)
				}
			}

			if e.g.Critical(n) {
				add(n, criticalZoneWeight)
			}
		}
	}
	return m
}

// freeMean averages m over free cells only.
func (e *Evaluator) freeMean(m *mat.Dense) float64 {
	vals := make([]float64, 0, e.g.NumFree())
	for _, c := range e.g.ValidPositions() {
		vals = append(vals, m.At(c.Row, c.Col))
	}
	return stat.Mean(vals, nil)
}

// Repulsion sums exp(-d/RepulsionScale) over all ordered pairs of distinct
// antenna indices, so every unordered pair counts twice.  Antennas sharing a
// cell contribute exp(0) = 1 per ordering.
func Repulsion(p rfid.Placement) float64 {
	pos := make([][]float64, len(p))
	for i, c := range p {
		pos[i] = []float64{float64(c.Row), float64(c.Col)}
	}

	var sum float64
	for i := range pos {
		for j := range pos {
			if i == j {
				continue
			}
			sum += math.Exp(-floats.Distance(pos[i], pos[j], 2) / RepulsionScale)
		}
	}
	return sum
}

// Overlap counts, per free cell, how many antennas' 9x9 windows reach it.
// It ignores decay, reflections and critical zones.
func (e *Evaluator) Overlap(p rfid.Placement) ([][]int, error) {
	if err := e.check(p); err != nil {
		return nil, err
	}
	rows, cols := e.g.Dims()
	out := make([][]int, rows)
	for r := range out {
		out[r] = make([]int, cols)
	}
	for _, a := range p {
		for i := -WindowRadius; i <= WindowRadius; i++ {
			for j := -WindowRadius; j <= WindowRadius; j++ {
				n := rfid.Cell{Row: a.Row + i, Col: a.Col + j}
				if e.g.Valid(n) {
					out[n.Row][n.Col]++
				}
			}
		}
	}
	return out, nil
}
