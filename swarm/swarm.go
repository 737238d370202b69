// Package swarm searches antenna placements with particle swarm optimization.
//
// Particles move through continuous (row, col) space and are snapped to grid
// cells after every move.  An antenna whose snapped cell is not free stays
// where it was for that iteration; its velocity is kept.
package swarm

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/grid"
	"github.com/Ksonar262/RFID/metrics"
	"github.com/Ksonar262/RFID/pop"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultInertia   = 0.5
	DefaultCognition = 1.5
	DefaultSocial    = 1.5
)

// UpdateRule selects the velocity equation.
type UpdateRule int

const (
	// SharedGlobal draws one r1 and one r2 per iteration for the whole swarm
	// and pulls both the cognitive and social terms toward the global best:
	//
	//     v = w*v + c1*r1*(gbest-x) + c2*r2*(gbest-x)
	//
	// Particles keep no personal best.
	SharedGlobal UpdateRule = iota
	// Canonical draws r1 and r2 per particle and dimension and pulls the
	// cognitive term toward each particle's personal best:
	//
	//     v = w*v + c1*r1*(pbest-x) + c2*r2*(gbest-x)
	Canonical
)

func (r UpdateRule) String() string {
	switch r {
	case SharedGlobal:
		return "shared-global"
	case Canonical:
		return "canonical"
	default:
		return fmt.Sprintf("UpdateRule(%d)", int(r))
	}
}

// ParseRule is the inverse of UpdateRule.String.
func ParseRule(s string) (UpdateRule, error) {
	switch s {
	case "", "shared-global":
		return SharedGlobal, nil
	case "canonical":
		return Canonical, nil
	}
	return 0, fmt.Errorf("swarm: unknown update rule %q: %w", s, rfid.ErrConfig)
}

type Particle struct {
	Id int
	rfid.Point
	// Vel holds one (row, col) velocity pair per antenna, flattened like
	// rfid.Placement.Floats.
	Vel []float64
	// Best is the particle's personal best.  Only the Canonical rule reads
	// it.
	Best rfid.Point
}

// Update records the value of the particle's current position.
func (p *Particle) Update(val float64) {
	p.Val = val
	if p.Best.Len() == 0 || val > p.Best.Val {
		p.Best = rfid.NewPoint(p.Pos(), val)
	}
}

// Move applies an already computed velocity: every antenna is snapped to the
// nearest cell of x+v and reverted to its previous cell if that is not a
// legal position on g.  It returns the number of reverted antennas.
func (p *Particle) Move(g *grid.Grid) (rejected int) {
	pos := p.Pos()
	for i, c := range pos {
		cand := grid.Nearest(float64(c.Row)+p.Vel[2*i], float64(c.Col)+p.Vel[2*i+1])
		if g.Valid(cand) {
			pos[i] = cand
		} else {
			rejected++
		}
	}
	p.Point = rfid.NewPoint(pos, math.Inf(-1))
	return rejected
}

type Population []*Particle

// NewPopulation wraps points in particles with zero velocity.
func NewPopulation(points []rfid.Point) Population {
	pop := make(Population, len(points))
	for i, p := range points {
		pop[i] = &Particle{
			Id:    i,
			Point: p,
			Vel:   make([]float64, 2*p.Len()),
		}
	}
	return pop
}

func (pop Population) Points() []rfid.Point {
	points := make([]rfid.Point, 0, len(pop))
	for _, p := range pop {
		points = append(points, p.Point)
	}
	return points
}

// Best returns the particle with the highest current value.  Ties go to the
// lowest index.
func (pop Population) Best() *Particle {
	if len(pop) == 0 {
		return nil
	}
	best := pop[0]
	for _, p := range pop[1:] {
		if p.Val > best.Val {
			best = p
		}
	}
	return best
}

type Option func(*Iterator)

// Evaler sets how the population is evaluated each iteration.
func Evaler(e rfid.Evaler) Option {
	return func(it *Iterator) {
		if e != nil {
			it.Evaler = e
		}
	}
}

func LearnFactors(cognition, social float64) Option {
	return func(it *Iterator) {
		it.Cognition = cognition
		it.Social = social
	}
}

func FixedInertia(v float64) Option {
	return func(it *Iterator) {
		it.InertiaFn = func(iter int) float64 { return v }
	}
}

// LinInertia sets particle inertia for velocity updates to vary linearly
// from the start (high) to end (low) values from 0 to maxiter.  Common values
// are start = 0.9 and end = 0.4.
func LinInertia(start, end float64, maxiter int) Option {
	return func(it *Iterator) {
		it.InertiaFn = func(iter int) float64 {
			return start - (start-end)*float64(iter)/float64(maxiter)
		}
	}
}

// Vmax limits each velocity component to [-v, v].  Zero or negative means
// unlimited, which is the default.
func Vmax(v float64) Option {
	return func(it *Iterator) {
		if v <= 0 {
			v = math.Inf(1)
		}
		it.Vmax = v
	}
}

func Rule(r UpdateRule) Option {
	return func(it *Iterator) { it.Rule = r }
}

// Rand sets the source for r1 and r2.
func Rand(r *rand.Rand) Option {
	return func(it *Iterator) {
		if r != nil {
			it.rng = r
		}
	}
}

// DB enables the iteration trace.  Tables are created on the first
// iteration.
func DB(db *sql.DB) Option {
	return func(it *Iterator) { it.Db = db }
}

func Logger(l *slog.Logger) Option {
	return func(it *Iterator) {
		if l != nil {
			it.logger = l
		}
	}
}

func Metrics(c metrics.Collector) Option {
	return func(it *Iterator) {
		if c != nil {
			it.metrics = c
		}
	}
}

// Elite offers every evaluated point to a.
func Elite(a *pop.Archive) Option {
	return func(it *Iterator) { it.elite = a }
}

type Iterator struct {
	Pop Population
	rfid.Evaler
	Cognition float64
	Social    float64
	InertiaFn func(iter int) float64
	Vmax      float64
	Rule      UpdateRule
	Db        *sql.DB

	g        *grid.Grid
	rng      *rand.Rand
	logger   *slog.Logger
	metrics  metrics.Collector
	elite    *pop.Archive
	run      uuid.UUID
	dbready  bool
	count    int
	best     rfid.Point
	history  []float64
	rejected int
}

// NewIterator returns an iterator moving pop over g.  Without options it uses
// the SharedGlobal rule, default learning factors and inertia, serial
// evaluation and a fixed random seed.
func NewIterator(g *grid.Grid, pop Population, opts ...Option) *Iterator {
	it := &Iterator{
		Pop:       pop,
		Evaler:    rfid.SerialEvaler{},
		Cognition: DefaultCognition,
		Social:    DefaultSocial,
		InertiaFn: func(iter int) float64 { return DefaultInertia },
		Vmax:      math.Inf(1),
		Rule:      SharedGlobal,
		g:         g,
		rng:       rand.New(rand.NewSource(1)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   metrics.Nop{},
		run:       uuid.New(),
		best:      rfid.Point{Val: math.Inf(-1)},
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Iterate runs one swarm iteration: evaluate every particle, update the
// global best, record history and move the particles.  It returns the
// incumbent global best and the number of objective evaluations.
func (it *Iterator) Iterate(obj rfid.Objectiver) (best rfid.Point, neval int, err error) {
	start := time.Now()
	it.count++

	results, n, err := it.Evaler.Eval(obj, it.Pop.Points()...)
	if err != nil {
		return it.best, n, err
	}
	if len(results) != len(it.Pop) {
		return it.best, n, fmt.Errorf("swarm: evaler returned %d results for %d particles", len(results), len(it.Pop))
	}
	for i, r := range results {
		it.Pop[i].Update(r.Val)
	}
	if it.elite != nil {
		it.elite.Add(results...)
	}

	if pbest := it.Pop.Best(); pbest != nil && pbest.Val > it.best.Val {
		it.best = rfid.NewPoint(pbest.Pos(), pbest.Val)
	}
	it.history = append(it.history, it.best.Val)

	if err := it.updateDb(); err != nil {
		return it.best, n, err
	}

	rejected := it.move()
	it.rejected += rejected

	elapsed := time.Since(start)
	it.metrics.RecordIteration(it.best.Val, n, elapsed)
	it.metrics.RecordRejected(rejected)
	it.logger.Debug("iteration",
		"iter", it.count,
		"best", it.best.Val,
		"evals", n,
		"rejected", rejected,
		"elapsed", elapsed,
	)
	return it.best, n, nil
}

func (it *Iterator) move() (rejected int) {
	if it.best.Len() == 0 {
		return 0
	}
	w := it.InertiaFn(it.count)
	gbest := it.best.Pos().Floats()
	diff := make([]float64, len(gbest))

	var r1, r2 float64
	if it.Rule == SharedGlobal {
		// drawn once, before any particle moves
		r1, r2 = it.rng.Float64(), it.rng.Float64()
	}

	for _, p := range it.Pop {
		x := p.Pos().Floats()
		switch it.Rule {
		case SharedGlobal:
			floats.SubTo(diff, gbest, x)
			floats.Scale(w, p.Vel)
			floats.AddScaled(p.Vel, it.Cognition*r1, diff)
			floats.AddScaled(p.Vel, it.Social*r2, diff)
		case Canonical:
			pbest := p.Best.Pos().Floats()
			for i, v := range p.Vel {
				// r1 and r2 are drawn per dimension
				r1 := it.rng.Float64()
				r2 := it.rng.Float64()
				p.Vel[i] = w*v +
					it.Cognition*r1*(pbest[i]-x[i]) +
					it.Social*r2*(gbest[i]-x[i])
			}
		}
		for i, v := range p.Vel {
			if math.Abs(v) > it.Vmax {
				p.Vel[i] = math.Copysign(it.Vmax, v)
			}
		}
		rejected += p.Move(it.g)
	}
	return rejected
}

// Best returns the incumbent global best.  Its value is -Inf before the first
// iteration.
func (it *Iterator) Best() rfid.Point { return it.best }

// History returns the best fitness after each completed iteration.
func (it *Iterator) History() []float64 {
	out := make([]float64, len(it.history))
	copy(out, it.history)
	return out
}

// Rejected returns the total number of antenna moves reverted by repair.
func (it *Iterator) Rejected() int { return it.rejected }

// Count returns the number of completed iterations.
func (it *Iterator) Count() int { return it.count }

// RunID identifies this iterator's rows in the trace tables.
func (it *Iterator) RunID() uuid.UUID { return it.run }
