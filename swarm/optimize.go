package swarm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/coverage"
	"github.com/Ksonar262/RFID/grid"
	"github.com/Ksonar262/RFID/pop"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Settings are the run parameters of Optimize.
type Settings struct {
	NumAnts      int
	NumParticles int
	NumIters     int

	Inertia   float64
	Cognition float64
	Social    float64
	Rule      UpdateRule
	// Vmax limits velocity components; zero means unlimited.
	Vmax float64

	SignalRange        float64
	RepulsionWeight    float64
	CriticalZoneWeight float64

	// Seed for initial sampling and velocity updates.  Zero picks a time
	// based seed.
	Seed int64
	// Workers > 1 evaluates particles concurrently.
	Workers int
	// Cache memoizes objective values by placement.
	Cache bool
}

func DefaultSettings() Settings {
	return Settings{
		NumAnts:            7,
		NumParticles:       80,
		NumIters:           100,
		Inertia:            DefaultInertia,
		Cognition:          DefaultCognition,
		Social:             DefaultSocial,
		Rule:               SharedGlobal,
		SignalRange:        coverage.DefaultSignalRange,
		RepulsionWeight:    coverage.DefaultRepulsionWeight,
		CriticalZoneWeight: coverage.DefaultCriticalZoneWeight,
		Workers:            1,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.NumAnts <= 0:
		return fmt.Errorf("swarm: num ants %d must be positive: %w", s.NumAnts, rfid.ErrConfig)
	case s.NumParticles <= 0:
		return fmt.Errorf("swarm: num particles %d must be positive: %w", s.NumParticles, rfid.ErrConfig)
	case s.NumIters <= 0:
		return fmt.Errorf("swarm: num iters %d must be positive: %w", s.NumIters, rfid.ErrConfig)
	case s.Rule != SharedGlobal && s.Rule != Canonical:
		return fmt.Errorf("swarm: unknown %v: %w", s.Rule, rfid.ErrConfig)
	}
	return nil
}

// Result is the outcome of a full run.
type Result struct {
	Best    rfid.Placement
	Fitness float64
	// History has one entry per iteration and never decreases.
	History []float64

	Coverage      *mat.Dense
	CoverageScore float64
	Repulsion     float64
	Overlap       [][]int

	Evaluations int
	Rejected    int
	// Elite lists the best distinct placements seen, best first.  Empty
	// unless an Elite option was given.
	Elite []rfid.Point
	Run   uuid.UUID
}

// Optimize places s.NumAnts antennas on g.  It samples s.NumParticles random
// placements, runs exactly s.NumIters iterations and scores the best
// placement found once more for its coverage and overlap maps.  opts are
// applied after the ones derived from s.
func Optimize(g *grid.Grid, s Settings, opts ...Option) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if g == nil || g.NumFree() == 0 {
		return nil, fmt.Errorf("swarm: grid has no free cells: %w", rfid.ErrConfig)
	}

	ev, err := coverage.New(g,
		coverage.SignalRange(s.SignalRange),
		coverage.RepulsionWeight(s.RepulsionWeight),
		coverage.CriticalZoneWeight(s.CriticalZoneWeight),
	)
	if err != nil {
		return nil, err
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	points, err := pop.New(s.NumParticles, s.NumAnts, g.ValidPositions(), rng)
	if err != nil {
		return nil, err
	}

	var evaler rfid.Evaler = rfid.SerialEvaler{}
	if s.Workers > 1 {
		evaler = rfid.ParallelEvaler{Workers: s.Workers}
	}

	base := []Option{
		Evaler(evaler),
		FixedInertia(s.Inertia),
		LearnFactors(s.Cognition, s.Social),
		Rule(s.Rule),
		Vmax(s.Vmax),
		Rand(rng),
	}
	it := NewIterator(g, NewPopulation(points), append(base, opts...)...)

	if s.Cache {
		ce := rfid.NewCacheEvaler(it.Evaler)
		ce.OnLookup = it.metrics.RecordCacheLookup
		it.Evaler = ce
	}

	var obj rfid.Objectiver = ev
	if it.logger.Enabled(context.Background(), slog.LevelDebug) {
		obj = rfid.NewObjectiveLogger(ev, it.logger)
	}

	it.logger.Info("optimize start",
		"run", it.run,
		"ants", s.NumAnts,
		"particles", s.NumParticles,
		"iters", s.NumIters,
		"rule", s.Rule,
		"seed", seed,
		"free_cells", g.NumFree(),
	)

	neval := 0
	for i := 0; i < s.NumIters; i++ {
		_, n, err := it.Iterate(obj)
		neval += n
		if err != nil {
			return nil, fmt.Errorf("swarm: iteration %d: %w", i+1, err)
		}
	}

	best := it.Best()
	detail, err := ev.Detail(best.Pos(), s.RepulsionWeight, s.CriticalZoneWeight)
	if err != nil {
		return nil, err
	}
	overlap, err := ev.Overlap(best.Pos())
	if err != nil {
		return nil, err
	}

	r := &Result{
		Best:          best.Pos(),
		Fitness:       best.Val,
		History:       it.History(),
		Coverage:      detail.Map,
		CoverageScore: detail.Coverage,
		Repulsion:     detail.Repulsion,
		Overlap:       overlap,
		Evaluations:   neval,
		Rejected:      it.Rejected(),
		Run:           it.run,
	}
	if it.elite != nil {
		r.Elite = it.elite.Best()
	}

	it.logger.Info("optimize done",
		"run", it.run,
		"fitness", r.Fitness,
		"coverage", r.CoverageScore,
		"repulsion", r.Repulsion,
		"evals", r.Evaluations,
		"rejected", r.Rejected,
		"best", r.Best,
	)
	return r, nil
}
