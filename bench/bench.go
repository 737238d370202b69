// Package bench provides reference floor plans and tools for measuring the
// swarm optimizer on them.
package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ksonar262/RFID/grid"
	"github.com/Ksonar262/RFID/swarm"
	"gonum.org/v1/gonum/stat"
)

var AllLayouts = []Layout{
	Warehouse{},
	OpenHall{NRows: 8, NCols: 12},
	OpenHall{NRows: 20, NCols: 30},
	Corridor{Length: 30},
	CrossRooms{},
}

type Layout interface {
	Name() string
	// Rows returns the floor plan, one string per row, in grid.Parse
	// notation.
	Rows() []string
}

// Grid parses l.
func Grid(l Layout) (*grid.Grid, error) {
	g, err := grid.Parse(l.Rows())
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", l.Name(), err)
	}
	return g, nil
}

// Warehouse is the 6x10 reference floor plan with a small block of shelving
// that forms one-cell corridors.
type Warehouse struct{}

func (Warehouse) Name() string { return "Warehouse" }

func (Warehouse) Rows() []string {
	return []string{
		"##########",
		"#...#....#",
		"#.#.#.##.#",
		"#........#",
		"#...#....#",
		"##########",
	}
}

// OpenHall is an empty room with walls on the border only.
type OpenHall struct {
	NRows, NCols int
}

func (l OpenHall) Name() string { return fmt.Sprintf("OpenHall_%vx%v", l.NRows, l.NCols) }

func (l OpenHall) Rows() []string {
	rows := make([]string, l.NRows)
	for r := range rows {
		if r == 0 || r == l.NRows-1 {
			rows[r] = strings.Repeat("#", l.NCols)
		} else {
			rows[r] = "#" + strings.Repeat(".", l.NCols-2) + "#"
		}
	}
	return rows
}

// Corridor is a single one-cell-wide hallway.  Every free cell except the
// two ends is in the critical zone.
type Corridor struct {
	Length int
}

func (l Corridor) Name() string { return fmt.Sprintf("Corridor_%v", l.Length) }

func (l Corridor) Rows() []string {
	wall := strings.Repeat("#", l.Length+2)
	return []string{wall, "#" + strings.Repeat(".", l.Length) + "#", wall}
}

// CrossRooms is four rooms joined by doorways around a central wall cross.
type CrossRooms struct{}

func (CrossRooms) Name() string { return "CrossRooms" }

func (CrossRooms) Rows() []string {
	return []string{
		"###############",
		"#......#......#",
		"#......#......#",
		"#.............#",
		"#......#......#",
		"#......#......#",
		"###.#######.###",
		"#......#......#",
		"#......#......#",
		"#.............#",
		"#......#......#",
		"#......#......#",
		"###############",
	}
}

// Benchmark runs one full optimization of l.
func Benchmark(l Layout, s swarm.Settings, opts ...swarm.Option) (*swarm.Result, error) {
	g, err := Grid(l)
	if err != nil {
		return nil, err
	}
	return swarm.Optimize(g, s, opts...)
}

// Stats summarizes repeated runs on one layout.
type Stats struct {
	Layout      string
	// Seed is the seed of the first run; run i used Seed+i.
	Seed        int64
	Runs        int
	Mean, Std   float64
	Best        float64
	Evaluations int
}

// Repeat runs Benchmark nrun times with seeds s.Seed, s.Seed+1, ... and
// summarizes the final fitness.  A zero s.Seed is replaced by a time based
// seed, reported in Stats.Seed so the runs can be reproduced.
func Repeat(l Layout, s swarm.Settings, nrun int, opts ...swarm.Option) (Stats, error) {
	base := s.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	st := Stats{Layout: l.Name(), Seed: base, Runs: nrun}
	vals := make([]float64, 0, nrun)
	for i := 0; i < nrun; i++ {
		s.Seed = base + int64(i)
		res, err := Benchmark(l, s, opts...)
		if err != nil {
			return st, fmt.Errorf("run %d: %w", i, err)
		}
		vals = append(vals, res.Fitness)
		st.Evaluations += res.Evaluations
		if i == 0 || res.Fitness > st.Best {
			st.Best = res.Fitness
		}
	}
	if len(vals) > 1 {
		st.Mean, st.Std = stat.MeanStdDev(vals, nil)
	} else if len(vals) == 1 {
		st.Mean = vals[0]
	}
	return st, nil
}
