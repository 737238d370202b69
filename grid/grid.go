// Package grid models an immutable floor plan of free and obstacle cells.
package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ksonar262/RFID"
)

type State uint8

const (
	Free     State = 0
	Obstacle State = 1
)

// Grid is a rectangular floor plan.  It is immutable after construction and
// safe for concurrent use.
type Grid struct {
	rows, cols int
	cells      []State // row-major
	valid      []rfid.Cell
	critical   []bool // row-major
	ncritical  int
}

// New builds a grid from a row-major matrix of 0 (free) and 1 (obstacle)
// values.  A grid with no free cells is accepted here; consumers that need
// to sample positions reject it.
func New(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid: empty layout: %w", rfid.ErrConfig)
	}

	g := &Grid{rows: len(rows), cols: len(rows[0])}
	g.cells = make([]State, g.rows*g.cols)
	for r, row := range rows {
		if len(row) != g.cols {
			return nil, fmt.Errorf("grid: row %d has %d columns, want %d: %w", r, len(row), g.cols, rfid.ErrConfig)
		}
		for c, v := range row {
			switch v {
			case 0:
				g.cells[r*g.cols+c] = Free
				g.valid = append(g.valid, rfid.Cell{Row: r, Col: c})
			case 1:
				g.cells[r*g.cols+c] = Obstacle
			default:
				return nil, fmt.Errorf("grid: cell (%d,%d) has value %d, want 0 or 1: %w", r, c, v, rfid.ErrConfig)
			}
		}
	}
	g.buildCritical()
	return g, nil
}

// Parse builds a grid from one string per row.  '1' and '#' mark obstacles,
// '0' and '.' mark free cells.  Surrounding whitespace is ignored.
func Parse(lines []string) (*Grid, error) {
	rows := make([][]int, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		row := make([]int, 0, len(line))
		for _, ch := range line {
			switch ch {
			case '0', '.':
				row = append(row, 0)
			case '1', '#':
				row = append(row, 1)
			default:
				return nil, fmt.Errorf("grid: line %d: unexpected character %q: %w", i, ch, rfid.ErrConfig)
			}
		}
		rows = append(rows, row)
	}
	return New(rows)
}

// MustParse is like Parse but panics on error.  It is intended for fixed
// layouts in tests and benchmarks.
func MustParse(lines ...string) *Grid {
	g, err := Parse(lines)
	if err != nil {
		panic(err.Error())
	}
	return g
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) { return g.rows, g.cols }

func (g *Grid) InBounds(c rfid.Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// At returns the state of cell c.  Out-of-bounds cells report Obstacle.
func (g *Grid) At(c rfid.Cell) State {
	if !g.InBounds(c) {
		return Obstacle
	}
	return g.cells[c.Row*g.cols+c.Col]
}

// Valid reports whether c is an in-bounds free cell, i.e. a legal antenna
// position.
func (g *Grid) Valid(c rfid.Cell) bool {
	return g.InBounds(c) && g.cells[c.Row*g.cols+c.Col] == Free
}

// ValidPositions returns the free cells in row-major order.
func (g *Grid) ValidPositions() []rfid.Cell {
	out := make([]rfid.Cell, len(g.valid))
	copy(out, g.valid)
	return out
}

func (g *Grid) NumFree() int { return len(g.valid) }

// Rows returns the layout as a fresh 0/1 matrix.
func (g *Grid) Rows() [][]int {
	out := make([][]int, g.rows)
	for r := range out {
		out[r] = make([]int, g.cols)
		for c := range out[r] {
			out[r][c] = int(g.cells[r*g.cols+c])
		}
	}
	return out
}

// Nearest returns the cell nearest to the continuous position (row, col).
// Halves round to even.  The result may be out of bounds or an obstacle.
func Nearest(row, col float64) rfid.Cell {
	return rfid.Cell{Row: int(math.RoundToEven(row)), Col: int(math.RoundToEven(col))}
}

func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r*g.cols+c] == Obstacle {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
