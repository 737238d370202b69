package grid

import "github.com/Ksonar262/RFID"

// buildCritical marks interior free cells that sit in a one-cell-wide
// corridor: walled in on one axis and open on the perpendicular axis.
// Border rows and columns are never critical.
func (g *Grid) buildCritical() {
	g.critical = make([]bool, g.rows*g.cols)
	g.ncritical = 0
	wall := func(r, c int) bool { return g.cells[r*g.cols+c] == Obstacle }
	for r := 1; r < g.rows-1; r++ {
		for c := 1; c < g.cols-1; c++ {
			if wall(r, c) {
				continue
			}
			vertical := wall(r-1, c) && wall(r+1, c) && !wall(r, c-1) && !wall(r, c+1)
			horizontal := wall(r, c-1) && wall(r, c+1) && !wall(r-1, c) && !wall(r+1, c)
			if vertical || horizontal {
				g.critical[r*g.cols+c] = true
				g.ncritical++
			}
		}
	}
}

// Critical reports whether c is in the critical zone map.
func (g *Grid) Critical(c rfid.Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	return g.critical[c.Row*g.cols+c.Col]
}

// CriticalCells returns the critical cells in row-major order.
func (g *Grid) CriticalCells() []rfid.Cell {
	out := make([]rfid.Cell, 0, g.ncritical)
	for i, ok := range g.critical {
		if ok {
			out = append(out, rfid.Cell{Row: i / g.cols, Col: i % g.cols})
		}
	}
	return out
}
