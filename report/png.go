package report

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/Ksonar262/RFID"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// heatGrid adapts a row-major matrix to plotter.GridXYZ.  Plot rows are
// flipped so grid row 0 is drawn at the top.
type heatGrid struct {
	rows, cols int
	at         func(row, col int) float64
}

func (g heatGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g heatGrid) Z(c, r int) float64 { return g.at(g.rows-1-r, c) }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }

func denseGrid(m *mat.Dense) heatGrid {
	rows, cols := m.Dims()
	return heatGrid{rows: rows, cols: cols, at: m.At}
}

func intGrid(m [][]int) heatGrid {
	g := heatGrid{rows: len(m), at: func(r, c int) float64 { return float64(m[r][c]) }}
	if len(m) > 0 {
		g.cols = len(m[0])
	}
	return g
}

// rowTicks labels the flipped y axis with grid row numbers.
func rowTicks(rows int) plot.Ticker {
	step := 1
	if rows > 20 {
		step = rows / 10
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		var ticks []plot.Tick
		for r := 0; r < rows; r += step {
			ticks = append(ticks, plot.Tick{Value: float64(rows - 1 - r), Label: strconv.Itoa(r)})
		}
		return ticks
	})
}

func heatPlot(title string, g heatGrid, p rfid.Placement) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "col"
	pl.Y.Label.Text = "row"
	pl.Y.Tick.Marker = rowTicks(g.rows)

	hm := plotter.NewHeatMap(g, moreland.Kindlmann().Palette(255))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	pl.Add(hm)

	if len(p) > 0 {
		pts := make(plotter.XYs, len(p))
		for i, c := range p {
			pts[i] = plotter.XY{X: float64(c.Col), Y: float64(g.rows - 1 - c.Row)}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("antenna markers: %w", err)
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  color.RGBA{R: 255, G: 64, B: 64, A: 255},
			Radius: vg.Points(5),
			Shape:  draw.CrossGlyph{},
		}
		pl.Add(sc)
		pl.Legend.Add("antenna", sc)
	}
	return pl, nil
}

func savePlot(pl *plot.Plot, cols, rows int, path string) error {
	w := vg.Length(cols) * vg.Inch / 2
	h := vg.Length(rows) * vg.Inch / 2
	if w < 4*vg.Inch {
		w = 4 * vg.Inch
	}
	if h < 3*vg.Inch {
		h = 3 * vg.Inch
	}
	if err := pl.Save(w, h, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// CoveragePNG draws the coverage map with antenna markers.
func CoveragePNG(path string, m *mat.Dense, p rfid.Placement) error {
	g := denseGrid(m)
	pl, err := heatPlot("Signal coverage", g, p)
	if err != nil {
		return err
	}
	return savePlot(pl, g.cols, g.rows, path)
}

// OverlapPNG draws how many antennas reach each free cell.
func OverlapPNG(path string, overlap [][]int, p rfid.Placement) error {
	g := intGrid(overlap)
	if g.rows == 0 || g.cols == 0 {
		return fmt.Errorf("overlap map is empty")
	}
	pl, err := heatPlot("Antenna overlap", g, p)
	if err != nil {
		return err
	}
	return savePlot(pl, g.cols, g.rows, path)
}

// FitnessPNG draws best fitness against iteration.
func FitnessPNG(path string, history []float64) error {
	pl := plot.New()
	pl.Title.Text = "Best fitness"
	pl.X.Label.Text = "iteration"
	pl.Y.Label.Text = "fitness"
	pl.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("fitness line: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pl.Add(line)

	if err := pl.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
