package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Ksonar262/RFID/swarm"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

func axisLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func heatChart(title, subtitle string, g heatGrid) *charts.HeatMap {
	data := make([]opts.HeatMapData, 0, g.rows*g.cols)
	hi := 0.0
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			v := g.at(r, c)
			if v > hi {
				hi = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, v}})
		}
	}
	if hi == 0 {
		hi = 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "col", Data: axisLabels(g.cols)}),
		// row 0 at the top, as on the floor plan
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "row", Data: axisLabels(g.rows), Inverse: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.SetXAxis(axisLabels(g.cols))
	hm.AddSeries(title, data)
	return hm
}

func fitnessChart(history []float64) *charts.Line {
	data := make([]opts.LineData, len(history))
	x := make([]string, len(history))
	for i, v := range history {
		data[i] = opts.LineData{Value: v}
		x[i] = strconv.Itoa(i + 1)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Best fitness"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fitness", Scale: opts.Bool(true)}),
	)
	line.SetXAxis(x)
	line.AddSeries("best", data)
	return line
}

// HTML renders a single page with the coverage and overlap heatmaps and the
// fitness curve of res.
func HTML(w io.Writer, res *swarm.Result) error {
	sub := fmt.Sprintf("fitness=%.6g coverage=%.6g repulsion=%.6g antennas=%v",
		res.Fitness, res.CoverageScore, res.Repulsion, res.Best)

	page := components.NewPage()
	page.SetPageTitle("Antenna placement")
	page.AddCharts(
		heatChart("Signal coverage", sub, denseGrid(res.Coverage)),
		heatChart("Antenna overlap", sub, intGrid(res.Overlap)),
		fitnessChart(res.History),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}
