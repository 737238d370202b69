package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/config"
	"github.com/Ksonar262/RFID/grid"
	"github.com/Ksonar262/RFID/pop"
	"github.com/Ksonar262/RFID/swarm"
	"github.com/gocarina/gocsv"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func result(t *testing.T) *swarm.Result {
	t.Helper()
	g := grid.MustParse(
		"##########",
		"#...#....#",
		"#.#.#.##.#",
		"#........#",
		"#...#....#",
		"##########",
	)
	s := swarm.DefaultSettings()
	s.NumAnts, s.NumParticles, s.NumIters, s.Seed = 3, 6, 5, 12
	res, err := swarm.Optimize(g, s, swarm.Elite(pop.NewArchive(4)))
	require.NoError(t, err)
	return res
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, []float64{0.5, 0.75, 0.75}))
	assert.True(t, strings.HasPrefix(buf.String(), "iteration,best_fitness\n1,0.5\n"))

	var got []historyRecord
	require.NoError(t, gocsv.Unmarshal(&buf, &got))
	want := []historyRecord{{1, 0.5}, {2, 0.75}, {3, 0.75}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePlacementCSV(t *testing.T) {
	var buf bytes.Buffer
	p := rfid.Placement{{Row: 1, Col: 1}, {Row: 4, Col: 8}}
	require.NoError(t, WritePlacementCSV(&buf, p))
	assert.Equal(t, "antenna,row,col\n0,1,1\n1,4,8\n", buf.String())
}

func TestWriteEliteCSV(t *testing.T) {
	var buf bytes.Buffer
	points := []rfid.Point{
		rfid.NewPoint(rfid.Placement{{Row: 1, Col: 1}}, 2),
		rfid.NewPoint(rfid.Placement{{Row: 3, Col: 3}}, 1),
	}
	require.NoError(t, WriteEliteCSV(&buf, points))
	// placements contain commas and are quoted
	assert.Equal(t, "rank,fitness,placement\n1,2,\"[(1,1)]\"\n2,1,\"[(3,3)]\"\n", buf.String())
}

func TestPNG(t *testing.T) {
	dir := t.TempDir()
	m := mat.NewDense(3, 4, []float64{
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 0, 0, 0,
	})
	p := rfid.Placement{{Row: 1, Col: 2}}

	for name, fn := range map[string]func(string) error{
		"coverage.png": func(path string) error { return CoveragePNG(path, m, p) },
		"overlap.png":  func(path string) error { return OverlapPNG(path, [][]int{{0, 1}, {1, 1}}, p) },
		"flat.png":     func(path string) error { return OverlapPNG(path, [][]int{{0, 0}}, nil) },
		"fitness.png":  func(path string) error { return FitnessPNG(path, []float64{0.1, 0.3, 0.3}) },
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, fn(path))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, pngMagic))
		})
	}

	assert.Error(t, OverlapPNG(filepath.Join(dir, "empty.png"), nil, nil))
}

func TestHeatGridFlipsRows(t *testing.T) {
	g := denseGrid(mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	}))
	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 4.0, g.Z(0, 0), "plot row 0 is the bottom grid row")
	assert.Equal(t, 3.0, g.Z(2, 1))
}

func TestHTML(t *testing.T) {
	res := result(t)
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "Signal coverage")
	assert.Contains(t, out, "Antenna overlap")
	assert.Contains(t, out, "Best fitness")
}

func TestWriter(t *testing.T) {
	res := result(t)
	dir := filepath.Join(t.TempDir(), "run")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	require.NoError(t, w.WriteConfig(config.Default()))
	written, err := w.WriteResult(res, Formats{CSV: true, PNG: true, HTML: true})
	require.NoError(t, err)

	want := []string{"history.csv", "placement.csv", "elite.csv", "coverage.png", "overlap.png", "fitness.png", "report.html"}
	require.Len(t, written, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), written[i])
		info, err := os.Stat(written[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)

	written, err = w.WriteResult(res, Formats{})
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestNilWriter(t *testing.T) {
	w, err := NewWriter("")
	require.NoError(t, err)
	assert.Nil(t, w)

	assert.Equal(t, "", w.Dir())
	assert.NoError(t, w.WriteConfig(config.Default()))
	written, err := w.WriteResult(&swarm.Result{}, Formats{CSV: true})
	assert.NoError(t, err)
	assert.Empty(t, written)
}
