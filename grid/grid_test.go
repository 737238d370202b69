package grid

import (
	"errors"
	"testing"

	"github.com/Ksonar262/RFID"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var warehouse = [][]int{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	{1, 0, 1, 0, 1, 0, 1, 1, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
}

func TestNew(t *testing.T) {
	g, err := New(warehouse)
	require.NoError(t, err)

	rows, cols := g.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 10, cols)
	assert.Equal(t, 26, g.NumFree())
	assert.Equal(t, warehouse, g.Rows())

	valid := g.ValidPositions()
	require.Len(t, valid, 26)
	assert.Equal(t, rfid.Cell{Row: 1, Col: 1}, valid[0])
	assert.Equal(t, rfid.Cell{Row: 4, Col: 8}, valid[len(valid)-1])
	for _, c := range valid {
		assert.True(t, g.Valid(c), "valid position %v not in valid set", c)
	}
}

func TestNewRejects(t *testing.T) {
	cases := map[string][][]int{
		"empty":     {},
		"empty row": {{}},
		"ragged":    {{0, 0}, {0}},
		"bad value": {{0, 2}},
		"negative":  {{-1, 0}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rfid.ErrConfig))
		})
	}
}

func TestValid(t *testing.T) {
	g, err := New(warehouse)
	require.NoError(t, err)

	assert.True(t, g.Valid(rfid.Cell{Row: 1, Col: 1}))
	assert.False(t, g.Valid(rfid.Cell{Row: 0, Col: 0}), "border wall")
	assert.False(t, g.Valid(rfid.Cell{Row: 2, Col: 2}), "interior wall")
	assert.False(t, g.Valid(rfid.Cell{Row: -1, Col: 3}))
	assert.False(t, g.Valid(rfid.Cell{Row: 3, Col: 10}))
	assert.Equal(t, Obstacle, g.At(rfid.Cell{Row: 99, Col: 99}))
	assert.Equal(t, Free, g.At(rfid.Cell{Row: 3, Col: 3}))
}

func TestCriticalCells(t *testing.T) {
	g, err := New(warehouse)
	require.NoError(t, err)

	want := []rfid.Cell{
		{Row: 1, Col: 2}, {Row: 1, Col: 6}, {Row: 1, Col: 7},
		{Row: 2, Col: 1}, {Row: 2, Col: 3}, {Row: 2, Col: 5}, {Row: 2, Col: 8},
		{Row: 3, Col: 4},
	}
	if diff := cmp.Diff(want, g.CriticalCells()); diff != "" {
		t.Errorf("critical cells mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, g.Critical(rfid.Cell{Row: 3, Col: 4}))
	assert.False(t, g.Critical(rfid.Cell{Row: 3, Col: 3}))
	assert.False(t, g.Critical(rfid.Cell{Row: -1, Col: 0}))
}

func TestCriticalIgnoresBorder(t *testing.T) {
	// every free cell is walled left and right, but only the interior one
	// counts
	g := MustParse(
		"#.#",
		"#.#",
		"#.#",
	)
	assert.Equal(t, []rfid.Cell{{Row: 1, Col: 1}}, g.CriticalCells())
	assert.False(t, g.Critical(rfid.Cell{Row: 0, Col: 1}))
	assert.False(t, g.Critical(rfid.Cell{Row: 2, Col: 1}))
}

func TestParse(t *testing.T) {
	_, err := Parse([]string{
		" ##### ",
		"#..0.#",
		"######",
	})
	require.Error(t, err, "ragged rows after trimming")

	g, err := Parse([]string{
		"#####",
		"#..0#",
		"11111",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumFree())
	assert.Equal(t, "#####\n#...#\n#####\n", g.String())

	_, err = Parse([]string{"#x#"})
	assert.True(t, errors.Is(err, rfid.ErrConfig))
}

func TestNearest(t *testing.T) {
	cases := []struct {
		row, col float64
		want     rfid.Cell
	}{
		{1.2, 3.7, rfid.Cell{Row: 1, Col: 4}},
		{0.5, 1.5, rfid.Cell{Row: 0, Col: 2}},
		{2.5, -0.5, rfid.Cell{Row: 2, Col: 0}},
		{-1.6, 4.49, rfid.Cell{Row: -2, Col: 4}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Nearest(tc.row, tc.col), "Nearest(%v, %v)", tc.row, tc.col)
	}
}

func TestNoFreeCells(t *testing.T) {
	g, err := New([][]int{{1, 1}, {1, 1}})
	require.NoError(t, err)
	assert.Zero(t, g.NumFree())
	assert.Empty(t, g.ValidPositions())
}
