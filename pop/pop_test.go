package pop

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Ksonar262/RFID"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valid = []rfid.Cell{{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 3, Col: 4}}

func TestNew(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points, err := New(50, 4, valid, rng)
	require.NoError(t, err)
	require.Len(t, points, 50)

	seen := map[rfid.Cell]int{}
	for _, p := range points {
		require.Equal(t, 4, p.Len())
		assert.True(t, math.IsInf(p.Val, -1))
		for i := 0; i < p.Len(); i++ {
			assert.Contains(t, valid, p.At(i))
			seen[p.At(i)]++
		}
	}
	// 200 draws from 3 cells: every cell shows up.
	assert.Len(t, seen, len(valid))
}

func TestNewDeterministic(t *testing.T) {
	a, err := New(5, 3, valid, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := New(5, 3, valid, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	for i := range a {
		if diff := cmp.Diff(a[i].Pos(), b[i].Pos()); diff != "" {
			t.Errorf("point %d differs (-a +b):\n%s", i, diff)
		}
	}
}

func TestNewRejects(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for name, fn := range map[string]func() error{
		"zero particles": func() error { _, err := New(0, 1, valid, rng); return err },
		"zero antennas":  func() error { _, err := New(1, 0, valid, rng); return err },
		"no positions":   func() error { _, err := New(1, 1, nil, rng); return err },
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(fn(), rfid.ErrConfig))
		})
	}
}

func pt(val float64, rc ...int) rfid.Point {
	p := rfid.Placement{}
	for i := 0; i+1 < len(rc); i += 2 {
		p = append(p, rfid.Cell{Row: rc[i], Col: rc[i+1]})
	}
	return rfid.NewPoint(p, val)
}

func TestArchive(t *testing.T) {
	a := NewArchive(3)
	kept := a.Add(
		pt(1, 1, 1),
		pt(5, 1, 2),
		pt(5, 1, 2), // duplicate placement
		pt(3, 3, 4),
	)
	assert.Equal(t, 3, kept)
	assert.Equal(t, 3, a.Len())

	// worse than everything archived
	assert.Zero(t, a.Add(pt(0, 2, 2)))

	// evicts the (1,1) entry
	assert.Equal(t, 1, a.Add(pt(4, 2, 2), pt(4, 2, 2)))

	var vals []float64
	var first rfid.Placement
	for i, p := range a.Best() {
		vals = append(vals, p.Val)
		if i == 0 {
			first = p.Pos()
		}
	}
	assert.Equal(t, []float64{5, 4, 3}, vals)
	assert.Equal(t, rfid.Placement{{Row: 1, Col: 2}}, first)

	// the evicted placement may come back once it beats the minimum
	assert.Equal(t, 1, a.Add(pt(10, 1, 1)))
	assert.Equal(t, 10.0, a.Best()[0].Val)
}

func TestArchiveEqualValues(t *testing.T) {
	a := NewArchive(10)
	a.Add(pt(2, 1, 1), pt(2, 1, 2), pt(2, 3, 4))
	assert.Equal(t, 3, a.Len(), "distinct placements with equal values are all kept")
}

func TestArchiveEmpty(t *testing.T) {
	a := NewArchive(0)
	assert.Zero(t, a.Add(pt(1, 1, 1)))
	assert.Empty(t, a.Best())
}
