// Package pop builds initial swarm populations and keeps an archive of the
// best distinct placements seen during a search.
package pop

import (
	"fmt"
	"math"

	"github.com/Ksonar262/RFID"
)

// Rng is the subset of *math/rand.Rand used for sampling.
type Rng interface {
	Intn(n int) int
}

// New draws n placements of k antennas each.  Every antenna is sampled
// uniformly, with replacement, from valid.  Point values start at -Inf.
func New(n, k int, valid []rfid.Cell, rng Rng) ([]rfid.Point, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("pop: need positive population size and antenna count, got n=%d k=%d: %w", n, k, rfid.ErrConfig)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("pop: no valid positions to sample from: %w", rfid.ErrConfig)
	}

	points := make([]rfid.Point, n)
	for i := range points {
		pos := make(rfid.Placement, k)
		for j := range pos {
			pos[j] = valid[rng.Intn(len(valid))]
		}
		points[i] = rfid.NewPoint(pos, math.Inf(-1))
	}
	return points, nil
}
