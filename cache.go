package rfid

import (
	"encoding/binary"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
)

// Key identifies a placement by the 128-bit hash of its ordered coordinates.
type Key = xxh3.Uint128

// HashPlacement returns the cache key for p.  Order matters: permuting the
// antennas yields a different key.
func HashPlacement(p Placement) Key {
	data := make([]byte, len(p)*16)
	for i, c := range p {
		binary.BigEndian.PutUint64(data[i*16:], uint64(int64(c.Row)))
		binary.BigEndian.PutUint64(data[i*16+8:], uint64(int64(c.Col)))
	}
	return xxh3.Hash128(data)
}

// CacheEvaler memoizes objective values by placement.  It is only correct
// for deterministic objectives.  OnLookup, if set, is called once per point
// with whether the value came from the cache.
type CacheEvaler struct {
	ev       Evaler
	cache    *xsync.Map[Key, float64]
	OnLookup func(hit bool)
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	if ev == nil {
		ev = SerialEvaler{}
	}
	return &CacheEvaler{
		ev:    ev,
		cache: xsync.NewMap[Key, float64](),
	}
}

// Len returns the number of cached placements.
func (ev *CacheEvaler) Len() int { return ev.cache.Size() }

// Eval fills in cached values and forwards the remaining points to the
// wrapped evaler.  n only counts evaluations performed by the wrapped
// evaler.  On error no results are returned.
func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, len(points))
	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	for i, p := range points {
		val, ok := ev.cache.Load(HashPlacement(p.pos))
		if ok {
			p.Val = val
			results[i] = p
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
		if ev.OnLookup != nil {
			ev.OnLookup(ok)
		}
	}
	if len(newp) == 0 {
		return results, 0, nil
	}

	newresults, n, err := ev.ev.Eval(obj, newp...)
	if err != nil {
		return nil, n, err
	}
	for i, p := range newresults {
		ev.cache.Store(HashPlacement(p.pos), p.Val)
		results[fromnew[i]] = p
	}
	return results, n, nil
}
