package pop

import (
	"github.com/Ksonar262/RFID"
	"github.com/petar/GoLLRB/llrb"
)

type item struct {
	rfid.Point
	key rfid.Key
}

// Less orders by value, breaking ties on the placement hash so distinct
// placements with equal fitness can coexist in the tree.
func (p1 item) Less(than llrb.Item) bool {
	p2 := than.(item)
	if p1.Val != p2.Val {
		return p1.Val < p2.Val
	}
	if p1.key.Hi != p2.key.Hi {
		return p1.key.Hi < p2.key.Hi
	}
	return p1.key.Lo < p2.key.Lo
}

// Archive keeps the best distinct placements seen, up to a fixed capacity.
// It is not safe for concurrent use.
type Archive struct {
	cap  int
	tree *llrb.LLRB
	seen map[rfid.Key]struct{}
}

func NewArchive(capacity int) *Archive {
	if capacity < 0 {
		capacity = 0
	}
	return &Archive{cap: capacity, tree: llrb.New(), seen: map[rfid.Key]struct{}{}}
}

// Add offers points to the archive and reports how many were kept.  Points
// whose placement is already archived are ignored; when the archive is full
// the worst entry is evicted.
func (a *Archive) Add(points ...rfid.Point) int {
	kept := 0
	for _, p := range points {
		if a.cap == 0 {
			break
		}
		k := rfid.HashPlacement(p.Pos())
		if _, ok := a.seen[k]; ok {
			continue
		}
		it := item{Point: p, key: k}
		if a.tree.Len() == a.cap {
			if !a.tree.Min().Less(it) {
				continue
			}
			worst := a.tree.DeleteMin().(item)
			delete(a.seen, worst.key)
		}
		a.tree.InsertNoReplace(it)
		a.seen[k] = struct{}{}
		kept++
	}
	return kept
}

func (a *Archive) Len() int { return a.tree.Len() }

// Best returns the archived points, best first.
func (a *Archive) Best() []rfid.Point {
	out := make([]rfid.Point, 0, a.tree.Len())
	if a.tree.Len() == 0 {
		return out
	}
	a.tree.DescendLessOrEqual(a.tree.Max(), func(i llrb.Item) bool {
		out = append(out, i.(item).Point)
		return true
	})
	return out
}
