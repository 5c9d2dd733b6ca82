package regions

import (
	"cmp"
	"slices"

	"github.com/hupe1980/symgraph/internal/rangesearch"
)

type span struct {
	start, end int
	slot, aux  int
}

// positionIndex orders spans by start, enclosing spans first, with parallel
// start/end arrays and a permutation back to storage slots.
type positionIndex struct {
	starts        []int
	ends          []int
	slots         []int
	aux           []int
	firstUnsorted int
}

func newPositionIndex(spans []span) *positionIndex {
	slices.SortFunc(spans, func(a, b span) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(b.end, a.end)
	})

	p := &positionIndex{
		starts: make([]int, len(spans)),
		ends:   make([]int, len(spans)),
		slots:  make([]int, len(spans)),
		aux:    make([]int, len(spans)),
	}
	for i, s := range spans {
		p.starts[i] = s.start
		p.ends[i] = s.end
		p.slots[i] = s.slot
		p.aux[i] = s.aux
	}
	p.firstUnsorted = rangesearch.FirstUnsortedEnd(len(spans), p.endAt)
	return p
}

func (p *positionIndex) endAt(i int) int { return p.ends[i] }

// find returns the position of the innermost span containing pos and its
// nesting depth, or -1.
func (p *positionIndex) find(pos int) (int, int) {
	return rangesearch.SearchNested(pos, p.starts, len(p.starts), p.endAt, p.firstUnsorted)
}

func (ix *Index) positions() *positionIndex {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.pos == nil {
		spans := make([]span, 0, len(ix.starts))
		for i, s := range ix.starts {
			if s == Unset || ix.isRemoved(i) {
				continue
			}
			spans = append(spans, span{start: s, end: ix.end(i), slot: i})
		}
		ix.pos = newPositionIndex(spans)
	}
	return ix.pos
}

// BuildPositions builds the position indexes eagerly so that later
// positional queries do not pay for it.
func (ix *Index) BuildPositions() {
	ix.positions()
	ix.referencePositions()
}

// RegionAt returns the innermost region containing pos. Regions with unset
// offsets never match.
func (ix *Index) RegionAt(pos int) (Region, bool) {
	r, _, ok := ix.NestingAt(pos)
	return r, ok
}

// NestingAt returns the innermost region containing pos together with the
// number of regions strictly enclosing it.
func (ix *Index) NestingAt(pos int) (Region, int, bool) {
	p := ix.positions()
	i, depth := p.find(pos)
	if i < 0 {
		return Region{}, 0, false
	}
	return ix.region(p.slots[i]), depth, true
}
