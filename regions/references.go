package regions

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Occurrence is a half-open span [Start, End) where a name is used.
type Occurrence struct {
	Start int
	End   int
}

// Contains reports whether pos lies inside the occurrence.
func (o Occurrence) Contains(pos int) bool { return o.Start <= pos && pos < o.End }

// ReferenceSet holds the occurrences of one name in source order.
// Occurrences never overlap.
type ReferenceSet struct {
	name string
	occ  []Occurrence
}

// Name returns the referenced name.
func (s *ReferenceSet) Name() string { return s.name }

// Len returns the number of occurrences.
func (s *ReferenceSet) Len() int { return len(s.occ) }

// At returns the i-th occurrence.
func (s *ReferenceSet) At(i int) Occurrence { return s.occ[i] }

// All yields the occurrences in source order.
func (s *ReferenceSet) All() iter.Seq[Occurrence] {
	return slices.Values(s.occ)
}

// OccurrenceAt returns the occurrence containing pos.
func (s *ReferenceSet) OccurrenceAt(pos int) (Occurrence, bool) {
	i := sort.Search(len(s.occ), func(k int) bool { return s.occ[k].End > pos })
	if i < len(s.occ) && s.occ[i].Start <= pos {
		return s.occ[i], true
	}
	return Occurrence{}, false
}

func (s *ReferenceSet) clone() *ReferenceSet {
	if s == nil {
		return nil
	}
	return &ReferenceSet{name: s.name, occ: slices.Clone(s.occ)}
}

func (s *ReferenceSet) equal(other *ReferenceSet) bool {
	return slices.Equal(s.occurrences(), other.occurrences())
}

func (s *ReferenceSet) occurrences() []Occurrence {
	if s == nil {
		return nil
	}
	return s.occ
}

// AddReference appends an occurrence of name. Occurrences of one name must
// be added in source order: start must not precede the end of the previous
// occurrence.
func (ix *Index) AddReference(name string, start, end int) error {
	i := ix.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if start < 0 || end <= start {
		return fmt.Errorf("%w: [%d,%d) for %q", ErrInvalidBounds, start, end, name)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	set := ix.refs[i]
	if set == nil {
		set = &ReferenceSet{name: name}
		ix.refs[i] = set
	}
	if n := len(set.occ); n > 0 && start < set.occ[n-1].End {
		return fmt.Errorf("%w: reference to %q at %d precedes previous occurrence ending at %d",
			ErrOrderingViolation, name, start, set.occ[n-1].End)
	}
	set.occ = append(set.occ, Occurrence{Start: start, End: end})
	ix.refPos = nil
	return nil
}

// ReferencesOf returns the occurrences of name. The result is never nil;
// unknown names and names without references yield an empty set.
func (ix *Index) ReferencesOf(name string) *ReferenceSet {
	if i := ix.IndexOf(name); i >= 0 && ix.refs[i] != nil {
		return ix.refs[i]
	}
	return &ReferenceSet{name: name}
}

// Referenced yields the names that have at least one occurrence.
func (ix *Index) Referenced() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, set := range ix.refs {
			if set == nil || len(set.occ) == 0 || ix.isRemoved(i) {
				continue
			}
			if !yield(set.name) {
				return
			}
		}
	}
}

func (ix *Index) referencePositions() *positionIndex {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.refPos == nil {
		var spans []span
		for i, set := range ix.refs {
			if set == nil || ix.isRemoved(i) {
				continue
			}
			for k, o := range set.occ {
				spans = append(spans, span{start: o.Start, end: o.End, slot: i, aux: k})
			}
		}
		ix.refPos = newPositionIndex(spans)
	}
	return ix.refPos
}

// ReferenceAt returns the referenced name and occurrence covering pos.
func (ix *Index) ReferenceAt(pos int) (string, Occurrence, bool) {
	p := ix.referencePositions()
	i, _ := p.find(pos)
	if i < 0 {
		return "", Occurrence{}, false
	}
	return ix.tbl.names[p.slots[i]], ix.refs[p.slots[i]].occ[p.aux[i]], true
}
