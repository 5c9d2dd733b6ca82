package regions

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/symgraph/maskedset"
)

// table is the name/kind storage shared between an Index and its
// secondary views.
type table struct {
	names maskedset.Names
	kinds []Kind
}

// Index maps declared names to source regions and records references to
// them.
//
// An Index is built by a single traversal and then read concurrently.
// Mutating methods (Add, AddReference, Remove) require exclusive access.
type Index struct {
	tbl    *table
	policy EndPolicy
	starts []int
	ends   []int // nil under NameLengthEnds
	refs   []*ReferenceSet

	// removed marks tombstoned slots; nil when nothing was removed.
	removed *bitset.BitSet

	mu     sync.Mutex
	pos    *positionIndex
	refPos *positionIndex
}

var _ maskedset.Indexed[string] = (*Index)(nil)

func newIndex(tbl *table, policy EndPolicy) *Index {
	n := len(tbl.names)
	ix := &Index{
		tbl:    tbl,
		policy: policy,
		starts: make([]int, n),
		refs:   make([]*ReferenceSet, n),
	}
	for i := range ix.starts {
		ix.starts[i] = Unset
	}
	if policy == ExplicitEnds {
		ix.ends = make([]int, n)
		for i := range ix.ends {
			ix.ends[i] = Unset
		}
	}
	return ix
}

// Policy returns the end policy of the index.
func (ix *Index) Policy() EndPolicy { return ix.policy }

// Len returns the number of storage slots, including removed ones.
func (ix *Index) Len() int { return len(ix.tbl.names) }

// Count returns the number of regions that have not been removed.
func (ix *Index) Count() int {
	if ix.removed == nil {
		return ix.Len()
	}
	return ix.Len() - int(ix.removed.Count())
}

// Names returns the name of every slot in index order. The slice is shared
// and must not be modified.
func (ix *Index) Names() maskedset.Names { return ix.tbl.names }

// At returns the name stored in slot i.
func (ix *Index) At(i int) string { return ix.tbl.names[i] }

// IndexOf returns the slot of name, or -1 if it is unknown or removed.
func (ix *Index) IndexOf(name string) int {
	i := ix.tbl.names.IndexOf(name)
	if i < 0 || ix.isRemoved(i) {
		return -1
	}
	return i
}

// Name returns the name in slot i, or "" if i is out of range or removed.
func (ix *Index) Name(i int) string {
	if !ix.live(i) {
		return ""
	}
	return ix.tbl.names[i]
}

// Kind returns the kind of name.
func (ix *Index) Kind(name string) (Kind, bool) {
	i := ix.IndexOf(name)
	if i < 0 {
		return 0, false
	}
	return ix.tbl.kinds[i], true
}

// Get returns the region in slot i.
func (ix *Index) Get(i int) (Region, bool) {
	if !ix.live(i) {
		return Region{}, false
	}
	return ix.region(i), true
}

// Lookup returns the region declared for name.
func (ix *Index) Lookup(name string) (Region, bool) {
	return ix.Get(ix.IndexOf(name))
}

func (ix *Index) live(i int) bool {
	return i >= 0 && i < ix.Len() && !ix.isRemoved(i)
}

func (ix *Index) isRemoved(i int) bool {
	return ix.removed != nil && ix.removed.Test(uint(i))
}

func (ix *Index) end(i int) int {
	if ix.policy == ExplicitEnds {
		return ix.ends[i]
	}
	if ix.starts[i] == Unset {
		return Unset
	}
	return ix.starts[i] + len(ix.tbl.names[i])
}

func (ix *Index) region(i int) Region {
	return Region{
		Name:  ix.tbl.names[i],
		Kind:  ix.tbl.kinds[i],
		Start: ix.starts[i],
		End:   ix.end(i),
		Index: i,
	}
}

// Add assigns the offsets and kind of a declared name, overwriting earlier
// values. The kind is stored in the table shared with secondary views.
//
// Under NameLengthEnds, end must equal start+len(name); any other value is
// a caller bug and panics.
func (ix *Index) Add(name string, kind Kind, start, end int) error {
	i := ix.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if start < 0 || end <= start {
		return fmt.Errorf("%w: [%d,%d) for %q", ErrInvalidBounds, start, end, name)
	}
	if ix.policy == NameLengthEnds && end != start+len(name) {
		panic(fmt.Sprintf("regions: end %d of %q does not match its name length (start %d)", end, name, start))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.tbl.kinds[i] = kind
	ix.starts[i] = start
	if ix.ends != nil {
		ix.ends[i] = end
	}
	ix.pos = nil
	return nil
}

// All yields every region that has not been removed, in name order.
func (ix *Index) All() iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for i := range ix.tbl.names {
			if ix.isRemoved(i) {
				continue
			}
			if !yield(ix.region(i)) {
				return
			}
		}
	}
}

// OfKind yields the regions of the given kind in name order. The sequence
// scans the backing arrays on every iteration and may be restarted.
func (ix *Index) OfKind(kind Kind) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		for i, k := range ix.tbl.kinds {
			if k != kind || ix.isRemoved(i) {
				continue
			}
			if !yield(ix.region(i)) {
				return
			}
		}
	}
}

// Remove tombstones the slot of name. Other slots keep their Index; the
// removed slot no longer resolves through any lookup.
func (ix *Index) Remove(name string) error {
	i := ix.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.removed == nil {
		ix.removed = bitset.New(uint(ix.Len()))
	}
	ix.removed.Set(uint(i))
	ix.pos = nil
	ix.refPos = nil
	return nil
}

// Removed returns the names of tombstoned slots.
func (ix *Index) Removed() []string {
	if ix.removed == nil {
		return nil
	}
	out := make([]string, 0, ix.removed.Count())
	for i, ok := ix.removed.NextSet(0); ok; i, ok = ix.removed.NextSet(i + 1) {
		out = append(out, ix.tbl.names[i])
	}
	return out
}

// Compact returns a copy without tombstoned slots. Indices are reassigned.
// The receiver is returned if nothing was removed.
func (ix *Index) Compact() *Index { return ix.WithoutNames() }

// Unassigned returns the names whose offsets were never set.
func (ix *Index) Unassigned() []string {
	var out []string
	for i, s := range ix.starts {
		if s == Unset && !ix.isRemoved(i) {
			out = append(out, ix.tbl.names[i])
		}
	}
	return out
}

// PurgeUnassigned returns a copy without the regions whose offsets were
// never set.
func (ix *Index) PurgeUnassigned() *Index {
	return ix.WithoutNames(ix.Unassigned()...)
}

// SecondaryView returns an index over the same name/kind table with
// independent, unset, explicit offsets and no references. Removed slots
// stay removed in the view.
func (ix *Index) SecondaryView() *Index {
	view := newIndex(ix.tbl, ExplicitEnds)
	if ix.removed != nil {
		view.removed = ix.removed.Clone()
	}
	return view
}

// SharesTable reports whether ix and other share one name/kind table.
func (ix *Index) SharesTable(other *Index) bool {
	return other != nil && ix.tbl == other.tbl
}

// WithoutNames returns a copy omitting the given names and any removed
// slots, preserving name order. Unknown names are ignored. The receiver is
// returned unchanged if nothing would be dropped.
func (ix *Index) WithoutNames(names ...string) *Index {
	drop := roaring.New()
	for _, name := range names {
		if i := ix.tbl.names.IndexOf(name); i >= 0 {
			drop.Add(uint32(i))
		}
	}
	if ix.removed != nil {
		for i, ok := ix.removed.NextSet(0); ok; i, ok = ix.removed.NextSet(i + 1) {
			drop.Add(uint32(i))
		}
	}
	if drop.IsEmpty() {
		return ix
	}

	keep := ix.Len() - int(drop.GetCardinality())
	tbl := &table{
		names: make(maskedset.Names, 0, keep),
		kinds: make([]Kind, 0, keep),
	}
	out := &Index{
		tbl:    tbl,
		policy: ix.policy,
		starts: make([]int, 0, keep),
		refs:   make([]*ReferenceSet, 0, keep),
	}
	if ix.ends != nil {
		out.ends = make([]int, 0, keep)
	}

	for i, name := range ix.tbl.names {
		if drop.Contains(uint32(i)) {
			continue
		}
		tbl.names = append(tbl.names, name)
		tbl.kinds = append(tbl.kinds, ix.tbl.kinds[i])
		out.starts = append(out.starts, ix.starts[i])
		if ix.ends != nil {
			out.ends = append(out.ends, ix.ends[i])
		}
		out.refs = append(out.refs, ix.refs[i].clone())
	}
	return out
}

// Equal reports whether two indexes hold the same slots, offsets, kinds,
// tombstones and references.
func (ix *Index) Equal(other *Index) bool {
	if ix == other {
		return true
	}
	if other == nil || ix.policy != other.policy || ix.Len() != other.Len() {
		return false
	}
	if !slices.Equal(ix.tbl.names, other.tbl.names) || !slices.Equal(ix.tbl.kinds, other.tbl.kinds) {
		return false
	}
	for i := range ix.starts {
		if ix.isRemoved(i) != other.isRemoved(i) {
			return false
		}
		if ix.starts[i] != other.starts[i] || ix.end(i) != other.end(i) {
			return false
		}
		if !ix.refs[i].equal(other.refs[i]) {
			return false
		}
	}
	return true
}
