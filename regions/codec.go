package regions

import (
	"fmt"
	"slices"

	"github.com/hupe1980/symgraph/maskedset"
	"github.com/hupe1980/symgraph/persistence"
)

// encodingVersion tags the binary layout written by Encode.
const encodingVersion int32 = 1

// Smallest encoded sizes, used to reject counts the input cannot hold.
const (
	minSlotSize       = 4 + 4 + 1 // start, name reference, kind
	minSetSize        = 4 + 4     // slot, occurrence count
	minOccurrenceSize = 4 + 4     // start, end
)

// Encode writes ix to enc. Names go through strings, which may be shared
// with other sections of the same snapshot or be nil.
//
// Layout: version, count, per slot (start, name, kind), end policy,
// explicit ends, tombstones, then the reference sets.
func (ix *Index) Encode(enc *persistence.Encoder, strings *persistence.StringTable) {
	enc.PutInt32(encodingVersion)
	enc.PutInt(ix.Len())
	for i, name := range ix.tbl.names {
		enc.PutInt(ix.starts[i])
		enc.PutName(name, strings)
		enc.PutUint8(uint8(ix.tbl.kinds[i]))
	}

	enc.PutUint8(uint8(ix.policy))
	if ix.policy == ExplicitEnds {
		for _, e := range ix.ends {
			enc.PutInt(e)
		}
	}

	var removed []byte
	if ix.removed != nil && ix.removed.Any() {
		b, err := ix.removed.MarshalBinary()
		if err != nil {
			enc.Fail(err)
			return
		}
		removed = b
	}
	enc.PutBytes(removed)

	var n int
	for _, set := range ix.refs {
		if set != nil && len(set.occ) > 0 {
			n++
		}
	}
	enc.PutInt(n)
	for i, set := range ix.refs {
		if set == nil || len(set.occ) == 0 {
			continue
		}
		enc.PutInt(i)
		enc.PutInt(len(set.occ))
		for _, o := range set.occ {
			enc.PutInt(o.Start)
			enc.PutInt(o.End)
		}
	}
}

// Decode reads an index written by Encode. strings must be the reader-side
// counterpart of the table passed to Encode.
func Decode(dec *persistence.Decoder, strings *persistence.StringTable) (*Index, error) {
	dec.Version("regions", encodingVersion)
	n := dec.Elements(minSlotSize)
	if err := dec.Err(); err != nil {
		return nil, err
	}

	names := make(maskedset.Names, 0, dec.Capacity(n))
	kinds := make([]Kind, 0, dec.Capacity(n))
	starts := make([]int, 0, dec.Capacity(n))
	for range n {
		start := dec.Int()
		name := dec.Name(strings)
		k := Kind(dec.Uint8())
		if dec.Err() != nil {
			break
		}
		if k > LabeledAlternative {
			dec.Fail(fmt.Errorf("%w: kind %d of %q", persistence.ErrCorrupt, k, name))
			break
		}
		if start < Unset {
			dec.Fail(fmt.Errorf("%w: start %d of %q", persistence.ErrCorrupt, start, name))
			break
		}
		names = append(names, name)
		kinds = append(kinds, k)
		starts = append(starts, start)
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if !names.IsSorted() {
		return nil, fmt.Errorf("%w: names are not sorted", persistence.ErrCorrupt)
	}

	policy := EndPolicy(dec.Uint8())
	if policy != NameLengthEnds && policy != ExplicitEnds {
		dec.Fail(fmt.Errorf("%w: end policy %d", persistence.ErrCorrupt, policy))
	}
	ix := newIndex(&table{names: names, kinds: kinds}, policy)
	copy(ix.starts, starts)
	if policy == ExplicitEnds {
		for i := range ix.ends {
			ix.ends[i] = dec.Int()
			if (starts[i] == Unset) != (ix.ends[i] == Unset) || (starts[i] != Unset && ix.ends[i] <= starts[i]) {
				dec.Fail(fmt.Errorf("%w: bounds [%d,%d) of %q", persistence.ErrCorrupt, starts[i], ix.ends[i], names[i]))
			}
		}
	}

	if b := dec.Bytes(); b != nil {
		removed, err := persistence.UnmarshalBitSet(b)
		if err != nil {
			dec.Fail(fmt.Errorf("tombstones: %w", err))
		} else if removed.Any() {
			ix.removed = removed
		}
	}

	sets := dec.Elements(minSetSize)
	for range sets {
		slot := dec.Int()
		count := dec.Elements(minOccurrenceSize)
		if dec.Err() != nil {
			break
		}
		if slot < 0 || slot >= n || ix.refs[slot] != nil {
			dec.Fail(fmt.Errorf("%w: reference slot %d", persistence.ErrCorrupt, slot))
			break
		}
		set := &ReferenceSet{name: names[slot], occ: make([]Occurrence, 0, dec.Capacity(count))}
		for range count {
			o := Occurrence{Start: dec.Int(), End: dec.Int()}
			if o.End <= o.Start || (len(set.occ) > 0 && o.Start < set.occ[len(set.occ)-1].End) {
				dec.Fail(fmt.Errorf("%w: occurrence [%d,%d) of %q", persistence.ErrCorrupt, o.Start, o.End, set.name))
				break
			}
			set.occ = append(set.occ, o)
		}
		ix.refs[slot] = set
	}

	if err := dec.Err(); err != nil {
		return nil, err
	}
	return ix, nil
}

// DecodeView reads an index written by Encode for a secondary view of
// primary. The section must carry the same names and kinds; the result
// shares primary's name/kind table as the view did before encoding.
func DecodeView(dec *persistence.Decoder, strings *persistence.StringTable, primary *Index) (*Index, error) {
	ix, err := Decode(dec, strings)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(ix.tbl.names, primary.tbl.names) || !slices.Equal(ix.tbl.kinds, primary.tbl.kinds) {
		return nil, fmt.Errorf("%w: view disagrees with its primary on %d names", persistence.ErrCorrupt, primary.Len())
	}
	ix.tbl = primary.tbl
	return ix, nil
}
