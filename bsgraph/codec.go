package bsgraph

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/symgraph/persistence"
)

// encodingVersion tags the binary layout written by Encode.
const encodingVersion int32 = 1

// Encode writes the outbound adjacency of g to enc: version, node count,
// then one length-prefixed bit vector per node. Empty vectors are written
// as the null marker. Inbound adjacency is not stored.
func (g *Graph) Encode(enc *persistence.Encoder) {
	enc.PutInt32(encodingVersion)
	enc.PutInt(g.Len())
	for _, v := range g.out {
		if v.None() {
			enc.PutBytes(nil)
			continue
		}
		b, err := v.MarshalBinary()
		if err != nil {
			enc.Fail(err)
			return
		}
		enc.PutBytes(b)
	}
}

// Decode reads a graph written by Encode and re-derives its inbound
// adjacency.
func Decode(dec *persistence.Decoder) (*Graph, error) {
	dec.Version("bsgraph", encodingVersion)
	// Every node carries at least its length prefix.
	n := dec.Elements(4)
	if err := dec.Err(); err != nil {
		return nil, err
	}

	out := make([]*bitset.BitSet, 0, dec.Capacity(n))
	for i := range n {
		b := dec.Bytes()
		if dec.Err() != nil {
			break
		}
		if b == nil {
			out = append(out, nil)
			continue
		}
		v, err := persistence.UnmarshalBitSet(b)
		if err != nil {
			dec.Fail(fmt.Errorf("adjacency of node %d: %w", i, err))
			break
		}
		out = append(out, v)
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}

	out = normalize(out)
	if err := checkRange(out); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	return newGraph(out, transpose(out)), nil
}
