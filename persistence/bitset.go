package persistence

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// UnmarshalBitSet decodes data written by bitset.BitSet.MarshalBinary.
// The declared bit length must match the number of words that follow, so a
// corrupt header cannot make the decoder allocate more than data holds.
func UnmarshalBitSet(data []byte) (*bitset.BitSet, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: bitset of %d bytes", ErrCorrupt, len(data))
	}
	length := bitset.BinaryOrder().Uint64(data[:8])
	words := uint64(len(data)-8) / 8
	if uint64(len(data)-8)%8 != 0 || length > words*64 || length+63 < words*64 {
		return nil, fmt.Errorf("%w: bitset length %d in %d bytes", ErrCorrupt, length, len(data))
	}

	b := new(bitset.BitSet)
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return b, nil
}
