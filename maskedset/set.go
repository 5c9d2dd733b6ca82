package maskedset

import (
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// Set is a set of items drawn from the universe of an Indexed mapping.
type Set[T any] struct {
	universe Indexed[T]
	bits     *bitset.BitSet
}

// New returns an empty set over universe.
func New[T any](universe Indexed[T]) *Set[T] {
	return &Set[T]{
		universe: universe,
		bits:     bitset.New(uint(universe.Len())),
	}
}

// FromBits wraps an existing bit vector. Bits beyond the universe are
// ignored. The set takes ownership of bits.
func FromBits[T any](universe Indexed[T], bits *bitset.BitSet) *Set[T] {
	if bits == nil {
		return New(universe)
	}
	n := uint(universe.Len())
	if bits.Len() > n {
		for i, ok := bits.NextSet(n); ok; i, ok = bits.NextSet(i + 1) {
			bits.Clear(i)
		}
	}
	return &Set[T]{universe: universe, bits: bits}
}

// Of returns a set containing the given items. Items outside the universe
// are skipped.
func Of[T any](universe Indexed[T], items ...T) *Set[T] {
	s := New(universe)
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Universe returns the mapping the set is defined over.
func (s *Set[T]) Universe() Indexed[T] { return s.universe }

// Add inserts item. It returns false if item was already present or is not
// part of the universe.
func (s *Set[T]) Add(item T) bool {
	i := s.universe.IndexOf(item)
	if i < 0 || s.bits.Test(uint(i)) {
		return false
	}
	s.bits.Set(uint(i))
	return true
}

// Remove deletes item and reports whether it was present.
func (s *Set[T]) Remove(item T) bool {
	i := s.universe.IndexOf(item)
	if i < 0 || !s.bits.Test(uint(i)) {
		return false
	}
	s.bits.Clear(uint(i))
	return true
}

// Contains reports whether item is a member.
func (s *Set[T]) Contains(item T) bool {
	i := s.universe.IndexOf(item)
	return i >= 0 && s.bits.Test(uint(i))
}

// ContainsIndex reports whether the item at universe index i is a member.
func (s *Set[T]) ContainsIndex(i int) bool {
	return i >= 0 && s.bits.Test(uint(i))
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return int(s.bits.Count()) }

// IsEmpty reports whether the set has no members.
func (s *Set[T]) IsEmpty() bool { return s.bits.None() }

// All yields members in universe order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
			if !yield(s.universe.At(int(i))) {
				return
			}
		}
	}
}

// Slice returns the members in universe order.
func (s *Set[T]) Slice() []T {
	out := make([]T, 0, s.Len())
	for item := range s.All() {
		out = append(out, item)
	}
	return out
}

// Bits returns a copy of the underlying bit vector.
func (s *Set[T]) Bits() *bitset.BitSet { return s.bits.Clone() }

// Clone returns an independent copy.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{universe: s.universe, bits: s.bits.Clone()}
}

// Equal reports whether both sets have the same members.
func (s *Set[T]) Equal(other *Set[T]) bool {
	s.mustShareUniverse(other)
	return s.bits.SymmetricDifferenceCardinality(other.bits) == 0
}

// ContainsAll reports whether other is a subset of s.
func (s *Set[T]) ContainsAll(other *Set[T]) bool {
	s.mustShareUniverse(other)
	return s.bits.IsSuperSet(other.bits)
}

// Union returns a new set with the members of both sets.
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	s.mustShareUniverse(other)
	return &Set[T]{universe: s.universe, bits: s.bits.Union(other.bits)}
}

// Intersect returns a new set with the members common to both sets.
func (s *Set[T]) Intersect(other *Set[T]) *Set[T] {
	s.mustShareUniverse(other)
	return &Set[T]{universe: s.universe, bits: s.bits.Intersection(other.bits)}
}

// Subtract returns a new set with the members of s not in other.
func (s *Set[T]) Subtract(other *Set[T]) *Set[T] {
	s.mustShareUniverse(other)
	return &Set[T]{universe: s.universe, bits: s.bits.Difference(other.bits)}
}

func (s *Set[T]) mustShareUniverse(other *Set[T]) {
	if s.universe.Len() != other.universe.Len() {
		panic("maskedset: sets are defined over different universes")
	}
}
