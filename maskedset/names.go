package maskedset

import (
	"slices"
	"sort"
)

// Indexed is a bidirectional mapping between items and dense indices
// in [0, Len()).
type Indexed[T any] interface {
	// IndexOf returns the index of item, or -1 if it is not in the universe.
	IndexOf(item T) int
	// At returns the item stored at index i.
	At(i int) T
	// Len returns the size of the universe.
	Len() int
}

// Names is a sorted, duplicate-free universe of strings.
type Names []string

var _ Indexed[string] = Names(nil)

// NewNames returns the sorted, deduplicated universe of the given names.
// The input slice is not modified.
func NewNames(names ...string) Names {
	out := slices.Clone(names)
	slices.Sort(out)
	return Names(slices.Compact(out))
}

// IndexOf returns the position of name, or -1.
func (n Names) IndexOf(name string) int {
	i := sort.SearchStrings(n, name)
	if i < len(n) && n[i] == name {
		return i
	}
	return -1
}

// At returns the name at index i.
func (n Names) At(i int) string { return n[i] }

// Len returns the number of names.
func (n Names) Len() int { return len(n) }

// IsSorted reports whether the names are strictly increasing, the
// precondition for binary search.
func (n Names) IsSorted() bool {
	for i := 1; i < len(n); i++ {
		if n[i-1] >= n[i] {
			return false
		}
	}
	return true
}
