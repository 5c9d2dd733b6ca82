package rangesearch

import "sort"

// Ends returns the exclusive end of range i.
type Ends func(i int) int

// Bias selects which of several equal matches a boundary search returns.
type Bias uint8

const (
	// BiasFirst returns the first of several equal matches.
	BiasFirst Bias = iota
	// BiasLast returns the last of several equal matches.
	BiasLast
)

// Search returns the index i such that starts[i] <= pos < end(i), or -1.
//
// It is a plain binary search and is exact when ranges do not nest. With
// nesting it may return an enclosing range or miss entirely; SearchNested
// handles those cases.
func Search(pos int, starts []int, size int, end Ends) int {
	if size <= 0 || pos < starts[0] {
		return -1
	}
	return search(pos, starts, end, 0, size-1)
}

func search(pos int, starts []int, end Ends, first, last int) int {
	if first > last {
		return -1
	}
	mid := int(uint(first+last) >> 1)
	if pos < starts[mid] {
		return search(pos, starts, end, first, mid-1)
	}
	if pos < end(mid) {
		return mid
	}
	return search(pos, starts, end, mid+1, last)
}

// FirstUnsortedEnd returns the smallest i with end(i) < end(i-1), or size
// when ends are non-decreasing. Ends in [0, result) are sorted.
func FirstUnsortedEnd(size int, end Ends) int {
	for i := 1; i < size; i++ {
		if end(i) < end(i-1) {
			return i
		}
	}
	return size
}

// SearchNested returns the innermost range containing pos together with its
// nesting depth, the number of ranges strictly enclosing it. It returns
// (-1, 0) if no range contains pos.
//
// firstUnsorted must be FirstUnsortedEnd(size, end); it bounds the linear
// fallback used when the binary search misses.
func SearchNested(pos int, starts []int, size int, end Ends, firstUnsorted int) (int, int) {
	idx := Search(pos, starts, size, end)
	if idx < 0 {
		idx = scanBack(pos, starts, size, end, firstUnsorted)
		if idx < 0 {
			return -1, 0
		}
	}
	return SubsequentContaining(pos, idx, depthOf(idx, starts, end), starts, size, end)
}

// scanBack walks backward from the last range starting at or before pos.
func scanBack(pos int, starts []int, size int, end Ends, firstUnsorted int) int {
	i := LastAtOrBefore(starts, size, pos, BiasLast)
	for ; i >= 0; i-- {
		if end(i) > pos {
			return i
		}
		// Within the sorted prefix no earlier range can reach pos.
		if i < firstUnsorted {
			return -1
		}
	}
	return -1
}

// depthOf counts the ranges before idx whose bounds enclose range idx.
func depthOf(idx int, starts []int, end Ends) int {
	depth := 0
	e := end(idx)
	for j := idx - 1; j >= 0; j-- {
		if starts[j] <= starts[idx] && end(j) >= e {
			depth++
		}
	}
	return depth
}

// SubsequentContaining scans forward from index while ranges still start at
// or before pos, descending into each properly nested child that contains
// pos. It returns the innermost range found and its depth.
func SubsequentContaining(pos, index, depth int, starts []int, size int, end Ends) (int, int) {
	cur := index
	curEnd := end(cur)
	for j := index + 1; j < size && starts[j] <= pos; j++ {
		e := end(j)
		if e > pos && e <= curEnd {
			cur, curEnd = j, e
			depth++
		}
	}
	return cur, depth
}

// LastAtOrBefore returns the index of the greatest value <= pos in the
// sorted arr[0:size], or -1. Among equal values bias picks the first or last.
func LastAtOrBefore(arr []int, size, pos int, bias Bias) int {
	// i is the first index with arr[i] > pos.
	i := sort.Search(size, func(k int) bool { return arr[k] > pos })
	if i == 0 {
		return -1
	}
	last := i - 1
	if bias == BiasLast {
		return last
	}
	v := arr[last]
	return sort.Search(last+1, func(k int) bool { return arr[k] >= v })
}

// FirstAtOrAfter returns the index of the smallest value >= pos in the
// sorted arr[0:size], or -1. Among equal values bias picks the first or last.
func FirstAtOrAfter(arr []int, size, pos int, bias Bias) int {
	first := sort.Search(size, func(k int) bool { return arr[k] >= pos })
	if first == size {
		return -1
	}
	if bias == BiasFirst {
		return first
	}
	v := arr[first]
	return sort.Search(size, func(k int) bool { return arr[k] > v }) - 1
}
