// Package rangesearch implements stateless searches over half-open ranges
// described by a sorted starts array and an end accessor.
//
// Ranges may nest. Plain binary search is exact only when ends are sorted;
// the nested variants fall back to a bounded linear scan and report the
// innermost containing range together with its nesting depth.
package rangesearch
