// Package maskedset provides set views over a fixed universe of items.
//
// A Set stores membership as a bit vector; an Indexed mapping translates
// items to bit positions and back. No item values are copied or hashed, so
// union, intersection and difference reduce to word-wise bit operations.
//
// Sets built over different universes cannot be combined. Doing so is a
// programming error and panics.
package maskedset
