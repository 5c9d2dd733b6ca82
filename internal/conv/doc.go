// Package conv provides safe integer type conversion utilities.
//
// Persisted layouts store offsets and counts as fixed-width integers; these
// helpers validate values crossing the int/int32 boundary so corrupted or
// oversized input fails with an error instead of wrapping silently.
package conv
