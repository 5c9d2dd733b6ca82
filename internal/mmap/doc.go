// Package mmap provides read-only memory-mapped file access.
//
// # Usage
//
//	m, err := mmap.Open("table.symg")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // zero-copy view of the file
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Other platforms: the file is read into memory and Advise is a no-op
//
// # Thread Safety
//
// A Mapping is safe for concurrent readers. Close is idempotent; callers
// must not use slices returned by Bytes after Close returns.
package mmap
