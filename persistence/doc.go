// Package persistence provides the versioned binary layout shared by the
// symgraph data structures.
//
// Sections are written with an Encoder and read with a Decoder. Both carry a
// sticky error so a section codec can issue a sequence of Put/Get calls and
// check Err once at the end. Integers are little-endian int32 values.
//
// Names that appear in several sections (for example the name table of an
// interval index and of its secondary view) can be deduplicated through a
// StringTable passed explicitly to PutName and Name.
//
// A complete snapshot is wrapped in an envelope carrying a magic number, the
// format version, the compression algorithm and a CRC32 of the payload.
package persistence
