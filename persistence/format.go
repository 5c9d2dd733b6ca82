package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies symgraph snapshots (ASCII: "SYMG").
	MagicNumber = 0x53594D47
	// FormatVersion is the current envelope version.
	FormatVersion = 1

	// maxCount caps decoded element counts to reject corrupted lengths
	// before allocating.
	maxCount = 1 << 28
)

var (
	// ErrInvalidMagic is returned when the envelope does not start with MagicNumber.
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrUnsupportedVersion is returned for unrecognized format or section versions.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrCorrupt is returned when decoded data violates the layout.
	ErrCorrupt = errors.New("corrupt data")
)

// Header is the fixed-size envelope header.
type Header struct {
	Magic       uint32 // 0x53594D47 ("SYMG")
	Version     uint32 // Envelope format version
	Compression Compression
	Padding     [3]byte
	RawSize     uint32 // Payload size before compression
	StoredSize  uint32 // Payload size as stored
	Checksum    uint32 // CRC32 (IEEE) of the uncompressed payload
}

// VersionError reports an unrecognized version in a named section.
type VersionError struct {
	Section string
	Got     int32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: version %d", e.Section, e.Got)
}

// Unwrap returns ErrUnsupportedVersion.
func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }
