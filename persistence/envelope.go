package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/symgraph/internal/conv"
)

// WriteEnvelope compresses payload with c and writes it behind a Header.
// It returns the header as written; its Compression may be CompressionNone
// if c did not shrink the payload.
func WriteEnvelope(w io.Writer, payload []byte, c Compression) (*Header, error) {
	stored, used, err := compress(payload, c)
	if err != nil {
		return nil, err
	}

	rawSize, err := conv.IntToUint32(len(payload))
	if err != nil {
		return nil, err
	}
	storedSize, err := conv.IntToUint32(len(stored))
	if err != nil {
		return nil, err
	}

	header := &Header{
		Magic:       MagicNumber,
		Version:     FormatVersion,
		Compression: used,
		RawSize:     rawSize,
		StoredSize:  storedSize,
		Checksum:    Checksum(payload),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if _, err := w.Write(stored); err != nil {
		return nil, err
	}
	return header, nil
}

// ReadEnvelope reads a Header and its payload, validates magic, version and
// checksum, and returns the uncompressed payload.
func ReadEnvelope(r io.Reader) ([]byte, *Header, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, err
	}
	if header.Magic != MagicNumber {
		return nil, nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: envelope version %d", ErrUnsupportedVersion, header.Version)
	}

	storedSize, err := conv.Uint32ToInt(header.StoredSize)
	if err != nil {
		return nil, nil, err
	}
	rawSize, err := conv.Uint32ToInt(header.RawSize)
	if err != nil {
		return nil, nil, err
	}
	if storedSize > maxCount || rawSize > maxCount {
		return nil, nil, fmt.Errorf("%w: payload of %d bytes", ErrCorrupt, rawSize)
	}

	stored, err := io.ReadAll(io.LimitReader(r, int64(storedSize)))
	if err != nil {
		return nil, nil, err
	}
	if len(stored) != storedSize {
		return nil, nil, io.ErrUnexpectedEOF
	}

	payload, err := decompress(stored, header.Compression, rawSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if sum := Checksum(payload); sum != header.Checksum {
		return nil, nil, &ChecksumMismatchError{Expected: header.Checksum, Actual: sum}
	}
	return payload, &header, nil
}
