package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/symgraph/internal/conv"
)

// nullLength marks an absent byte array.
const nullLength = -1

// Encoder writes section data in the little-endian binary layout.
// The first write error is retained and all later writes are skipped.
type Encoder struct {
	w   io.Writer
	buf [4]byte
	err error
	n   int64
}

// NewEncoder creates a new encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error encountered.
func (e *Encoder) Err() error { return e.err }

// Written returns the number of bytes written so far.
func (e *Encoder) Written() int64 { return e.n }

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.w.Write(p)
	e.n += int64(n)
	e.err = err
}

// Fail records err unless an earlier error is already set.
func (e *Encoder) Fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// PutInt32 writes v.
func (e *Encoder) PutInt32(v int32) {
	binary.LittleEndian.PutUint32(e.buf[:], uint32(v))
	e.write(e.buf[:4])
}

// PutInt writes v as int32, failing if it does not fit.
func (e *Encoder) PutInt(v int) {
	i, err := conv.IntToInt32(v)
	if err != nil {
		e.Fail(err)
		return
	}
	e.PutInt32(i)
}

// PutUint8 writes a single byte.
func (e *Encoder) PutUint8(v uint8) {
	e.buf[0] = v
	e.write(e.buf[:1])
}

// PutBytes writes a length-prefixed byte array. A nil slice is written as
// the null marker and decodes back to nil.
func (e *Encoder) PutBytes(b []byte) {
	if b == nil {
		e.PutInt32(nullLength)
		return
	}
	e.PutInt(len(b))
	e.write(b)
}

// PutString writes a length-prefixed string.
func (e *Encoder) PutString(s string) {
	e.PutInt(len(s))
	e.write([]byte(s))
}

// PutName writes s through table: the first occurrence is written inline
// and registered, later occurrences as a table index. A nil table writes
// the string inline.
func (e *Encoder) PutName(s string, table *StringTable) {
	if table == nil {
		e.PutString(s)
		return
	}
	if idx, ok := table.lookup(s); ok {
		e.PutInt32(idx)
		return
	}
	e.PutInt32(nullLength)
	e.PutString(s)
	table.add(s)
}

// Decoder reads section data written by an Encoder.
// The first read error is retained and later reads return zero values.
//
// When the reader reports its unread length (bytes.Reader, bytes.Buffer,
// strings.Reader), counts and lengths are checked against the bytes left
// before anything is allocated for them.
type Decoder struct {
	r   io.Reader
	buf [4]byte
	err error
}

// lener is implemented by in-memory readers.
type lener interface {
	Len() int
}

// unknownPrealloc bounds up-front allocations when the reader length is
// unknown; larger sections grow as their data arrives.
const unknownPrealloc = 1024

// NewDecoder creates a new decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Err returns the first error encountered.
func (d *Decoder) Err() error { return d.err }

// Fail records err unless an earlier error is already set.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Remaining returns the number of unread bytes, or -1 if the reader does
// not report it.
func (d *Decoder) Remaining() int {
	if l, ok := d.r.(lener); ok {
		return l.Len()
	}
	return -1
}

// Elements reads a count of entries that each occupy at least minSize
// bytes. A count the remaining input cannot hold fails with ErrCorrupt.
func (d *Decoder) Elements(minSize int) int {
	n := d.Count()
	if d.err != nil || n == 0 || minSize <= 0 {
		return n
	}
	if rem := d.Remaining(); rem >= 0 && n > rem/minSize {
		d.Fail(fmt.Errorf("%w: %d entries of at least %d bytes exceed %d remaining", ErrCorrupt, n, minSize, rem))
		return 0
	}
	return n
}

// Capacity returns how many of n entries returned by Elements may be
// allocated up front.
func (d *Decoder) Capacity(n int) int {
	if d.Remaining() >= 0 {
		return n
	}
	return min(n, unknownPrealloc)
}

// readN reads n bytes, allocating only as much as the input provides.
func (d *Decoder) readN(n int) []byte {
	rem := d.Remaining()
	if rem >= 0 {
		if n > rem {
			d.Fail(fmt.Errorf("%w: length %d exceeds %d remaining", ErrCorrupt, n, rem))
			return nil
		}
		b := make([]byte, n)
		if !d.read(b) {
			return nil
		}
		return b
	}
	b, err := io.ReadAll(io.LimitReader(d.r, int64(n)))
	if err != nil {
		d.Fail(err)
		return nil
	}
	if len(b) != n {
		d.Fail(io.ErrUnexpectedEOF)
		return nil
	}
	return b
}

func (d *Decoder) read(p []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		d.err = err
		return false
	}
	return true
}

// Int32 reads an int32.
func (d *Decoder) Int32() int32 {
	if !d.read(d.buf[:4]) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(d.buf[:4]))
}

// Int reads an int32 and widens it to int.
func (d *Decoder) Int() int { return int(d.Int32()) }

// Count reads a non-negative element count.
func (d *Decoder) Count() int {
	v := d.Int32()
	if d.err != nil {
		return 0
	}
	n, err := conv.Int32ToCount(v, maxCount)
	if err != nil {
		d.Fail(fmt.Errorf("%w: %w", ErrCorrupt, err))
		return 0
	}
	return n
}

// Uint8 reads a single byte.
func (d *Decoder) Uint8() uint8 {
	if !d.read(d.buf[:1]) {
		return 0
	}
	return d.buf[0]
}

// Bytes reads a length-prefixed byte array; the null marker yields nil.
func (d *Decoder) Bytes() []byte {
	v := d.Int32()
	if d.err != nil || v == nullLength {
		return nil
	}
	n, err := conv.Int32ToCount(v, maxCount)
	if err != nil {
		d.Fail(fmt.Errorf("%w: %w", ErrCorrupt, err))
		return nil
	}
	return d.readN(n)
}

// String reads a length-prefixed string.
func (d *Decoder) String() string {
	n := d.Count()
	if d.err != nil || n == 0 {
		return ""
	}
	b := d.readN(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// Name reads a string written by PutName with the same kind of table.
func (d *Decoder) Name(table *StringTable) string {
	if table == nil {
		return d.String()
	}
	idx := d.Int32()
	if d.err != nil {
		return ""
	}
	if idx == nullLength {
		s := d.String()
		if d.err == nil {
			table.add(s)
		}
		return s
	}
	s, ok := table.at(idx)
	if !ok {
		d.Fail(fmt.Errorf("%w: string table index %d out of range", ErrCorrupt, idx))
		return ""
	}
	return s
}

// Version reads a section version tag and fails with a VersionError
// unless it is one of supported.
func (d *Decoder) Version(section string, supported ...int32) int32 {
	v := d.Int32()
	if d.err != nil {
		return 0
	}
	for _, s := range supported {
		if v == s {
			return v
		}
	}
	d.Fail(&VersionError{Section: section, Got: v})
	return 0
}
