package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// ErrExists is returned by PutIfNotExists when the blob already exists.
var ErrExists = os.ErrExist

// HeadName is the blob holding the name of the latest published snapshot.
const HeadName = "HEAD"

// BlobStore stores immutable, named snapshot blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob that becomes visible when the writer is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes at off; it follows io.ReaderAt semantics.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadRange streams length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to durable storage.
	Sync() error
}

// ConditionalPutter is an optional interface for stores that can create a
// blob only if it does not exist yet.
type ConditionalPutter interface {
	// PutIfNotExists writes data to name, or returns ErrExists.
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// PutIfNotExists writes name through the store's conditional write when it
// has one. Other stores get a check followed by Put, which is not atomic.
func PutIfNotExists(ctx context.Context, store BlobStore, name string, data []byte) error {
	if c, ok := store.(ConditionalPutter); ok {
		return c.PutIfNotExists(ctx, name, data)
	}
	blob, err := store.Open(ctx, name)
	if err == nil {
		_ = blob.Close()
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return store.Put(ctx, name, data)
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll returns the full content of blob. Mappable blobs are copied
// without going through ReadAt.
func ReadAll(ctx context.Context, blob Blob) ([]byte, error) {
	if m, ok := blob.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	size := blob.Size()
	if size < 0 {
		return nil, fmt.Errorf("blobstore: invalid blob size %d", size)
	}
	buf := make([]byte, size)
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if int64(n) != size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

// ReadBlob opens name, reads it fully and closes it.
func ReadBlob(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	return ReadAll(ctx, blob)
}

// sectionReader adapts a Blob to io.Reader over [off, limit).
type sectionReader struct {
	ctx   context.Context
	blob  Blob
	off   int64
	limit int64
}

func newSectionReader(ctx context.Context, blob Blob, off, length int64) io.ReadCloser {
	limit := min(off+length, blob.Size())
	return io.NopCloser(&sectionReader{ctx: ctx, blob: blob, off: off, limit: limit})
}

func (r *sectionReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}
