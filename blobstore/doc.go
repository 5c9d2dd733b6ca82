// Package blobstore provides the storage abstraction for table snapshots.
//
// BlobStore is the interface for reading and writing named, immutable
// blobs. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads, atomic writes
//   - MemoryStore: process memory, for tests and ephemeral tables
//   - CachingStore: block cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: S3-compatible object stores via minio-go
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that are backed by a contiguous byte slice should also implement
// Mappable so that ReadAll can skip the ReadAt path.
package blobstore
