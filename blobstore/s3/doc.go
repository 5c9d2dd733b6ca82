// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("tables/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = tbl.Save(ctx, store, "grammar.sgt")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the S3 transfer manager
//   - CRC32C integrity checks on single-shot puts
//   - Conditional creates (If-None-Match)
//   - DynamoDB-backed HEAD pointer for concurrent publishers
package s3
