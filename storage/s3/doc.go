// Package s3 provides an Amazon S3 implementation of the storage.Storage
// interface plus a DynamoDB-backed commit store for checkpoint pointers.
//
// # Usage
//
//	store, err := s3.NewFromDefaultConfig(ctx, "my-bucket",
//	    s3.WithPrefix("segments/"),
//	)
//
//	commits := s3.NewCommitStore(ddbClient, "chromad-commits", "s3://my-bucket/segments")
//
// # Features
//
//   - Ranged parallel downloads through the transfer manager
//   - Multipart uploads with CRC32C integrity validation
//   - Configurable prefix for multi-tenant isolation
//   - Atomic checkpoint versioning via DynamoDB conditional writes
package s3
