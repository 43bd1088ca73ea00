// Package storage provides the file transfer abstraction segment readers
// and writers build on.
//
// Storage is deliberately small: Get materializes a key as a local file,
// Put uploads a local file under a key. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - Local: a directory on the local filesystem
//   - Memory: an in-memory backend for tests
//   - s3.Storage: Amazon S3 with ranged parallel downloads
//   - minio.Storage: MinIO and other S3-compatible object stores
//
// # Decorators
//
// Backends compose with decorators that keep the same interface:
//
//	store := storage.NewCached(
//		storage.NewRetry(s3store),
//		cacheDir, 256,
//	)
//
//   - Retry: exponential-backoff retries for transient failures
//   - Compressed: transparent zstd or lz4 compression
//   - Cached: an LRU of recently fetched keys on local disk
//
// # Errors
//
// Failures are wrapped in *Error carrying the operation and key. Missing
// keys satisfy errors.Is(err, ErrNotFound) regardless of backend.
package storage
