package minio

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/chromad/storage"
)

// Client is the subset of the MinIO API the backend uses.
// *minio.Client satisfies it.
type Client interface {
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Storage implements storage.Storage backed by a MinIO or other
// S3-compatible bucket.
type Storage struct {
	client Client
	bucket string
	prefix string
}

// Option configures the MinIO storage.
type Option func(*Storage)

// WithPrefix prepends a root prefix to all keys (e.g. "segments/").
func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// New creates a MinIO storage backend on an existing client.
func New(client Client, bucket string, optFns ...Option) *Storage {
	s := &Storage{
		client: client,
		bucket: bucket,
	}

	for _, fn := range optFns {
		fn(s)
	}

	return s
}

func (s *Storage) key(name string) string {
	return path.Join(s.prefix, name)
}

// Get downloads the object under key and materializes it at p. The
// client downloads through a temp file, so p never holds a torn object.
func (s *Storage) Get(ctx context.Context, key, p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	if err := s.client.FGetObject(ctx, s.bucket, s.key(key), p, minio.GetObjectOptions{}); err != nil {
		if isNotFound(err) {
			err = storage.ErrNotFound
		}

		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	return nil
}

// Put uploads the file at p under key.
func (s *Storage) Put(ctx context.Context, key, p string) error {
	if _, err := s.client.FPutObject(ctx, s.bucket, s.key(key), p, minio.PutObjectOptions{}); err != nil {
		return &storage.Error{Op: "put", Key: key, Err: err}
	}

	return nil
}

// isNotFound reports whether err is the server's missing-object answer.
// GET returns NoSuchKey; HEAD based paths surface NotFound.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)

	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
