package s3

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/chromad/storage"
)

// Client is the subset of the Amazon S3 API the backend uses.
// *s3.Client satisfies it.
type Client interface {
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// TransferConfig tunes the managed download/upload used for segment files.
type TransferConfig struct {
	// PartSize is the part size for multipart transfers.
	// Default: 8MB (larger than the SDK default of 5MB for better throughput)
	PartSize int64

	// Concurrency is the number of concurrent part transfers.
	// Default: 5 (matches the SDK default)
	Concurrency int

	// EnableChecksum enables CRC32C integrity validation on uploads.
	// Default: true
	EnableChecksum bool

	// LeavePartsOnError controls whether failed multipart uploads are kept
	// for manual recovery instead of aborted.
	// Default: false (abort on error)
	LeavePartsOnError bool
}

// DefaultTransferConfig returns production settings for segment transfers.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		PartSize:          8 * 1024 * 1024,
		Concurrency:       5,
		EnableChecksum:    true,
		LeavePartsOnError: false,
	}
}

// Storage implements storage.Storage backed by an S3 bucket.
type Storage struct {
	client     Client
	bucket     string
	prefix     string
	transfer   TransferConfig
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// Option configures the S3 storage.
type Option func(*Storage)

// WithPrefix prepends a root prefix to all keys (e.g. "segments/").
func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// WithTransferConfig overrides the transfer tuning.
func WithTransferConfig(cfg TransferConfig) Option {
	return func(s *Storage) {
		s.transfer = cfg
	}
}

// New creates an S3 storage backend on an existing client.
func New(client Client, bucket string, optFns ...Option) *Storage {
	s := &Storage{
		client:   client,
		bucket:   bucket,
		transfer: DefaultTransferConfig(),
	}

	for _, fn := range optFns {
		fn(s)
	}

	s.downloader = manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = s.transfer.PartSize
		d.Concurrency = s.transfer.Concurrency
	})

	s.uploader = manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = s.transfer.PartSize
		u.Concurrency = s.transfer.Concurrency
		u.LeavePartsOnError = s.transfer.LeavePartsOnError
	})

	return s
}

// NewFromDefaultConfig creates an S3 storage backend using the default AWS
// configuration chain (environment, shared config, instance metadata).
func NewFromDefaultConfig(ctx context.Context, bucket string, optFns ...Option) (*Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return New(s3.NewFromConfig(cfg), bucket, optFns...), nil
}

func (s *Storage) key(name string) string {
	return path.Join(s.prefix, name)
}

// Get downloads the object under key and materializes it at p.
func (s *Storage) Get(ctx context.Context, key, p string) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	// Download into a temp file next to the destination; the ranged
	// parallel download needs a WriterAt, and the final rename keeps a
	// crash from leaving a torn file at p.
	tmp, err := os.CreateTemp(dir, ".chromad-s3-*")
	if err != nil {
		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	tmpName := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		if isNotFound(err) {
			err = storage.ErrNotFound
		}

		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	if _, err := s.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	}); err != nil {
		return fail(err)
	}

	if err := tmp.Sync(); err != nil {
		return fail(err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return &storage.Error{Op: "get", Key: key, Err: err}
	}

	return nil
}

// Put uploads the file at p under key.
func (s *Storage) Put(ctx context.Context, key, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return &storage.Error{Op: "put", Key: key, Err: err}
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   f,
	}

	if s.transfer.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return &storage.Error{Op: "put", Key: key, Err: err}
	}

	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nf *types.NotFound
	return errors.As(err, &nf)
}
