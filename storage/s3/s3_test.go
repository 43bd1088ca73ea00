package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chromad/codes"
	"github.com/hupe1980/chromad/storage"
)

// mockS3Client is an in-memory S3 fake. It serves the ranged reads the
// managed downloader issues and single-part uploads; multipart methods
// fail loudly because small segment files never reach them.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte

	getCalls  int
	checksums []types.ChecksumAlgorithm
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) store(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = append([]byte(nil), data...)
}

func (m *mockS3Client) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]

	return data, ok
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++

	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	start, end := int64(0), int64(len(data)-1)
	if params.Range != nil {
		if _, err := fmt.Sscanf(aws.ToString(params.Range), "bytes=%d-%d", &start, &end); err != nil {
			return nil, fmt.Errorf("malformed range %q: %w", aws.ToString(params.Range), err)
		}
	}

	if start < 0 || start >= int64(len(data)) {
		return nil, fmt.Errorf("range start %d outside object of %d bytes", start, len(data))
	}

	if end >= int64(len(data)) {
		end = int64(len(data) - 1)
	}

	chunk := data[start : end+1]

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(chunk)),
		ContentLength: aws.Int64(int64(len(chunk))),
		ContentRange:  aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, len(data))),
	}, nil
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.checksums = append(m.checksums, params.ChecksumAlgorithm)
	m.objects[aws.ToString(params.Key)] = data

	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("mock: multipart upload not supported")
}

func (m *mockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("mock: multipart upload not supported")
}

func (m *mockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("mock: multipart upload not supported")
}

func (m *mockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("mock: multipart upload not supported")
}

func TestStorage_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	st := New(client, "segments", WithPrefix("tenant-a/"))

	dir := t.TempDir()
	src := filepath.Join(dir, "index.bin")
	payload := []byte("hnsw graph bytes")
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	require.NoError(t, st.Put(ctx, "hnsw/index.bin", src))

	stored, ok := client.object("tenant-a/hnsw/index.bin")
	require.True(t, ok, "object should be stored under the prefixed key")
	assert.Equal(t, payload, stored)

	require.Len(t, client.checksums, 1)
	assert.Equal(t, types.ChecksumAlgorithmCrc32c, client.checksums[0])

	dst := filepath.Join(dir, "restored", "index.bin")
	require.NoError(t, st.Get(ctx, "hnsw/index.bin", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStorage_NoPrefix(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	st := New(client, "segments")

	dir := t.TempDir()
	src := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	require.NoError(t, st.Put(ctx, "plain-key", src))

	_, ok := client.object("plain-key")
	assert.True(t, ok)
}

func TestStorage_GetNotFound(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	st := New(client, "segments")

	dir := t.TempDir()
	dst := filepath.Join(dir, "missing.bin")

	err := st.Get(ctx, "missing", dst)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, codes.NotFound, codes.Of(err))

	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "get", serr.Op)
	assert.Equal(t, "missing", serr.Key)

	// No destination file and no temp litter on failure.
	_, err = os.Stat(dst)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorage_GetChunked(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()

	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i % 251)
	}

	client.store("big.bin", data)

	st := New(client, "segments", WithTransferConfig(TransferConfig{
		PartSize:    64,
		Concurrency: 3,
	}))

	dst := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, st.Get(ctx, "big.bin", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// 300 bytes at a 64 byte part size is five ranged reads.
	assert.Equal(t, 5, client.getCalls)
}

func TestStorage_GetOverwrites(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	client.store("key", []byte("fresh"))

	st := New(client, "segments")

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(dst, []byte("stale content, longer than the object"), 0o644))

	require.NoError(t, st.Get(ctx, "key", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
}

func TestStorage_PutMissingFile(t *testing.T) {
	ctx := context.Background()
	st := New(newMockS3Client(), "segments")

	err := st.Put(ctx, "key", filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)

	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "put", serr.Op)
}

func TestStorage_PutChecksumDisabled(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()

	cfg := DefaultTransferConfig()
	cfg.EnableChecksum = false

	st := New(client, "segments", WithTransferConfig(cfg))

	src := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	require.NoError(t, st.Put(ctx, "key", src))

	require.Len(t, client.checksums, 1)
	assert.Empty(t, client.checksums[0])
}
