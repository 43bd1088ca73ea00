package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorage counts backend operations passing through.
type countingStorage struct {
	inner Storage
	gets  atomic.Int64
	puts  atomic.Int64
}

func (c *countingStorage) Get(ctx context.Context, key, path string) error {
	c.gets.Add(1)
	return c.inner.Get(ctx, key, path)
}

func (c *countingStorage) Put(ctx context.Context, key, path string) error {
	c.puts.Add(1)
	return c.inner.Put(ctx, key, path)
}

func TestCachedServesRepeatedGetsLocally(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	mem.Store("key", []byte("cached content"))

	backend := &countingStorage{inner: mem}

	store, err := NewCached(backend, t.TempDir(), 8)
	require.NoError(t, err)

	work := t.TempDir()

	for i := 0; i < 3; i++ {
		dst := filepath.Join(work, "out", "file.bin")
		require.NoError(t, store.Get(ctx, "key", dst))

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, []byte("cached content"), got)
	}

	assert.Equal(t, int64(1), backend.gets.Load(), "only the first get may hit the backend")
}

func TestCachedPutWarmsCache(t *testing.T) {
	ctx := context.Background()
	backend := &countingStorage{inner: NewMemory()}

	store, err := NewCached(backend, t.TempDir(), 8)
	require.NoError(t, err)

	work := t.TempDir()
	src := writeTestFile(t, work, "in.bin", []byte("uploaded"))

	require.NoError(t, store.Put(ctx, "key", src))

	dst := filepath.Join(work, "out.bin")
	require.NoError(t, store.Get(ctx, "key", dst))

	assert.Equal(t, int64(1), backend.puts.Load())
	assert.Equal(t, int64(0), backend.gets.Load(), "get after put must be served from cache")

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("uploaded"), got)
}

func TestCachedEvictionRemovesFile(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	mem.Store("a", []byte("aaa"))
	mem.Store("b", []byte("bbb"))

	cacheDir := t.TempDir()

	store, err := NewCached(mem, cacheDir, 1)
	require.NoError(t, err)

	work := t.TempDir()

	require.NoError(t, store.Get(ctx, "a", filepath.Join(work, "a")))
	require.NoError(t, store.Get(ctx, "b", filepath.Join(work, "b")))

	assert.Equal(t, 1, store.Len())

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "evicted entries must be deleted from disk")
}

func TestCachedInvalidate(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	mem.Store("key", []byte("v1"))

	backend := &countingStorage{inner: mem}

	store, err := NewCached(backend, t.TempDir(), 8)
	require.NoError(t, err)

	work := t.TempDir()
	require.NoError(t, store.Get(ctx, "key", filepath.Join(work, "one")))

	mem.Store("key", []byte("v2"))
	store.Invalidate("key")

	dst := filepath.Join(work, "two")
	require.NoError(t, store.Get(ctx, "key", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, int64(2), backend.gets.Load())
}

func TestCachedMissingKey(t *testing.T) {
	store, err := NewCached(NewMemory(), t.TempDir(), 4)
	require.NoError(t, err)

	err = store.Get(context.Background(), "missing", filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}
