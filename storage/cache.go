package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cached wraps a Storage and keeps recently fetched keys materialized in a
// local directory. Repeated Gets of a hot key are served from disk without
// touching the backend, which matters when several segments on one worker
// share index files.
//
// Eviction removes the cached file. Concurrent Gets of the same key are
// collapsed into a single backend fetch.
type Cached struct {
	inner Storage
	dir   string
	lru   *lru.Cache[string, string]
	group singleflight.Group
}

// NewCached wraps inner with a disk cache of size entries rooted at dir.
func NewCached(inner Storage, dir string, size int) (*Cached, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	c := &Cached{
		inner: inner,
		dir:   dir,
	}

	cache, err := lru.NewWithEvict(size, func(_ string, path string) {
		_ = os.Remove(path)
	})
	if err != nil {
		return nil, err
	}

	c.lru = cache

	return c, nil
}

func (c *Cached) cachePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

// Get serves key from the cache when possible, fetching through the inner
// store on a miss.
func (c *Cached) Get(ctx context.Context, key, path string) error {
	if cached, ok := c.lru.Get(key); ok {
		if err := copyFileAtomic(path, cached); err == nil {
			return nil
		}

		// The cached file vanished underneath us; drop the entry and fall
		// through to the backend.
		c.lru.Remove(key)
	}

	_, err, _ := c.group.Do(key, func() (any, error) {
		cached := c.cachePath(key)
		if err := c.inner.Get(ctx, key, cached); err != nil {
			return nil, err
		}

		c.lru.Add(key, cached)

		return nil, nil
	})
	if err != nil {
		return err
	}

	cached, ok := c.lru.Get(key)
	if !ok {
		// Evicted between fetch and copy; go straight to the backend.
		return c.inner.Get(ctx, key, path)
	}

	if err := copyFileAtomic(path, cached); err != nil {
		return opError("get", key, err)
	}

	return nil
}

// Put uploads through the inner store and refreshes the cache so a
// following Get is served locally.
func (c *Cached) Put(ctx context.Context, key, path string) error {
	if err := c.inner.Put(ctx, key, path); err != nil {
		return err
	}

	cached := c.cachePath(key)
	if err := copyFileAtomic(cached, path); err == nil {
		c.lru.Add(key, cached)
	}

	return nil
}

// Invalidate drops key from the cache, removing the cached file.
func (c *Cached) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of cached keys.
func (c *Cached) Len() int {
	return c.lru.Len()
}
