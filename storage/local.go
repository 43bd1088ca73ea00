package storage

import (
	"context"
	"os"
	"path/filepath"
)

// Local implements Storage using a directory on the local filesystem. Keys
// map to paths below the root, so workers sharing a filesystem can exchange
// segment files without an object store.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at the given directory.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Get copies the file stored under key to path.
func (l *Local) Get(ctx context.Context, key, path string) error {
	if err := ctx.Err(); err != nil {
		return opError("get", key, err)
	}

	// A missing source surfaces as os.ErrNotExist, which is ErrNotFound.
	if err := copyFileAtomic(path, l.path(key)); err != nil {
		return opError("get", key, err)
	}

	return nil
}

// Put copies the file at path into the store under key.
func (l *Local) Put(ctx context.Context, key, path string) error {
	if err := ctx.Err(); err != nil {
		return opError("put", key, err)
	}

	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return opError("put", key, err)
	}

	if err := copyFileAtomic(dst, path); err != nil {
		return opError("put", key, err)
	}

	return nil
}
