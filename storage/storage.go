package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/chromad/codes"
)

// ErrNotFound is returned when a key does not exist in the backend.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Storage moves whole segment files between a worker and a backend.
//
// Get fetches the content addressed by key and materializes it at path,
// creating parent directories as needed. Put uploads the local file at path
// under key, replacing any previous content. Both are synchronous: when they
// return nil the transfer is complete.
type Storage interface {
	Get(ctx context.Context, key, path string) error
	Put(ctx context.Context, key, path string) error
}

// Error wraps a backend failure with the operation and key it belongs to.
type Error struct {
	// Op is the failing operation, "get" or "put".
	Op string
	// Key is the storage key involved.
	Key string
	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "storage " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

// Unwrap returns the underlying backend error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code implements codes.Coder. Missing keys map to NotFound; otherwise the
// underlying error's classification is kept.
func (e *Error) Code() codes.Code {
	if errors.Is(e.Err, ErrNotFound) {
		return codes.NotFound
	}

	if c := codes.Of(e.Err); c != codes.Unknown {
		return c
	}

	return codes.Unavailable
}

// opError wraps err unless it is nil or already an *Error.
func opError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	return &Error{Op: op, Key: key, Err: err}
}

// writeFileAtomic streams r into dst via a temp file in the same directory
// so a crash never leaves a half-written file at dst.
func writeFileAtomic(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".chromad-tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}

// copyFileAtomic copies src to dst with the same temp-and-rename scheme.
func copyFileAtomic(dst, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeFileAtomic(dst, f)
}
