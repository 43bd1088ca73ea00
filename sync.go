package chromad

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chromad/resource"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/storage"
)

const defaultSyncLimit = 4

// SyncerConfig tunes segment file transfers.
type SyncerConfig struct {
	// Limit caps how many files one Pull or Push moves concurrently.
	// If 0, defaults to 4.
	Limit int

	// Controller optionally bounds transfer slots and IO throughput
	// across all concurrent operations. Nil means unlimited.
	Controller *resource.Controller
}

// Syncer moves the full file set of a segment between local disk and a
// storage backend. It adds no ordering beyond the backend's: callers
// that need read-after-write sequence Pull after Push completion
// themselves.
type Syncer struct {
	storage    storage.Storage
	limit      int
	controller *resource.Controller
}

// NewSyncer creates a syncer on the given backend.
func NewSyncer(st storage.Storage, cfg SyncerConfig) *Syncer {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultSyncLimit
	}

	return &Syncer{
		storage:    st,
		limit:      limit,
		controller: cfg.Controller,
	}
}

// Pull fetches every file of the segment into dir, keeping the
// registered key as the path relative to dir. The first failure
// cancels the remaining transfers.
func (s *Syncer) Pull(ctx context.Context, seg *segment.Segment, dir string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, key := range seg.FileSet() {
		g.Go(func() error {
			if err := s.controller.AcquireTransfer(ctx); err != nil {
				return err
			}
			defer s.controller.ReleaseTransfer()

			dst := filepath.Join(dir, filepath.FromSlash(key))
			if err := s.storage.Get(ctx, key, dst); err != nil {
				return err
			}

			// Throughput accounting happens after the fact; the size
			// is only known once the file is on disk.
			info, err := os.Stat(dst)
			if err != nil {
				return err
			}

			return s.controller.AcquireIO(ctx, int(info.Size()))
		})
	}

	return g.Wait()
}

// Push uploads every file of the segment from dir, using the
// registered key both as the path relative to dir and as the object
// key. The first failure cancels the remaining transfers.
func (s *Syncer) Push(ctx context.Context, seg *segment.Segment, dir string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, key := range seg.FileSet() {
		g.Go(func() error {
			if err := s.controller.AcquireTransfer(ctx); err != nil {
				return err
			}
			defer s.controller.ReleaseTransfer()

			src := filepath.Join(dir, filepath.FromSlash(key))

			info, err := os.Stat(src)
			if err != nil {
				return err
			}

			if err := s.controller.AcquireIO(ctx, int(info.Size())); err != nil {
				return err
			}

			return s.storage.Put(ctx, key, src)
		})
	}

	return g.Wait()
}
