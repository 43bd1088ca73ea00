package chromad

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/chromad/codec"
	"github.com/hupe1980/chromad/scope"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/storage"
	"github.com/hupe1980/chromad/wire"
)

// CommitStore publishes checkpoint pointers with atomic versioning.
// storage/s3.CommitStore implements it on DynamoDB.
type CommitStore interface {
	// Commit publishes key as the next checkpoint version.
	Commit(ctx context.Context, key string) (uint64, error)

	// Latest returns the most recently committed checkpoint key and
	// version. An empty stream yields ("", 0, nil).
	Latest(ctx context.Context) (string, uint64, error)
}

// Worker binds the descriptor pipeline, the segment catalog and the
// file plumbing together. It holds no resources of its own, so there
// is no Close; backend lifecycles belong to the caller.
type Worker struct {
	registry *Registry
	syncer   *Syncer
	storage  storage.Storage
	commits  CommitStore
	codec    codec.Codec
	logger   *Logger
	metrics  MetricsCollector
}

// New creates a Worker. Without WithStorage, file transfer and
// checkpoint operations fail with a FailedPrecondition-coded error;
// catalog operations work regardless.
func New(optFns ...Option) *Worker {
	o := applyOptions(optFns)

	convOpts := []segment.ConverterOption{segment.WithCodec(o.codec)}
	if o.metaConv != nil {
		convOpts = append(convOpts, segment.WithMetadataConverter(o.metaConv))
	}
	if o.scopeConv != nil {
		convOpts = append(convOpts, segment.WithScopeConverter(o.scopeConv))
	}

	w := &Worker{
		registry: newRegistry(segment.NewConverter(convOpts...), o.logger, o.metrics),
		storage:  o.storage,
		commits:  o.commits,
		codec:    o.codec,
		logger:   o.logger,
		metrics:  o.metrics,
	}

	if o.storage != nil {
		w.syncer = NewSyncer(o.storage, SyncerConfig{
			Limit:      o.syncLimit,
			Controller: o.controller,
		})
	}

	return w
}

// RegisterSegments converts and admits a batch of descriptors.
// Admission is all-or-nothing; see Registry.Register.
func (w *Worker) RegisterSegments(ctx context.Context, descs []*wire.Segment) ([]*segment.Segment, error) {
	return w.registry.Register(ctx, descs)
}

// UpdateSegments converts a batch of descriptors and replaces the
// catalog entries of the named IDs. See Registry.Update.
func (w *Worker) UpdateSegments(ctx context.Context, descs []*wire.Segment) ([]*segment.Segment, error) {
	return w.registry.Update(ctx, descs)
}

// DeregisterSegment removes a segment from the catalog.
func (w *Worker) DeregisterSegment(ctx context.Context, id uuid.UUID) error {
	return w.registry.Deregister(ctx, id)
}

// GetSegment returns a clone of the registered segment with the given ID.
func (w *Worker) GetSegment(id uuid.UUID) (*segment.Segment, error) {
	return w.registry.Get(id)
}

// SegmentsByCollection returns clones of all segments of a collection,
// sorted by segment ID.
func (w *Worker) SegmentsByCollection(id uuid.UUID) []*segment.Segment {
	return w.registry.ByCollection(id)
}

// SegmentsByType returns clones of all segments of a type, sorted by
// segment ID.
func (w *Worker) SegmentsByType(t segment.Type) []*segment.Segment {
	return w.registry.ByType(t)
}

// SegmentsByScope returns clones of all segments of a scope, sorted by
// segment ID.
func (w *Worker) SegmentsByScope(s scope.Scope) []*segment.Segment {
	return w.registry.ByScope(s)
}

// Len returns the number of registered segments.
func (w *Worker) Len() int {
	return w.registry.Len()
}

// PullSegment fetches the file set of a registered segment into dir.
func (w *Worker) PullSegment(ctx context.Context, id uuid.UUID, dir string) error {
	if w.syncer == nil {
		return &MissingDependencyError{Dependency: "storage"}
	}

	seg, err := w.registry.Get(id)
	if err != nil {
		return err
	}

	files := len(seg.FileSet())
	start := time.Now()

	err = w.syncer.Pull(ctx, seg, dir)

	w.metrics.RecordPull(files, time.Since(start), err)
	w.logger.LogPull(ctx, id, files, err)

	return err
}

// PushSegment uploads the file set of a registered segment from dir.
func (w *Worker) PushSegment(ctx context.Context, id uuid.UUID, dir string) error {
	if w.syncer == nil {
		return &MissingDependencyError{Dependency: "storage"}
	}

	seg, err := w.registry.Get(id)
	if err != nil {
		return err
	}

	files := len(seg.FileSet())
	start := time.Now()

	err = w.syncer.Push(ctx, seg, dir)

	w.metrics.RecordPush(files, time.Since(start), err)
	w.logger.LogPush(ctx, id, files, err)

	return err
}
