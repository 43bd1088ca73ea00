package chromad

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/chromad/scope"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/wire"
)

// Registry is the worker-side catalog of admitted segments. Admission
// runs every descriptor through the conversion pipeline first and is
// all-or-nothing: one bad descriptor rejects the whole request and
// leaves the catalog untouched.
//
// Queries are served from roaring posting lists keyed by collection,
// type and scope. Handed-out segments are clones, so callers can never
// corrupt catalog state.
type Registry struct {
	converter *segment.Converter
	logger    *Logger
	metrics   MetricsCollector

	mu       sync.RWMutex
	segments map[uuid.UUID]*segment.Segment
	rows     []uuid.UUID          // row index -> segment ID
	rowOf    map[uuid.UUID]uint32 // segment ID -> row index
	free     []uint32             // rows released by deregistration

	byCollection map[uuid.UUID]*roaring.Bitmap
	byType       map[segment.Type]*roaring.Bitmap
	byScope      map[scope.Scope]*roaring.Bitmap
}

// NewRegistry creates an empty catalog using the given conversion
// pipeline. A nil converter falls back to the default pipeline.
func NewRegistry(converter *segment.Converter) *Registry {
	return newRegistry(converter, NoopLogger(), NoopMetricsCollector{})
}

func newRegistry(converter *segment.Converter, logger *Logger, metrics MetricsCollector) *Registry {
	if converter == nil {
		converter = segment.NewConverter()
	}

	return &Registry{
		converter:    converter,
		logger:       logger,
		metrics:      metrics,
		segments:     make(map[uuid.UUID]*segment.Segment),
		rowOf:        make(map[uuid.UUID]uint32),
		byCollection: make(map[uuid.UUID]*roaring.Bitmap),
		byType:       make(map[segment.Type]*roaring.Bitmap),
		byScope:      make(map[scope.Scope]*roaring.Bitmap),
	}
}

// Register converts and admits a batch of descriptors. The first
// conversion failure, catalog collision or in-batch duplicate rejects
// the whole batch. On success the admitted segments are returned as
// clones in request order.
func (r *Registry) Register(ctx context.Context, descs []*wire.Segment) ([]*segment.Segment, error) {
	start := time.Now()

	segs, err := r.register(descs)

	r.metrics.RecordRegister(len(segs), time.Since(start), err)
	r.logger.LogRegister(ctx, len(descs), err)

	return segs, err
}

func (r *Registry) register(descs []*wire.Segment) ([]*segment.Segment, error) {
	segs, err := r.convertAll(descs)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(segs))

	for _, seg := range segs {
		if _, ok := r.segments[seg.ID]; ok {
			return nil, &DuplicateSegmentError{ID: seg.ID}
		}

		if _, ok := seen[seg.ID]; ok {
			return nil, &DuplicateSegmentError{ID: seg.ID}
		}

		seen[seg.ID] = struct{}{}
	}

	out := make([]*segment.Segment, 0, len(segs))

	for _, seg := range segs {
		r.admit(seg)
		out = append(out, seg.Clone())
	}

	return out, nil
}

// Update converts a batch of descriptors and replaces the catalog
// entries of the named IDs. All IDs must already be registered and
// appear at most once; otherwise nothing is applied.
func (r *Registry) Update(ctx context.Context, descs []*wire.Segment) ([]*segment.Segment, error) {
	start := time.Now()

	segs, err := r.update(descs)

	r.metrics.RecordRegister(len(segs), time.Since(start), err)
	r.logger.LogUpdate(ctx, len(descs), err)

	return segs, err
}

func (r *Registry) update(descs []*wire.Segment) ([]*segment.Segment, error) {
	segs, err := r.convertAll(descs)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(segs))

	for _, seg := range segs {
		if _, ok := r.segments[seg.ID]; !ok {
			return nil, &UnknownSegmentError{ID: seg.ID}
		}

		if _, ok := seen[seg.ID]; ok {
			return nil, &DuplicateSegmentError{ID: seg.ID}
		}

		seen[seg.ID] = struct{}{}
	}

	out := make([]*segment.Segment, 0, len(segs))

	for _, seg := range segs {
		row := r.rowOf[seg.ID]
		r.evict(seg.ID)
		r.free = append(r.free, row)
		r.admit(seg)
		out = append(out, seg.Clone())
	}

	return out, nil
}

// Deregister removes a segment from the catalog.
func (r *Registry) Deregister(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()

	_, ok := r.segments[id]
	if ok {
		row := r.rowOf[id]
		r.evict(id)
		r.free = append(r.free, row)
	}

	r.mu.Unlock()

	if !ok {
		return &UnknownSegmentError{ID: id}
	}

	r.logger.DebugContext(ctx, "segment deregistered", "segment", id)

	return nil
}

// Get returns a clone of the segment with the given ID.
func (r *Registry) Get(id uuid.UUID) (*segment.Segment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seg, ok := r.segments[id]
	if !ok {
		return nil, &UnknownSegmentError{ID: id}
	}

	return seg.Clone(), nil
}

// Len returns the number of registered segments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.segments)
}

// ByCollection returns clones of all segments of a collection, sorted
// by segment ID.
func (r *Registry) ByCollection(id uuid.UUID) []*segment.Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.query(r.byCollection[id])
}

// ByType returns clones of all segments of a type, sorted by segment ID.
func (r *Registry) ByType(t segment.Type) []*segment.Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.query(r.byType[t])
}

// ByScope returns clones of all segments of a scope, sorted by segment ID.
func (r *Registry) ByScope(s scope.Scope) []*segment.Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.query(r.byScope[s])
}

func (r *Registry) convertAll(descs []*wire.Segment) ([]*segment.Segment, error) {
	segs := make([]*segment.Segment, 0, len(descs))

	for _, desc := range descs {
		start := time.Now()

		seg, err := r.converter.Convert(desc)

		r.metrics.RecordConvert(time.Since(start), err)

		if err != nil {
			return nil, err
		}

		segs = append(segs, seg)
	}

	return segs, nil
}

// admit inserts a segment. Caller holds the write lock and has ruled
// out ID collisions.
func (r *Registry) admit(seg *segment.Segment) {
	var row uint32

	if n := len(r.free); n > 0 {
		row = r.free[n-1]
		r.free = r.free[:n-1]
		r.rows[row] = seg.ID
	} else {
		row = uint32(len(r.rows))
		r.rows = append(r.rows, seg.ID)
	}

	r.segments[seg.ID] = seg
	r.rowOf[seg.ID] = row

	posting(r.byCollection, seg.Collection).Add(row)
	posting(r.byType, seg.Type).Add(row)
	posting(r.byScope, seg.Scope).Add(row)
}

// evict removes a segment from the maps and posting lists without
// freeing its row. Caller holds the write lock.
func (r *Registry) evict(id uuid.UUID) {
	seg := r.segments[id]
	row := r.rowOf[id]

	if bm := r.byCollection[seg.Collection]; bm != nil {
		bm.Remove(row)
	}

	if bm := r.byType[seg.Type]; bm != nil {
		bm.Remove(row)
	}

	if bm := r.byScope[seg.Scope]; bm != nil {
		bm.Remove(row)
	}

	delete(r.segments, id)
	delete(r.rowOf, id)
}

// query collects the segments behind a posting list as clones sorted
// by segment ID. Caller holds at least the read lock.
func (r *Registry) query(bm *roaring.Bitmap) []*segment.Segment {
	if bm == nil || bm.IsEmpty() {
		return nil
	}

	out := make([]*segment.Segment, 0, bm.GetCardinality())

	it := bm.Iterator()
	for it.HasNext() {
		id := r.rows[it.Next()]
		out = append(out, r.segments[id].Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})

	return out
}

// snapshot returns clones of every registered segment sorted by ID.
func (r *Registry) snapshot() []*segment.Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*segment.Segment, 0, len(r.segments))
	for _, seg := range r.segments {
		out = append(out, seg.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})

	return out
}

// replaceAll swaps the catalog content, rebuilding rows and posting
// lists from scratch.
func (r *Registry) replaceAll(segs []*segment.Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.segments = make(map[uuid.UUID]*segment.Segment, len(segs))
	r.rows = r.rows[:0]
	r.rowOf = make(map[uuid.UUID]uint32, len(segs))
	r.free = nil
	r.byCollection = make(map[uuid.UUID]*roaring.Bitmap)
	r.byType = make(map[segment.Type]*roaring.Bitmap)
	r.byScope = make(map[scope.Scope]*roaring.Bitmap)

	for _, seg := range segs {
		r.admit(seg)
	}
}

// posting returns the bitmap for key, creating it on first use.
func posting[K comparable](m map[K]*roaring.Bitmap, key K) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}

	return bm
}
