package chromad

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chromad/codes"
	"github.com/hupe1980/chromad/scope"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/storage"
	"github.com/hupe1980/chromad/wire"
)

func TestWorker_CatalogOnly(t *testing.T) {
	ctx := context.Background()

	w := New()

	segs, err := w.RegisterSegments(ctx, []*wire.Segment{
		testDescriptor(seqUUID(1), seqUUID(100)),
		testMetadataDescriptor(seqUUID(2), seqUUID(100)),
	})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 2, w.Len())

	assert.Len(t, w.SegmentsByCollection(seqUUID(100)), 2)
	assert.Len(t, w.SegmentsByType(segment.TypeHnswDistributed), 1)
	assert.Len(t, w.SegmentsByScope(scope.Metadata), 1)

	require.NoError(t, w.DeregisterSegment(ctx, seqUUID(2)))
	assert.Equal(t, 1, w.Len())
}

func TestWorker_PushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	metrics := &BasicMetricsCollector{}

	w := New(WithStorage(mem), WithMetrics(metrics))

	desc := testDescriptor(seqUUID(1), seqUUID(100))
	desc.FilePaths = map[string]*wire.FilePaths{
		"hnsw": {Paths: []string{"hnsw/index.bin", "hnsw/graph.bin"}},
	}

	_, err := w.RegisterSegments(ctx, []*wire.Segment{desc})
	require.NoError(t, err)

	src := t.TempDir()
	writeTestFile(t, src, "hnsw/index.bin", []byte("index"))
	writeTestFile(t, src, "hnsw/graph.bin", []byte("graph"))

	require.NoError(t, w.PushSegment(ctx, seqUUID(1), src))
	assert.Equal(t, 2, mem.Len())

	dst := t.TempDir()
	require.NoError(t, w.PullSegment(ctx, seqUUID(1), dst))

	data, err := os.ReadFile(filepath.Join(dst, "hnsw", "index.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("index"), data)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.PushCount)
	assert.Equal(t, int64(2), stats.PushFiles)
	assert.Equal(t, int64(1), stats.PullCount)
	assert.Equal(t, int64(2), stats.PullFiles)
	assert.Equal(t, int64(0), stats.PullErrors)
}

func TestWorker_PullWithoutStorage(t *testing.T) {
	ctx := context.Background()

	w := New()

	_, err := w.RegisterSegments(ctx, []*wire.Segment{testDescriptor(seqUUID(1), seqUUID(100))})
	require.NoError(t, err)

	err = w.PullSegment(ctx, seqUUID(1), t.TempDir())

	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "storage", missing.Dependency)
	assert.Equal(t, codes.FailedPrecondition, codes.Of(err))

	err = w.PushSegment(ctx, seqUUID(1), t.TempDir())
	require.ErrorAs(t, err, &missing)
}

func TestWorker_PullUnknownSegment(t *testing.T) {
	ctx := context.Background()

	w := New(WithStorage(storage.NewMemory()))

	err := w.PullSegment(ctx, seqUUID(1), t.TempDir())

	var unknown *UnknownSegmentError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, codes.NotFound, codes.Of(err))
}

func TestWorker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	commits := &fakeCommitStore{}
	metrics := &BasicMetricsCollector{}

	w := New(
		WithStorage(mem),
		WithCommitStore(commits),
		WithMetrics(metrics),
		WithLogger(NoopLogger()),
	)

	desc := testDescriptor(seqUUID(1), seqUUID(100))
	desc.FilePaths = map[string]*wire.FilePaths{
		"hnsw": {Paths: []string{"hnsw/index.bin"}},
	}

	_, err := w.RegisterSegments(ctx, []*wire.Segment{desc})
	require.NoError(t, err)

	src := t.TempDir()
	writeTestFile(t, src, "hnsw/index.bin", []byte("index"))
	require.NoError(t, w.PushSegment(ctx, seqUUID(1), src))

	version, err := w.Checkpoint(ctx, "checkpoints/ckpt-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	// A fresh worker recovers catalog and files from the backend alone.
	recovered := New(WithStorage(mem), WithCommitStore(commits))

	version, err = recovered.RestoreLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	require.Equal(t, 1, recovered.Len())

	dst := t.TempDir()
	require.NoError(t, recovered.PullSegment(ctx, seqUUID(1), dst))

	data, err := os.ReadFile(filepath.Join(dst, "hnsw", "index.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("index"), data)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RegisterCount)
	assert.Equal(t, int64(1), stats.RegisterSegments)
	assert.Equal(t, int64(1), stats.CheckpointCount)
	assert.Equal(t, int64(1), stats.CheckpointSegments)
}

func TestWorker_MetricsRecordConversionFailures(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	w := New(WithMetrics(metrics))

	bad := testDescriptor(seqUUID(1), seqUUID(100))
	bad.ID = "not-a-uuid"

	_, err := w.RegisterSegments(ctx, []*wire.Segment{bad})
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ConvertCount)
	assert.Equal(t, int64(1), stats.ConvertErrors)
	assert.Equal(t, int64(1), stats.RegisterCount)
	assert.Equal(t, int64(1), stats.RegisterErrors)
	assert.Equal(t, int64(0), stats.RegisterSegments)
}
