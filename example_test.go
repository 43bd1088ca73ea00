package chromad_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hupe1980/chromad"
	"github.com/hupe1980/chromad/codes"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/storage"
	"github.com/hupe1980/chromad/wire"
)

// Example demonstrates registering segment descriptors in a
// catalog-only worker.
func Example() {
	ctx := context.Background()
	w := chromad.New()

	// Descriptors arrive as untrusted wire values.
	segs, err := w.RegisterSegments(ctx, []*wire.Segment{
		{
			ID:         "2f3c8ab2-1a71-4a7b-b343-7a4cf5a67b1a",
			Type:       "urn:chroma:segment/vector/hnsw-distributed",
			Scope:      wire.ScopeVector,
			Collection: wire.String("e9a1b604-44ae-4387-b848-74961c4d45c1"),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Registered %d segment(s)\n", len(segs))
	fmt.Println(segs[0].Type)
	// Output:
	// Registered 1 segment(s)
	// urn:chroma:segment/vector/hnsw-distributed
}

// Example_queries demonstrates catalog lookups by collection, type and
// scope.
func Example_queries() {
	ctx := context.Background()
	w := chromad.New()

	collection := "e9a1b604-44ae-4387-b848-74961c4d45c1"

	_, err := w.RegisterSegments(ctx, []*wire.Segment{
		{
			ID:         "55fa1f96-22fe-40fa-90b2-a1ea971d5d7e",
			Type:       "urn:chroma:segment/vector/hnsw-distributed",
			Scope:      wire.ScopeVector,
			Collection: wire.String(collection),
		},
		{
			ID:         "8d1be18a-037a-4a4a-9a99-b01ad26e0eda",
			Type:       "urn:chroma:segment/metadata/sqlite",
			Scope:      wire.ScopeMetadata,
			Collection: wire.String(collection),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	vectors := w.SegmentsByType(segment.TypeHnswDistributed)

	fmt.Printf("Vector segments: %d\n", len(vectors))
	fmt.Printf("Catalog size: %d\n", w.Len())
	// Output:
	// Vector segments: 1
	// Catalog size: 2
}

// Example_errorCodes demonstrates mapping validation failures to
// transport error codes.
func Example_errorCodes() {
	ctx := context.Background()
	w := chromad.New()

	_, err := w.RegisterSegments(ctx, []*wire.Segment{
		{
			ID:         "not-a-uuid",
			Type:       "urn:chroma:segment/vector/hnsw-distributed",
			Scope:      wire.ScopeVector,
			Collection: wire.String("e9a1b604-44ae-4387-b848-74961c4d45c1"),
		},
	})

	fmt.Println(codes.Of(err))
	// Output: INVALID_ARGUMENT
}

// Example_checkpoint demonstrates persisting and restoring the catalog
// through a storage backend.
func Example_checkpoint() {
	ctx := context.Background()
	mem := storage.NewMemory()

	w := chromad.New(chromad.WithStorage(mem))

	_, err := w.RegisterSegments(ctx, []*wire.Segment{
		{
			ID:         "55fa1f96-22fe-40fa-90b2-a1ea971d5d7e",
			Type:       "urn:chroma:segment/record/blockfile",
			Scope:      wire.ScopeMetadata,
			Collection: wire.String("e9a1b604-44ae-4387-b848-74961c4d45c1"),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := w.Checkpoint(ctx, "checkpoints/ckpt-1"); err != nil {
		log.Fatal(err)
	}

	// A fresh worker recovers the catalog from the backend alone.
	restored := chromad.New(chromad.WithStorage(mem))
	if err := restored.Restore(ctx, "checkpoints/ckpt-1"); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Restored %d segment(s)\n", restored.Len())
	// Output: Restored 1 segment(s)
}

// Example_pullPush demonstrates moving a segment's file set between
// local disk and the storage backend.
func Example_pullPush() {
	ctx := context.Background()
	mem := storage.NewMemory()

	w := chromad.New(chromad.WithStorage(mem))

	id := "55fa1f96-22fe-40fa-90b2-a1ea971d5d7e"

	_, err := w.RegisterSegments(ctx, []*wire.Segment{
		{
			ID:         id,
			Type:       "urn:chroma:segment/vector/hnsw-distributed",
			Scope:      wire.ScopeVector,
			Collection: wire.String("e9a1b604-44ae-4387-b848-74961c4d45c1"),
			FilePaths: map[string]*wire.FilePaths{
				"hnsw": {Paths: []string{"hnsw/index.bin"}},
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	src, _ := os.MkdirTemp("", "chromad-example-src")
	defer os.RemoveAll(src)

	os.MkdirAll(filepath.Join(src, "hnsw"), 0o755)
	os.WriteFile(filepath.Join(src, "hnsw", "index.bin"), []byte("index"), 0o600)

	sid := uuid.MustParse(id)

	if err := w.PushSegment(ctx, sid, src); err != nil {
		log.Fatal(err)
	}

	dst, _ := os.MkdirTemp("", "chromad-example-dst")
	defer os.RemoveAll(dst)

	if err := w.PullSegment(ctx, sid, dst); err != nil {
		log.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dst, "hnsw", "index.bin"))
	fmt.Println(string(data))
	// Output: index
}
