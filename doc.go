// Package chromad provides the segment model and storage plumbing for a
// distributed Chroma-compatible worker.
//
// A worker receives untrusted segment descriptors over the wire,
// validates and normalizes them into immutable Segment values, keeps an
// indexed in-memory catalog of the admitted segments, and moves their
// file sets between local disk and an object storage backend.
//
// # Quick Start
//
// Catalog only:
//
//	w := chromad.New()
//	segs, err := w.RegisterSegments(ctx, descs)
//
// With storage and checkpointing:
//
//	store := s3storage.New(client, "my-bucket", s3storage.WithPrefix("segments/"))
//	commits := s3storage.NewCommitStore(ddb, "chromad-commits", "s3://my-bucket/segments")
//
//	w := chromad.New(
//	    chromad.WithStorage(store),
//	    chromad.WithCommitStore(commits),
//	    chromad.WithLogger(chromad.NewJSONLogger(slog.LevelInfo)),
//	)
//
//	segs, err := w.RegisterSegments(ctx, descs)
//	err = w.PullSegment(ctx, segs[0].ID, "/data/segments")
//	version, err := w.Checkpoint(ctx, "checkpoints/0001.ckpt")
//
// # Conversion Pipeline
//
// Descriptor conversion is strict and fail-fast: identifiers must be
// RFC 4122 UUID strings, the segment type must be one of the four
// canonical URNs, metadata and scope convert through delegates, file
// path lists are copied verbatim, and configuration payloads must be
// well-formed JSON. The first violation aborts the request with a
// typed error carrying a stable code; admission is all-or-nothing.
//
// # Storage
//
// The storage.Storage capability is two calls, Get and Put, moving
// whole files. Local disk, in-memory, Amazon S3 and MinIO backends
// ship in storage/...; Retry, Compressed and Cached decorators stack
// on any backend.
//
// # Key Features
//
//   - Strict descriptor validation with stable, gRPC-aligned error codes
//   - Immutable segment entities; catalog hands out clones only
//   - Roaring-bitmap catalog queries by collection, type and scope
//   - Bounded parallel file sync with optional rate limiting
//   - Self-describing checkpoints with compare-and-swap version commits
package chromad
