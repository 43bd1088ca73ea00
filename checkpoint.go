package chromad

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/chromad/codec"
	"github.com/hupe1980/chromad/metadata"
	"github.com/hupe1980/chromad/scope"
	"github.com/hupe1980/chromad/segment"
)

// checkpointMagic identifies chromad checkpoint files.
var checkpointMagic = [4]byte{'C', 'D', 'C', 'P'}

// checkpointVersion is the current envelope schema version.
const checkpointVersion = 1

// checkpointEnvelope is the codec-encoded payload of a checkpoint
// file. The file itself prefixes it with a magic plus the codec name,
// so restores never depend on worker configuration.
type checkpointEnvelope struct {
	Version       int                 `json:"version"`
	CreatedAtUnix int64               `json:"created_at_unix"`
	Segments      []checkpointSegment `json:"segments"`
}

// checkpointSegment serializes one catalog entry with canonical wire
// strings, so checkpoints stay stable across releases.
type checkpointSegment struct {
	ID                string              `json:"id"`
	Type              string              `json:"type"`
	Scope             int32               `json:"scope"`
	Collection        string              `json:"collection"`
	Metadata          metadata.Metadata   `json:"metadata,omitempty"`
	FilePath          map[string][]string `json:"file_path,omitempty"`
	ConfigurationJSON any                 `json:"configuration_json,omitempty"`
}

// Checkpoint encodes the catalog, stores it under key and, when a
// commit store is configured, publishes key as the next checkpoint
// version. The returned version is 0 without a commit store.
func (w *Worker) Checkpoint(ctx context.Context, key string) (uint64, error) {
	start := time.Now()

	version, count, err := w.checkpoint(ctx, key)

	w.metrics.RecordCheckpoint(count, time.Since(start), err)
	w.logger.LogCheckpoint(ctx, key, count, err)

	return version, err
}

func (w *Worker) checkpoint(ctx context.Context, key string) (uint64, int, error) {
	if w.storage == nil {
		return 0, 0, &MissingDependencyError{Dependency: "storage"}
	}

	segs := w.registry.snapshot()

	env := checkpointEnvelope{
		Version:       checkpointVersion,
		CreatedAtUnix: time.Now().Unix(),
		Segments:      make([]checkpointSegment, 0, len(segs)),
	}

	for _, seg := range segs {
		env.Segments = append(env.Segments, encodeCheckpointSegment(seg))
	}

	body, err := w.codec.Marshal(env)
	if err != nil {
		return 0, len(segs), err
	}

	header, err := encodeCheckpointHeader(w.codec.Name())
	if err != nil {
		return 0, len(segs), err
	}

	dir, err := os.MkdirTemp("", "chromad-ckpt-*")
	if err != nil {
		return 0, len(segs), err
	}
	defer os.RemoveAll(dir)

	p := filepath.Join(dir, "checkpoint")
	if err := os.WriteFile(p, append(header, body...), 0o644); err != nil {
		return 0, len(segs), err
	}

	if err := w.storage.Put(ctx, key, p); err != nil {
		return 0, len(segs), err
	}

	if w.commits == nil {
		return 0, len(segs), nil
	}

	version, err := w.commits.Commit(ctx, key)
	if err != nil {
		return 0, len(segs), err
	}

	return version, len(segs), nil
}

// Restore fetches the checkpoint stored under key, decodes it and
// replaces the catalog content with it.
func (w *Worker) Restore(ctx context.Context, key string) error {
	start := time.Now()

	count, err := w.restore(ctx, key)

	w.metrics.RecordCheckpoint(count, time.Since(start), err)
	w.logger.LogRestore(ctx, key, count, err)

	return err
}

// RestoreLatest resolves the latest committed checkpoint through the
// commit store and restores it. Returns the restored version, or
// ErrNoCheckpoint when nothing has been committed yet.
func (w *Worker) RestoreLatest(ctx context.Context) (uint64, error) {
	if w.commits == nil {
		return 0, &MissingDependencyError{Dependency: "commit store"}
	}

	key, version, err := w.commits.Latest(ctx)
	if err != nil {
		return 0, err
	}

	if key == "" {
		return 0, ErrNoCheckpoint
	}

	if err := w.Restore(ctx, key); err != nil {
		return 0, err
	}

	return version, nil
}

func (w *Worker) restore(ctx context.Context, key string) (int, error) {
	if w.storage == nil {
		return 0, &MissingDependencyError{Dependency: "storage"}
	}

	dir, err := os.MkdirTemp("", "chromad-restore-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	p := filepath.Join(dir, "checkpoint")
	if err := w.storage.Get(ctx, key, p); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return 0, err
	}

	name, body, err := splitCheckpoint(data)
	if err != nil {
		return 0, err
	}

	c, ok := codec.ByName(name)
	if !ok {
		// A custom codec is usable as long as the restoring worker is
		// configured with the same one.
		if w.codec != nil && w.codec.Name() == name {
			c = w.codec
		} else {
			return 0, &CheckpointFormatError{Reason: fmt.Sprintf("unknown codec %q", name)}
		}
	}

	var env checkpointEnvelope
	if err := c.Unmarshal(body, &env); err != nil {
		return 0, &CheckpointFormatError{Reason: "decode envelope", cause: err}
	}

	if env.Version != checkpointVersion {
		return 0, &CheckpointFormatError{Reason: fmt.Sprintf("unsupported envelope version %d", env.Version)}
	}

	segs := make([]*segment.Segment, 0, len(env.Segments))

	for _, cs := range env.Segments {
		seg, err := decodeCheckpointSegment(cs)
		if err != nil {
			return 0, err
		}

		segs = append(segs, seg)
	}

	w.registry.replaceAll(segs)

	return len(segs), nil
}

func encodeCheckpointSegment(seg *segment.Segment) checkpointSegment {
	return checkpointSegment{
		ID:                seg.ID.String(),
		Type:              seg.Type.String(),
		Scope:             seg.Scope.Code(),
		Collection:        seg.Collection.String(),
		Metadata:          seg.Metadata,
		FilePath:          seg.FilePath,
		ConfigurationJSON: seg.ConfigurationJSON,
	}
}

func decodeCheckpointSegment(cs checkpointSegment) (*segment.Segment, error) {
	id, err := uuid.Parse(cs.ID)
	if err != nil {
		return nil, &CheckpointFormatError{Reason: fmt.Sprintf("segment ID %q", cs.ID), cause: err}
	}

	typ, err := segment.TypeFromString(cs.Type)
	if err != nil {
		return nil, &CheckpointFormatError{Reason: fmt.Sprintf("segment %s type", cs.ID), cause: err}
	}

	sc, err := scope.FromCode(cs.Scope)
	if err != nil {
		return nil, &CheckpointFormatError{Reason: fmt.Sprintf("segment %s scope", cs.ID), cause: err}
	}

	coll, err := uuid.Parse(cs.Collection)
	if err != nil {
		return nil, &CheckpointFormatError{Reason: fmt.Sprintf("segment %s collection", cs.ID), cause: err}
	}

	return &segment.Segment{
		ID:                id,
		Type:              typ,
		Scope:             sc,
		Collection:        coll,
		Metadata:          cs.Metadata,
		FilePath:          cs.FilePath,
		ConfigurationJSON: cs.ConfigurationJSON,
	}, nil
}

// encodeCheckpointHeader builds the file prefix: magic, codec name
// length, codec name.
func encodeCheckpointHeader(codecName string) ([]byte, error) {
	if len(codecName) == 0 || len(codecName) > 255 {
		return nil, &CheckpointFormatError{Reason: fmt.Sprintf("codec name %q not encodable", codecName)}
	}

	buf := make([]byte, 0, len(checkpointMagic)+1+len(codecName))
	buf = append(buf, checkpointMagic[:]...)
	buf = append(buf, byte(len(codecName)))
	buf = append(buf, codecName...)

	return buf, nil
}

// splitCheckpoint validates the file prefix and returns the codec name
// and the encoded envelope.
func splitCheckpoint(data []byte) (string, []byte, error) {
	if len(data) < len(checkpointMagic)+1 {
		return "", nil, &CheckpointFormatError{Reason: "file too short"}
	}

	if !bytes.Equal(data[:len(checkpointMagic)], checkpointMagic[:]) {
		return "", nil, &CheckpointFormatError{Reason: "bad magic"}
	}

	n := int(data[len(checkpointMagic)])
	nameStart := len(checkpointMagic) + 1

	if len(data) < nameStart+n {
		return "", nil, &CheckpointFormatError{Reason: "truncated codec name"}
	}

	return string(data[nameStart : nameStart+n]), data[nameStart+n:], nil
}
