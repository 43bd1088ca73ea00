package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm selects the compression codec used by Compressed.
type Algorithm uint8

const (
	// Zstd compresses with zstandard. Best ratio, fast decompression.
	Zstd Algorithm = iota
	// LZ4 compresses with lz4. Lower ratio, very fast both ways.
	LZ4
)

// String returns the name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// Compressed object layout: an 8-byte header followed by the compressed
// stream. The header is magic[4] | algorithm[1] | reserved[3]. Objects
// without the magic are passed through unchanged on Get, so a store can be
// pointed at data written before compression was enabled.
const compressedHeaderSize = 8

var compressedMagic = [4]byte{'c', 'd', 'z', '1'}

// Compressed wraps a Storage and transparently compresses uploads. The key
// space is unchanged; only the object content differs.
type Compressed struct {
	inner Storage
	algo  Algorithm
}

// NewCompressed wraps inner with transparent compression using algo.
func NewCompressed(inner Storage, algo Algorithm) *Compressed {
	return &Compressed{
		inner: inner,
		algo:  algo,
	}
}

// Encoders are pooled: zstd encoder setup is the expensive part of small
// uploads.
var zstdEncoders = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecoders = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// Get fetches key and materializes the decompressed content at path.
func (c *Compressed) Get(ctx context.Context, key, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return opError("get", key, err)
	}

	// Download next to the destination so the final rename stays on one
	// filesystem.
	tmp, err := os.CreateTemp(dir, ".chromad-dl-*")
	if err != nil {
		return opError("get", key, err)
	}

	tmpName := tmp.Name()
	_ = tmp.Close()

	defer os.Remove(tmpName)

	if err := c.inner.Get(ctx, key, tmpName); err != nil {
		return err
	}

	if err := c.materialize(tmpName, path); err != nil {
		return opError("get", key, err)
	}

	return nil
}

// Put compresses the file at path and uploads it under key.
func (c *Compressed) Put(ctx context.Context, key, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return opError("put", key, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "chromad-cmp-*")
	if err != nil {
		return opError("put", key, err)
	}

	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if err := c.compressTo(tmp, src); err != nil {
		_ = tmp.Close()
		return opError("put", key, err)
	}

	if err := tmp.Close(); err != nil {
		return opError("put", key, err)
	}

	return c.inner.Put(ctx, key, tmpName)
}

func (c *Compressed) compressTo(dst io.Writer, src io.Reader) error {
	header := make([]byte, compressedHeaderSize)
	copy(header, compressedMagic[:])
	header[4] = byte(c.algo)

	if _, err := dst.Write(header); err != nil {
		return err
	}

	switch c.algo {
	case Zstd:
		enc := zstdEncoders.Get().(*zstd.Encoder)
		defer zstdEncoders.Put(enc)

		enc.Reset(dst)

		if _, err := io.Copy(enc, src); err != nil {
			return err
		}

		return enc.Close()
	case LZ4:
		w := lz4.NewWriter(dst)

		if _, err := io.Copy(w, src); err != nil {
			return err
		}

		return w.Close()
	default:
		return fmt.Errorf("unsupported compression algorithm %s", c.algo)
	}
}

// materialize turns the downloaded object at src into the final file at
// dst, decompressing when the header says so.
func (c *Compressed) materialize(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, compressedHeaderSize)

	n, err := io.ReadFull(f, header)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// Too small to carry a header: legacy object, pass through.
		return writeFileAtomic(dst, io.MultiReader(bytes.NewReader(header[:n]), f))
	}

	if err != nil {
		return err
	}

	if [4]byte(header[:4]) != compressedMagic {
		return writeFileAtomic(dst, io.MultiReader(bytes.NewReader(header), f))
	}

	switch Algorithm(header[4]) {
	case Zstd:
		dec := zstdDecoders.Get().(*zstd.Decoder)
		defer zstdDecoders.Put(dec)

		if err := dec.Reset(f); err != nil {
			return err
		}

		return writeFileAtomic(dst, dec)
	case LZ4:
		return writeFileAtomic(dst, lz4.NewReader(f))
	default:
		return fmt.Errorf("unsupported compression algorithm byte %d", header[4])
	}
}
