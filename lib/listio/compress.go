// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package listio reads and writes subnet list streams. Input streams
// are transparently decompressed by sniffing magic bytes, so piped
// and file input behave identically whether the list is plain text,
// gzip, zstd, lz4, or xz. Output compression is chosen from the
// destination filename extension.
package listio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies a stream compression codec.
type Compression uint8

const (
	// CompressionNone is plain text.
	CompressionNone Compression = 0

	// CompressionGzip is the ubiquitous interchange format; most
	// published blocklists ship as .gz.
	CompressionGzip Compression = 1

	// CompressionZstd gives better ratios at higher speed than gzip
	// for text lists.
	CompressionZstd Compression = 2

	// CompressionLZ4 is the cheapest codec; useful for very large
	// intermediate lists in pipelines.
	CompressionLZ4 Compression = 3

	// CompressionXZ is the release-archive codec; slow to write,
	// smallest output.
	CompressionXZ Compression = 4
)

// String returns the codec's short name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionXZ:
		return "xz"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a codec from its short name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "xz":
		return CompressionXZ, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// Extension returns the filename extension for the codec, including
// the leading dot, or "" for plain text.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	case CompressionXZ:
		return ".xz"
	default:
		return ""
	}
}

// Stream magic bytes. Detection needs at most six bytes of lookahead.
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// DetectCompression sniffs a codec from the first bytes of a stream.
// Short or unrecognized prefixes report plain text.
func DetectCompression(prefix []byte) Compression {
	switch {
	case bytes.HasPrefix(prefix, magicGzip):
		return CompressionGzip
	case bytes.HasPrefix(prefix, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(prefix, magicLZ4):
		return CompressionLZ4
	case bytes.HasPrefix(prefix, magicXZ):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// CompressionForPath chooses a codec from a filename extension.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".xz":
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// NewCompressedWriter wraps w with the codec's encoder. The returned
// writer must be closed to flush the codec trailer; closing it does
// not close w.
func NewCompressedWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return encoder, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionXZ:
		encoder, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		return encoder, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// newDecompressor wraps r with the codec's decoder. Closing the
// returned reader releases decoder resources without closing r.
func newDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		decoder, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return decoder, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return decoder.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionXZ:
		decoder, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return io.NopCloser(decoder), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
