// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/cidr-tools/cidr/lib/listio"
)

// Artifact is one built release archive.
type Artifact struct {
	// Path is the archive location on disk.
	Path string

	// Name is the archive filename, the key in the checksum manifest.
	Name string

	// Checksum is the BLAKE3 digest of the archive bytes.
	Checksum [32]byte

	// Size is the archive size in bytes.
	Size int64
}

// BuildArchive packages the binary at binaryPath into the target's
// release archive under outDir, returning the artifact with its
// checksum. The archive holds exactly one entry, the executable, with
// a fixed modification time so packaging the same binary twice yields
// identical bytes.
func BuildArchive(binaryPath string, target Target, outDir string) (Artifact, error) {
	binary, err := os.Open(binaryPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("opening binary: %w", err)
	}
	defer binary.Close()

	info, err := binary.Stat()
	if err != nil {
		return Artifact{}, fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("%s is a directory, not a binary", binaryPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Artifact{}, fmt.Errorf("creating %s: %w", outDir, err)
	}

	name := target.ArchiveName()
	path := filepath.Join(outDir, name)
	out, err := os.Create(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("creating archive: %w", err)
	}

	hasher := blake3.New()
	counter := &countingWriter{w: io.MultiWriter(out, hasher)}

	compressor, err := listio.NewCompressedWriter(counter, listio.CompressionXZ)
	if err != nil {
		out.Close()
		return Artifact{}, err
	}

	archive := tar.NewWriter(compressor)
	header := &tar.Header{
		Name:    target.ExecutableName(),
		Mode:    0755,
		Size:    info.Size(),
		ModTime: time.Unix(0, 0),
		Format:  tar.FormatUSTAR,
	}
	if err := archive.WriteHeader(header); err != nil {
		out.Close()
		return Artifact{}, fmt.Errorf("writing archive header: %w", err)
	}
	if _, err := io.Copy(archive, binary); err != nil {
		out.Close()
		return Artifact{}, fmt.Errorf("writing %s into archive: %w", target.ExecutableName(), err)
	}
	if err := archive.Close(); err != nil {
		out.Close()
		return Artifact{}, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := compressor.Close(); err != nil {
		out.Close()
		return Artifact{}, fmt.Errorf("finalizing compression: %w", err)
	}
	if err := out.Close(); err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{Path: path, Name: name, Size: counter.n}
	hasher.Sum(artifact.Checksum[:0])
	return artifact, nil
}

// ExtractExecutable reads a release archive and returns the contents
// of its single executable entry. Used to verify archives after
// packaging.
func ExtractExecutable(path string) ([]byte, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	decompressed, err := listio.Decompress(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer decompressed.Close()

	archive := tar.NewReader(decompressed)
	header, err := archive.Next()
	if err != nil {
		return nil, fmt.Errorf("%s: reading archive: %w", path, err)
	}
	data, err := io.ReadAll(archive)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", path, header.Name, err)
	}
	if _, err := archive.Next(); err != io.EOF {
		return nil, fmt.Errorf("%s: archive has more than one entry", path)
	}
	return data, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
