// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package listio

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cidr-tools/cidr/lib/subnet"
)

// maxLineBytes bounds a single list line. Real list lines are under a
// hundred bytes; the limit only guards against scanning a binary file
// as text.
const maxLineBytes = 1 << 16

// ReadStats reports what a list read consumed.
type ReadStats struct {
	// Lines is the total number of input lines, including blanks and
	// comments.
	Lines int

	// Skipped counts lines that did not parse. Unparseable lines are
	// not fatal: published lists routinely carry headers and junk.
	Skipped int
}

// Decompress wraps r with the decompressor matching its leading magic
// bytes. Plain text passes through. Closing the returned reader
// releases decoder state; it never closes r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	buffered := bufio.NewReader(r)
	prefix, err := buffered.Peek(len(magicXZ))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sniffing stream: %w", err)
	}
	return newDecompressor(buffered, DetectCompression(prefix))
}

// ReadList parses a subnet list from r into set, decompressing
// transparently. Unparseable lines are skipped and counted, logged at
// debug level. The caller decides whether a nonzero skip count is an
// error.
func ReadList(r io.Reader, set *subnet.Set, logger *slog.Logger) (ReadStats, error) {
	decompressed, err := Decompress(r)
	if err != nil {
		return ReadStats{}, err
	}
	defer decompressed.Close()

	var stats ReadStats
	scanner := bufio.NewScanner(decompressed)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		if err := set.AddLine(scanner.Text()); err != nil {
			stats.Skipped++
			logger.Debug("skipping unparseable list line",
				"line", stats.Lines, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading list: %w", err)
	}
	return stats, nil
}

// OpenInput opens a list file for reading with transparent
// decompression. The path "-" means stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		decompressed, err := Decompress(os.Stdin)
		if err != nil {
			return nil, err
		}
		return decompressed, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decompressed, err := Decompress(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &inputFile{ReadCloser: decompressed, file: file}, nil
}

// ReadFile loads a whole list file into set. Convenience wrapper for
// the exclude-file and named-list paths.
func ReadFile(path string, set *subnet.Set, logger *slog.Logger) (ReadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReadStats{}, err
	}
	defer file.Close()
	return ReadList(file, set, logger)
}

// inputFile ties a decompressor to the file underneath it so a single
// Close tears down both.
type inputFile struct {
	io.ReadCloser
	file *os.File
}

func (f *inputFile) Close() error {
	decodeErr := f.ReadCloser.Close()
	fileErr := f.file.Close()
	if decodeErr != nil {
		return decodeErr
	}
	return fileErr
}
