// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package listio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cidr-tools/cidr/lib/subnet"
)

// SplitPrefixes selects optional per-family output splitting. Zero
// means no splitting for that family.
type SplitPrefixes struct {
	V4 uint8
	V6 uint8
}

// Validate rejects targets beyond the family width.
func (p SplitPrefixes) Validate() error {
	if p.V4 > 32 {
		return fmt.Errorf("v4 split prefix /%d exceeds 32", p.V4)
	}
	if p.V6 > 128 {
		return fmt.Errorf("v6 split prefix /%d exceeds 128", p.V6)
	}
	return nil
}

// target returns the split prefix for a family, or 0 for none.
func (p SplitPrefixes) target(f subnet.Family) uint8 {
	if f == subnet.V4 {
		return p.V4
	}
	return p.V6
}

// WriteList writes the set in canonical order, one CIDR block per
// line. Blocks whose family has a split target longer than their own
// prefix are expanded to that target length.
func WriteList(w io.Writer, set *subnet.Set, split SplitPrefixes) error {
	if err := split.Validate(); err != nil {
		return err
	}

	buffered := bufio.NewWriter(w)
	var writeErr error
	set.Walk(func(block subnet.Subnet) bool {
		target := split.target(block.Family())
		if target == 0 {
			writeErr = writeBlock(buffered, block)
			return writeErr == nil
		}
		if err := block.Split(target, func(sub subnet.Subnet) bool {
			writeErr = writeBlock(buffered, sub)
			return writeErr == nil
		}); err != nil {
			writeErr = err
		}
		return writeErr == nil
	})
	if writeErr != nil {
		return writeErr
	}
	return buffered.Flush()
}

func writeBlock(w *bufio.Writer, block subnet.Subnet) error {
	if _, err := w.WriteString(block.String()); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// OpenOutput creates a list file for writing, compressing according
// to the filename extension. The path "-" means stdout. The caller
// must Close the result to flush codec trailers.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	encoder, err := NewCompressedWriter(file, CompressionForPath(path))
	if err != nil {
		file.Close()
		return nil, err
	}
	return &outputFile{WriteCloser: encoder, file: file}, nil
}

// WriteFile writes the set to a file chosen by OpenOutput.
func WriteFile(path string, set *subnet.Set, split SplitPrefixes) error {
	out, err := OpenOutput(path)
	if err != nil {
		return err
	}
	if err := WriteList(out, set, split); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// outputFile ties a codec writer to the file underneath it so a
// single Close flushes the trailer and closes the file.
type outputFile struct {
	io.WriteCloser
	file *os.File
}

func (f *outputFile) Close() error {
	encodeErr := f.WriteCloser.Close()
	fileErr := f.file.Close()
	if encodeErr != nil {
		return encodeErr
	}
	return fileErr
}
