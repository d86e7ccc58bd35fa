// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// ChecksumFileName is the checksum manifest written next to the
// archives, in the conventional two-space sums format.
const ChecksumFileName = "B3SUMS"

// WriteChecksums writes the checksum manifest for the artifacts into
// dir, one "<hex>  <name>" line per archive.
func WriteChecksums(dir string, artifacts []Artifact) (string, error) {
	path := filepath.Join(dir, ChecksumFileName)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating checksum manifest: %w", err)
	}
	w := bufio.NewWriter(out)
	for _, artifact := range artifacts {
		fmt.Fprintf(w, "%s  %s\n", hex.EncodeToString(artifact.Checksum[:]), artifact.Name)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

// ReadChecksums parses a checksum manifest into a name-to-digest map.
func ReadChecksums(path string) (map[string][32]byte, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	sums := make(map[string][32]byte)
	scanner := bufio.NewScanner(in)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		digestHex, name, found := strings.Cut(line, "  ")
		if !found {
			return nil, fmt.Errorf("%s:%d: malformed checksum line", path, lineNumber)
		}
		raw, err := hex.DecodeString(digestHex)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("%s:%d: malformed digest for %s", path, lineNumber, name)
		}
		var digest [32]byte
		copy(digest[:], raw)
		sums[name] = digest
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

// ChecksumFile returns the BLAKE3 digest of a file's contents.
func ChecksumFile(path string) ([32]byte, error) {
	var digest [32]byte
	in, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer in.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, in); err != nil {
		return digest, fmt.Errorf("hashing %s: %w", path, err)
	}
	hasher.Sum(digest[:0])
	return digest, nil
}

// VerifyArchive recomputes an archive's digest and compares it against
// the manifest entry. Returns an error naming the archive on mismatch
// or when the manifest has no entry for it.
func VerifyArchive(path string, sums map[string][32]byte) error {
	name := filepath.Base(path)
	want, ok := sums[name]
	if !ok {
		return fmt.Errorf("%s: no checksum manifest entry", name)
	}
	got, err := ChecksumFile(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: checksum mismatch (have %s, manifest says %s)",
			name, hex.EncodeToString(got[:]), hex.EncodeToString(want[:]))
	}
	return nil
}
