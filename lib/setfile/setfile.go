// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package setfile implements the compiled set format: a CBOR
// container holding a compacted subnet list as sorted per-family
// entries, built once with "cidr compile" and loaded for fast
// membership checks without re-parsing and re-compacting text lists.
//
// The encoding is deterministic (lib/codec), so compiling the same
// list always produces the same file.
package setfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
	"os"
	"sort"

	"github.com/cidr-tools/cidr/lib/codec"
	"github.com/cidr-tools/cidr/lib/listio"
	"github.com/cidr-tools/cidr/lib/subnet"
)

// Magic identifies a compiled set file.
const Magic = "cidrset"

// Version is the current format version. Readers reject other
// versions; the format carries no migration machinery.
const Version = 1

// entryV4 is one IPv4 block: network address and prefix length.
type entryV4 struct {
	Net    uint32 `cbor:"1,keyasint"`
	Prefix uint8  `cbor:"2,keyasint"`
}

// entryV6 is one IPv6 block: network address halves and prefix
// length.
type entryV6 struct {
	Hi     uint64 `cbor:"1,keyasint"`
	Lo     uint64 `cbor:"2,keyasint"`
	Prefix uint8  `cbor:"3,keyasint"`
}

// body is the CBOR document layout.
type body struct {
	Magic       string    `cbor:"magic"`
	Version     uint32    `cbor:"version"`
	Fingerprint []byte    `cbor:"fingerprint"`
	V4          []entryV4 `cbor:"v4"`
	V6          []entryV6 `cbor:"v6"`
}

// File is a loaded compiled set. Entries are sorted and disjoint, so
// membership is a binary search per family.
type File struct {
	fingerprint listio.Fingerprint
	v4          []entryV4
	v6          []entryV6
}

// Compile builds a compiled set from a subnet set. The set is
// compacted first so the stored entries are disjoint; compilation
// does not mutate the caller's set.
func Compile(set *subnet.Set) *File {
	compacted := subnet.NewSet()
	set.Walk(func(block subnet.Subnet) bool {
		compacted.Insert(block)
		return true
	})
	compacted.Compact(true)

	file := &File{fingerprint: listio.FingerprintSet(compacted)}
	compacted.Walk(func(block subnet.Subnet) bool {
		if block.Family() == subnet.V4 {
			b := block.Addr().As4()
			file.v4 = append(file.v4, entryV4{
				Net:    binary.BigEndian.Uint32(b[:]),
				Prefix: block.Prefix(),
			})
		} else {
			b := block.Addr().As16()
			file.v6 = append(file.v6, entryV6{
				Hi:     binary.BigEndian.Uint64(b[:8]),
				Lo:     binary.BigEndian.Uint64(b[8:]),
				Prefix: block.Prefix(),
			})
		}
		return true
	})
	return file
}

// Fingerprint returns the fingerprint of the compacted list the file
// was compiled from.
func (f *File) Fingerprint() listio.Fingerprint { return f.fingerprint }

// Len returns the total number of blocks.
func (f *File) Len() int { return len(f.v4) + len(f.v6) }

// Contains reports whether the compiled set covers the address.
func (f *File) Contains(addr netip.Addr) bool {
	if addr.Is4() {
		b := addr.As4()
		value := binary.BigEndian.Uint32(b[:])
		// Last entry starting at or below the address is the only
		// candidate container in a disjoint sorted list.
		i := sort.Search(len(f.v4), func(i int) bool { return f.v4[i].Net > value }) - 1
		if i < 0 {
			return false
		}
		entry := f.v4[i]
		shift := 32 - uint(entry.Prefix)
		if shift == 32 {
			return true
		}
		return entry.Net == value>>shift<<shift
	}

	b := addr.As16()
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	i := sort.Search(len(f.v6), func(i int) bool {
		entry := f.v6[i]
		if entry.Hi != hi {
			return entry.Hi > hi
		}
		return entry.Lo > lo
	}) - 1
	if i < 0 {
		return false
	}
	entry := f.v6[i]
	maskedHi, maskedLo := maskV6(hi, lo, entry.Prefix)
	return entry.Hi == maskedHi && entry.Lo == maskedLo
}

// maskV6 clears host bits of a 128-bit address split into halves.
func maskV6(hi, lo uint64, prefix uint8) (uint64, uint64) {
	switch {
	case prefix == 0:
		return 0, 0
	case prefix <= 64:
		shift := 64 - uint(prefix)
		return hi >> shift << shift, 0
	case prefix == 128:
		return hi, lo
	default:
		shift := 128 - uint(prefix)
		return hi, lo >> shift << shift
	}
}

// Write encodes the compiled set to w.
func (f *File) Write(w io.Writer) error {
	document := body{
		Magic:       Magic,
		Version:     Version,
		Fingerprint: f.fingerprint[:],
		V4:          f.v4,
		V6:          f.v6,
	}
	if err := codec.NewEncoder(w).Encode(&document); err != nil {
		return fmt.Errorf("encoding compiled set: %w", err)
	}
	return nil
}

// WriteTo writes the compiled set to a file path.
func (f *File) WriteTo(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Read decodes a compiled set from r, validating magic, version, and
// entry ordering (the membership search depends on sorted entries).
func Read(r io.Reader) (*File, error) {
	var document body
	if err := codec.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("decoding compiled set: %w", err)
	}
	if document.Magic != Magic {
		return nil, fmt.Errorf("not a compiled set file (magic %q)", document.Magic)
	}
	if document.Version != Version {
		return nil, fmt.Errorf("unsupported compiled set version %d (want %d)", document.Version, Version)
	}
	if len(document.Fingerprint) != len(listio.Fingerprint{}) {
		return nil, fmt.Errorf("malformed fingerprint (%d bytes)", len(document.Fingerprint))
	}

	for i := 1; i < len(document.V4); i++ {
		if document.V4[i-1].Net >= document.V4[i].Net {
			return nil, fmt.Errorf("corrupt compiled set: v4 entries out of order at %d", i)
		}
	}
	for i := 1; i < len(document.V6); i++ {
		previous, current := document.V6[i-1], document.V6[i]
		if previous.Hi > current.Hi || (previous.Hi == current.Hi && previous.Lo >= current.Lo) {
			return nil, fmt.Errorf("corrupt compiled set: v6 entries out of order at %d", i)
		}
	}

	file := &File{v4: document.V4, v6: document.V6}
	copy(file.fingerprint[:], document.Fingerprint)
	return file, nil
}

// Load reads a compiled set from a file path.
func Load(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	file, err := Read(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}
