// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package listio

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/cidr-tools/cidr/lib/subnet"
)

// Fingerprint is a 32-byte BLAKE3 digest of a list's canonical form.
// Two sets fingerprint equal exactly when their canonical walks are
// identical, regardless of how the lists were written or compressed.
type Fingerprint [32]byte

// listDomainKey is the BLAKE3 keyed-hash domain for list
// fingerprints: the ASCII domain name zero-padded to 32 bytes. Keyed
// hashing keeps list fingerprints from colliding with any other
// BLAKE3 use of the same bytes (checksums of list files, for one).
var listDomainKey = [32]byte{
	'c', 'i', 'd', 'r', '.', 'l', 'i', 's', 't', '.', 'v', '1',
}

// String returns the digest as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintSet computes the fingerprint of the set's canonical
// form: each block in canonical order, CIDR notation, one per line.
func FingerprintSet(set *subnet.Set) Fingerprint {
	// NewKeyed only fails for a key of the wrong length, which the
	// fixed-size array rules out.
	hasher, err := blake3.NewKeyed(listDomainKey[:])
	if err != nil {
		panic("listio: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	set.Walk(func(block subnet.Subnet) bool {
		hasher.Write([]byte(block.String()))
		hasher.Write([]byte{'\n'})
		return true
	})
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint
}
