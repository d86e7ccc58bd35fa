// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package subnet implements the core subnet algebra: parsing of
// addresses, CIDR blocks, and inclusive ranges; a canonically sorted
// subnet set; and the compact, invert, exclude, and split operations
// built on it.
//
// Both address families share one representation: a network address is
// a 128-bit unsigned integer with IPv4 occupying the low 32 bits. All
// range and alignment arithmetic is written once against that integer
// and parameterized only by the family bit width.
package subnet

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"lukechampine.com/uint128"
)

// Family identifies the address family of a subnet.
type Family uint8

const (
	// V4 is IPv4. Sorts before V6.
	V4 Family = 4
	// V6 is IPv6.
	V6 Family = 6
)

// Width returns the family's address size in bits (32 or 128).
func (f Family) Width() uint8 {
	if f == V4 {
		return 32
	}
	return 128
}

// String returns "v4" or "v6".
func (f Family) String() string {
	if f == V4 {
		return "v4"
	}
	return "v6"
}

// state tags a subnet's role during a compact pass. Only stateKeep
// blocks survive compaction; the other states exist transiently while
// exclusion is resolved.
type state uint8

const (
	// stateKeep marks a wanted block. All externally visible blocks
	// carry this state.
	stateKeep state = 0

	// statePermitted marks a block of allowed address space derived
	// from inverting an exclusion list. A permitted block that absorbs
	// a wanted block becomes wanted itself (merge mode).
	statePermitted state = 1

	// stateCondemned marks a container block that absorbed another
	// block in strict (non-merge) mode. Condemned blocks are discarded
	// at the end of the pass.
	stateCondemned state = 2
)

// Subnet is an immutable CIDR block: a family, a prefix-aligned network
// address, and a prefix length. The zero value is not a valid subnet;
// use New or the parsing functions.
type Subnet struct {
	family Family
	addr   uint128.Uint128
	prefix uint8
	state  state
}

// New returns the subnet for the given family, address, and prefix
// length. Host bits beyond the prefix are cleared, mirroring how
// "127.0.0.1/8" normalizes to "127.0.0.0/8".
func New(family Family, addr uint128.Uint128, prefix uint8) Subnet {
	shift := uint(family.Width()) - uint(prefix)
	return Subnet{
		family: family,
		addr:   addr.Rsh(shift).Lsh(shift),
		prefix: prefix,
	}
}

// FromAddr returns the host subnet (/32 or /128) for a parsed address.
// Four-in-six addresses (::ffff:a.b.c.d) stay in the v6 family, same
// as the numeric value they parse to.
func FromAddr(addr netip.Addr) Subnet {
	family, value := split(addr)
	return Subnet{family: family, addr: value, prefix: family.Width()}
}

func split(addr netip.Addr) (Family, uint128.Uint128) {
	if addr.Is4() {
		b := addr.As4()
		return V4, uint128.From64(uint64(binary.BigEndian.Uint32(b[:])))
	}
	b := addr.As16()
	return V6, uint128.New(binary.BigEndian.Uint64(b[8:]), binary.BigEndian.Uint64(b[:8]))
}

// Family returns the subnet's address family.
func (s Subnet) Family() Family { return s.family }

// Prefix returns the prefix length.
func (s Subnet) Prefix() uint8 { return s.prefix }

// Addr returns the network address as a netip.Addr.
func (s Subnet) Addr() netip.Addr {
	if s.family == V4 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(s.addr.Lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], s.addr.Hi)
	binary.BigEndian.PutUint64(b[8:], s.addr.Lo)
	return netip.AddrFrom16(b)
}

// String formats the subnet in CIDR notation. Host subnets keep their
// full prefix length ("127.0.0.1/32"), matching the canonical output
// format of the filter.
func (s Subnet) String() string {
	return fmt.Sprintf("%s/%d", s.Addr(), s.prefix)
}

// AddrCount returns the number of addresses the block covers. The
// second return is false when the count does not fit in 128 bits
// (only ::/0), in which case the maximum value is returned.
func (s Subnet) AddrCount() (uint128.Uint128, bool) {
	bits := uint(s.family.Width()) - uint(s.prefix)
	if bits == 128 {
		return uint128.Max, false
	}
	return uint128.From64(1).Lsh(bits), true
}

// Compare orders subnets by family (v4 first), network address,
// prefix length, then internal state. A container block always sorts
// at or before every block it contains.
func (s Subnet) Compare(other Subnet) int {
	if s.family != other.family {
		if s.family == V4 {
			return -1
		}
		return 1
	}
	if c := s.addr.Cmp(other.addr); c != 0 {
		return c
	}
	if s.prefix != other.prefix {
		if s.prefix < other.prefix {
			return -1
		}
		return 1
	}
	if s.state != other.state {
		if s.state < other.state {
			return -1
		}
		return 1
	}
	return 0
}

// Contains reports whether other lies entirely within s. A subnet
// contains itself. Subnets of different families never contain each
// other.
func (s Subnet) Contains(other Subnet) bool {
	if s.family != other.family || s.prefix > other.prefix {
		return false
	}
	shift := uint(s.family.Width()) - uint(s.prefix)
	return s.addr.Equals(other.addr.Rsh(shift).Lsh(shift))
}

// ContainsAddr reports whether the address lies within s.
func (s Subnet) ContainsAddr(addr netip.Addr) bool {
	return s.Contains(FromAddr(addr))
}

// precedes reports whether s is the even sibling directly before
// other: same family and prefix, s's block index is even, and other's
// index follows it. Two such blocks collapse into their parent.
func (s Subnet) precedes(other Subnet) bool {
	if s.family != other.family || s.prefix != other.prefix {
		return false
	}
	shift := uint(s.family.Width()) - uint(s.prefix)
	index := s.addr.Rsh(shift)
	if index.Lo&1 != 0 {
		return false
	}
	return index.Add64(1).Equals(other.addr.Rsh(shift))
}

// last returns the highest address in the block.
func (s Subnet) last() uint128.Uint128 {
	return s.addr.Or(hostMask(s.family, s.prefix))
}

// hostMask returns the mask of host bits for the given family and
// prefix: (1 << (width-prefix)) - 1.
func hostMask(family Family, prefix uint8) uint128.Uint128 {
	bits := uint(family.Width()) - uint(prefix)
	if bits == 0 {
		return uint128.Zero
	}
	return uint128.Max.Rsh(128 - bits)
}

// familyMax returns the highest address of the family's space.
func familyMax(family Family) uint128.Uint128 {
	if family == V4 {
		return uint128.From64(1<<32 - 1)
	}
	return uint128.Max
}
