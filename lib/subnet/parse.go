// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package subnet

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"lukechampine.com/uint128"
)

// stripComment removes a trailing "#" comment and surrounding
// whitespace from a list line.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ParseBlock parses a single address or CIDR block. The line may carry
// a trailing "#" comment. Returns ok=false for blank or comment-only
// input. Host bits beyond an explicit prefix are cleared.
func ParseBlock(line string) (block Subnet, ok bool, err error) {
	text := stripComment(line)
	if text == "" {
		return Subnet{}, false, nil
	}

	addrText := text
	prefix := -1
	if i := strings.IndexByte(text, '/'); i >= 0 {
		addrText = text[:i]
		prefix, err = strconv.Atoi(text[i+1:])
		if err != nil {
			return Subnet{}, false, fmt.Errorf("invalid prefix length in %q: %w", text, err)
		}
	}

	addr, err := netip.ParseAddr(addrText)
	if err != nil {
		return Subnet{}, false, fmt.Errorf("invalid address %q: %w", addrText, err)
	}

	family, value := split(addr)
	if prefix < 0 {
		prefix = int(family.Width())
	}
	if prefix > int(family.Width()) {
		return Subnet{}, false, fmt.Errorf("prefix /%d exceeds %s width", prefix, family)
	}
	return New(family, value, uint8(prefix)), true, nil
}

// MustBlock parses a block and panics on error or blank input. For
// tests and static tables.
func MustBlock(line string) Subnet {
	block, ok, err := ParseBlock(line)
	if err != nil {
		panic("subnet.MustBlock(" + strconv.Quote(line) + "): " + err.Error())
	}
	if !ok {
		panic("subnet.MustBlock(" + strconv.Quote(line) + "): blank input")
	}
	return block
}

// parseRange parses "from,to" into the two endpoint blocks. Both
// endpoints must parse and belong to the same family. Endpoints may
// themselves carry prefixes; only their network addresses are used.
func parseRange(text string) (from, to Subnet, err error) {
	parts := strings.SplitN(stripComment(text), ",", 3)
	if len(parts) < 2 {
		return Subnet{}, Subnet{}, fmt.Errorf("range %q: missing second endpoint", text)
	}
	from, ok, err := ParseBlock(parts[0])
	if err != nil {
		return Subnet{}, Subnet{}, fmt.Errorf("range start: %w", err)
	}
	if !ok {
		return Subnet{}, Subnet{}, fmt.Errorf("range %q: empty start", text)
	}
	to, ok, err = ParseBlock(parts[1])
	if err != nil {
		return Subnet{}, Subnet{}, fmt.Errorf("range end: %w", err)
	}
	if !ok {
		return Subnet{}, Subnet{}, fmt.Errorf("range %q: empty end", text)
	}
	if from.family != to.family {
		return Subnet{}, Subnet{}, fmt.Errorf("range %q: mixed address families", text)
	}
	return from, to, nil
}

// appendRange decomposes the inclusive address range [from, to] into
// its minimal CIDR cover and inserts each block into the set with the
// given state. The classic two-pointer walk: peel misaligned blocks
// off both ends, then halve the resolution and repeat.
func appendRange(s *Set, family Family, from, to uint128.Uint128, tag state) {
	width := uint(family.Width())
	prefix := family.Width()
	for from.Cmp(to) <= 0 {
		if from.Equals(to) {
			addr := from.Lsh(width - uint(prefix))
			s.insert(Subnet{family: family, addr: addr, prefix: prefix, state: tag})
			return
		}
		if from.Lo&1 == 1 {
			addr := from.Lsh(width - uint(prefix))
			s.insert(Subnet{family: family, addr: addr, prefix: prefix, state: tag})
			from = from.Add64(1)
		}
		if to.Lo&1 == 0 {
			addr := to.Lsh(width - uint(prefix))
			s.insert(Subnet{family: family, addr: addr, prefix: prefix, state: tag})
			to = to.Sub64(1)
		}
		for from.Lo&1 == 0 && to.Lo&1 == 1 {
			prefix--
			from = from.Rsh(1)
			to = to.Rsh(1)
		}
	}
}
