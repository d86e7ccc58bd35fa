// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package subnet

import (
	"fmt"

	"lukechampine.com/uint128"
)

// Split calls fn for every aligned sub-block of s at the target
// prefix length, in address order, stopping early if fn returns
// false. When target is not longer than the block's own prefix, fn is
// called once with the block unchanged. The target must not exceed
// the family width.
//
// Sub-blocks are generated by stepping the network address, so a
// split never materializes the full result; splitting ::/0 to /128
// is the caller's own denial of service.
func (s Subnet) Split(target uint8, fn func(Subnet) bool) error {
	if target > s.family.Width() {
		return fmt.Errorf("target prefix /%d exceeds %s width", target, s.family)
	}
	if target <= s.prefix {
		fn(s)
		return nil
	}

	step := hostMask(s.family, target).Add64(1)
	// Network address of the final sub-block: the block's top address
	// with the sub-block host bits cleared.
	lastAddr := s.last().And(hostMask(s.family, target).Xor(uint128.Max))

	current := s.addr
	for {
		sub := Subnet{family: s.family, addr: current, prefix: target}
		if !fn(sub) {
			return nil
		}
		if current.Equals(lastAddr) {
			return nil
		}
		current = current.Add(step)
	}
}
