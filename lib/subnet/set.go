// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package subnet

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/google/btree"
	"lukechampine.com/uint128"
)

// btreeDegree is the branching factor of the backing B-tree. List
// workloads are insert-heavy with a single ordered walk at the end;
// a moderate degree keeps nodes cache-friendly without deep trees.
const btreeDegree = 32

// Set is a sorted, duplicate-free collection of subnets. Ordering
// follows [Subnet.Compare], so a container block always precedes the
// blocks it contains and IPv4 precedes IPv6.
//
// A Set is not safe for concurrent mutation.
type Set struct {
	tree *btree.BTreeG[Subnet]
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{
		tree: btree.NewG(btreeDegree, func(a, b Subnet) bool {
			return a.Compare(b) < 0
		}),
	}
}

// Insert adds a block to the set. Duplicates are absorbed.
func (s *Set) Insert(block Subnet) {
	block.state = stateKeep
	s.insert(block)
}

func (s *Set) insert(block Subnet) {
	s.tree.ReplaceOrInsert(block)
}

// Len returns the number of blocks in the set.
func (s *Set) Len() int { return s.tree.Len() }

// Walk visits blocks in canonical order until fn returns false.
func (s *Set) Walk(fn func(Subnet) bool) {
	s.tree.Ascend(fn)
}

// Blocks returns all blocks in canonical order.
func (s *Set) Blocks() []Subnet {
	blocks := make([]Subnet, 0, s.tree.Len())
	s.tree.Ascend(func(block Subnet) bool {
		blocks = append(blocks, block)
		return true
	})
	return blocks
}

// AddLine parses one list line and inserts the result. Blank lines and
// comments are no-ops. A line containing a comma is an inclusive range
// and expands to its minimal CIDR cover.
func (s *Set) AddLine(line string) error {
	if strings.ContainsRune(line, ',') {
		from, to, err := parseRange(line)
		if err != nil {
			return err
		}
		appendRange(s, from.family, from.addr, to.addr, stateKeep)
		return nil
	}
	block, ok, err := ParseBlock(line)
	if err != nil {
		return err
	}
	if ok {
		s.insert(block)
	}
	return nil
}

// AddRange inserts the minimal CIDR cover of the inclusive range
// [from, to]. The endpoints must be the same family and ordered.
func (s *Set) AddRange(from, to Subnet) error {
	if from.family != to.family {
		return fmt.Errorf("mixed address families in range")
	}
	if from.addr.Cmp(to.addr) > 0 {
		return fmt.Errorf("range start %s is above range end %s", from.Addr(), to.Addr())
	}
	appendRange(s, from.family, from.addr, to.addr, stateKeep)
	return nil
}

// Compact normalizes the set in place: blocks contained in other
// blocks are dropped and adjacent sibling blocks collapse into their
// parents, cascading until no merge applies.
//
// With merge set, a container that absorbs a block is kept as output
// regardless of its origin; without it, the container is condemned
// and both blocks disappear, leaving only blocks untouched by
// containment. Plain input is always compacted with merge set; the
// strict mode exists for [Set.Exclude], after permitted-space blocks
// have been folded in.
func (s *Set) Compact(merge bool) {
	var kept []Subnet
	var last Subnet
	haveLast := false

	s.tree.Ascend(func(block Subnet) bool {
		if haveLast && last.Contains(block) {
			if merge {
				kept[len(kept)-1].state = stateKeep
			} else {
				kept[len(kept)-1].state = stateCondemned
			}
			return true
		}
		last = block
		haveLast = true
		kept = mergeAdjacent(kept, block)
		return true
	})

	s.tree.Clear(false)
	for _, block := range kept {
		if block.state == stateKeep {
			s.tree.ReplaceOrInsert(block)
		}
	}
}

// mergeAdjacent pushes block onto the stack, first collapsing any
// chain of even/odd sibling pairs with matching state into their
// parents. The stack stays sorted and merge-free below the top.
func mergeAdjacent(stack []Subnet, block Subnet) []Subnet {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.state != block.state || !top.precedes(block) {
			break
		}
		stack = stack[:len(stack)-1]
		top.prefix--
		block = top
	}
	return append(stack, block)
}

// Invert returns the complement of the set: the minimal CIDR cover of
// every address, in either family, not covered by any block. An empty
// set inverts to 0.0.0.0/0 plus ::/0.
//
// Works on overlapping input, but the usual caller compacts first.
func (s *Set) Invert() *Set {
	out := NewSet()

	// Per-family cursor: the lowest address not yet known to be
	// covered. exhausted means coverage reached the top of the
	// family's space, so no further gap exists.
	type cursor struct {
		next      uint128.Uint128
		exhausted bool
	}
	var cursors [2]cursor

	s.tree.Ascend(func(block Subnet) bool {
		c := &cursors[0]
		if block.family == V6 {
			c = &cursors[1]
		}
		if c.exhausted {
			return true
		}
		if block.addr.Cmp(c.next) > 0 {
			appendRange(out, block.family, c.next, block.addr.Sub64(1), stateKeep)
		}
		end := block.last()
		if end.Equals(familyMax(block.family)) {
			c.exhausted = true
			return true
		}
		if next := end.Add64(1); next.Cmp(c.next) > 0 {
			c.next = next
		}
		return true
	})

	if c := cursors[0]; !c.exhausted {
		appendRange(out, V4, c.next, familyMax(V4), stateKeep)
	}
	if c := cursors[1]; !c.exhausted {
		appendRange(out, V6, c.next, familyMax(V6), stateKeep)
	}
	return out
}

// Exclude resolves the set against a forbidden list: the forbidden
// set is inverted into permitted-space blocks, those are folded in,
// and a compact pass resolves the result. With merge set (the
// default), every block widens to the largest permitted block that
// contains it, so aggregation never crosses into forbidden space. In
// strict mode, blocks involved in any containment are discarded
// instead.
//
// Exclusion bounds aggregation; it is not subtraction. An input block
// lying entirely inside forbidden space matches no permitted block
// and passes through unchanged.
func (s *Set) Exclude(forbidden *Set, merge bool) {
	for _, block := range forbidden.Invert().Blocks() {
		block.state = statePermitted
		s.insert(block)
	}
	s.Compact(merge)
}

// ContainsAddr reports whether any block in the set covers the
// address. The set must be compacted: with disjoint blocks, the
// nearest block starting at or below the address is the only possible
// container, so the lookup is a single B-tree descent.
func (s *Set) ContainsAddr(addr netip.Addr) bool {
	target := FromAddr(addr)
	// stateCondemned sorts last among equal blocks, so the probe sits
	// at or after every candidate container.
	probe := Subnet{family: target.family, addr: target.addr, prefix: target.prefix, state: stateCondemned}
	found := false
	s.tree.DescendLessOrEqual(probe, func(block Subnet) bool {
		if block.family == target.family {
			found = block.Contains(target)
		}
		return false
	})
	return found
}
