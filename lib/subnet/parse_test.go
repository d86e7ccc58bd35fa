// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package subnet

import (
	"strings"
	"testing"
)

func TestParseBlock(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"127.0.0.1", "127.0.0.1/32"},
		{"127.0.0.1   ####hello", "127.0.0.1/32"},
		{"127.0.0.1/31", "127.0.0.0/31"},
		{"127.0.0.1/8", "127.0.0.0/8"},
		{"127.0.0.1/7", "126.0.0.0/7"},
		{"0::1/128", "::1/128"},
		{"2001:db8::dead:beef/32", "2001:db8::/32"},
		{"0.0.0.0/0", "0.0.0.0/0"},
		{"::/0", "::/0"},
	}
	for _, tc := range cases {
		block, ok, err := ParseBlock(tc.input)
		if err != nil {
			t.Errorf("ParseBlock(%q) error: %v", tc.input, err)
			continue
		}
		if !ok {
			t.Errorf("ParseBlock(%q) reported blank input", tc.input)
			continue
		}
		if got := block.String(); got != tc.want {
			t.Errorf("ParseBlock(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseBlock_Blank(t *testing.T) {
	for _, input := range []string{"", "   ", "#", "#127.0.0.1", "  # trailing"} {
		_, ok, err := ParseBlock(input)
		if err != nil {
			t.Errorf("ParseBlock(%q) error: %v", input, err)
		}
		if ok {
			t.Errorf("ParseBlock(%q) parsed a block from blank input", input)
		}
	}
}

func TestParseBlock_Invalid(t *testing.T) {
	cases := []struct {
		input   string
		wantErr string
	}{
		{"127.0.0.1/33", "exceeds v4 width"},
		{"::1/129", "exceeds v6 width"},
		{"1.2.3.4/ab", "invalid prefix"},
		{"not-an-address", "invalid address"},
		{"1.2.3.4.5", "invalid address"},
	}
	for _, tc := range cases {
		_, _, err := ParseBlock(tc.input)
		if err == nil {
			t.Errorf("ParseBlock(%q) succeeded, want error containing %q", tc.input, tc.wantErr)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("ParseBlock(%q) error %q, want substring %q", tc.input, err, tc.wantErr)
		}
	}
}

func TestAddLine_Range(t *testing.T) {
	set := NewSet()
	if err := set.AddLine("223.255.229.0,223.255.230.255,"); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	assertBlocks(t, set, []string{
		"223.255.229.0/24",
		"223.255.230.0/24",
	})
}

func TestAddLine_RangeV6(t *testing.T) {
	set := NewSet()
	err := set.AddLine("2c0f:fc00:b011::,2c0f:fc00:b011:ffff:ffff:ffff:ffff:ffff,")
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	assertBlocks(t, set, []string{"2c0f:fc00:b011::/48"})
}

func TestAddLine_RangeSingleAddress(t *testing.T) {
	set := NewSet()
	if err := set.AddLine("10.0.0.1,10.0.0.1"); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	assertBlocks(t, set, []string{"10.0.0.1/32"})
}

func TestAddLine_RangeWholeV4Space(t *testing.T) {
	set := NewSet()
	if err := set.AddLine("0.0.0.0,255.255.255.255"); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	assertBlocks(t, set, []string{"0.0.0.0/0"})
}

func TestAddLine_RangeErrors(t *testing.T) {
	cases := []struct {
		input   string
		wantErr string
	}{
		{"1.2.3.4,::1", "mixed address families"},
		{"1.2.3.4,", "empty end"},
		{"1.2.3.4,bogus", "invalid address"},
	}
	for _, tc := range cases {
		err := NewSet().AddLine(tc.input)
		if err == nil {
			t.Errorf("AddLine(%q) succeeded, want error containing %q", tc.input, tc.wantErr)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("AddLine(%q) error %q, want substring %q", tc.input, err, tc.wantErr)
		}
	}
}

func TestAddRange_Reversed(t *testing.T) {
	set := NewSet()
	err := set.AddRange(MustBlock("10.0.0.9"), MustBlock("10.0.0.1"))
	if err == nil {
		t.Fatal("AddRange with reversed endpoints succeeded, want error")
	}
}

// assertBlocks compares the set's canonical walk against expected
// CIDR strings.
func assertBlocks(t *testing.T, set *Set, want []string) {
	t.Helper()
	blocks := set.Blocks()
	got := make([]string, len(blocks))
	for i, block := range blocks {
		got[i] = block.String()
	}
	if len(got) != len(want) {
		t.Fatalf("set holds %d blocks %v, want %d blocks %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("block[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
