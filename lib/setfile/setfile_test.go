// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package setfile

import (
	"bytes"
	"net/netip"
	"path/filepath"
	"testing"

	"github.com/cidr-tools/cidr/lib/subnet"
)

func setOf(t *testing.T, blocks ...string) *subnet.Set {
	t.Helper()
	set := subnet.NewSet()
	for _, block := range blocks {
		set.Insert(subnet.MustBlock(block))
	}
	return set
}

func TestCompile_RoundTrip(t *testing.T) {
	set := setOf(t,
		"10.0.0.0/8",
		"192.168.0.0/24",
		"2001:db8::/32",
		"fe80::/10",
	)
	compiled := Compile(set)

	var buf bytes.Buffer
	if err := compiled.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if loaded.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", loaded.Len())
	}
	if loaded.Fingerprint() != compiled.Fingerprint() {
		t.Fatalf("fingerprint changed across round trip")
	}
}

func TestCompile_CompactsBeforeStoring(t *testing.T) {
	// Adjacent siblings collapse, contained blocks disappear.
	set := setOf(t,
		"10.0.0.0/9",
		"10.128.0.0/9",
		"10.1.2.0/24",
	)
	compiled := Compile(set)
	if compiled.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", compiled.Len())
	}
	if !compiled.Contains(netip.MustParseAddr("10.255.255.255")) {
		t.Fatalf("merged block should cover 10.255.255.255")
	}
}

func TestContains(t *testing.T) {
	compiled := Compile(setOf(t,
		"10.0.0.0/8",
		"192.168.1.0/24",
		"255.255.255.255/32",
		"2001:db8::/32",
		"::1/128",
	))

	cases := []struct {
		addr string
		want bool
	}{
		{"10.0.0.0", true},
		{"10.255.255.255", true},
		{"11.0.0.0", false},
		{"9.255.255.255", false},
		{"192.168.1.77", true},
		{"192.168.2.0", false},
		{"255.255.255.255", true},
		{"255.255.255.254", false},
		{"0.0.0.0", false},
		{"2001:db8::1", true},
		{"2001:db8:ffff::", true},
		{"2001:db9::", false},
		{"::1", true},
		{"::2", false},
		{"::", false},
	}
	for _, tc := range cases {
		if got := compiled.Contains(netip.MustParseAddr(tc.addr)); got != tc.want {
			t.Errorf("Contains(%s) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestContains_WholeSpace(t *testing.T) {
	compiled := Compile(setOf(t, "0.0.0.0/0", "::/0"))
	for _, addr := range []string{"0.0.0.0", "255.255.255.255", "::", "ffff::1"} {
		if !compiled.Contains(netip.MustParseAddr(addr)) {
			t.Errorf("Contains(%s) = false, want true", addr)
		}
	}
}

func TestContains_Empty(t *testing.T) {
	compiled := Compile(subnet.NewSet())
	if compiled.Contains(netip.MustParseAddr("10.0.0.1")) {
		t.Fatal("empty set should contain nothing")
	}
	if compiled.Contains(netip.MustParseAddr("2001:db8::1")) {
		t.Fatal("empty set should contain nothing")
	}
}

func TestWriteTo_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.cset")
	compiled := Compile(setOf(t, "10.0.0.0/8", "2001:db8::/32"))
	if err := compiled.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", loaded.Len())
	}
	if !loaded.Contains(netip.MustParseAddr("10.1.2.3")) {
		t.Fatal("loaded set missing 10.0.0.0/8")
	}
}

func TestRead_RejectsBadMagic(t *testing.T) {
	compiled := Compile(setOf(t, "10.0.0.0/8"))
	var buf bytes.Buffer
	if err := compiled.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := bytes.Replace(buf.Bytes(), []byte(Magic), []byte("notaset"), 1)
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("expected error for wrong magic")
	}
}

func TestRead_RejectsGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not cbor at all"))); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestWrite_Deterministic(t *testing.T) {
	set := setOf(t, "10.0.0.0/8", "2001:db8::/32", "192.168.0.0/16")
	var a, b bytes.Buffer
	if err := Compile(set).Write(&a); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Compile(set).Write(&b); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("compiling the same set twice produced different bytes")
	}
}
