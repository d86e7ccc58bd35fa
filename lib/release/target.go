// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package release builds the distribution artifacts for cidr: one
// compressed tar archive per target, each containing the single
// executable, plus a checksum manifest covering all archives.
//
// Targets are named by conventional triples ("x86_64-unknown-linux-musl",
// "aarch64-apple-darwin") so archive names stay stable across the
// toolchains that consume them; the triple maps onto GOOS/GOARCH for
// the cross-compile step.
package release

import (
	"fmt"
	"strings"
)

// Target is one cross-compile destination.
type Target struct {
	// Triple is the full target name, e.g. "x86_64-unknown-linux-musl".
	Triple string

	// GOOS and GOARCH are the Go toolchain names for the target.
	GOOS   string
	GOARCH string

	// Static is true when the target wants a fully static binary
	// (musl targets; CGO disabled).
	Static bool
}

// DefaultTargets is the release matrix built when a manifest names no
// targets of its own.
var DefaultTargets = []string{
	"x86_64-unknown-linux-musl",
	"x86_64-apple-darwin",
}

var archNames = map[string]string{
	"x86_64":  "amd64",
	"aarch64": "arm64",
	"i686":    "386",
	"riscv64": "riscv64",
}

// ParseTarget parses a target triple into a Target. The triple is
// arch-vendor-os or arch-vendor-os-env; only combinations the release
// pipeline can actually build are accepted.
func ParseTarget(triple string) (Target, error) {
	parts := strings.Split(triple, "-")
	if len(parts) < 3 || len(parts) > 4 {
		return Target{}, fmt.Errorf("malformed target triple %q", triple)
	}

	goarch, ok := archNames[parts[0]]
	if !ok {
		return Target{}, fmt.Errorf("unsupported architecture %q in target %q", parts[0], triple)
	}

	target := Target{Triple: triple, GOARCH: goarch}
	vendor, osName := parts[1], parts[2]
	env := ""
	if len(parts) == 4 {
		env = parts[3]
	}

	switch {
	case vendor == "unknown" && osName == "linux":
		target.GOOS = "linux"
		switch env {
		case "musl":
			target.Static = true
		case "gnu":
		default:
			return Target{}, fmt.Errorf("unsupported linux environment %q in target %q", env, triple)
		}
	case vendor == "apple" && osName == "darwin" && env == "":
		target.GOOS = "darwin"
	case vendor == "pc" && osName == "windows" && env == "gnu":
		target.GOOS = "windows"
	case vendor == "unknown" && osName == "freebsd" && env == "":
		target.GOOS = "freebsd"
	default:
		return Target{}, fmt.Errorf("unsupported target %q", triple)
	}

	return target, nil
}

// ExecutableName returns the name of the binary inside the archive.
func (t Target) ExecutableName() string {
	if t.GOOS == "windows" {
		return "cidr.exe"
	}
	return "cidr"
}

// ArchiveName returns the archive filename for the target:
// "cidr.<triple>.tar.xz".
func (t Target) ArchiveName() string {
	return fmt.Sprintf("cidr.%s.tar.xz", t.Triple)
}

func (t Target) String() string { return t.Triple }
