// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for cidr packages.
//
// [ListFile] writes a block list to a temporary file and returns its
// path, removing the boilerplate of building list fixtures on disk.
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation; use it instead of time.Now() when tests need unique
// names for files or archives.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no cidr-internal dependencies.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// ListFile writes the given lines, newline-terminated, to a file in a
// fresh temporary directory and returns its path. The file is removed
// when the test completes.
//
//	path := testutil.ListFile(t, "10.0.0.0/8", "# comment", "192.168.0.0/16")
func ListFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), UniqueID("list")+".txt")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing list file: %v", err)
	}
	return path
}

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use this instead of time.Now()
// when tests need unique identifiers for files, archives, or list
// names that must be distinguishable in shared directories.
//
//	name := testutil.UniqueID("archive") // "archive-1", "archive-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
