// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Manifest describes a release build: which targets to cross-compile
// and where the binary comes from. Manifests are authored as JSONC
// (JSON extended with comments and trailing commas) so the release
// matrix can carry explanations next to the entries.
type Manifest struct {
	// Name is the project name; it only appears in log output.
	Name string `json:"name"`

	// Targets is the list of target triples to build. Empty means
	// DefaultTargets.
	Targets []string `json:"targets"`

	// Binary is the path of the pre-built binary to package when
	// the build step is run externally (CI builds per-target and
	// packages each result). Empty means the packaging step
	// receives the binary path on the command line.
	Binary string `json:"binary"`
}

// ParseManifest strips JSONC comments and trailing commas from data,
// then unmarshals the result into a Manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if manifest.Name == "" {
		manifest.Name = "cidr"
	}
	if len(manifest.Targets) == 0 {
		manifest.Targets = append([]string(nil), DefaultTargets...)
	}
	return &manifest, nil
}

// ReadManifest reads a JSONC manifest file from disk and parses it.
// A missing file is not an error: the defaults cover the standard
// release matrix.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ParseManifest([]byte("{}"))
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// ResolveTargets parses every triple in the manifest, rejecting the
// whole manifest on the first unbuildable entry.
func (m *Manifest) ResolveTargets() ([]Target, error) {
	targets := make([]Target, 0, len(m.Targets))
	for _, triple := range m.Targets {
		target, err := ParseTarget(triple)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}
