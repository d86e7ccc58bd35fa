// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the cidr tool.
//
// Configuration is loaded from a single file specified by:
//   - CIDR_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable behavior with no hidden overrides: the
// same invocation against the same file always filters the same way.
// Flags passed on the command line take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/cidr-tools/cidr/lib/listio"
)

// Config is the master configuration for cidr.
type Config struct {
	// Filter configures default behavior of the filter pipeline.
	Filter FilterConfig `yaml:"filter"`

	// Output configures how block lists are written.
	Output OutputConfig `yaml:"output"`

	// Lists maps short names to list file paths, usable anywhere a
	// path is expected ("cidr exclude @bogons").
	Lists map[string]string `yaml:"lists"`

	// Dist configures release archive building.
	Dist DistConfig `yaml:"dist"`
}

// FilterConfig configures default filter behavior. Command-line flags
// override these values.
type FilterConfig struct {
	// Merge widens blocks into permitted space during exclusion;
	// with merge off, blocks that touch permitted space are dropped.
	// No effect without an exclusion list.
	// Default: true
	Merge bool `yaml:"merge"`

	// Reverse inverts the output to the gaps between blocks.
	// Default: false
	Reverse bool `yaml:"reverse"`

	// Exclude is a list file of blocks that bound aggregation;
	// output never crosses into them. Empty disables exclusion.
	Exclude string `yaml:"exclude"`
}

// OutputConfig configures list output.
type OutputConfig struct {
	// PrefixV4 splits IPv4 output into blocks of this prefix
	// length. Zero leaves blocks as computed.
	PrefixV4 uint8 `yaml:"prefix_v4"`

	// PrefixV6 splits IPv6 output into blocks of this prefix
	// length. Zero leaves blocks as computed.
	PrefixV6 uint8 `yaml:"prefix_v6"`

	// Compression names the codec for file output when the path
	// extension is ambiguous: none, gzip, zstd, lz4, or xz.
	// Default: none
	Compression string `yaml:"compression"`
}

// DistConfig configures release archive building.
type DistConfig struct {
	// Manifest is the path to the dist manifest (JSON with
	// comments). Default: dist.jsonc
	Manifest string `yaml:"manifest"`

	// Dir is where archives and the checksum manifest are written.
	// Default: dist
	Dir string `yaml:"dir"`
}

// Default returns the default configuration. These defaults are the
// complete behavior of the tool when no config file is given; unlike
// most settings files, the config is optional.
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			Merge: true,
		},
		Output: OutputConfig{
			Compression: "none",
		},
		Lists: map[string]string{},
		Dist: DistConfig{
			Manifest: "dist.jsonc",
			Dir:      "dist",
		},
	}
}

// Load loads configuration from the CIDR_CONFIG environment variable.
// When the variable is unset the defaults are returned; a config file
// is optional for this tool.
func Load() (*Config, error) {
	configPath := os.Getenv("CIDR_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth below the flag layer.
// Environment variables do not override config values; the only
// expansion performed is ${HOME} and similar path variables for
// portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// configured paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Filter.Exclude = expandVars(c.Filter.Exclude, vars)
	c.Dist.Manifest = expandVars(c.Dist.Manifest, vars)
	c.Dist.Dir = expandVars(c.Dist.Dir, vars)
	for name, path := range c.Lists {
		c.Lists[name] = expandVars(path, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Output.PrefixV4 > 32 {
		errs = append(errs, fmt.Errorf("output.prefix_v4 %d exceeds 32", c.Output.PrefixV4))
	}
	if c.Output.PrefixV6 > 128 {
		errs = append(errs, fmt.Errorf("output.prefix_v6 %d exceeds 128", c.Output.PrefixV6))
	}
	if c.Output.Compression != "" {
		if _, err := listio.ParseCompression(c.Output.Compression); err != nil {
			errs = append(errs, fmt.Errorf("output.compression: %w", err))
		}
	}
	for name, path := range c.Lists {
		if name == "" {
			errs = append(errs, fmt.Errorf("lists: empty list name"))
		}
		if path == "" {
			errs = append(errs, fmt.Errorf("lists.%s: empty path", name))
		}
	}
	if c.Dist.Dir == "" {
		errs = append(errs, fmt.Errorf("dist.dir is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ResolveList resolves a list reference to a file path. References of
// the form "@name" are looked up in the Lists map; anything else is
// returned as-is.
func (c *Config) ResolveList(ref string) (string, error) {
	if len(ref) == 0 || ref[0] != '@' {
		return ref, nil
	}
	name := ref[1:]
	path, ok := c.Lists[name]
	if !ok {
		return "", fmt.Errorf("unknown list %q (not in config lists section)", name)
	}
	return path, nil
}

// SplitPrefixes returns the configured output split as listio
// parameters.
func (c *Config) SplitPrefixes() listio.SplitPrefixes {
	return listio.SplitPrefixes{V4: c.Output.PrefixV4, V6: c.Output.PrefixV6}
}

// ArchivePath returns the path of a file inside the dist directory.
func (c *Config) ArchivePath(name string) string {
	return filepath.Join(c.Dist.Dir, name)
}
