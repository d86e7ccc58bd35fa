// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/config"
	"github.com/cidr-tools/cidr/lib/release"
	"github.com/cidr-tools/cidr/lib/version"
)

// distCommand groups the release packaging subcommands. The release
// flow is: CI cross-compiles one binary per target, "dist package"
// wraps each into its archive, "dist checksums" writes the manifest,
// and "dist verify" replays the manifest against the archives.
func distCommand() *cli.Command {
	return &cli.Command{
		Name:    "dist",
		Summary: "Build and verify release archives",
		Description: `Package release archives. Each target triple gets one archive,
cidr.<triple>.tar.xz, containing the single executable. A BLAKE3
checksum manifest covers all archives in the dist directory.`,
		Subcommands: []*cli.Command{
			distTargetsCommand(),
			distPackageCommand(),
			distChecksumsCommand(),
			distVerifyCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Package a cross-compiled binary for one target",
				Command:     "cidr dist package x86_64-unknown-linux-musl --binary build/cidr-musl",
			},
			{
				Description: "Write the checksum manifest over all archives",
				Command:     "cidr dist checksums",
			},
		},
	}
}

type distParams struct {
	Manifest string `flag:"manifest,m" desc:"dist manifest path (default from config)"`
	Dir      string `flag:"dir,d" desc:"dist output directory (default from config)"`
	Config   string `flag:"config,c" desc:"config file (default $CIDR_CONFIG)"`
	Verbose  bool   `flag:"verbose,v" desc:"debug logging"`
}

// resolve loads config and applies flag overrides, returning the
// effective manifest path and dist directory.
func (p *distParams) resolve() (manifestPath, dir string, err error) {
	var conf *config.Config
	if p.Config != "" {
		conf, err = config.LoadFile(p.Config)
	} else {
		conf, err = config.Load()
	}
	if err != nil {
		return "", "", err
	}
	manifestPath = conf.Dist.Manifest
	if p.Manifest != "" {
		manifestPath = p.Manifest
	}
	dir = conf.Dist.Dir
	if p.Dir != "" {
		dir = p.Dir
	}
	return manifestPath, dir, nil
}

type distTargetsParams struct {
	cli.JSONOutput
	distParams
}

// targetInfo is one resolved target, shaped for --json output.
type targetInfo struct {
	Triple  string `json:"triple"`
	GOOS    string `json:"goos"`
	GOARCH  string `json:"goarch"`
	Static  bool   `json:"static"`
	Archive string `json:"archive"`
}

func distTargetsCommand() *cli.Command {
	params := &distTargetsParams{}
	return &cli.Command{
		Name:    "targets",
		Summary: "List the release matrix",
		Description: `Resolve the manifest's target triples into build parameters. CI
iterates this list to drive the per-target compile step.`,
		Usage: "cidr dist targets [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("targets", params)
		},
		Run: func(args []string) error {
			manifestPath, _, err := params.resolve()
			if err != nil {
				return err
			}
			manifest, err := release.ReadManifest(manifestPath)
			if err != nil {
				return err
			}
			targets, err := manifest.ResolveTargets()
			if err != nil {
				return err
			}

			infos := make([]targetInfo, 0, len(targets))
			for _, target := range targets {
				infos = append(infos, targetInfo{
					Triple:  target.Triple,
					GOOS:    target.GOOS,
					GOARCH:  target.GOARCH,
					Static:  target.Static,
					Archive: target.ArchiveName(),
				})
			}
			if done, err := params.EmitJSON(infos); done {
				return err
			}
			for _, info := range infos {
				fmt.Printf("%s\t%s/%s\n", info.Triple, info.GOOS, info.GOARCH)
			}
			return nil
		},
	}
}

type distPackageParams struct {
	distParams
	Binary string `flag:"binary,b" desc:"pre-built binary to package"`
}

func distPackageCommand() *cli.Command {
	params := &distPackageParams{}
	return &cli.Command{
		Name:    "package",
		Summary: "Package a binary into a target's archive",
		Description: `Wrap a cross-compiled binary into the release archive for one
target: cidr.<triple>.tar.xz with the single executable inside.
Packaging is reproducible; the same binary always yields the same
archive bytes.`,
		Usage: "cidr dist package <triple> --binary <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("package", params)
		},
		Run: func(args []string) error {
			return runDistPackage(params, args)
		},
	}
}

func runDistPackage(params *distPackageParams, args []string) error {
	if len(args) != 1 {
		return exitUsage("dist package requires exactly one target triple argument")
	}
	target, err := release.ParseTarget(args[0])
	if err != nil {
		return err
	}

	manifestPath, dir, err := params.resolve()
	if err != nil {
		return err
	}
	binary := params.Binary
	if binary == "" {
		manifest, err := release.ReadManifest(manifestPath)
		if err != nil {
			return err
		}
		binary = manifest.Binary
	}
	if binary == "" {
		return exitUsage("dist package requires --binary (or a binary entry in the manifest)")
	}

	logger := cli.NewCommandLogger(params.Verbose).With("command", "dist/package")
	artifact, err := release.BuildArchive(binary, target, dir)
	if err != nil {
		return err
	}
	logger.Info("packaged archive",
		"target", target.Triple,
		"archive", artifact.Path,
		"bytes", artifact.Size,
		"version", version.Short(),
		"commit", version.Commit())
	fmt.Printf("%s  %s\n", hex.EncodeToString(artifact.Checksum[:]), artifact.Name)
	return nil
}

func distChecksumsCommand() *cli.Command {
	params := &distParams{}
	return &cli.Command{
		Name:    "checksums",
		Summary: "Write the checksum manifest over built archives",
		Usage:   "cidr dist checksums [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("checksums", params)
		},
		Run: func(args []string) error {
			_, dir, err := params.resolve()
			if err != nil {
				return err
			}
			artifacts, err := collectArchives(dir)
			if err != nil {
				return err
			}
			if len(artifacts) == 0 {
				return fmt.Errorf("no release archives in %s", dir)
			}
			path, err := release.WriteChecksums(dir, artifacts)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d archives\n", path, len(artifacts))
			return nil
		},
	}
}

func distVerifyCommand() *cli.Command {
	params := &distParams{}
	return &cli.Command{
		Name:    "verify",
		Summary: "Verify archives against the checksum manifest",
		Description: `Recompute every archive's digest and compare against the manifest.
Exits 1 on any mismatch or missing entry.`,
		Usage: "cidr dist verify [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", params)
		},
		Run: func(args []string) error {
			_, dir, err := params.resolve()
			if err != nil {
				return err
			}
			sums, err := release.ReadChecksums(filepath.Join(dir, release.ChecksumFileName))
			if err != nil {
				return err
			}
			paths, err := archivePaths(dir)
			if err != nil {
				return err
			}

			failed := false
			for _, path := range paths {
				if err := release.VerifyArchive(path, sums); err != nil {
					fmt.Fprintf(os.Stderr, "FAIL  %v\n", err)
					failed = true
					continue
				}
				fmt.Printf("OK    %s\n", filepath.Base(path))
			}
			if failed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// archivePaths lists the release archives in dir, sorted by name.
func archivePaths(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "cidr.*.tar.xz"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// collectArchives hashes every archive in dir into Artifact records
// for the checksum manifest.
func collectArchives(dir string) ([]release.Artifact, error) {
	paths, err := archivePaths(dir)
	if err != nil {
		return nil, err
	}
	artifacts := make([]release.Artifact, 0, len(paths))
	for _, path := range paths {
		digest, err := release.ChecksumFile(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, release.Artifact{
			Path:     path,
			Name:     filepath.Base(path),
			Checksum: digest,
			Size:     info.Size(),
		})
	}
	return artifacts, nil
}
