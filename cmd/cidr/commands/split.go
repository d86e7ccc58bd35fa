// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/listio"
)

type splitParams struct {
	ioParams
	PrefixV4 uint8 `flag:"prefix-v4" desc:"target IPv4 prefix length (default the positional prefix)"`
	PrefixV6 uint8 `flag:"prefix-v6" desc:"target IPv6 prefix length (default the positional prefix)"`
}

// splitCommand expands blocks to a target prefix length.
func splitCommand() *cli.Command {
	params := &splitParams{}
	return &cli.Command{
		Name:    "split",
		Summary: "Split blocks to a target prefix length",
		Description: `Split every block into the aligned sub-blocks of a target prefix
length. Blocks already at or beyond the target pass through
unchanged. A single positional prefix applies to both families;
--prefix-v4 and --prefix-v6 set them independently.`,
		Usage: "cidr split [prefix] [files...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("split", params)
		},
		Run: func(args []string) error {
			return runSplit(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Expand a blocklist into /24s (IPv6 untouched)",
				Command:     "cidr split --prefix-v4 24 blocklist.txt",
			},
			{
				Description: "Split both families at once",
				Command:     "cidr split 24 v4-only.txt",
			},
		},
	}
}

func runSplit(params *splitParams, args []string) error {
	split := listio.SplitPrefixes{V4: params.PrefixV4, V6: params.PrefixV6}

	// A leading positional integer is a shared target for both
	// families; remaining args are input files. A target beyond the
	// IPv4 width leaves IPv4 blocks unsplit rather than exploding
	// them into host routes.
	if len(args) > 0 {
		if target, err := strconv.ParseUint(args[0], 10, 8); err == nil {
			if split.V4 == 0 && target <= 32 {
				split.V4 = uint8(target)
			}
			if split.V6 == 0 {
				split.V6 = uint8(target)
			}
			args = args[1:]
		}
	}
	if split.V4 == 0 && split.V6 == 0 {
		return exitUsage("split requires a target prefix (positional or --prefix-v4/--prefix-v6)")
	}
	if err := split.Validate(); err != nil {
		return err
	}

	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("split")

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}
	// Normalize first; any block the merge collapses below the target
	// prefix is re-expanded by the split on output.
	set.Compact(true)

	return params.writeOutput(set, split)
}
