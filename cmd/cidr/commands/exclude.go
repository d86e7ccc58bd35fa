// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
)

type excludeParams struct {
	ioParams
	Strict bool `flag:"strict" desc:"drop input blocks that would widen into permitted space"`
}

// excludeCommand aggregates the input while refusing to cross into
// the forbidden list's blocks.
func excludeCommand() *cli.Command {
	params := &excludeParams{}
	return &cli.Command{
		Name:    "exclude",
		Summary: "Aggregate without crossing a forbidden list",
		Description: `Aggregate the input lists, bounded by a forbidden list: merging never
produces a block that overlaps forbidden space. This bounds
aggregation rather than subtracting; an input block lying entirely
inside forbidden space passes through unchanged.

With --strict, input blocks that would have merged with permitted
space are dropped from the output instead of kept.`,
		Usage: "cidr exclude <forbidden-list> [files...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("exclude", params)
		},
		Run: func(args []string) error {
			return runExclude(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Aggregate a blocklist without swallowing reserved space",
				Command:     "cidr exclude reserved.txt blocklist.txt",
			},
			{
				Description: "Use a named list from the config file",
				Command:     "cidr exclude @bogons blocklist.txt",
			},
		},
	}
}

func runExclude(params *excludeParams, args []string) error {
	if len(args) == 0 {
		return exitUsage("exclude requires a forbidden list argument")
	}
	forbiddenRef, args := args[0], args[1:]

	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("exclude")

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}
	forbidden, err := readListFile(forbiddenRef, conf, logger)
	if err != nil {
		return err
	}

	set.Compact(true)
	set.Exclude(forbidden, !params.Strict)

	return params.writeOutput(set, conf.SplitPrefixes())
}
