// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
)

type invertParams struct {
	ioParams
	PrefixV4 uint8 `flag:"prefix-v4" desc:"split IPv4 output to this prefix length"`
	PrefixV6 uint8 `flag:"prefix-v6" desc:"split IPv6 output to this prefix length"`
}

// invertCommand computes the complement of the input: the minimal set
// of CIDR blocks covering every address the input does not.
func invertCommand() *cli.Command {
	params := &invertParams{}
	return &cli.Command{
		Name:    "invert",
		Summary: "Output the gaps between blocks",
		Description: `Compute the complement of the input lists: the minimal set of CIDR
blocks covering every address the input does not. Each address family
is inverted within its own space; an input with no IPv6 blocks yields
::/0 in the output.`,
		Usage: "cidr invert [files...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("invert", params)
		},
		Run: func(args []string) error {
			return runInvert(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Everything outside the allocated ranges",
				Command:     "cidr invert allocated.txt",
			},
			{
				Description: "Complement as /24 blocks, written compressed",
				Command:     "cidr invert --prefix-v4 24 -o gaps.txt.zst allocated.txt",
			},
		},
	}
}

func runInvert(params *invertParams, args []string) error {
	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("invert")

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}
	set.Compact(true)

	split := conf.SplitPrefixes()
	if params.PrefixV4 != 0 {
		split.V4 = params.PrefixV4
	}
	if params.PrefixV6 != 0 {
		split.V6 = params.PrefixV6
	}
	if err := split.Validate(); err != nil {
		return err
	}

	return params.writeOutput(set.Invert(), split)
}
