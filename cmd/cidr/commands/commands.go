// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete cidr command tree. The root
// command is itself the filter pipeline: positional args that match
// no subcommand are treated as input list files, so "cidr list.txt"
// and "cat list.txt | cidr" both run the filter.
package commands

import (
	"fmt"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/version"
)

// Root builds and returns the complete cidr command tree.
func Root() *cli.Command {
	root := rootCommand()
	root.Subcommands = []*cli.Command{
		invertCommand(),
		excludeCommand(),
		splitCommand(),
		checkCommand(),
		statsCommand(),
		compileCommand(),
		distCommand(),
		{
			Name:    "version",
			Summary: "Print version information",
			Run: func(args []string) error {
				fmt.Printf("cidr %s\n", version.Full())
				return nil
			},
		},
	}
	return root
}
