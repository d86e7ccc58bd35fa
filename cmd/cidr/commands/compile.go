// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/setfile"
)

type compileParams struct {
	ioParams
}

// compileCommand builds a compiled set file from text lists.
func compileCommand() *cli.Command {
	params := &compileParams{}
	return &cli.Command{
		Name:    "compile",
		Summary: "Compile lists into a binary set file",
		Description: `Compact the input lists and write them as a compiled set file:
sorted per-family entries in a deterministic binary container that
"cidr check" can load and search without re-parsing. Compiling the
same list always produces the same bytes.`,
		Usage: "cidr compile [files...] -o <path>.cset [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("compile", params)
		},
		Run: func(args []string) error {
			return runCompile(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Compile a blocklist for fast membership checks",
				Command:     "cidr compile blocklist.txt -o blocklist.cset",
			},
		},
	}
}

func runCompile(params *compileParams, args []string) error {
	if params.Output == "-" {
		return exitUsage("compile requires -o with a file path (binary output)")
	}

	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("compile")

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}

	compiled := setfile.Compile(set)
	if err := compiled.WriteTo(params.Output); err != nil {
		return err
	}
	logger.Info("compiled set",
		"path", params.Output,
		"blocks", compiled.Len(),
		"fingerprint", compiled.Fingerprint().String())
	fmt.Printf("%s\t%d blocks\t%s\n", params.Output, compiled.Len(), compiled.Fingerprint())
	return nil
}
