// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/config"
	"github.com/cidr-tools/cidr/lib/setfile"
)

type checkParams struct {
	cli.JSONOutput
	ioParams
	Quiet bool `flag:"quiet,q" desc:"no output, exit status only"`
}

// checkResult is one address verdict, shaped for --json output.
type checkResult struct {
	Addr      string `json:"addr"`
	Contained bool   `json:"contained"`
}

// checkCommand tests addresses against a list or compiled set.
func checkCommand() *cli.Command {
	params := &checkParams{}
	return &cli.Command{
		Name:    "check",
		Summary: "Test addresses against a set",
		Description: `Test whether addresses fall inside the set. The set comes from the
input lists, or from a compiled set file (see "cidr compile") when an
input path carries the .cset extension.

Exits 0 when every address is contained, 1 otherwise.`,
		Usage: "cidr check <addr>... [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", params)
		},
		Run: func(args []string) error {
			return runCheck(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Is this address blocked?",
				Command:     "cidr check -i blocklist.txt 203.0.113.9",
			},
			{
				Description: "Fast repeated checks against a compiled set",
				Command:     "cidr check -i blocklist.cset 203.0.113.9 2001:db8::1",
			},
		},
	}
}

// contains abstracts the two set representations the command accepts.
type containsFunc func(netip.Addr) bool

func runCheck(params *checkParams, args []string) error {
	if len(args) == 0 {
		return exitUsage("check requires at least one address argument")
	}
	addrs := make([]netip.Addr, 0, len(args))
	for _, arg := range args {
		addr, err := netip.ParseAddr(arg)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", arg, err)
		}
		addrs = append(addrs, addr)
	}

	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("check")

	contains, err := params.containsFunc(conf, logger)
	if err != nil {
		return err
	}

	results := make([]checkResult, 0, len(addrs))
	allContained := true
	for _, addr := range addrs {
		contained := contains(addr)
		allContained = allContained && contained
		results = append(results, checkResult{Addr: addr.String(), Contained: contained})
	}

	if done, err := params.EmitJSON(results); done {
		if err == nil && !allContained {
			return &cli.ExitError{Code: 1}
		}
		return err
	}
	if !params.Quiet {
		for _, result := range results {
			verdict := "outside"
			if result.Contained {
				verdict = "inside"
			}
			fmt.Printf("%s\t%s\n", result.Addr, verdict)
		}
	}
	if !allContained {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

// containsFunc builds the membership test from the input flags. A
// single .cset input loads the compiled set; anything else reads and
// compacts text lists.
func (p *checkParams) containsFunc(conf *config.Config, logger *slog.Logger) (containsFunc, error) {
	if len(p.Input) == 1 && strings.HasSuffix(p.Input[0], ".cset") {
		compiled, err := setfile.Load(p.Input[0])
		if err != nil {
			return nil, err
		}
		return compiled.Contains, nil
	}

	set, err := p.readInputs(nil, conf, logger)
	if err != nil {
		return nil, err
	}
	set.Compact(true)
	return set.ContainsAddr, nil
}
