// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/config"
	"github.com/cidr-tools/cidr/lib/listio"
	"github.com/cidr-tools/cidr/lib/subnet"
)

// ioParams carries the flags shared by every list-processing command:
// where input comes from, where output goes, and which config file to
// consult. Embedded in each command's params struct.
type ioParams struct {
	Input   []string `flag:"input,i" desc:"input list file (repeatable; default stdin)"`
	Output  string   `flag:"output,o" desc:"output path (default stdout)" default:"-"`
	Config  string   `flag:"config,c" desc:"config file (default $CIDR_CONFIG)"`
	Verbose bool     `flag:"verbose,v" desc:"debug logging"`
}

// loadConfig resolves the effective configuration: the --config flag
// wins over CIDR_CONFIG, which wins over built-in defaults.
func (p *ioParams) loadConfig() (*config.Config, error) {
	if p.Config != "" {
		return config.LoadFile(p.Config)
	}
	return config.Load()
}

// logger builds the command logger at the verbosity the flags ask for.
func (p *ioParams) logger(command string) *slog.Logger {
	return cli.NewCommandLogger(p.Verbose).With("command", command)
}

// inputPaths combines --input flags with positional args, defaulting
// to stdin when neither names a source. "@name" references resolve
// through the config's lists section.
func (p *ioParams) inputPaths(args []string, conf *config.Config) ([]string, error) {
	refs := append(append([]string{}, p.Input...), args...)
	if len(refs) == 0 {
		refs = []string{"-"}
	}
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, err := conf.ResolveList(ref)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// readInputs reads every input list into one set. Unparseable lines
// are skipped (and counted); a missing file is an error.
func (p *ioParams) readInputs(args []string, conf *config.Config, logger *slog.Logger) (*subnet.Set, error) {
	paths, err := p.inputPaths(args, conf)
	if err != nil {
		return nil, err
	}

	set := subnet.NewSet()
	for _, path := range paths {
		stats, err := listio.ReadFile(path, set, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("read list",
			"path", path, "lines", stats.Lines, "skipped", stats.Skipped)
	}
	return set, nil
}

// readListFile reads a single list file into a fresh set.
func readListFile(path string, conf *config.Config, logger *slog.Logger) (*subnet.Set, error) {
	resolved, err := conf.ResolveList(path)
	if err != nil {
		return nil, err
	}
	set := subnet.NewSet()
	if _, err := listio.ReadFile(resolved, set, logger); err != nil {
		return nil, err
	}
	return set, nil
}

// writeOutput writes the set to the --output destination with the
// effective split prefixes.
func (p *ioParams) writeOutput(set *subnet.Set, split listio.SplitPrefixes) error {
	return listio.WriteFile(p.Output, set, split)
}

// filterParams is the root command's parameter set: the full filter
// pipeline of the tool.
type filterParams struct {
	ioParams
	Reverse  bool   `flag:"reverse,r" desc:"output the gaps between blocks instead of the blocks"`
	Merge    bool   `flag:"merge" default:"true" desc:"with --exclude, widen blocks into permitted space (=false drops them)"`
	Exclude  string `flag:"exclude,x" desc:"list whose blocks bound aggregation"`
	PrefixV4 uint8  `flag:"prefix-v4" desc:"split IPv4 output to this prefix length"`
	PrefixV6 uint8  `flag:"prefix-v6" desc:"split IPv6 output to this prefix length"`

	// flagSet is retained so Run can distinguish "flag left at its
	// default" from "flag explicitly set" when layering over config.
	flagSet *pflag.FlagSet
}

// effective resolves the flag/config layering: an explicitly passed
// flag wins, otherwise the config value applies.
func (p *filterParams) effective(conf *config.Config) (merge, reverse bool, exclude string, split listio.SplitPrefixes) {
	merge = conf.Filter.Merge
	if p.flagSet.Changed("merge") {
		merge = p.Merge
	}
	reverse = conf.Filter.Reverse
	if p.flagSet.Changed("reverse") {
		reverse = p.Reverse
	}
	exclude = conf.Filter.Exclude
	if p.flagSet.Changed("exclude") {
		exclude = p.Exclude
	}
	split = conf.SplitPrefixes()
	if p.flagSet.Changed("prefix-v4") {
		split.V4 = p.PrefixV4
	}
	if p.flagSet.Changed("prefix-v6") {
		split.V6 = p.PrefixV6
	}
	return merge, reverse, exclude, split
}

// rootCommand builds the root filter: read, compact, optionally
// exclude and invert, write.
func rootCommand() *cli.Command {
	params := &filterParams{}
	return &cli.Command{
		Name:    "cidr",
		Summary: "Filter, merge, and transform CIDR block lists",
		Description: `cidr reads lists of CIDR blocks and address ranges, drops blocks
contained in other blocks, merges adjacent siblings into their
parents, and writes the result in canonical order. With --exclude,
aggregation is bounded by the forbidden list: --merge widens each
block to the largest permitted block containing it, --merge=false
drops blocks that touch permitted space instead.

Input lines are one block ("10.0.0.0/8"), bare address ("10.0.0.1"),
or inclusive range ("10.0.0.0,10.0.1.255") per line; '#' starts a
comment and unparseable lines are skipped. Reading "-" means stdin,
writing "-" means stdout; gzip, zstd, lz4, and xz streams are
detected on input and selected by extension on output.`,
		Usage: "cidr [files...] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := cli.FlagsFromParams("cidr", params)
			params.flagSet = flagSet
			return flagSet
		},
		Run: func(args []string) error {
			return runFilter(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Merge a blocklist read from stdin",
				Command:     "cat blocklist.txt | cidr",
			},
			{
				Description: "Aggregate without crossing reserved space",
				Command:     "cidr --exclude reserved.txt blocklist.txt",
			},
			{
				Description: "Exclude strictly: drop blocks instead of widening them",
				Command:     "cidr --merge=false --exclude reserved.txt blocklist.txt",
			},
			{
				Description: "Emit the complement as /24 and /64 blocks",
				Command:     "cidr --reverse --prefix-v4 24 --prefix-v6 64 blocklist.txt",
			},
		},
	}
}

func runFilter(params *filterParams, args []string) error {
	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("filter")

	merge, reverse, exclude, split := params.effective(conf)
	if err := split.Validate(); err != nil {
		return err
	}

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}
	// Plain input always compacts fully; merge only steers the
	// exclusion pass below.
	set.Compact(true)

	if exclude != "" {
		forbidden, err := readListFile(exclude, conf, logger)
		if err != nil {
			return fmt.Errorf("exclusion list: %w", err)
		}
		set.Exclude(forbidden, merge)
	}
	if reverse {
		set = set.Invert()
	}

	if err := params.writeOutput(set, split); err != nil {
		return err
	}
	logger.Debug("wrote list", "path", params.Output, "blocks", set.Len())
	return nil
}

// exitUsage prints the message to stderr and returns exit code 2,
// the conventional usage-error code.
func exitUsage(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return &cli.ExitError{Code: 2}
}
