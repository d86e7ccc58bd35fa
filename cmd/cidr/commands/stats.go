// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"lukechampine.com/uint128"

	"github.com/cidr-tools/cidr/cmd/cidr/cli"
	"github.com/cidr-tools/cidr/lib/listio"
	"github.com/cidr-tools/cidr/lib/subnet"
)

type statsParams struct {
	cli.JSONOutput
	ioParams
}

// familyStats summarizes one address family after compaction.
type familyStats struct {
	Blocks int `json:"blocks"`
	// Addresses is the decimal address total. A string because the
	// IPv6 total routinely exceeds every integer JSON consumers
	// handle; "max" means the total saturated at 2^128.
	Addresses string `json:"addresses"`
}

// listStats is the stats command's result document.
type listStats struct {
	Blocks      int         `json:"blocks"`
	V4          familyStats `json:"v4"`
	V6          familyStats `json:"v6"`
	Fingerprint string      `json:"fingerprint"`
}

// statsCommand summarizes a list: block and address counts per
// family, and the list fingerprint.
func statsCommand() *cli.Command {
	params := &statsParams{}
	return &cli.Command{
		Name:    "stats",
		Summary: "Summarize a list",
		Description: `Read, compact, and summarize the input lists: blocks and covered
addresses per family, plus the content fingerprint (stable across
input order and formatting, so two lists with the same fingerprint
cover the same addresses).`,
		Usage: "cidr stats [files...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", params)
		},
		Run: func(args []string) error {
			return runStats(params, args)
		},
		Examples: []cli.Example{
			{
				Description: "Summarize a blocklist",
				Command:     "cidr stats blocklist.txt",
			},
			{
				Description: "Machine-readable summary for CI",
				Command:     "cidr stats --json blocklist.txt",
			},
		},
	}
}

func runStats(params *statsParams, args []string) error {
	conf, err := params.loadConfig()
	if err != nil {
		return err
	}
	logger := params.logger("stats")

	set, err := params.readInputs(args, conf, logger)
	if err != nil {
		return err
	}
	set.Compact(true)

	stats := summarize(set)

	if done, err := params.EmitJSON(stats); done {
		return err
	}
	printStats(os.Stdout, stats)
	return nil
}

// summarize walks the compacted set and accumulates per-family
// totals. Address counts saturate at 2^128 rather than wrapping; only
// a set containing ::/0 reaches the limit.
func summarize(set *subnet.Set) listStats {
	var counts [2]struct {
		blocks    int
		addresses uint128.Uint128
		saturated bool
	}

	set.Walk(func(block subnet.Subnet) bool {
		c := &counts[0]
		if block.Family() == subnet.V6 {
			c = &counts[1]
		}
		c.blocks++
		count, exact := block.AddrCount()
		if !exact {
			c.saturated = true
			return true
		}
		sum := c.addresses.AddWrap(count)
		if sum.Cmp(c.addresses) < 0 {
			c.saturated = true
			return true
		}
		c.addresses = sum
		return true
	})

	family := func(i int) familyStats {
		addresses := counts[i].addresses.String()
		if counts[i].saturated {
			addresses = "max"
		}
		return familyStats{Blocks: counts[i].blocks, Addresses: addresses}
	}

	return listStats{
		Blocks:      counts[0].blocks + counts[1].blocks,
		V4:          family(0),
		V6:          family(1),
		Fingerprint: listio.FingerprintSet(set).String(),
	}
}

// printStats renders the text summary, styled when stdout is a
// color-capable terminal.
func printStats(w *os.File, stats listStats) {
	label := lipgloss.NewStyle()
	value := lipgloss.NewStyle()
	if term.IsTerminal(int(w.Fd())) && termenv.ColorProfile() != termenv.Ascii {
		label = label.Faint(true)
		value = value.Bold(true)
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	row := func(name, val string) {
		fmt.Fprintf(tw, "%s\t%s\n", label.Render(name), value.Render(val))
	}
	row("blocks", fmt.Sprintf("%d", stats.Blocks))
	row("v4 blocks", fmt.Sprintf("%d", stats.V4.Blocks))
	row("v4 addresses", stats.V4.Addresses)
	row("v6 blocks", fmt.Sprintf("%d", stats.V6.Blocks))
	row("v6 addresses", stats.V6.Addresses)
	row("fingerprint", shortFingerprint(stats.Fingerprint))
	tw.Flush()
}

// shortFingerprint trims the fingerprint for terminal display; the
// full value is available via --json.
func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return strings.TrimSpace(fp)
}
