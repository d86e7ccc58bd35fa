// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "cidr",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "invert",
				Run: func(args []string) error {
					called = "invert"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"invert"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "invert" {
		t.Errorf("dispatched to %q, want %q", called, "invert")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "cidr",
		Subcommands: []*Command{
			{
				Name: "dist",
				Subcommands: []*Command{
					{
						Name: "build",
						Run: func(args []string) error {
							called = "dist build"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"dist", "build", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "dist build" {
		t.Errorf("dispatched to %q, want %q", called, "dist build")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_RootFallthrough(t *testing.T) {
	// Positional args that match no subcommand go to the root's Run:
	// "cidr blocklist.txt" filters the file rather than erroring.
	var rootArgs []string

	root := &Command{
		Name: "cidr",
		Subcommands: []*Command{
			{Name: "invert", Run: func(args []string) error { return nil }},
		},
		Run: func(args []string) error {
			rootArgs = args
			return nil
		},
	}

	if err := root.Execute([]string{"blocklist.txt"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(rootArgs) != 1 || rootArgs[0] != "blocklist.txt" {
		t.Errorf("root args = %v, want [blocklist.txt]", rootArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var output string
	var positional string

	command := &Command{
		Name: "invert",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("invert", pflag.ContinueOnError)
			flagSet.StringVar(&output, "output", "-", "output path")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				positional = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--output", "gaps.txt", "blocklist.txt"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "gaps.txt" {
		t.Errorf("output = %q, want %q", output, "gaps.txt")
	}
	if positional != "blocklist.txt" {
		t.Errorf("positional = %q, want %q", positional, "blocklist.txt")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "cidr",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cidr", pflag.ContinueOnError)
			flagSet.Bool("reverse", false, "invert the output")
			flagSet.String("exclude", "", "exclusion list")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--revrese"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --reverse") {
		t.Errorf("error = %q, want suggestion for '--reverse'", errStr)
	}
	if !strings.Contains(errStr, "revrese") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "cidr",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cidr", pflag.ContinueOnError)
			flagSet.Bool("reverse", false, "invert the output")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "cidr",
		Subcommands: []*Command{
			{Name: "invert"},
			{Name: "split"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"invret"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"invert\"") {
		t.Errorf("error = %q, want suggestion for 'invert'", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "cidr",
				Summary: "Filter and transform subnet lists",
				Subcommands: []*Command{
					{Name: "invert", Summary: "Output the gaps between blocks"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "cidr",
		Subcommands: []*Command{
			{Name: "invert", Summary: "Output the gaps between blocks"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "cidr",
		Description: "Filter, merge, and transform CIDR block lists.",
		Subcommands: []*Command{
			{Name: "invert", Summary: "Output the gaps between blocks"},
			{Name: "split", Summary: "Split blocks to a target prefix length"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Merge a blocklist read from stdin",
				Command:     "cat blocklist.txt | cidr",
			},
			{
				Description: "Compute the gaps of a blocklist",
				Command:     "cidr invert blocklist.txt",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Filter, merge, and transform CIDR block lists.",
		"Usage:",
		"cidr <command> [flags]",
		"Commands:",
		"invert",
		"Output the gaps between blocks",
		"split",
		"Examples:",
		"cidr invert blocklist.txt",
		"Run 'cidr <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "split",
		Summary: "Split blocks to a target prefix length",
		Usage:   "cidr split <prefix> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("split", pflag.ContinueOnError)
			flagSet.String("output", "-", "output path")
			flagSet.Bool("verbose", false, "debug logging")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"cidr split <prefix> [flags]",
		"Flags:",
		"output",
		"verbose",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "cidr"}
	dist := &Command{Name: "dist", parent: root}
	build := &Command{Name: "build", parent: dist}

	if got := root.fullName(); got != "cidr" {
		t.Errorf("root.fullName() = %q, want %q", got, "cidr")
	}
	if got := dist.fullName(); got != "cidr dist" {
		t.Errorf("dist.fullName() = %q, want %q", got, "cidr dist")
	}
	if got := build.fullName(); got != "cidr dist build" {
		t.Errorf("build.fullName() = %q, want %q", got, "cidr dist build")
	}
}
