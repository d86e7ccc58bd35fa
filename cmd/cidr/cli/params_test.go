// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Output  string   `flag:"output,o" desc:"output path" default:"-"`
		Reverse bool     `flag:"reverse,r" desc:"invert the output"`
		Workers int      `flag:"workers" desc:"parallel workers" default:"4"`
		Prefix  uint8    `flag:"prefix" desc:"target prefix length" default:"24"`
		Input   []string `flag:"input,i" desc:"input files"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{
		"--output", "out.txt",
		"-r",
		"--workers", "8",
		"--prefix", "26",
		"-i", "a.txt", "-i", "b.txt",
	}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Output != "out.txt" {
		t.Errorf("Output = %q", p.Output)
	}
	if !p.Reverse {
		t.Error("Reverse should be true")
	}
	if p.Workers != 8 {
		t.Errorf("Workers = %d", p.Workers)
	}
	if p.Prefix != 26 {
		t.Errorf("Prefix = %d", p.Prefix)
	}
	if len(p.Input) != 2 || p.Input[0] != "a.txt" || p.Input[1] != "b.txt" {
		t.Errorf("Input = %v", p.Input)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Output string `flag:"output" default:"-"`
		Merge  bool   `flag:"merge" default:"true"`
		Prefix uint8  `flag:"prefix" default:"24"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Output != "-" {
		t.Errorf("Output = %q, want %q", p.Output, "-")
	}
	if !p.Merge {
		t.Error("Merge should default to true")
	}
	if p.Prefix != 24 {
		t.Errorf("Prefix = %d, want 24", p.Prefix)
	}
}

func TestBindFlags_SkipsUntaggedFields(t *testing.T) {
	type params struct {
		Tagged   string `flag:"tagged"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if flagSet.Lookup("tagged") == nil {
		t.Error("tagged field should be bound")
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should be skipped")
	}
}

func TestBindFlags_EmbeddedJSONOutput(t *testing.T) {
	type params struct {
		JSONOutput
		Input []string `flag:"input" desc:"input files"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON {
		t.Error("embedded --json flag should be bound")
	}
}

func TestBindFlags_RejectsNonPointer(t *testing.T) {
	type params struct {
		Output string `flag:"output"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(params{}, flagSet); err == nil {
		t.Fatal("expected error for non-pointer params")
	}
}

func TestBindFlags_RejectsUnsupportedType(t *testing.T) {
	type params struct {
		Bad float32 `flag:"bad"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(&p, flagSet)
	if err == nil {
		t.Fatal("expected error for unsupported field type")
	}
	if !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %q", err)
	}
}

func TestBindFlags_RejectsBadDefault(t *testing.T) {
	type params struct {
		Prefix uint8 `flag:"prefix" default:"300"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Fatal("expected error for out-of-range uint8 default")
	}
}

func TestFlagsFromParams_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid params")
		}
	}()
	FlagsFromParams("bad", 42)
}
