// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the cidr tool.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/cidr/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// Command parameters are plain structs with flag:/desc:/default:
// struct tags; [FlagsFromParams] reflects over them to build the
// flag set. Embedding [JSONOutput] adds a --json flag and the
// EmitJSON helper for machine-readable output.
package cli
