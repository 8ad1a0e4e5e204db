// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree behind the snapgrid CLI.
//
// A [Command] has a name, help text, an optional pflag flag set built
// lazily by its Flags function, and either a Run function or nested
// Subcommands. [Command.Execute] dispatches on the first positional
// argument, parses flags, and suggests the closest command or flag
// name on a typo.
//
// Commands print results as indented JSON with [WriteJSON]. A command
// that has already written its output and only needs a non-zero exit
// status returns an [ExitError].
package cli
