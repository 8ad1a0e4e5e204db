// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/cli"
	"github.com/gustavscirulis/snapgrid-sub001/lib/version"
)

// Root returns the snapgrid command tree. Command results go to stdout;
// help text and diagnostics go to stderr.
func Root(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "snapgrid",
		Summary: "Client for the SnapGrid board bridge",
		Description: `snapgrid talks to a running snapgrid-bridge. Each command performs one
bridge action and prints its result as JSON. The bridge socket comes from
--socket, the config file named by --config or SNAPGRID_CONFIG, or the
default socket path, in that order.`,
		Output: stderr,
		Subcommands: []*cli.Command{
			capabilitiesCommand(stdout),
			listCommand(stdout, stderr),
			showCommand(stdout),
			saveImageCommand(stdout),
			saveCardCommand(stdout),
			updateCommand(stdout),
			deleteCommand(stdout),
			readImageCommand(stdout),
			checkCommand(stdout),
			dirCommand(stdout),
			openDirCommand(),
			openURLCommand(),
			decodeRecordCommand(stdout),
			versionCommand(stdout),
		},
	}
}

func versionCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print the client version",
		Run: func(args []string) error {
			_, err := fmt.Fprintf(stdout, "snapgrid %s\n", version.Full())
			return err
		},
	}
}

// requireArgs checks the positional argument count.
func requireArgs(args []string, count int, usage string) error {
	if len(args) != count {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
