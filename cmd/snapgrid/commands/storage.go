// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/gustavscirulis/snapgrid-sub001/bridge"
	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/cli"
)

func capabilitiesCommand(stdout io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "capabilities",
		Summary: "Print the actions this client is granted",
		Flags:   func() *pflag.FlagSet { return conn.newFlagSet("capabilities") },
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "snapgrid capabilities [flags]"); err != nil {
				return err
			}
			_, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()
			return cli.WriteJSON(stdout, client.Capabilities())
		},
	}
}

type checkOutput struct {
	Path       string `json:"path"`
	Accessible bool   `json:"accessible"`
}

func checkCommand(stdout io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "check",
		Summary: "Report whether a path is inside the storage directory",
		Description: `Ask the bridge whether a path resolves inside the storage directory.
Relative paths are taken relative to the storage directory. Symbolic links
are resolved, so a link pointing outside the directory is not accessible.`,
		Usage: "snapgrid check <path> [flags]",
		Flags: func() *pflag.FlagSet { return conn.newFlagSet("check") },
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid check <path> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			accessible, err := client.CheckFileAccess(ctx, args[0])
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, checkOutput{Path: args[0], Accessible: accessible})
		},
	}
}

func dirCommand(stdout io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "dir",
		Summary: "Print the storage directory",
		Flags:   func() *pflag.FlagSet { return conn.newFlagSet("dir") },
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "snapgrid dir [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			path, err := client.StorageDir(ctx)
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, bridge.StorageDirResponse{Path: path})
		},
	}
}

func openDirCommand() *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "open-dir",
		Summary: "Show the storage directory in the file browser",
		Flags:   func() *pflag.FlagSet { return conn.newFlagSet("open-dir") },
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "snapgrid open-dir [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()
			return client.OpenStorageDir(ctx)
		},
	}
}

func openURLCommand() *cli.Command {
	var conn connection
	return &cli.Command{
		Name:        "open-url",
		Summary:     "Open a web link in the default browser",
		Description: "Open an http or https URL in the default browser. Other schemes are rejected by the bridge.",
		Usage:       "snapgrid open-url <url> [flags]",
		Flags:       func() *pflag.FlagSet { return conn.newFlagSet("open-url") },
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid open-url <url> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()
			return client.OpenURL(ctx, args[0])
		},
	}
}
