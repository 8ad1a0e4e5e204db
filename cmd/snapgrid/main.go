// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"os"

	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/commands"
	"github.com/gustavscirulis/snapgrid-sub001/lib/process"
)

func main() {
	if err := commands.Root(os.Stdout, os.Stderr).Execute(os.Args[1:]); err != nil {
		// Commands that print their own output return an ExitError
		// with the status to use; don't add an "error:" line.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}
