// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/cli"
	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
)

func decodeRecordCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "decode-record",
		Summary: "Print a record file in CBOR diagnostic notation",
		Description: `Read a record file (records/<id>.cbor under the storage directory) and
print it in CBOR diagnostic notation. This reads the file directly and
does not need a running bridge; use it to inspect records that "list"
reports as failures.`,
		Usage: "snapgrid decode-record <file>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid decode-record <file>"); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			notation, err := codec.Diagnose(data)
			if err != nil {
				return fmt.Errorf("%s is not valid CBOR: %w", args[0], err)
			}
			_, err = fmt.Fprintln(stdout, notation)
			return err
		},
	}
}
