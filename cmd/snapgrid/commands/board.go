// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/cli"
	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
)

func listCommand(stdout, stderr io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "list",
		Summary: "List every record on the board",
		Description: `List every image and URL card, oldest first. Records that fail to load
are listed under "failures" and the command exits with status 1.`,
		Usage: "snapgrid list [flags]",
		Flags: func() *pflag.FlagSet { return conn.newFlagSet("list") },
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "snapgrid list [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			result, err := client.LoadImages(ctx)
			if err != nil {
				return err
			}
			if result.Records == nil {
				result.Records = []board.Record{}
			}
			if err := cli.WriteJSON(stdout, result); err != nil {
				return err
			}
			if len(result.Failures) > 0 {
				fmt.Fprintf(stderr, "warning: %d record(s) failed to load\n", len(result.Failures))
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func showCommand(stdout io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:    "show",
		Summary: "Print one record",
		Usage:   "snapgrid show <id> [flags]",
		Flags:   func() *pflag.FlagSet { return conn.newFlagSet("show") },
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid show <id> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			record, err := client.GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, record)
		},
	}
}

func saveImageCommand(stdout io.Writer) *cli.Command {
	var (
		conn     connection
		metadata board.ImageMetadata
	)
	return &cli.Command{
		Name:    "save-image",
		Summary: "Save an image or short video file to the board",
		Description: `Read a local image or video file and store a copy on the board. The media
type is detected from the file contents. Width and height are recorded as
given; they are not measured.`,
		Usage: "snapgrid save-image <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Save a screenshot with a title and labels",
				Command:     "snapgrid save-image shot.png --title 'Login form' --label ui --label forms",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := conn.newFlagSet("save-image")
			flagSet.StringVar(&metadata.Title, "title", "", "image title")
			flagSet.StringVar(&metadata.Caption, "caption", "", "image caption")
			flagSet.IntVar(&metadata.Width, "width", 0, "width in pixels")
			flagSet.IntVar(&metadata.Height, "height", 0, "height in pixels")
			flagSet.StringArrayVar(&metadata.Labels, "label", nil, "label to attach (repeatable)")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid save-image <file> [flags]"); err != nil {
				return err
			}
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			record, err := client.SaveImage(ctx, payload, metadata)
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, record)
		},
	}
}

func saveCardCommand(stdout io.Writer) *cli.Command {
	var (
		conn     connection
		metadata board.URLCardMetadata
	)
	return &cli.Command{
		Name:    "save-card",
		Summary: "Save a web link to the board",
		Usage:   "snapgrid save-card <url> [flags]",
		Examples: []cli.Example{
			{
				Description: "Save a link with its preview title",
				Command:     "snapgrid save-card https://example.com/post --title 'A post'",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := conn.newFlagSet("save-card")
			flagSet.StringVar(&metadata.Title, "title", "", "card title")
			flagSet.StringVar(&metadata.Description, "description", "", "card description")
			flagSet.StringVar(&metadata.SiteName, "site-name", "", "name of the linked site")
			flagSet.StringVar(&metadata.ImageURL, "image-url", "", "preview image URL")
			flagSet.StringVar(&metadata.FaviconURL, "favicon-url", "", "site icon URL")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid save-card <url> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			record, err := client.SaveURLCard(ctx, args[0], metadata)
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, record)
		},
	}
}

type deleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func deleteCommand(stdout io.Writer) *cli.Command {
	var conn connection
	return &cli.Command{
		Name:        "delete",
		Summary:     "Delete a record and its payload",
		Description: "Delete a record of either kind. Deleting an id that does not exist succeeds with \"deleted\": false.",
		Usage:       "snapgrid delete <id> [flags]",
		Flags:       func() *pflag.FlagSet { return conn.newFlagSet("delete") },
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid delete <id> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			deleted, err := client.DeleteImage(ctx, args[0])
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, deleteOutput{ID: args[0], Deleted: deleted})
		},
	}
}

func readImageCommand(stdout io.Writer) *cli.Command {
	var (
		conn       connection
		outputPath string
	)
	return &cli.Command{
		Name:    "read-image",
		Summary: "Copy an image's payload out of the board",
		Description: `Fetch an image's payload through the bridge. The payload's digest is
verified by the bridge before it is returned. With --output the payload
is written to that file (mode 0600) and the record is printed;
otherwise the raw payload is written to stdout.`,
		Usage: "snapgrid read-image <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := conn.newFlagSet("read-image")
			flagSet.StringVarP(&outputPath, "output", "o", "", "file to write the payload to")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid read-image <id> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			payload, record, err := client.ReadImage(ctx, args[0])
			if err != nil {
				return err
			}
			if outputPath == "" {
				_, err := stdout.Write(payload)
				return err
			}
			if err := os.WriteFile(outputPath, payload, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", outputPath, err)
			}
			return cli.WriteJSON(stdout, record)
		},
	}
}

// updateFlags are the metadata flags of the update command. Only flags
// given on the command line replace the stored values.
type updateFlags struct {
	title       string
	caption     string
	labels      []string
	description string
	siteName    string
}

func updateCommand(stdout io.Writer) *cli.Command {
	var (
		conn    connection
		values  updateFlags
		flagSet *pflag.FlagSet
	)
	return &cli.Command{
		Name:    "update",
		Summary: "Change a record's metadata",
		Description: `Read a record, apply the given flags to its metadata, and write the
metadata back. Flags that do not apply to the record's kind are rejected.`,
		Usage: "snapgrid update <id> [flags]",
		Examples: []cli.Example{
			{Description: "Retitle an image", Command: "snapgrid update 5f0c...e1 --title 'Checkout flow'"},
			{Description: "Clear an image's labels", Command: "snapgrid update 5f0c...e1 --label ''"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = conn.newFlagSet("update")
			flagSet.StringVar(&values.title, "title", "", "new title")
			flagSet.StringVar(&values.caption, "caption", "", "new image caption")
			flagSet.StringArrayVar(&values.labels, "label", nil, "image label, replacing all labels (repeatable)")
			flagSet.StringVar(&values.description, "description", "", "new URL card description")
			flagSet.StringVar(&values.siteName, "site-name", "", "new URL card site name")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "snapgrid update <id> [flags]"); err != nil {
				return err
			}
			ctx, cancel, client, err := conn.dial()
			if err != nil {
				return err
			}
			defer cancel()

			record, err := client.GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			metadata, err := values.apply(flagSet, record)
			if err != nil {
				return err
			}
			updated, err := client.UpdateMetadata(ctx, args[0], metadata)
			if err != nil {
				return err
			}
			return cli.WriteJSON(stdout, updated)
		},
	}
}

// apply returns record's metadata with the changed flags applied.
func (u *updateFlags) apply(flagSet *pflag.FlagSet, record *board.Record) (board.Metadata, error) {
	switch record.Kind {
	case board.KindImage:
		for _, name := range []string{"description", "site-name"} {
			if flagSet.Changed(name) {
				return board.Metadata{}, fmt.Errorf("--%s does not apply to images", name)
			}
		}
		metadata := record.Image.Metadata
		if flagSet.Changed("title") {
			metadata.Title = u.title
		}
		if flagSet.Changed("caption") {
			metadata.Caption = u.caption
		}
		if flagSet.Changed("label") {
			metadata.Labels = nil
			for _, label := range u.labels {
				if label != "" {
					metadata.Labels = append(metadata.Labels, label)
				}
			}
		}
		return board.Metadata{Image: &metadata}, nil
	case board.KindURLCard:
		for _, name := range []string{"caption", "label"} {
			if flagSet.Changed(name) {
				return board.Metadata{}, fmt.Errorf("--%s does not apply to URL cards", name)
			}
		}
		metadata := record.URLCard.Metadata
		if flagSet.Changed("title") {
			metadata.Title = u.title
		}
		if flagSet.Changed("description") {
			metadata.Description = u.description
		}
		if flagSet.Changed("site-name") {
			metadata.SiteName = u.siteName
		}
		return board.Metadata{URLCard: &metadata}, nil
	default:
		return board.Metadata{}, fmt.Errorf("record %s has unknown kind %q", record.ID(), record.Kind)
	}
}
