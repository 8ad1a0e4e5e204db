// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gustavscirulis/snapgrid-sub001/bridge"
	"github.com/gustavscirulis/snapgrid-sub001/cmd/snapgrid/cli"
	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/opener"
	"github.com/gustavscirulis/snapgrid-sub001/lib/pathguard"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
	"github.com/gustavscirulis/snapgrid-sub001/lib/testutil"
)

type testEnvironment struct {
	socket string
	root   string
	opener *opener.Recorder
}

func startBridge(t *testing.T, grants []string) *testEnvironment {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recorder := &opener.Recorder{}
	resolver := storagedir.New(filepath.Join(t.TempDir(), "SnapGrid"), recorder)
	root, err := resolver.Ensure()
	if err != nil {
		t.Fatal(err)
	}
	guard, err := pathguard.New(root)
	if err != nil {
		t.Fatal(err)
	}
	store, err := board.Open(board.Options{Root: root, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}

	socket := filepath.Join(testutil.SocketDir(t), "bridge.sock")
	server, err := bridge.New(bridge.Config{
		SocketPath:      socket,
		Store:           store,
		Guard:           guard,
		Storage:         resolver,
		Opener:          recorder,
		Grants:          grants,
		MaxPayloadBytes: 1 << 20,
		Logger:          logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "Serve did not return")
		store.Close()
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "bridge did not start")

	return &testEnvironment{socket: socket, root: root, opener: recorder}
}

// run executes the command tree against the test bridge and returns
// stdout.
func (e *testEnvironment) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{}, args...)
	if len(full) > 0 && !strings.HasPrefix(full[0], "-") {
		full = append(full, "--socket", e.socket)
	}
	err := Root(&stdout, &stderr).Execute(full)
	return stdout.String(), err
}

func (e *testEnvironment) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	output, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("snapgrid %s: %v", strings.Join(args, " "), err)
	}
	return output
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(output), &value); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	return value
}

func TestURLCardCommands(t *testing.T) {
	env := startBridge(t, nil)

	card := decode[board.URLCardRecord](t, env.mustRun(t, "save-card", "https://example.com/post",
		"--title", "A post", "--site-name", "Example"))
	if card.ID == "" || card.URL != "https://example.com/post" || card.Metadata.Title != "A post" {
		t.Fatalf("saved card = %+v", card)
	}

	listed := decode[board.LoadResult](t, env.mustRun(t, "list"))
	if len(listed.Records) != 1 || listed.Records[0].ID() != card.ID {
		t.Fatalf("list = %+v, want the card", listed)
	}

	updated := decode[board.Record](t, env.mustRun(t, "update", card.ID, "--description", "Worth reading"))
	if updated.URLCard == nil || updated.URLCard.Metadata.Description != "Worth reading" ||
		updated.URLCard.Metadata.Title != "A post" {
		t.Errorf("updated card = %+v, want the description added and the title kept", updated.URLCard)
	}
	if _, err := env.run(t, "update", card.ID, "--caption", "x"); err == nil {
		t.Error("update accepted an image flag for a URL card")
	}

	shown := decode[board.Record](t, env.mustRun(t, "show", card.ID))
	if shown.Kind != board.KindURLCard || shown.URLCard.Metadata.Description != "Worth reading" {
		t.Errorf("show = %+v", shown)
	}

	env.mustRun(t, "open-url", card.URL)
	if urls := env.opener.URLs(); len(urls) != 1 || urls[0] != card.URL {
		t.Errorf("opened URLs = %v", urls)
	}

	deleted := decode[deleteOutput](t, env.mustRun(t, "delete", card.ID))
	if !deleted.Deleted {
		t.Error("first delete reported nothing deleted")
	}
	deleted = decode[deleteOutput](t, env.mustRun(t, "delete", card.ID))
	if deleted.Deleted {
		t.Error("second delete reported a deletion")
	}

	listed = decode[board.LoadResult](t, env.mustRun(t, "list"))
	if len(listed.Records) != 0 {
		t.Errorf("list after delete = %+v", listed.Records)
	}
}

func TestImageCommands(t *testing.T) {
	env := startBridge(t, nil)
	source := filepath.Join(t.TempDir(), "shot.png")
	payload := testutil.PNG(t, 4, 3, color.RGBA{R: 200, A: 255})
	if err := os.WriteFile(source, payload, 0o600); err != nil {
		t.Fatal(err)
	}

	image := decode[board.ImageRecord](t, env.mustRun(t, "save-image", source,
		"--title", "Login", "--label", "ui", "--label", "forms", "--width", "4", "--height", "3"))
	if image.MediaType != "image/png" || image.Metadata.Title != "Login" || len(image.Metadata.Labels) != 2 {
		t.Fatalf("saved image = %+v", image)
	}

	destination := filepath.Join(t.TempDir(), "copy.png")
	env.mustRun(t, "read-image", image.ID, "--output", destination)
	copied, err := os.ReadFile(destination)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(copied, payload) {
		t.Error("read-image --output wrote different bytes")
	}

	raw := env.mustRun(t, "read-image", image.ID)
	if raw != string(payload) {
		t.Error("read-image to stdout wrote different bytes")
	}

	updated := decode[board.Record](t, env.mustRun(t, "update", image.ID, "--label", ""))
	if updated.Image == nil || len(updated.Image.Metadata.Labels) != 0 || updated.Image.Metadata.Title != "Login" {
		t.Errorf("updated image = %+v, want labels cleared and the title kept", updated.Image)
	}

	check := decode[checkOutput](t, env.mustRun(t, "check", image.File))
	if !check.Accessible {
		t.Errorf("check %s = inaccessible", image.File)
	}
	check = decode[checkOutput](t, env.mustRun(t, "check", "../outside"))
	if check.Accessible {
		t.Error("check ../outside = accessible")
	}
}

func TestSaveImageRejectsNonMedia(t *testing.T) {
	env := startBridge(t, nil)
	source := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(source, []byte("just some text"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := env.run(t, "save-image", source)
	if got := failure.CategoryOf(err); got != failure.CategoryValidation {
		t.Errorf("save-image of text: category %q, error %v", got, err)
	}
}

func TestStorageCommands(t *testing.T) {
	env := startBridge(t, nil)

	dir := decode[bridge.StorageDirResponse](t, env.mustRun(t, "dir"))
	if dir.Path != env.root {
		t.Errorf("dir = %q, want %q", dir.Path, env.root)
	}

	env.mustRun(t, "open-dir")
	if dirs := env.opener.Directories(); len(dirs) != 1 || dirs[0] != env.root {
		t.Errorf("opened directories = %v", dirs)
	}
}

func TestGrantsLimitCommands(t *testing.T) {
	env := startBridge(t, []string{"board/load", "storage/*"})

	capabilities := decode[bridge.Capabilities](t, env.mustRun(t, "capabilities"))
	want := []string{"board/load", "storage/dir", "storage/open"}
	if strings.Join(capabilities.Actions, ",") != strings.Join(want, ",") {
		t.Errorf("capabilities = %v, want %v", capabilities.Actions, want)
	}

	_, err := env.run(t, "save-card", "https://example.com")
	if got := failure.CategoryOf(err); got != failure.CategoryForbidden {
		t.Errorf("save-card without grant: category %q, error %v", got, err)
	}
	env.mustRun(t, "list")
}

func TestListReportsFailures(t *testing.T) {
	env := startBridge(t, nil)
	if err := os.WriteFile(filepath.Join(env.root, storagedir.RecordsDir, "bogus.cbor"), []byte("not cbor"), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := env.run(t, "list")
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("list with a corrupt record = %v, want exit status 1", err)
	}
	result := decode[board.LoadResult](t, output)
	if len(result.Failures) != 1 {
		t.Errorf("failures = %+v, want one", result.Failures)
	}
}

func TestArgumentErrors(t *testing.T) {
	env := startBridge(t, nil)
	for _, args := range [][]string{
		{"show"},
		{"delete", "a", "b"},
		{"list", "extra"},
		{"save-image", filepath.Join(t.TempDir(), "missing.png")},
	} {
		if _, err := env.run(t, args...); err == nil {
			t.Errorf("snapgrid %v succeeded", args)
		}
	}
}

func TestUnreachableBridge(t *testing.T) {
	var stdout, stderr bytes.Buffer
	socket := filepath.Join(testutil.SocketDir(t), "absent.sock")
	err := Root(&stdout, &stderr).Execute([]string{"list", "--socket", socket, "--timeout", "2s"})
	if got := failure.CategoryOf(err); got != failure.CategoryIO {
		t.Errorf("list against a missing socket: category %q, error %v", got, err)
	}
}

func TestDecodeRecord(t *testing.T) {
	env := startBridge(t, nil)
	card := decode[board.URLCardRecord](t, env.mustRun(t, "save-card", "https://example.com/decoded"))

	var stdout, stderr bytes.Buffer
	recordFile := filepath.Join(env.root, storagedir.RecordsDir, card.ID+".cbor")
	if err := Root(&stdout, &stderr).Execute([]string{"decode-record", recordFile}); err != nil {
		t.Fatalf("decode-record: %v", err)
	}
	if !strings.Contains(stdout.String(), `"https://example.com/decoded"`) {
		t.Errorf("decode-record output lacks the URL:\n%s", stdout.String())
	}

	garbage := filepath.Join(t.TempDir(), "garbage.cbor")
	if err := os.WriteFile(garbage, []byte{0xff, 0x00}, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Root(&stdout, &stderr).Execute([]string{"decode-record", garbage}); err == nil {
		t.Error("decode-record accepted invalid CBOR")
	}
}
