// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// maxSocketBase is the longest temp base directory SocketDir uses
// before falling back to /tmp. sun_path is 104 bytes on macOS and 108
// on Linux; the rest is left for the directory suffix and file name.
const maxSocketBase = 64

// SocketDir returns a fresh directory for Unix sockets, removed when
// the test completes. t.TempDir paths embed the test name and often
// overflow sun_path, so this one is kept short.
func SocketDir(t testing.TB) string {
	t.Helper()
	base := os.TempDir()
	if len(base) > maxSocketBase {
		base = "/tmp"
	}
	directory, err := os.MkdirTemp(base, "sg-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return filepath.Clean(directory)
}
