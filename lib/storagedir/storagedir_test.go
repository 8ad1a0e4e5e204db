// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package storagedir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/opener"
)

// withPlatform swaps the platform lookups for the duration of a test.
func withPlatform(t *testing.T, goos string, env map[string]string, home, config string) {
	t.Helper()
	saved := platform
	t.Cleanup(func() { platform = saved })

	platform.goos = goos
	platform.getenv = func(key string) string { return env[key] }
	platform.homeDir = func() (string, error) { return home, nil }
	platform.userConfigDir = func() (string, error) { return config, nil }
}

func TestDefault(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{"linux xdg", "linux", map[string]string{"XDG_DATA_HOME": "/xdg/data"}, "/xdg/data/snapgrid"},
		{"linux fallback", "linux", nil, "/home/u/.local/share/snapgrid"},
		{"linux relative xdg ignored", "linux", map[string]string{"XDG_DATA_HOME": "rel"}, "/home/u/.local/share/snapgrid"},
		{"darwin", "darwin", nil, "/home/u/Library/Application Support/snapgrid"},
		{"windows", "windows", nil, "/home/u/Library/Application Support/snapgrid"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			withPlatform(t, test.goos, test.env, "/home/u", "/home/u/Library/Application Support")
			got, err := Default("snapgrid")
			if err != nil {
				t.Fatalf("Default: %v", err)
			}
			if got != test.want {
				t.Errorf("Default() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestDefaultLookupFailure(t *testing.T) {
	withPlatform(t, "linux", nil, "", "")
	platform.homeDir = func() (string, error) { return "", errors.New("no home") }
	if _, err := Default("snapgrid"); err == nil {
		t.Error("expected error when home directory is unavailable")
	}
	if _, err := Default(""); err == nil {
		t.Error("expected error for empty application name")
	}
}

func TestEnsureCreatesLayoutIdempotently(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "board")
	resolver := New(dir, nil)

	for i := range 3 {
		got, err := resolver.Ensure()
		if err != nil {
			t.Fatalf("Ensure #%d: %v", i, err)
		}
		if got != dir {
			t.Errorf("Ensure #%d = %q, want %q", i, got, dir)
		}
	}

	for _, sub := range []string{"", ImagesDir, RecordsDir} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			t.Fatalf("stat %q: %v", sub, err)
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", sub)
		}
		if perm := info.Mode().Perm(); perm != dirMode {
			t.Errorf("%q mode = %o, want %o", sub, perm, dirMode)
		}
	}
}

func TestEnsureSurfacesFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := New(filepath.Join(blocker, "board"), nil).Ensure()
	if err == nil {
		t.Fatal("expected error when a file blocks the storage path")
	}
	if !failure.Is(err, failure.CategoryIO) {
		t.Errorf("category = %q, want io", failure.CategoryOf(err))
	}
}

func TestOpenUsesOpener(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "board")
	recorder := &opener.Recorder{}

	if err := New(dir, recorder).Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	directories := recorder.Directories()
	if len(directories) != 1 || directories[0] != dir {
		t.Errorf("opened %v, want [%s]", directories, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Open should ensure the directory: %v", err)
	}
}

func TestOpenReportsOpenerFailure(t *testing.T) {
	recorder := &opener.Recorder{Err: errors.New("no file browser")}
	err := New(t.TempDir(), recorder).Open()
	if !failure.Is(err, failure.CategoryIO) {
		t.Errorf("Open error = %v (category %q), want io", err, failure.CategoryOf(err))
	}
}
