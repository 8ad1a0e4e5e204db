// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package storagedir resolves and creates the storage root: the one
// directory under which every board record lives.
//
// The root is resolved once at process start by the binary and passed
// to everything that needs it. Nothing else in the repository computes
// a storage location.
package storagedir

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/opener"
)

// Subdirectories created by Ensure. The record store owns their
// contents.
const (
	ImagesDir  = "images"
	RecordsDir = "records"
)

// dirMode keeps board content private to the user.
const dirMode = 0o700

// platform holds OS lookups that tests override.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getenv        func(string) string
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getenv:        os.Getenv,
}

// Default returns the platform-specific data location for appName.
//
//	Linux:   $XDG_DATA_HOME/<app> (fallback ~/.local/share/<app>)
//	macOS:   ~/Library/Application Support/<app>
//	Windows: %AppData%/<app>
func Default(appName string) (string, error) {
	if appName == "" {
		return "", fmt.Errorf("storagedir: application name is required")
	}
	switch platform.goos {
	case "darwin", "windows":
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", fmt.Errorf("storagedir: locating user config directory: %w", err)
		}
		return filepath.Join(dir, appName), nil
	default:
		if xdg := platform.getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platform.homeDir()
		if err != nil {
			return "", fmt.Errorf("storagedir: locating home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", appName), nil
	}
}

// Resolver owns one storage root.
type Resolver struct {
	dir    string
	opener opener.Opener
}

// New creates a Resolver for dir. The directory is not touched until
// Ensure is called.
func New(dir string, launcher opener.Opener) *Resolver {
	return &Resolver{dir: filepath.Clean(dir), opener: launcher}
}

// Dir returns the storage root path.
func (r *Resolver) Dir() string {
	return r.dir
}

// Ensure creates the storage root and its subdirectories if absent and
// returns the root. Safe to call repeatedly. A creation failure is
// returned as an io failure; there is no retry.
func (r *Resolver) Ensure() (string, error) {
	for _, dir := range []string{r.dir, filepath.Join(r.dir, ImagesDir), filepath.Join(r.dir, RecordsDir)} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return "", failure.IO("creating storage directory %s: %w", dir, err)
		}
	}
	info, err := os.Stat(r.dir)
	if err != nil {
		return "", failure.IO("checking storage directory %s: %w", r.dir, err)
	}
	if !info.IsDir() {
		return "", failure.IO("storage path %s is not a directory", r.dir)
	}
	return r.dir, nil
}

// Open shows the storage root in the OS file browser. The directory is
// ensured first so the file browser never opens a missing path.
func (r *Resolver) Open() error {
	dir, err := r.Ensure()
	if err != nil {
		return err
	}
	if r.opener == nil {
		return failure.Internal("storagedir: no opener configured")
	}
	if err := r.opener.OpenDirectory(dir); err != nil {
		return failure.IO("opening %s in the file browser: %w", dir, err)
	}
	return nil
}
