// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package opener hands URLs and directories to the desktop environment:
// the default browser for web links, the file browser for the storage
// directory. It is the only way the storage layer reaches outside its
// own process, and it is fire-and-forget: success means the OS helper
// was launched, not that a window appeared.
package opener

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/browser"
)

// Opener launches external viewers. Implementations must not block on
// the viewer's lifetime.
type Opener interface {
	// OpenURL opens a web URL in the default browser. Callers validate
	// the scheme; the opener passes the string through as is.
	OpenURL(url string) error

	// OpenDirectory shows a local directory in the OS file browser.
	OpenDirectory(path string) error
}

// System is the production Opener backed by github.com/pkg/browser
// (xdg-open on Linux, open on macOS, rundll32 on Windows).
type System struct{}

var quietOnce sync.Once

// NewSystem returns the OS-backed opener. The helper processes inherit
// no stdio: a daemon's stdout is not a terminal and helpers such as
// xdg-open print noise there.
func NewSystem() *System {
	quietOnce.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
	return &System{}
}

// OpenURL implements Opener.
func (*System) OpenURL(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("opening %s in browser: %w", url, err)
	}
	return nil
}

// OpenDirectory implements Opener.
func (*System) OpenDirectory(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("opening %s in file browser: %w", path, err)
	}
	return nil
}
