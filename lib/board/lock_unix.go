// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package board

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a non-blocking exclusive flock on file. flock locks
// belong to the open file description, so a second Open of the same
// root in this process conflicts too.
func lockFile(file *os.File) error {
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return errRootLocked
		}
		return fmt.Errorf("flock %s: %w", file.Name(), err)
	}
	return nil
}

func unlockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}

// syncDir flushes directory entries so a completed rename survives a
// power loss.
func syncDir(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	return dir.Sync()
}
