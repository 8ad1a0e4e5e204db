// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix && !windows

package board

import "os"

// Platforms without advisory locks rely on the single-process model.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
func syncDir(string) error      { return nil }
