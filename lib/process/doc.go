// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the SnapGrid
// binaries: fatal error reporting before the structured logger exists,
// and the signal-scoped context every long-running main uses.
package process
