// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the SnapGrid
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// Uninjected values fall back to the VCS stamp in the binary's build
// info, then to "unknown" / "0.1.0-dev".
//
// [Info] formats them for --version; [Short] is what the bridge
// reports in its capabilities response.
package version
