// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the SnapGrid
// bridge daemon and CLI.
//
// Configuration is loaded from a single file specified by either the
// SNAPGRID_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). [Resolve] picks between the two and falls back to
// [Default] when neither names a file. There is no directory search
// and no per-field environment variable override.
//
// The configuration file supports environment-specific sections
// (development, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: the
// log level is raised to warn.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${SNAPGRID_ROOT} (the storage directory), and
// ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- master struct with Storage, Bridge, Log
//   - [Default] -- returns a Config with development defaults
//   - [Load], [LoadFile], [Resolve] -- the entry points for loading
package config
