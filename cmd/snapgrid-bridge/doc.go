// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// snapgrid-bridge is the trusted side of SnapGrid. It owns the storage
// root, opens the record store as its sole writer, and serves the
// granted bridge actions on a Unix socket until SIGINT or SIGTERM.
//
// Configuration comes from the file named by --config or
// SNAPGRID_CONFIG, falling back to built-in defaults. The --socket and
// --storage-dir flags override the corresponding config fields. When
// bridge.relay_listen is set, a loopback TCP relay forwards to the
// socket for callers that cannot reach Unix sockets.
package main
