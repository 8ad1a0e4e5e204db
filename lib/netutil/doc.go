// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds connection helpers for the loopback relay:
// bidirectional copying between two connections, classification of the
// errors that normal teardown produces, and the loopback address check
// that keeps the relay off external interfaces.
package netutil
