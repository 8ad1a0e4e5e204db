// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets. [RequireReceive] and [RequireClosed] wrap the
// select-with-timeout pattern so that concurrency tests fail instead
// of hanging. [PNG] returns a small valid PNG that the record store's
// content sniffing accepts as an image.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
