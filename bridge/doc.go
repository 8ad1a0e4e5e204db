// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge is the access bridge between the rendering surface
// and the board's storage.
//
// The rendering surface is the lower-trust side: it never receives a
// filesystem handle or a raw path into storage. It reaches storage only
// through the named actions a [Server] registers on its Unix socket,
// and it refers to records only by the opaque ids the store generated.
// The one action that accepts a path, file/check, answers a yes/no
// question through the path validator and touches nothing.
//
// The action set is scoped by grant patterns from configuration (see
// package capability). Ungranted actions are never registered, so a
// request for one is answered with a forbidden failure by the socket
// server itself. The capabilities action, always registered, reports
// the granted set; [Dial] calls it once and the [Client] refuses
// ungranted calls locally.
//
// [Relay] forwards loopback TCP connections to the socket for callers
// that cannot dial Unix sockets. It only binds loopback addresses.
package bridge
