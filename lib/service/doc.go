// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the socket transport shared by the bridge
// daemon and its callers.
//
// The protocol is one CBOR request and one CBOR response per Unix
// socket connection. A request is a map with an "action" field plus
// action-specific fields; a response is the Response envelope. The
// server dispatches on the action name, bounds request size, recovers
// handler panics, and encodes every error with its failure category
// so callers can react to "validation" differently from "io".
//
// Physical access control determines who can reach the socket: it is
// created owner-only in a directory the daemon controls. The set of
// registered actions is the caller's capability; unregistered actions
// are answered with a forbidden failure.
package service
