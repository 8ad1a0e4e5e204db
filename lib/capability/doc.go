// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability decides which bridge actions a caller may invoke.
//
// Actions are slash-separated names ("board/save-image", "url/open").
// A grant is a glob over action names:
//
//	board/load      exactly that action
//	board/*         every action one level under board/
//	board/**        every action anywhere under board/
//	**              every action
//	**/open         any action whose last segment is "open"
//
// "*" and "?" never cross a "/". A malformed pattern grants nothing.
// The bridge registers only granted actions, and advertises the same
// set through its capabilities action so the client can refuse an
// ungranted call without a round trip.
package capability
