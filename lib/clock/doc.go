// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The record store stamps every record with its creation time and
// orders the board by it. Production code injects Real(); tests inject
// Fake() so that creation order is chosen by the test rather than by
// scheduling jitter:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store, _ := board.Open(board.Options{Root: dir, Clock: c})
//	store.SaveURLCard(...)       // created_at = 2026-01-01T00:00:00Z
//	c.Advance(time.Second)
//	store.SaveURLCard(...)       // created_at = 2026-01-01T00:00:01Z
//
// SetStep makes the fake clock tick on its own, one step per reading.
package clock
