// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package board is the record store for a SnapGrid board: image assets
// and URL cards persisted as files under the storage root.
//
// # Layout
//
//	<root>/.lock                  advisory lock held by the open Store
//	<root>/images/<id><ext>       image payload (ext from the sniffed media type)
//	<root>/records/<id>.cbor      record file: {version, record}
//	<root>/*/.tmp-*               in-flight writes
//
// A record exists exactly when its record file exists. Saves write the
// payload first and the record file last, each through a temp file that
// is fsynced and renamed into place, so a crash at any point leaves
// either the previous state or a complete record. Temp files and
// payloads without a record file are crash leftovers; Open removes them.
//
// # Ids
//
// Record ids are random UUIDs generated by the store. Callers must treat
// them as opaque. Every method that accepts an id rejects anything that
// is not a canonical UUID before touching the filesystem, which also
// keeps ids from ever naming a path.
//
// # Concurrency
//
// Store is the sole writer to the root. Within a process, all operations
// on one id run one at a time in arrival order (a FIFO lock per id);
// operations on different ids run in parallel. Across processes, Open
// takes an exclusive lock on <root>/.lock and fails if another process
// holds it. Operations take no context: once started, a write or delete
// runs to completion even if the requester has gone away.
//
// # Partial failure
//
// LoadAll never fails because one record is unreadable. It returns the
// readable records plus a Failure per unreadable id; LoadResult.Err
// turns the failures into a *PartialLoadError for callers that want an
// error value.
package board
