// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides SnapGrid's standard CBOR encoding configuration.
//
// CBOR is used for both of the storage layer's internal formats:
//
//   - the bridge socket protocol (one request value and one response
//     value per connection), and
//   - record files under the storage root (records/<id>.cbor).
//
// Sharing one configuration means a record read from disk and the same
// record returned over the socket encode identically. The encoder uses
// Core Deterministic Encoding (RFC 8949 §4.2) and writes time values as
// RFC 3339 strings with nanoseconds, so creation timestamps survive a
// round trip without losing the sub-second ordering the board relies on.
//
// For buffer-oriented operations (record files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// Types that only ever travel as CBOR carry `cbor` tags. Records carry
// `json` tags only; fxamacker/cbor reads `json` tags when `cbor` tags
// are absent. Protocol responses the CLI prints carry both, with the
// same name in each.
//
// # Decoding Limits
//
// Socket requests come from an untrusted caller. The decoder rejects
// duplicate map keys and nesting deeper than [MaxNestingDepth], so a
// request decodes to one unambiguous value.
package codec
