// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathguard decides whether a caller-supplied path lies inside
// the storage root.
//
// Containment is checked on resolved paths, not literal strings: both
// the root and the candidate are made absolute and have every symlink
// resolved before the prefix comparison. A literal check would accept
// "<root>/../etc/passwd" and "<root>/link-to-etc/passwd"; the resolved
// check rejects both.
//
// [Guard.IsAccessible] is the only gate for paths that arrive from the
// lower-trust caller. It never returns an error: every failure mode
// (malformed input, a path that does not exist, a path outside the
// root) answers false, so a caller learns nothing about the host
// filesystem beyond "not accessible".
package pathguard
