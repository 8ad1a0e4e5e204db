// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package pathguard

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Guard answers containment questions against one canonical root.
// It holds no mutable state and is safe for concurrent use.
type Guard struct {
	root string
}

// New resolves root to its canonical form. The root must exist:
// symlink resolution of a missing directory fails, and a guard over an
// unresolvable root could never answer correctly.
func New(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("pathguard: root is required")
	}
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pathguard: making %q absolute: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return nil, fmt.Errorf("pathguard: resolving root %q: %w", root, err)
	}
	return &Guard{root: filepath.Clean(resolved)}, nil
}

// Root returns the canonical root.
func (g *Guard) Root() string {
	return g.root
}

// IsAccessible reports whether path resolves to the root or to an
// existing file or directory inside it. Relative paths are taken
// relative to the root.
func (g *Guard) IsAccessible(path string) bool {
	resolved, ok := g.resolve(path)
	if !ok {
		return false
	}
	return g.contains(resolved)
}

// resolve canonicalizes a candidate path. Returns false for malformed
// input and for paths that do not exist.
func (g *Guard) resolve(path string) (string, bool) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	// EvalSymlinks keeps a relative result relative; the join above
	// guarantees an absolute input, so the result is absolute too.
	return filepath.Clean(resolved), true
}

// contains is the prefix test on canonical paths. The separator suffix
// keeps "/data/snapgrid-other" from matching root "/data/snapgrid".
func (g *Guard) contains(resolved string) bool {
	if resolved == g.root {
		return true
	}
	return strings.HasPrefix(resolved, g.root+string(filepath.Separator))
}
