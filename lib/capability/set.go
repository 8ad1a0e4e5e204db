// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"slices"
	"sort"
)

// Set is an immutable set of granted action names.
type Set struct {
	actions []string
}

// Grant returns the subset of available actions covered by patterns.
func Grant(patterns []string, available []string) Set {
	var granted []string
	for _, action := range available {
		if MatchAny(patterns, action) {
			granted = append(granted, action)
		}
	}
	return NewSet(granted...)
}

// NewSet returns a Set holding actions. Duplicates are dropped.
func NewSet(actions ...string) Set {
	sorted := slices.Clone(actions)
	sort.Strings(sorted)
	return Set{actions: slices.Compact(sorted)}
}

// Has reports whether action is in the set.
func (s Set) Has(action string) bool {
	_, found := slices.BinarySearch(s.actions, action)
	return found
}

// Actions returns the granted actions in sorted order. The caller may
// modify the returned slice.
func (s Set) Actions() []string {
	return slices.Clone(s.actions)
}

// Len returns the number of granted actions.
func (s Set) Len() int {
	return len(s.actions)
}
