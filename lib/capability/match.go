// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"path"
	"strings"
)

// Match reports whether action is covered by pattern. Patterns may
// hold at most one "**", either as the whole pattern, the first
// segment, the last segment, or one interior segment.
func Match(pattern, action string) bool {
	if pattern == "**" {
		return action != ""
	}
	if !strings.Contains(pattern, "**") {
		return glob(pattern, action)
	}
	if strings.Count(pattern, "**") > 1 {
		return false
	}

	switch {
	case strings.HasSuffix(pattern, "/**"):
		head := strings.TrimSuffix(pattern, "/**")
		return glob(head, action) || leadingSegmentsMatch(head, action)

	case strings.HasPrefix(pattern, "**/"):
		tail := strings.TrimPrefix(pattern, "**/")
		return glob(tail, action) || trailingSegmentsMatch(tail, action)
	}

	head, tail, found := strings.Cut(pattern, "/**/")
	if !found {
		return false
	}
	if glob(head+"/"+tail, action) {
		return true
	}

	headDepth := depth(head)
	tailDepth := depth(tail)
	segments := strings.Split(action, "/")
	if len(segments) < headDepth+tailDepth+1 {
		return false
	}
	for _, middle := range segments[headDepth : len(segments)-tailDepth] {
		if middle == "" {
			return false
		}
	}
	return glob(head, strings.Join(segments[:headDepth], "/")) &&
		glob(tail, strings.Join(segments[len(segments)-tailDepth:], "/"))
}

// MatchAny reports whether any pattern covers action. An empty pattern
// list covers nothing.
func MatchAny(patterns []string, action string) bool {
	for _, pattern := range patterns {
		if Match(pattern, action) {
			return true
		}
	}
	return false
}

// Validate reports the first malformed pattern in patterns.
func Validate(patterns []string) error {
	for _, pattern := range patterns {
		if pattern == "" {
			return &PatternError{Pattern: pattern, Reason: "empty pattern"}
		}
		if strings.Count(pattern, "**") > 1 {
			return &PatternError{Pattern: pattern, Reason: "more than one **"}
		}
		if strings.Contains(pattern, "**") && pattern != "**" &&
			!strings.HasPrefix(pattern, "**/") && !strings.HasSuffix(pattern, "/**") &&
			!strings.Contains(pattern, "/**/") {
			return &PatternError{Pattern: pattern, Reason: "** must be a whole segment"}
		}
		if _, err := path.Match(strings.ReplaceAll(pattern, "**", "x"), ""); err != nil {
			return &PatternError{Pattern: pattern, Reason: err.Error()}
		}
	}
	return nil
}

// PatternError describes a grant pattern that can never match.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return "grant pattern " + `"` + e.Pattern + `": ` + e.Reason
}

func glob(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}

func depth(pattern string) int {
	return strings.Count(pattern, "/") + 1
}

// leadingSegmentsMatch reports whether the first depth(pattern)
// segments of action match pattern with at least one segment left over.
func leadingSegmentsMatch(pattern, action string) bool {
	n := depth(pattern)
	segments := strings.SplitN(action, "/", n+1)
	if len(segments) <= n || segments[n] == "" {
		return false
	}
	return glob(pattern, strings.Join(segments[:n], "/"))
}

// trailingSegmentsMatch is leadingSegmentsMatch from the other end.
func trailingSegmentsMatch(pattern, action string) bool {
	n := depth(pattern)
	segments := strings.Split(action, "/")
	if len(segments) <= n {
		return false
	}
	return glob(pattern, strings.Join(segments[len(segments)-n:], "/"))
}
