// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"net/url"
	"strings"

	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

// ParseWebURL accepts only absolute http and https URLs with a host.
// It is the check behind both saving a URL card and opening a link in
// the browser, so a card can never carry a URL that the bridge would
// refuse to open (file:, javascript:, custom app schemes).
func ParseWebURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, failure.Validation("url is required")
	}
	if len(raw) > maxURLLength {
		return nil, failure.Validation("url is %d bytes, limit is %d", len(raw), maxURLLength)
	}
	if strings.TrimSpace(raw) != raw {
		return nil, failure.Validation("url %q has surrounding whitespace", raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, failure.Validation("malformed url %q: %w", raw, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, failure.Validation("url %q: scheme must be http or https", raw)
	}
	if parsed.Opaque != "" || parsed.Host == "" || parsed.Hostname() == "" {
		return nil, failure.Validation("url %q has no host", raw)
	}
	return parsed, nil
}
