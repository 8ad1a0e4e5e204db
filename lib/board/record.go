// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"time"
	"unicode/utf8"

	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

// Kind distinguishes the two record kinds sharing the board namespace.
type Kind string

const (
	KindImage   Kind = "image"
	KindURLCard Kind = "url_card"
)

// Field limits. Metadata is user-visible text; anything larger is a
// client bug, not a caption.
const (
	maxTitleLength       = 512
	maxTextLength        = 4096
	maxLabels            = 64
	maxLabelLength       = 64
	maxURLLength         = 8192
	maxDimensionInPixels = 1 << 20
)

// ImageMetadata is the caller-supplied description of an image. It is
// replaced wholesale by Store.UpdateMetadata.
type ImageMetadata struct {
	Title   string   `json:"title,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Labels  []string `json:"labels,omitempty"`
}

// ImageRecord is a stored image (or short video) and its metadata.
type ImageRecord struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`

	// File is the payload location relative to the storage root
	// ("images/<id>.png"). Path is the same file as an absolute path,
	// filled in when the record is returned and never persisted.
	File string `json:"file"`
	Path string `json:"path,omitempty"`

	Size      int64         `json:"size"`
	Digest    string        `json:"digest"`
	CreatedAt time.Time     `json:"created_at"`
	Metadata  ImageMetadata `json:"metadata"`
}

// URLCardMetadata is the preview information shown on a link card.
type URLCardMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	FaviconURL  string `json:"favicon_url,omitempty"`
}

// URLCardRecord is a saved web link.
type URLCardRecord struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
	Metadata  URLCardMetadata `json:"metadata"`
}

// Record is one entry of the board: exactly one of Image or URLCard is
// set, matching Kind.
type Record struct {
	Kind    Kind           `json:"kind"`
	Image   *ImageRecord   `json:"image,omitempty"`
	URLCard *URLCardRecord `json:"url_card,omitempty"`
}

// ID returns the record id, or "" for a malformed record.
func (r *Record) ID() string {
	switch {
	case r.Kind == KindImage && r.Image != nil:
		return r.Image.ID
	case r.Kind == KindURLCard && r.URLCard != nil:
		return r.URLCard.ID
	}
	return ""
}

// CreatedAt returns the record's creation time.
func (r *Record) CreatedAt() time.Time {
	switch {
	case r.Kind == KindImage && r.Image != nil:
		return r.Image.CreatedAt
	case r.Kind == KindURLCard && r.URLCard != nil:
		return r.URLCard.CreatedAt
	}
	return time.Time{}
}

// Validate checks field limits. It performs no I/O.
func (m ImageMetadata) Validate() error {
	if err := checkText("title", m.Title, maxTitleLength); err != nil {
		return err
	}
	if err := checkText("caption", m.Caption, maxTextLength); err != nil {
		return err
	}
	if m.Width < 0 || m.Width > maxDimensionInPixels {
		return failure.Validation("width %d out of range", m.Width)
	}
	if m.Height < 0 || m.Height > maxDimensionInPixels {
		return failure.Validation("height %d out of range", m.Height)
	}
	if len(m.Labels) > maxLabels {
		return failure.Validation("%d labels exceeds the limit of %d", len(m.Labels), maxLabels)
	}
	for _, label := range m.Labels {
		if label == "" {
			return failure.Validation("labels must not be empty")
		}
		if err := checkText("label", label, maxLabelLength); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks field limits and that preview URLs are web URLs.
func (m URLCardMetadata) Validate() error {
	if err := checkText("title", m.Title, maxTitleLength); err != nil {
		return err
	}
	if err := checkText("description", m.Description, maxTextLength); err != nil {
		return err
	}
	if err := checkText("site name", m.SiteName, maxTitleLength); err != nil {
		return err
	}
	previews := []struct{ field, value string }{
		{"image_url", m.ImageURL},
		{"favicon_url", m.FaviconURL},
	}
	for _, preview := range previews {
		if preview.value == "" {
			continue
		}
		if _, err := ParseWebURL(preview.value); err != nil {
			return failure.Validation("%s: %w", preview.field, err)
		}
	}
	return nil
}

func checkText(field, value string, limit int) error {
	if !utf8.ValidString(value) {
		return failure.Validation("%s is not valid UTF-8", field)
	}
	if length := utf8.RuneCountInString(value); length > limit {
		return failure.Validation("%s is %d characters, limit is %d", field, length, limit)
	}
	return nil
}
