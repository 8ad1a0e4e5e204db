// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"net/http"
	"strings"

	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

// payloadExtensions maps accepted sniffed media types to the payload
// file extension. Media types not listed here still get stored with
// ".bin" as long as they are image/* or video/*.
var payloadExtensions = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
	"video/mp4":    ".mp4",
	"video/webm":   ".webm",
	"video/avi":    ".avi",
}

// sniffMediaType classifies payload by content, never by a
// caller-supplied name or type. Only images and videos are accepted.
func sniffMediaType(payload []byte) (mediaType, extension string, err error) {
	if len(payload) == 0 {
		return "", "", failure.Validation("payload is empty")
	}
	mediaType, _, _ = strings.Cut(http.DetectContentType(payload), ";")
	if !strings.HasPrefix(mediaType, "image/") && !strings.HasPrefix(mediaType, "video/") {
		return "", "", failure.Validation("payload is %s, not an image or video", mediaType)
	}
	extension, ok := payloadExtensions[mediaType]
	if !ok {
		extension = ".bin"
	}
	return mediaType, extension, nil
}
