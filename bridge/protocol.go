// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "github.com/gustavscirulis/snapgrid-sub001/lib/board"

// Action names.
const (
	ActionCapabilities   = "capabilities"
	ActionCheckFile      = "file/check"
	ActionLoad           = "board/load"
	ActionSaveImage      = "board/save-image"
	ActionSaveURLCard    = "board/save-url-card"
	ActionDelete         = "board/delete"
	ActionGet            = "board/get"
	ActionReadImage      = "board/read-image"
	ActionUpdateMetadata = "board/update-metadata"
	ActionStorageDir     = "storage/dir"
	ActionOpenStorageDir = "storage/open"
	ActionOpenURL        = "url/open"
)

// GrantableActions lists every action subject to grant patterns.
// capabilities is not in the list: it is always served.
var GrantableActions = []string{
	ActionCheckFile,
	ActionLoad,
	ActionSaveImage,
	ActionSaveURLCard,
	ActionDelete,
	ActionGet,
	ActionReadImage,
	ActionUpdateMetadata,
	ActionStorageDir,
	ActionOpenStorageDir,
	ActionOpenURL,
}

// envelopeHeadroom is added to the payload ceiling to size the socket
// request limit: the payload plus its metadata and CBOR framing must
// fit.
const envelopeHeadroom = 64 * 1024

// MaxLoadResponseBytes bounds a board/load response on the client. It
// is independent of the payload ceiling: the response holds every
// record on the board but no payloads.
const MaxLoadResponseBytes = 1 << 30

// Capabilities is the capabilities response.
type Capabilities struct {
	Actions         []string `cbor:"actions" json:"actions"`
	MaxPayloadBytes int64    `cbor:"max_payload_bytes" json:"max_payload_bytes"`
	Version         string   `cbor:"version" json:"version"`
}

type checkFileRequest struct {
	Path string `cbor:"path" json:"path"`
}

// CheckFileResponse is the file/check response.
type CheckFileResponse struct {
	Accessible bool `cbor:"accessible" json:"accessible"`
}

type saveImageRequest struct {
	Payload  []byte              `cbor:"payload"`
	Metadata board.ImageMetadata `cbor:"metadata"`
}

type saveURLCardRequest struct {
	URL      string                `cbor:"url"`
	Metadata board.URLCardMetadata `cbor:"metadata"`
}

type idRequest struct {
	ID string `cbor:"id"`
}

// DeleteResponse is the board/delete response.
type DeleteResponse struct {
	Deleted bool `cbor:"deleted" json:"deleted"`
}

// ReadImageResponse is the board/read-image response.
type ReadImageResponse struct {
	Record  board.ImageRecord `cbor:"record"`
	Payload []byte            `cbor:"payload"`
}

type updateMetadataRequest struct {
	ID       string         `cbor:"id"`
	Metadata board.Metadata `cbor:"metadata"`
}

// StorageDirResponse is the storage/dir response.
type StorageDirResponse struct {
	Path string `cbor:"path" json:"path"`
}

type openURLRequest struct {
	URL string `cbor:"url"`
}
