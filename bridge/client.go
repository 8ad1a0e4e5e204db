// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"

	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
	"github.com/gustavscirulis/snapgrid-sub001/lib/capability"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
)

// Client calls bridge actions with typed arguments. It knows the
// server's granted actions from the capabilities exchange in Dial and
// fails an ungranted call locally with a forbidden failure.
type Client struct {
	service      *service.ServiceClient
	listing      *service.ServiceClient
	capabilities Capabilities
	granted      capability.Set
}

// Dial negotiates capabilities with the bridge at address. By default
// address is a Unix socket path; pass service.WithNetwork("tcp") to
// go through a loopback relay.
func Dial(ctx context.Context, address string, options ...service.ClientOption) (*Client, error) {
	negotiation := service.NewServiceClient(address, options...)
	var capabilities Capabilities
	if err := negotiation.Call(ctx, ActionCapabilities, nil, &capabilities); err != nil {
		return nil, fmt.Errorf("negotiating capabilities: %w", err)
	}

	// Every response except board/load carries at most one payload
	// plus its record. board/load carries the whole board and is
	// bounded separately.
	responseLimit := capabilities.MaxPayloadBytes + envelopeHeadroom

	return &Client{
		service:      service.NewServiceClient(address, withResponseLimit(options, responseLimit)...),
		listing:      service.NewServiceClient(address, withResponseLimit(options, MaxLoadResponseBytes)...),
		capabilities: capabilities,
		granted:      capability.NewSet(capabilities.Actions...),
	}, nil
}

func withResponseLimit(options []service.ClientOption, limit int64) []service.ClientOption {
	return append(append([]service.ClientOption(nil), options...), service.WithMaxResponseSize(limit))
}

// Capabilities returns what the server reported at dial time.
func (c *Client) Capabilities() Capabilities {
	return c.capabilities
}

// Can reports whether the server granted action.
func (c *Client) Can(action string) bool {
	return c.granted.Has(action)
}

func (c *Client) call(ctx context.Context, action string, fields map[string]any, result any) error {
	if !c.granted.Has(action) {
		return failure.Forbidden("action %q is not granted by the bridge", action)
	}
	if action == ActionLoad {
		return c.listing.Call(ctx, action, fields, result)
	}
	return c.service.Call(ctx, action, fields, result)
}

// CheckFileAccess reports whether path is inside the storage root.
func (c *Client) CheckFileAccess(ctx context.Context, path string) (bool, error) {
	var response CheckFileResponse
	if err := c.call(ctx, ActionCheckFile, map[string]any{"path": path}, &response); err != nil {
		return false, err
	}
	return response.Accessible, nil
}

// LoadImages returns every record on the board and any that failed to
// load.
func (c *Client) LoadImages(ctx context.Context) (*board.LoadResult, error) {
	var result board.LoadResult
	if err := c.call(ctx, ActionLoad, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveImage stores payload as a new image. Payloads over the server's
// ceiling are rejected without a round trip.
func (c *Client) SaveImage(ctx context.Context, payload []byte, metadata board.ImageMetadata) (*board.ImageRecord, error) {
	if size := int64(len(payload)); size > c.capabilities.MaxPayloadBytes {
		return nil, failure.Validation("payload is %d bytes, limit is %d", size, c.capabilities.MaxPayloadBytes)
	}
	var record board.ImageRecord
	fields := map[string]any{"payload": payload, "metadata": metadata}
	if err := c.call(ctx, ActionSaveImage, fields, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveURLCard stores a new URL card.
func (c *Client) SaveURLCard(ctx context.Context, url string, metadata board.URLCardMetadata) (*board.URLCardRecord, error) {
	var record board.URLCardRecord
	fields := map[string]any{"url": url, "metadata": metadata}
	if err := c.call(ctx, ActionSaveURLCard, fields, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteImage deletes a record of either kind. It returns false if
// there was nothing to delete.
func (c *Client) DeleteImage(ctx context.Context, id string) (bool, error) {
	var response DeleteResponse
	if err := c.call(ctx, ActionDelete, map[string]any{"id": id}, &response); err != nil {
		return false, err
	}
	return response.Deleted, nil
}

// GetRecord returns one record.
func (c *Client) GetRecord(ctx context.Context, id string) (*board.Record, error) {
	var record board.Record
	if err := c.call(ctx, ActionGet, map[string]any{"id": id}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ReadImage returns an image's payload and record.
func (c *Client) ReadImage(ctx context.Context, id string) ([]byte, *board.ImageRecord, error) {
	var response ReadImageResponse
	if err := c.call(ctx, ActionReadImage, map[string]any{"id": id}, &response); err != nil {
		return nil, nil, err
	}
	return response.Payload, &response.Record, nil
}

// UpdateMetadata replaces a record's metadata.
func (c *Client) UpdateMetadata(ctx context.Context, id string, metadata board.Metadata) (*board.Record, error) {
	var record board.Record
	fields := map[string]any{"id": id, "metadata": metadata}
	if err := c.call(ctx, ActionUpdateMetadata, fields, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// StorageDir returns the storage root path.
func (c *Client) StorageDir(ctx context.Context) (string, error) {
	var response StorageDirResponse
	if err := c.call(ctx, ActionStorageDir, nil, &response); err != nil {
		return "", err
	}
	return response.Path, nil
}

// OpenStorageDir shows the storage root in the OS file browser.
func (c *Client) OpenStorageDir(ctx context.Context) error {
	return c.call(ctx, ActionOpenStorageDir, nil, nil)
}

// OpenURL opens an http or https URL in the OS browser.
func (c *Client) OpenURL(ctx context.Context, url string) error {
	return c.call(ctx, ActionOpenURL, map[string]any{"url": url}, nil)
}
