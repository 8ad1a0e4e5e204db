// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

// dialTimeout is the maximum time to wait for a connection to the
// service socket. This is separate from the server's read/write
// timeouts; it covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the server to
// send a response after writing the request. Matched to the server's
// readTimeout + writeTimeout to account for handler execution time.
const responseReadTimeout = 60 * time.Second

// DefaultMaxResponseSize bounds a response when no
// WithMaxResponseSize option is given.
const DefaultMaxResponseSize = 1024 * 1024

// ServiceError is returned by Call when the server responds with
// ok=false. It carries the server's message and failure category, and
// unwraps to a *failure.Error so failure.CategoryOf works on the
// client side exactly as on the server side.
type ServiceError struct {
	Action   string
	Message  string
	Category failure.Category
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error on %q: %s", e.Action, e.Message)
}

// Unwrap returns the categorized failure the server reported.
func (e *ServiceError) Unwrap() error {
	category := e.Category
	if category == "" {
		category = failure.CategoryInternal
	}
	return &failure.Error{Category: category, Err: errors.New(e.Message)}
}

// ClientOption configures a ServiceClient.
type ClientOption func(*ServiceClient)

// WithNetwork dials network instead of "unix". The loopback relay
// is reached with "tcp".
func WithNetwork(network string) ClientOption {
	return func(c *ServiceClient) { c.network = network }
}

// WithMaxResponseSize sets the largest response the client will read.
func WithMaxResponseSize(size int64) ClientOption {
	return func(c *ServiceClient) {
		if size > 0 {
			c.maxResponseSize = size
		}
	}
}

// ServiceClient sends CBOR requests to a service socket. Each Call
// opens a new connection (matching the server's one-request-per-
// connection model), sends the request, reads the response, and
// closes the connection.
type ServiceClient struct {
	network         string
	address         string
	maxResponseSize int64
}

// NewServiceClient creates a client for the socket at address.
func NewServiceClient(address string, options ...ClientOption) *ServiceClient {
	client := &ServiceClient{
		network:         "unix",
		address:         address,
		maxResponseSize: DefaultMaxResponseSize,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Address returns the address the client dials.
func (c *ServiceClient) Address() string {
	return c.address
}

// Call sends a CBOR request to the service and decodes the response.
//
// The fields parameter may contain any handler-specific request
// fields; the client adds "action" automatically. Pass nil for
// actions that take no additional parameters. The caller must not
// include an "action" key in the fields map.
//
// On success (response ok=true), if result is non-nil and the
// response contains data, the data is CBOR-decoded into result.
//
// On failure (response ok=false), returns a *ServiceError containing
// the server's error message and category. Connection and encoding
// errors are returned as io failures.
func (c *ServiceClient) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return failure.IO("calling %q on %s: %w", action, c.address, err)
	}

	if !response.OK {
		return &ServiceError{
			Action:   action,
			Message:  response.Error,
			Category: response.Category,
		}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return failure.Internal("decoding response data for %q: %w", action, err)
		}
	}

	return nil
}

// send connects to the socket, writes the request, and reads the
// response. Each call creates a new connection.
func (c *ServiceClient) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// Half-close the write side. CBOR is self-delimiting so this
	// isn't strictly necessary, but it lets the server's read side
	// see EOF cleanly.
	if halfCloser, ok := conn.(interface{ CloseWrite() error }); ok {
		halfCloser.CloseWrite()
	}

	if _, ok := ctx.Deadline(); !ok {
		conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	}
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, c.maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response, nil
}
