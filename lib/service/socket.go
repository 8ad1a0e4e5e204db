// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

// ActionFunc processes a socket request for a specific action. The raw
// parameter is the full CBOR request (including the "action" field).
// The handler decodes action-specific fields from this raw message.
//
// Return a value to include in the success response, or an error for
// a failure response. If the returned value is nil, the response
// contains only {ok: true}. Errors are categorized with
// failure.CategoryOf; an uncategorized error is reported as internal.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the wire-format envelope for all socket protocol
// responses: {ok: true, data} or {ok: false, error, category}.
type Response struct {
	OK       bool             `cbor:"ok"`
	Error    string           `cbor:"error,omitempty"`
	Category failure.Category `cbor:"category,omitempty"`
	Data     codec.RawMessage `cbor:"data,omitempty"`
}

// DefaultMaxRequestSize bounds a request when no WithMaxRequestSize
// option is given.
const DefaultMaxRequestSize = 1024 * 1024

// ServerOption configures a SocketServer.
type ServerOption func(*SocketServer)

// WithMaxRequestSize sets the largest request the server will read.
// A request that does not fit is answered with a validation failure.
func WithMaxRequestSize(size int64) ServerOption {
	return func(s *SocketServer) {
		if size > 0 {
			s.maxRequestSize = size
		}
	}
}

// SocketServer serves a CBOR request-response protocol on a Unix
// socket. Each connection handles exactly one request-response cycle:
// the client writes a CBOR value, the server processes it and writes
// a CBOR response, then the connection closes.
//
// Actions are registered with Handle before calling Serve. A request
// for an action that was never registered receives a forbidden
// failure: the registered set is the caller's whole capability.
type SocketServer struct {
	socketPath     string
	handlers       map[string]ActionFunc
	logger         *slog.Logger
	maxRequestSize int64

	// activeConnections tracks in-flight request handlers for graceful
	// shutdown. Serve waits for all active connections to complete
	// before returning.
	activeConnections sync.WaitGroup

	// ready is closed once the listener is accepting.
	ready     chan struct{}
	readyOnce sync.Once
}

// NewSocketServer creates a server that will listen on socketPath.
// Register actions with Handle before calling Serve.
func NewSocketServer(socketPath string, logger *slog.Logger, options ...ServerOption) *SocketServer {
	server := &SocketServer{
		socketPath:     socketPath,
		handlers:       make(map[string]ActionFunc),
		logger:         logger,
		maxRequestSize: DefaultMaxRequestSize,
		ready:          make(chan struct{}),
	}
	for _, option := range options {
		option(server)
	}
	return server
}

// Handle registers a handler for the given action name. Panics if
// called after Serve has started or if the action is already
// registered.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Actions returns the registered action names in no particular order.
func (s *SocketServer) Actions() []string {
	actions := make([]string, 0, len(s.handlers))
	for action := range s.handlers {
		actions = append(actions, action)
	}
	return actions
}

// SocketPath returns the path the server listens on.
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// Ready returns a channel that is closed once Serve is accepting
// connections.
func (s *SocketServer) Ready() <-chan struct{} {
	return s.ready
}

// Serve starts accepting connections on the Unix socket and dispatches
// requests to registered action handlers. Blocks until ctx is
// cancelled, then stops accepting new connections and waits for active
// handlers to complete.
//
// Any existing socket file at the configured path is removed before
// listening. The socket is created owner-only (0600) and removed on
// return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		return fmt.Errorf("restricting socket %s: %w", s.socketPath, err)
	}

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening", "path", s.socketPath, "actions", len(s.handlers))
	s.readyOnce.Do(func() { close(s.ready) })

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout is how long we wait for the client to send its request.
// Large image payloads arrive in one write; a stalled client is
// dropped.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for the response to be written.
const writeTimeout = 30 * time.Second

// handleConnection processes one request-response cycle.
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// Decode one CBOR value from the connection. CBOR is self-
	// delimiting so no framing protocol is needed. The limit reader
	// bounds memory per connection; reading one byte past the limit
	// distinguishes an oversized request from a malformed one.
	limited := &io.LimitedReader{R: conn, N: s.maxRequestSize + 1}
	var raw codec.RawMessage
	if err := codec.NewDecoder(limited).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		if limited.N <= 0 {
			s.writeError(conn, "", failure.Validation("request exceeds %d bytes", s.maxRequestSize))
			return
		}
		s.writeError(conn, "", failure.Validation("invalid request: %v", err))
		return
	}

	// Extract the action field for routing.
	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.writeError(conn, "", failure.Validation("invalid request: %v", err))
		return
	}
	if header.Action == "" {
		s.writeError(conn, "", failure.Validation("missing required field: action"))
		return
	}

	handler, exists := s.handlers[header.Action]
	if !exists {
		s.writeError(conn, header.Action, failure.Forbidden("action %q is not available", header.Action))
		return
	}

	s.logger.Debug("handling request", "action", header.Action)
	result, err := s.invoke(ctx, header.Action, handler, raw)
	if err != nil {
		s.writeError(conn, header.Action, err)
		return
	}

	s.writeSuccess(conn, header.Action, result)
}

// invoke runs handler, converting a panic into an internal failure so
// that one bad request cannot take the server down.
func (s *SocketServer) invoke(ctx context.Context, action string, handler ActionFunc, raw []byte) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("handler panicked",
				"action", action,
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)
			result = nil
			err = failure.Internal("internal error handling %q", action)
		}
	}()
	return handler(ctx, raw)
}

// writeError sends a failure response: {ok: false, error, category}.
// Write failures are logged at debug level; the connection is closing
// regardless.
func (s *SocketServer) writeError(conn net.Conn, action string, err error) {
	category := failure.CategoryOf(err)
	level := slog.LevelDebug
	if category == failure.CategoryInternal || category == failure.CategoryIO {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "action failed",
		"action", action,
		"category", category,
		"error", err,
	)

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(Response{
		OK:       false,
		Error:    err.Error(),
		Category: category,
	}); err != nil {
		s.logger.Debug("failed to write error response", "error", err)
	}
}

// writeSuccess sends a success response. If result is nil, the
// response is {ok: true}. If non-nil, the value is marshaled as CBOR
// and placed in the "data" field: {ok: true, data: <cbor>}.
func (s *SocketServer) writeSuccess(conn net.Conn, action string, result any) {
	response := Response{OK: true}

	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeError(conn, action, failure.Internal("marshaling response: %v", err))
			return
		}
		response.Data = data
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write success response", "action", action, "error", err)
	}
}
