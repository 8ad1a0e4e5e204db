// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
	"github.com/gustavscirulis/snapgrid-sub001/lib/capability"
	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/opener"
	"github.com/gustavscirulis/snapgrid-sub001/lib/pathguard"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
	"github.com/gustavscirulis/snapgrid-sub001/lib/version"
)

// Config wires a Server to the components it fronts. All fields
// except Grants and Logger are required.
type Config struct {
	// SocketPath is the Unix socket to listen on.
	SocketPath string

	Store   *board.Store
	Guard   *pathguard.Guard
	Storage *storagedir.Resolver
	Opener  opener.Opener

	// Grants are capability patterns selecting the served actions.
	// Nil grants every action; an empty non-nil slice grants none.
	Grants []string

	// MaxPayloadBytes is the largest image payload a save may carry.
	MaxPayloadBytes int64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves the bridge actions on a Unix socket.
type Server struct {
	store      *board.Store
	guard      *pathguard.Guard
	storage    *storagedir.Resolver
	opener     opener.Opener
	maxPayload int64
	granted    capability.Set
	logger     *slog.Logger
	socket     *service.SocketServer
}

// New validates config and registers the granted actions. Call Serve
// to start accepting requests.
func New(config Config) (*Server, error) {
	switch {
	case config.SocketPath == "":
		return nil, fmt.Errorf("bridge: SocketPath is required")
	case config.Store == nil:
		return nil, fmt.Errorf("bridge: Store is required")
	case config.Guard == nil:
		return nil, fmt.Errorf("bridge: Guard is required")
	case config.Storage == nil:
		return nil, fmt.Errorf("bridge: Storage is required")
	case config.Opener == nil:
		return nil, fmt.Errorf("bridge: Opener is required")
	case config.MaxPayloadBytes <= 0:
		return nil, fmt.Errorf("bridge: MaxPayloadBytes must be positive")
	}
	if config.Grants == nil {
		config.Grants = []string{"**"}
	}
	if err := capability.Validate(config.Grants); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	server := &Server{
		store:      config.Store,
		guard:      config.Guard,
		storage:    config.Storage,
		opener:     config.Opener,
		maxPayload: config.MaxPayloadBytes,
		granted:    capability.Grant(config.Grants, GrantableActions),
		logger:     config.Logger,
	}
	server.socket = service.NewSocketServer(config.SocketPath, config.Logger,
		service.WithMaxRequestSize(config.MaxPayloadBytes+envelopeHeadroom))

	handlers := map[string]service.ActionFunc{
		ActionCheckFile:      server.handleCheckFile,
		ActionLoad:           server.handleLoad,
		ActionSaveImage:      server.handleSaveImage,
		ActionSaveURLCard:    server.handleSaveURLCard,
		ActionDelete:         server.handleDelete,
		ActionGet:            server.handleGet,
		ActionReadImage:      server.handleReadImage,
		ActionUpdateMetadata: server.handleUpdateMetadata,
		ActionStorageDir:     server.handleStorageDir,
		ActionOpenStorageDir: server.handleOpenStorageDir,
		ActionOpenURL:        server.handleOpenURL,
	}
	server.socket.Handle(ActionCapabilities, server.handleCapabilities)
	for _, action := range server.granted.Actions() {
		server.socket.Handle(action, handlers[action])
	}

	config.Logger.Info("bridge actions granted",
		"granted", server.granted.Actions(),
		"max_payload_bytes", config.MaxPayloadBytes,
	)
	return server, nil
}

// Serve accepts requests until ctx is cancelled, then waits for
// in-flight requests to finish. The caller closes the store after
// Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	return s.socket.Serve(ctx)
}

// Ready is closed once the socket is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.socket.Ready()
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socket.SocketPath()
}

// Capabilities returns what the capabilities action reports.
func (s *Server) Capabilities() Capabilities {
	return Capabilities{
		Actions:         s.granted.Actions(),
		MaxPayloadBytes: s.maxPayload,
		Version:         version.Short(),
	}
}

// decodeRequest decodes action-specific fields. A request that does
// not decode is the caller's fault.
func decodeRequest(raw []byte, request any) error {
	if err := codec.Unmarshal(raw, request); err != nil {
		return failure.Validation("invalid request fields: %v", err)
	}
	return nil
}

func (s *Server) handleCapabilities(ctx context.Context, raw []byte) (any, error) {
	return s.Capabilities(), nil
}

// handleCheckFile answers from the path validator alone. The path is
// never opened or stat'ed by the bridge beyond symlink resolution.
func (s *Server) handleCheckFile(ctx context.Context, raw []byte) (any, error) {
	var request checkFileRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	accessible := s.guard.IsAccessible(request.Path)
	if !accessible {
		s.logger.Debug("path outside storage root", "path", request.Path)
	}
	return CheckFileResponse{Accessible: accessible}, nil
}

func (s *Server) handleLoad(ctx context.Context, raw []byte) (any, error) {
	result, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		s.logger.Warn("board loaded partially",
			"records", len(result.Records),
			"failures", len(result.Failures),
			"error", err,
		)
	}
	return result, nil
}

func (s *Server) handleSaveImage(ctx context.Context, raw []byte) (any, error) {
	var request saveImageRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	if size := int64(len(request.Payload)); size > s.maxPayload {
		return nil, failure.Validation("payload is %d bytes, limit is %d", size, s.maxPayload)
	}
	return s.store.SaveImage(request.Payload, request.Metadata)
}

func (s *Server) handleSaveURLCard(ctx context.Context, raw []byte) (any, error) {
	var request saveURLCardRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	if _, err := board.ParseWebURL(request.URL); err != nil {
		return nil, err
	}
	return s.store.SaveURLCard(request.URL, request.Metadata)
}

func (s *Server) handleDelete(ctx context.Context, raw []byte) (any, error) {
	var request idRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	deleted, err := s.store.Delete(request.ID)
	if err != nil {
		return nil, err
	}
	return DeleteResponse{Deleted: deleted}, nil
}

func (s *Server) handleGet(ctx context.Context, raw []byte) (any, error) {
	var request idRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	return s.store.Get(request.ID)
}

func (s *Server) handleReadImage(ctx context.Context, raw []byte) (any, error) {
	var request idRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	payload, record, err := s.store.ReadImage(request.ID)
	if err != nil {
		return nil, err
	}
	return ReadImageResponse{Record: *record, Payload: payload}, nil
}

func (s *Server) handleUpdateMetadata(ctx context.Context, raw []byte) (any, error) {
	var request updateMetadataRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	return s.store.UpdateMetadata(request.ID, request.Metadata)
}

func (s *Server) handleStorageDir(ctx context.Context, raw []byte) (any, error) {
	return StorageDirResponse{Path: s.storage.Dir()}, nil
}

func (s *Server) handleOpenStorageDir(ctx context.Context, raw []byte) (any, error) {
	return nil, s.storage.Open()
}

// handleOpenURL hands a web URL to the OS browser. Only http and https
// URLs pass; the bridge never fetches anything itself.
func (s *Server) handleOpenURL(ctx context.Context, raw []byte) (any, error) {
	var request openURLRequest
	if err := decodeRequest(raw, &request); err != nil {
		return nil, err
	}
	parsed, err := board.ParseWebURL(request.URL)
	if err != nil {
		return nil, err
	}
	if err := s.opener.OpenURL(parsed.String()); err != nil {
		return nil, failure.IO("opening %s in the browser: %w", parsed.Redacted(), err)
	}
	s.logger.Info("opened url in browser", "host", parsed.Host)
	return nil, nil
}
