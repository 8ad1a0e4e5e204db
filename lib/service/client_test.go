// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
)

func TestServiceClientCall(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("greet", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Action string `cbor:"action"`
			Name   string `cbor:"name"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]string{"greeting": "hello " + request.Name, "action": request.Action}, nil
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	var result struct {
		Greeting string `cbor:"greeting"`
		Action   string `cbor:"action"`
	}
	if err := client.Call(context.Background(), "greet", map[string]any{"name": "board"}, &result); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.Greeting != "hello board" || result.Action != "greet" {
		t.Errorf("result = %+v", result)
	}
}

func TestServiceClientNilFieldsAndResult(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("ping", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]bool{"pong": true}, nil
	})
	startServer(t, server)

	if err := NewServiceClient(socketPath).Call(context.Background(), "ping", nil, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestServiceClientServiceError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("reject", func(ctx context.Context, raw []byte) (any, error) {
		return nil, failure.Validation("url %q: scheme must be http or https", "ftp://x")
	})
	startServer(t, server)

	client := NewServiceClient(socketPath)
	err := client.Call(context.Background(), "reject", nil, nil)

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %T %v, want *ServiceError", err, err)
	}
	if serviceErr.Action != "reject" || serviceErr.Category != failure.CategoryValidation {
		t.Errorf("ServiceError = %+v", serviceErr)
	}
	if !failure.Is(err, failure.CategoryValidation) {
		t.Errorf("CategoryOf = %q, want validation", failure.CategoryOf(err))
	}

	err = client.Call(context.Background(), "absent", nil, nil)
	if !failure.Is(err, failure.CategoryForbidden) {
		t.Errorf("unregistered action: CategoryOf = %q, want forbidden", failure.CategoryOf(err))
	}
}

func TestServiceClientConnectionError(t *testing.T) {
	client := NewServiceClient(testSocketPath(t))
	err := client.Call(context.Background(), "anything", nil, nil)
	if err == nil {
		t.Fatal("Call to a missing socket succeeded")
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		t.Errorf("connection failure reported as a ServiceError: %v", err)
	}
	if !failure.Is(err, failure.CategoryIO) {
		t.Errorf("CategoryOf = %q, want io", failure.CategoryOf(err))
	}
}

func TestServiceClientResponseLimit(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("big", func(ctx context.Context, raw []byte) (any, error) {
		return map[string][]byte{"blob": make([]byte, 8192)}, nil
	})
	startServer(t, server)

	small := NewServiceClient(socketPath, WithMaxResponseSize(1024))
	if err := small.Call(context.Background(), "big", nil, nil); err == nil {
		t.Error("response over the client limit was accepted")
	}

	var result struct {
		Blob []byte `cbor:"blob"`
	}
	if err := NewServiceClient(socketPath).Call(context.Background(), "big", nil, &result); err != nil {
		t.Fatalf("Call with default limit: %v", err)
	}
	if len(result.Blob) != 8192 {
		t.Errorf("blob is %d bytes, want 8192", len(result.Blob))
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"", "info", "debug", "warn", "WARNING", "error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Errorf("ParseLevel(%q): %v", name, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}
