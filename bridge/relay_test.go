// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
	"github.com/gustavscirulis/snapgrid-sub001/lib/testutil"
)

// prefixServer listens on a Unix socket, reads all data from the client,
// prepends a prefix, and writes the result back, then half-closes.
func prefixServer(t *testing.T, prefix string) string {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "prefix.sock")

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("prefixServer: listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			connection, acceptError := listener.Accept()
			if acceptError != nil {
				return
			}
			go func() {
				defer connection.Close()
				data, readError := io.ReadAll(connection)
				if readError != nil {
					return
				}
				connection.Write(append([]byte(prefix), data...))
				if unixConnection, ok := connection.(*net.UnixConn); ok {
					unixConnection.CloseWrite()
				}
			}()
		}
	}()

	return socketPath
}

func TestRelayRequiresFields(t *testing.T) {
	tests := []struct {
		name  string
		relay *Relay
		want  string
	}{
		{"no listen address", &Relay{SocketPath: "/tmp/x.sock"}, "ListenAddr is required"},
		{"no socket", &Relay{ListenAddr: "127.0.0.1:0"}, "SocketPath is required"},
		{"wildcard address", &Relay{ListenAddr: "0.0.0.0:0", SocketPath: "/tmp/x.sock"}, "not a loopback address"},
		{"external host", &Relay{ListenAddr: "example.com:80", SocketPath: "/tmp/x.sock"}, "loopback"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.relay.Start(context.Background())
			if err == nil {
				test.relay.Stop()
				t.Fatal("Start succeeded")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want it to mention %q", err, test.want)
			}
		})
	}
}

func TestRelayUnreachableSocket(t *testing.T) {
	relay := &Relay{
		ListenAddr: "127.0.0.1:0",
		SocketPath: filepath.Join(testutil.SocketDir(t), "nonexistent.sock"),
	}
	if err := relay.Start(context.Background()); err == nil {
		relay.Stop()
		t.Fatal("expected error for unreachable socket")
	}
	if relay.Addr() != nil {
		t.Error("Addr is set after a failed Start")
	}
}

// TestRelayHalfClose verifies that the relay propagates the client's
// half-close to the socket and then delivers the response before
// closing. Without propagation the prefix server never sees EOF and the
// test hangs.
func TestRelayHalfClose(t *testing.T) {
	relay := &Relay{
		ListenAddr: "127.0.0.1:0",
		SocketPath: prefixServer(t, "REPLY:"),
		Logger:     testLogger(),
	}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer relay.Stop()

	connection, err := net.Dial("tcp", relay.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer connection.Close()

	if _, err := connection.Write([]byte("request body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	connection.(*net.TCPConn).CloseWrite()

	response, err := io.ReadAll(connection)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(response, []byte("REPLY:request body")) {
		t.Errorf("response = %q", response)
	}
}

func TestRelayStopDrains(t *testing.T) {
	relay := &Relay{
		ListenAddr: "127.0.0.1:0",
		SocketPath: prefixServer(t, ""),
		Logger:     testLogger(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := relay.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	relay.Wait()

	if _, err := net.Dial("tcp", relay.Addr().String()); err == nil {
		t.Error("relay still accepting after its context was cancelled")
	}
}

func TestClientThroughRelay(t *testing.T) {
	bridge := startBridge(t, bridgeOptions{})
	relay := &Relay{
		ListenAddr: "127.0.0.1:0",
		SocketPath: bridge.socket,
		Logger:     testLogger(),
	}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer relay.Stop()

	ctx := context.Background()
	client, err := Dial(ctx, relay.Addr().String(), service.WithNetwork("tcp"))
	if err != nil {
		t.Fatalf("Dial through relay: %v", err)
	}
	card, err := client.SaveURLCard(ctx, "https://example.com/relayed", board.URLCardMetadata{})
	if err != nil {
		t.Fatalf("SaveURLCard: %v", err)
	}
	record, err := client.GetRecord(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if record.URLCard == nil || record.URLCard.URL != "https://example.com/relayed" {
		t.Errorf("record = %+v", record)
	}
}

func TestDialFailsWithoutServer(t *testing.T) {
	_, err := Dial(context.Background(), filepath.Join(testutil.SocketDir(t), "absent.sock"))
	if err == nil {
		t.Fatal("Dial succeeded without a server")
	}
}
