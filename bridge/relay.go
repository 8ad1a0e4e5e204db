// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gustavscirulis/snapgrid-sub001/lib/netutil"
)

// Relay forwards loopback TCP connections to the bridge's Unix socket.
// Loopback TCP has no owner check: any local user reaching ListenAddr
// gets the same grants as the socket owner.
type Relay struct {
	// ListenAddr is the TCP address to listen on. It must be a
	// loopback address ("127.0.0.1:8642", "[::1]:0", "localhost:0").
	ListenAddr string

	// SocketPath is the bridge socket to forward connections to.
	SocketPath string

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-connection events are logged at Debug level.
	Logger *slog.Logger

	listener    net.Listener
	cancel      context.CancelFunc
	done        chan struct{}
	connections sync.WaitGroup
}

func (r *Relay) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Start binds the listener and forwards connections in the background
// until Stop is called or ctx is cancelled. It fails if ListenAddr is
// not a loopback address or the socket is not reachable.
func (r *Relay) Start(ctx context.Context) error {
	if r.ListenAddr == "" {
		return fmt.Errorf("relay: ListenAddr is required")
	}
	if r.SocketPath == "" {
		return fmt.Errorf("relay: SocketPath is required")
	}
	if err := netutil.CheckLoopbackAddress(r.ListenAddr); err != nil {
		return fmt.Errorf("relay: %w", err)
	}

	probe, err := net.DialTimeout("unix", r.SocketPath, 5*time.Second)
	if err != nil {
		return fmt.Errorf("relay: socket %s not reachable: %w", r.SocketPath, err)
	}
	probe.Close()

	listener, err := net.Listen("tcp", r.ListenAddr)
	if err != nil {
		return fmt.Errorf("relay: listening on %s: %w", r.ListenAddr, err)
	}
	r.listener = listener

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	go func() {
		defer close(r.done)
		r.acceptLoop(ctx)
	}()

	r.logger().Info("relay started",
		"listen_addr", listener.Addr().String(),
		"socket_path", r.SocketPath,
	)
	return nil
}

// Addr returns the bound address, or nil before Start.
func (r *Relay) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop closes the listener and waits for in-flight connections.
func (r *Relay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.listener != nil {
		r.listener.Close()
	}
	r.Wait()
}

// Wait blocks until the relay has stopped.
func (r *Relay) Wait() {
	if r.done != nil {
		<-r.done
	}
}

func (r *Relay) acceptLoop(ctx context.Context) {
	var connectionCount int64
	for {
		connection, err := r.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				r.connections.Wait()
				return
			}
			r.logger().Error("accept failed", "error", err)
			continue
		}

		connectionCount++
		connectionID := connectionCount
		r.connections.Add(1)
		go func() {
			defer r.connections.Done()
			r.forward(connection, connectionID)
		}()
	}
}

func (r *Relay) forward(tcpConnection net.Conn, connectionID int64) {
	logger := r.logger().With("connection_id", connectionID)
	logger.Debug("connection accepted", "remote_addr", tcpConnection.RemoteAddr())

	unixConnection, err := net.DialTimeout("unix", r.SocketPath, 5*time.Second)
	if err != nil {
		tcpConnection.Close()
		logger.Error("failed to connect to socket", "error", err)
		return
	}

	stats, err := netutil.Join(tcpConnection, unixConnection)
	if err != nil {
		logger.Debug("relay copy error", "error", err)
	}
	logger.Debug("connection closed",
		"request_bytes", stats.AToB,
		"response_bytes", stats.BToA,
	)
}
