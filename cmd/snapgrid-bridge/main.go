// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/gustavscirulis/snapgrid-sub001/bridge"
	"github.com/gustavscirulis/snapgrid-sub001/lib/board"
	"github.com/gustavscirulis/snapgrid-sub001/lib/capability"
	"github.com/gustavscirulis/snapgrid-sub001/lib/config"
	"github.com/gustavscirulis/snapgrid-sub001/lib/opener"
	"github.com/gustavscirulis/snapgrid-sub001/lib/pathguard"
	"github.com/gustavscirulis/snapgrid-sub001/lib/process"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
	"github.com/gustavscirulis/snapgrid-sub001/lib/version"
)

// appName names the storage directory under the platform data location.
const appName = "SnapGrid"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	var (
		configPath  string
		socketPath  string
		storageDir  string
		showVersion bool
	)
	flags := pflag.NewFlagSet("snapgrid-bridge", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&configPath, "config", "", "path to the config file (default: $"+config.EnvironmentVariable+")")
	flags.StringVar(&socketPath, "socket", "", "Unix socket to listen on (overrides bridge.socket_path)")
	flags.StringVar(&storageDir, "storage-dir", "", "storage root (overrides storage.dir)")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w\n\nUsage of snapgrid-bridge:\n%s", err, flags.FlagUsages())
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	if showVersion {
		fmt.Fprintf(stdout, "snapgrid-bridge %s\n", version.Info())
		return nil
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Bridge.SocketPath = socketPath
	}
	if storageDir != "" {
		cfg.Storage.Dir = storageDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := service.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := service.NewLogger(level)

	ctx, stop := process.SignalContext()
	defer stop()

	return serve(ctx, cfg, logger, opener.NewSystem())
}

// serve runs the bridge until ctx is cancelled. The store is closed
// only after the socket server has drained in-flight requests.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, launcher opener.Opener) error {
	dir := cfg.Storage.Dir
	if dir == "" {
		var err error
		dir, err = storagedir.Default(appName)
		if err != nil {
			return err
		}
	}

	resolver := storagedir.New(dir, launcher)
	root, err := resolver.Ensure()
	if err != nil {
		return err
	}
	guard, err := pathguard.New(root)
	if err != nil {
		return err
	}
	store, err := board.Open(board.Options{Root: root, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	server, err := bridge.New(bridge.Config{
		SocketPath:      cfg.Bridge.SocketPath,
		Store:           store,
		Guard:           guard,
		Storage:         resolver,
		Opener:          launcher,
		Grants:          cfg.Bridge.Grants,
		MaxPayloadBytes: cfg.Bridge.MaxPayloadBytes,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	select {
	case <-server.Ready():
	case err := <-serveDone:
		return err
	}

	if cfg.Bridge.RelayListen != "" {
		relay := &bridge.Relay{
			ListenAddr: cfg.Bridge.RelayListen,
			SocketPath: server.SocketPath(),
			Logger:     logger,
		}
		if err := relay.Start(ctx); err != nil {
			cancel()
			<-serveDone
			return err
		}
		defer relay.Stop()

		// The relay is reachable by every local user, not just the
		// socket's owner.
		granted := capability.Grant(cfg.Bridge.Grants, bridge.GrantableActions)
		if granted.Len() == len(bridge.GrantableActions) {
			logger.Warn("relay exposes every bridge action to all local users; narrow bridge.grants to limit it",
				"listen_addr", relay.Addr().String(),
			)
		}
	}

	logger.Info("snapgrid bridge running",
		"version", version.Short(),
		"environment", cfg.Environment,
		"storage_dir", root,
		"socket", server.SocketPath(),
	)

	err = <-serveDone
	logger.Info("snapgrid bridge stopped")
	return err
}
