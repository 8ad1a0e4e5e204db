// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/gustavscirulis/snapgrid-sub001/bridge"
	"github.com/gustavscirulis/snapgrid-sub001/lib/config"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
)

// connection holds the flags every command uses to reach the bridge.
type connection struct {
	configPath string
	socket     string
	relay      string
	timeout    time.Duration
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.configPath, "config", "", "config file naming the bridge socket (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&c.socket, "socket", "", "bridge Unix socket (overrides the config)")
	flagSet.StringVar(&c.relay, "relay", "", "loopback TCP relay address to dial instead of the socket")
	flagSet.DurationVar(&c.timeout, "timeout", 30*time.Second, "deadline for the whole command")
}

// newFlagSet returns a flag set carrying the connection flags.
func (c *connection) newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	c.addFlags(flagSet)
	return flagSet
}

// dial connects to the bridge. The returned context carries the
// command deadline; call cancel when done.
func (c *connection) dial() (context.Context, context.CancelFunc, *bridge.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)

	var client *bridge.Client
	var err error
	if c.relay != "" {
		client, err = bridge.Dial(ctx, c.relay, service.WithNetwork("tcp"))
	} else {
		socket := c.socket
		if socket == "" {
			cfg, resolveErr := config.Resolve(c.configPath)
			if resolveErr != nil {
				cancel()
				return nil, nil, nil, resolveErr
			}
			socket = cfg.Bridge.SocketPath
		}
		client, err = bridge.Dial(ctx, socket)
	}
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, client, nil
}
