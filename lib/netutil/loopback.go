// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"net"
)

// CheckLoopbackAddress returns an error unless address is a host:port
// whose host is "localhost" or a loopback IP literal. Port 0 is
// allowed. Hostnames other than localhost are rejected rather than
// resolved: a name that resolves to loopback today may not tomorrow.
func CheckLoopbackAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("address %q: %w", address, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("address %q: host must be localhost or a loopback IP", address)
	}
	if !ip.IsLoopback() {
		return fmt.Errorf("address %q is not a loopback address", address)
	}
	return nil
}
