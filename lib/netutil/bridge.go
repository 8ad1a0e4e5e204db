// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"io"
	"net"
)

type copyResult struct {
	direction string
	bytes     int64
	err       error
}

// CopyStats reports how many bytes each direction of a Join carried.
type CopyStats struct {
	AToB int64
	BToA int64
}

// Join copies bytes between a and b in both directions until one
// direction ends, then closes both connections so the other direction
// unblocks. Each direction half-closes its destination when the source
// reaches EOF, so a request-response peer sees the end of the request
// before the relay tears down.
//
// The returned error is the first direction's error unless it is an
// expected close error, in which case it is nil.
func Join(a, b net.Conn) (CopyStats, error) {
	done := make(chan copyResult, 2)
	pump := func(direction string, destination, source net.Conn) {
		bytes, err := io.Copy(destination, source)
		if err == nil {
			if halfCloser, ok := destination.(interface{ CloseWrite() error }); ok {
				halfCloser.CloseWrite()
			}
		}
		done <- copyResult{direction: direction, bytes: bytes, err: err}
	}
	go pump("a->b", b, a)
	go pump("b->a", a, b)

	var stats CopyStats
	record := func(result copyResult) {
		if result.direction == "a->b" {
			stats.AToB = result.bytes
		} else {
			stats.BToA = result.bytes
		}
	}

	first := <-done
	record(first)
	// A clean EOF on one side of a request-response exchange is the
	// normal half-close; wait for the reply before tearing down.
	if first.err == nil {
		second := <-done
		record(second)
		a.Close()
		b.Close()
		if second.err != nil && !IsExpectedCloseError(second.err) {
			return stats, second.err
		}
		return stats, nil
	}

	a.Close()
	b.Close()
	record(<-done)
	if !IsExpectedCloseError(first.err) {
		return stats, first.err
	}
	return stats, nil
}
