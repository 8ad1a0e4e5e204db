// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source records are stamped with.
type Clock interface {
	Now() time.Time
}

// Real returns the wall clock. Its times are UTC so stored timestamps
// never depend on the host's zone.
func Real() Clock { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }
