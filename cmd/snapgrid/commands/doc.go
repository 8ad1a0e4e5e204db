// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the snapgrid command tree. Every command
// dials the bridge, performs one action, and prints the result as JSON.
package commands
