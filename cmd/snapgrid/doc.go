// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// snapgrid is the command-line client for snapgrid-bridge. It dials
// the bridge socket (or a loopback relay), negotiates the granted
// actions, and runs one action per invocation, printing JSON.
//
// Run "snapgrid --help" for the command list.
package main
