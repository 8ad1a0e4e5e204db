// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package failure classifies storage-layer errors so that the bridge can
// hand the caller a structured failure (category plus message) instead
// of a raw error value.
//
// Errors are categorized where they originate: the record store knows a
// payload was malformed (validation) or a rename failed (io); the bridge
// knows an action was not granted (forbidden). Anything that reaches the
// socket boundary without a category is reported as internal.
package failure
