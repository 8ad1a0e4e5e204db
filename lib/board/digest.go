// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// payloadDomainKey keys the BLAKE3 hash of image payloads. The bytes
// are the ASCII domain name zero-padded to 32; changing them
// invalidates every stored digest.
var payloadDomainKey = [32]byte{
	's', 'n', 'a', 'p', 'g', 'r', 'i', 'd', '.', 'b', 'o', 'a', 'r', 'd', '.',
	'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// digestPayload returns the hex BLAKE3 keyed hash of payload.
func digestPayload(payload []byte) string {
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		panic("board: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	return hex.EncodeToString(hasher.Sum(nil))
}
