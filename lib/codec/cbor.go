// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// MaxNestingDepth bounds how deeply arrays and maps may nest in decoded
// input. Requests and records are a few levels deep.
const MaxNestingDepth = 16

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encodeOptions().EncMode(); err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	if decMode, err = decodeOptions().DecMode(); err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// encodeOptions is Core Deterministic Encoding with RFC 3339 nanosecond
// times. Unix-seconds times would collapse records created within the
// same second.
func encodeOptions() cbor.EncOptions {
	options := cbor.CoreDetEncOptions()
	options.Time = cbor.TimeRFC3339Nano
	return options
}

// decodeOptions tolerates unknown fields so older readers accept
// records from newer writers, and decodes untyped maps with string keys
// so they re-encode as JSON.
func decodeOptions() cbor.DecOptions {
	return cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: MaxNestingDepth,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Trailing bytes after the first value
// are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder, Decoder and RawMessage alias the fxamacker/cbor types so
// callers import only this package.
type (
	Encoder    = cbor.Encoder
	Decoder    = cbor.Decoder
	RawMessage = cbor.RawMessage
)

// NewEncoder returns an encoder writing deterministic CBOR to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a decoder reading one value at a time from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose renders data in CBOR diagnostic notation (RFC 8949 §8).
// snapgrid decode-record uses it to show record files.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
