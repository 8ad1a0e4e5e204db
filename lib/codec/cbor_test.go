// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sampleRequest struct {
	Action string `cbor:"action"`
	ID     string `cbor:"id,omitempty"`
	Count  int    `cbor:"count"`
}

type sampleDualRecord struct {
	Version int    `json:"version"`
	Title   string `json:"title"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRequest{Action: "board/delete", ID: "abc", Count: 3}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"b": 2, "a": 1, "action": "board/load"}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	messages := []sampleRequest{
		{Action: "board/load"},
		{Action: "board/delete", ID: "x", Count: 1},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, message := range messages {
		if err := encoder.Encode(message); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range messages {
		var got sampleRequest
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode message %d: %v", i, err)
		}
		if got != want {
			t.Errorf("message %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	original := sampleDualRecord{Version: 1, Title: "Example"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleDualRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("json-tag roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestTimeKeepsSubsecondPrecision(t *testing.T) {
	type stamped struct {
		CreatedAt time.Time `cbor:"created_at"`
	}
	original := stamped{CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded stamped
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	type envelope struct {
		Payload []byte `cbor:"payload"`
	}
	original := envelope{Payload: []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("payload = %x, want %x", decoded.Payload, original.Payload)
	}
}

func TestDecodeAnyProducesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"metadata": map[string]any{"title": "x"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if _, ok := outer["metadata"].(map[string]any); !ok {
		t.Errorf("nested type = %T, want map[string]any", outer["metadata"])
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var message sampleRequest
	if err := Unmarshal([]byte{0xff, 0xfe}, &message); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"action": "capabilities"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"capabilities"`) {
		t.Errorf("notation %q does not contain \"capabilities\"", notation)
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"id": "a", "id": "b"}
	data := []byte{0xa2, 0x62, 'i', 'd', 0x61, 'a', 0x62, 'i', 'd', 0x61, 'b'}

	var asMap map[string]any
	if err := Unmarshal(data, &asMap); err == nil {
		t.Errorf("duplicate keys decoded into a map: %v", asMap)
	}
	var asStruct sampleRequest
	if err := Unmarshal(data, &asStruct); err == nil {
		t.Errorf("duplicate keys decoded into a struct: %+v", asStruct)
	}
}

func TestUnmarshalRejectsDeepNesting(t *testing.T) {
	shallow := append(bytes.Repeat([]byte{0x81}, MaxNestingDepth-1), 0x00)
	var value any
	if err := Unmarshal(shallow, &value); err != nil {
		t.Fatalf("nesting within the limit rejected: %v", err)
	}

	deep := append(bytes.Repeat([]byte{0x81}, MaxNestingDepth+4), 0x00)
	if err := Unmarshal(deep, &value); err == nil {
		t.Error("nesting beyond the limit accepted")
	}
}
