// Copyright 2026 The cidr Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshal_Deterministic(t *testing.T) {
	value := map[string]any{
		"zebra":  1,
		"alpha":  2,
		"middle": []int{3, 2, 1},
	}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two encodings of the same value differ")
	}
}

func TestRoundTrip(t *testing.T) {
	type payload struct {
		Name    string   `cbor:"name"`
		Values  []uint64 `cbor:"values"`
		Enabled bool     `cbor:"enabled"`
	}
	in := payload{Name: "test", Values: []uint64{1, 1 << 40}, Enabled: true}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out payload
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Name != in.Name || out.Enabled != in.Enabled || len(out.Values) != 2 {
		t.Errorf("round trip produced %+v, want %+v", out, in)
	}
}

func TestStreamEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	for i := range 3 {
		if err := encoder.Encode(i); err != nil {
			t.Fatalf("Encode(%d): %v", i, err)
		}
	}
	decoder := NewDecoder(&buf)
	for want := range 3 {
		var got int
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Errorf("decoded %d, want %d", got, want)
		}
	}
}
