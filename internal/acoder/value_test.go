package acoder

import (
	"testing"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/bitio"
)

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 7, 8, 42, 255}
	const n, f = 8, 8

	w := bitio.NewWriter(64)
	enc := NewEncoder(w, TotalContexts(n, f))
	enc.Start()
	for _, v := range values {
		EncodeValue(enc, n, f, 0, v)
	}
	enc.Terminate()
	data := w.Flush()

	r := bitio.NewReader(data)
	dec := NewDecoder(r, TotalContexts(n, f))
	if err := dec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i, want := range values {
		got, err := DecodeValue(dec, n, f, 0)
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("value %d: got %d, want %d", i, got, want)
		}
	}
}

func TestEncodeDecodeValueDisjointBanks(t *testing.T) {
	const n, f = 4, 4
	base1 := 0
	base2 := TotalContexts(n, f)

	w := bitio.NewWriter(64)
	enc := NewEncoder(w, base2+TotalContexts(n, f))
	enc.Start()
	EncodeValue(enc, n, f, base1, 3)
	EncodeValue(enc, n, f, base2, 12)
	enc.Terminate()
	data := w.Flush()

	r := bitio.NewReader(data)
	dec := NewDecoder(r, base2+TotalContexts(n, f))
	if err := dec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got, err := DecodeValue(dec, n, f, base1); err != nil {
		t.Fatalf("first value: %v", err)
	} else if got != 3 {
		t.Fatalf("first value = %d, want 3", got)
	}
	if got, err := DecodeValue(dec, n, f, base2); err != nil {
		t.Fatalf("second value: %v", err)
	} else if got != 12 {
		t.Fatalf("second value = %d, want 12", got)
	}
}
