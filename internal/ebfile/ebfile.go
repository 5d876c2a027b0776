// Package ebfile implements the EB container format's header and section
// framing (spec §6.1): a fixed-layout header, a bit-packed opcode history,
// three optional auxiliary tables, and an arithmetic-coded geometry
// payload, every section ending on a byte boundary.
//
// Grounded on the teacher's internal/container/riff.go: the same shape of
// a small set of sentinel errors, a signature check up front, and plain
// functions that read/write one section at a time rather than a
// chunk-iterator abstraction (EB's sections are fixed and ordered, unlike
// RIFF's tagged chunks, so no FourCC dispatch is needed).
package ebfile

import (
	"errors"
	"fmt"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/bitio"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/quant"
)

// Signature is the fixed 30-bit payload written as the first header field.
const Signature uint32 = 696610198

// Sentinel errors mirroring the teacher's container package style.
var (
	ErrBadSignature  = errors.New("ebfile: signature mismatch")
	ErrBadCodeSeries = errors.New("ebfile: code series out of range")
	ErrShortHoleLen  = errors.New("ebfile: M-table entry with length < 3")
	ErrTruncated     = errors.New("ebfile: truncated section")
)

// MTableEntry is one hole record: (skip_count, hole_length).
type MTableEntry struct {
	Skip   uint32
	Length uint32
}

// HTableEntry is one handle record: (position, offset, skip_count).
type HTableEntry struct {
	Position uint32
	Offset   uint32
	Skip     uint32
}

// SOffsetEntry is one S-split offset record: (s_index, offset).
type SOffsetEntry struct {
	Index  uint32
	Offset uint32
}

// Header holds every field of §6.1's fixed header layout.
type Header struct {
	CodeSeries  int // 1, 2, or 3
	HistoryBits uint32
	VertexCount uint32
	HoleCount   uint32
	HandleCount uint32
	SOffsetCount uint32
	// BoundaryLength is the open mesh's outer boundary vertex count, or 0
	// for a closed mesh (edgebreaker.DecodeInput.BoundaryLength). Walking
	// assigned indices 0..BoundaryLength-1 in order retraces that loop
	// (spec §3's reverse index assignment), so no separate vertex list
	// needs to travel in the container.
	BoundaryLength uint32
	BitWidths   [3]uint32 // per-axis value bit widths (x, y, z)
	Steps       [3]quant.Step
}

// putField32 writes the header's "two zero pad bits then a 30-bit payload"
// convention, used for every plain 30-bit field.
func putField32(w *bitio.Writer, value uint32) {
	w.PutBits(0, 2)
	w.PutBits(value, 30)
}

func getField32(r *bitio.Reader) (uint32, error) {
	pad, err := r.GetBits(2)
	if err != nil {
		return 0, err
	}
	_ = pad // padding bits are not validated; only the signature field is
	return r.GetBits(30)
}

// WriteHeader writes the fixed header per §6.1, ending with align().
func WriteHeader(w *bitio.Writer, h Header) {
	putField32(w, Signature)
	putField32(w, uint32(h.CodeSeries))
	putField32(w, h.HistoryBits)
	putField32(w, h.VertexCount)
	putField32(w, h.HoleCount)
	putField32(w, h.HandleCount)
	putField32(w, h.SOffsetCount)
	putField32(w, h.BoundaryLength)
	for _, b := range h.BitWidths {
		putField32(w, b)
	}
	for _, s := range h.Steps {
		w.PutBits(uint32(s.Coef), 32)
		sign := uint32(1)
		if s.Neg {
			sign = 0
		}
		w.PutBits(sign, 2)
		w.PutBits(uint32(s.Exp), 30)
	}
	w.Align()
}

// ReadHeader reads and validates the fixed header.
func ReadHeader(r *bitio.Reader) (Header, error) {
	var h Header
	sig, err := getField32(r)
	if err != nil {
		return h, fmt.Errorf("ebfile: reading signature: %w", err)
	}
	if sig != Signature {
		return h, ErrBadSignature
	}
	series, err := getField32(r)
	if err != nil {
		return h, err
	}
	if series < 1 || series > 3 {
		return h, ErrBadCodeSeries
	}
	h.CodeSeries = int(series)
	if h.HistoryBits, err = getField32(r); err != nil {
		return h, err
	}
	if h.VertexCount, err = getField32(r); err != nil {
		return h, err
	}
	if h.HoleCount, err = getField32(r); err != nil {
		return h, err
	}
	if h.HandleCount, err = getField32(r); err != nil {
		return h, err
	}
	if h.SOffsetCount, err = getField32(r); err != nil {
		return h, err
	}
	if h.BoundaryLength, err = getField32(r); err != nil {
		return h, err
	}
	for i := range h.BitWidths {
		if h.BitWidths[i], err = getField32(r); err != nil {
			return h, err
		}
	}
	for i := range h.Steps {
		coef, err := r.GetBits(32)
		if err != nil {
			return h, err
		}
		sign, err := r.GetBits(2)
		if err != nil {
			return h, err
		}
		exp, err := r.GetBits(30)
		if err != nil {
			return h, err
		}
		h.Steps[i] = quant.Step{Coef: int32(coef), Neg: sign == 0, Exp: int32(exp)}
	}
	r.Align()
	return h, nil
}

// WriteOpcodeHistory writes the exact bit string produced by the chosen
// prefix code, MSB first, then aligns.
func WriteOpcodeHistory(w *bitio.Writer, bits []int) {
	for _, b := range bits {
		w.PutBits(uint32(b), 1)
	}
	w.Align()
}

// ReadOpcodeHistory reads exactly nbits bits of the opcode history, then
// aligns.
func ReadOpcodeHistory(r *bitio.Reader, nbits uint32) ([]int, error) {
	bits := make([]int, nbits)
	for i := range bits {
		b, err := r.GetBits(1)
		if err != nil {
			return nil, fmt.Errorf("ebfile: reading opcode history: %w", err)
		}
		bits[i] = int(b)
	}
	r.Align()
	return bits, nil
}

// WriteMTable writes the hole table, present only when len(entries) > 0.
func WriteMTable(w *bitio.Writer, entries []MTableEntry) {
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		putField32(w, e.Skip)
		putField32(w, e.Length)
	}
	w.Align()
}

// ReadMTable reads count hole records; count is the header's HoleCount.
func ReadMTable(r *bitio.Reader, count uint32) ([]MTableEntry, error) {
	if count == 0 {
		return nil, nil
	}
	entries := make([]MTableEntry, count)
	for i := range entries {
		skip, err := getField32(r)
		if err != nil {
			return nil, err
		}
		length, err := getField32(r)
		if err != nil {
			return nil, err
		}
		if length < 3 {
			return nil, ErrShortHoleLen
		}
		entries[i] = MTableEntry{Skip: skip, Length: length}
	}
	r.Align()
	return entries, nil
}

// WriteHTable writes the handle table, present only when len(entries) > 0.
func WriteHTable(w *bitio.Writer, entries []HTableEntry) {
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		putField32(w, e.Position)
		putField32(w, e.Offset)
		putField32(w, e.Skip)
	}
	w.Align()
}

// ReadHTable reads count handle records; count is the header's HandleCount.
func ReadHTable(r *bitio.Reader, count uint32) ([]HTableEntry, error) {
	if count == 0 {
		return nil, nil
	}
	entries := make([]HTableEntry, count)
	for i := range entries {
		pos, err := getField32(r)
		if err != nil {
			return nil, err
		}
		off, err := getField32(r)
		if err != nil {
			return nil, err
		}
		skip, err := getField32(r)
		if err != nil {
			return nil, err
		}
		entries[i] = HTableEntry{Position: pos, Offset: off, Skip: skip}
	}
	r.Align()
	return entries, nil
}

// WriteSOffsetTable writes the S-offset table, present only when
// len(entries) > 0.
func WriteSOffsetTable(w *bitio.Writer, entries []SOffsetEntry) {
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		putField32(w, e.Index)
		putField32(w, e.Offset)
	}
	w.Align()
}

// ReadSOffsetTable reads count S-offset records; count is the header's
// SOffsetCount.
func ReadSOffsetTable(r *bitio.Reader, count uint32) ([]SOffsetEntry, error) {
	if count == 0 {
		return nil, nil
	}
	entries := make([]SOffsetEntry, count)
	for i := range entries {
		idx, err := getField32(r)
		if err != nil {
			return nil, err
		}
		off, err := getField32(r)
		if err != nil {
			return nil, err
		}
		entries[i] = SOffsetEntry{Index: idx, Offset: off}
	}
	r.Align()
	return entries, nil
}
