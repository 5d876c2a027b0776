// Package eb is the public API of the EB mesh codec: quantize a triangle
// mesh, run the Edgebreaker connectivity traversal and parallelogram
// predictor, arithmetic-code the residuals, and frame everything as an EB
// container file (spec §1-§7). Decode reverses the pipeline.
//
// Grounded on the teacher's top-level webp.go/encode.go/doc.go: a small
// public surface (an image/mesh type, an Options struct, Encode/Decode
// functions returning a byte slice) sitting on top of the internal
// packages that do the real work, plus a Kind-tagged error type so
// callers can dispatch on failure category instead of string-matching
// error text.
package eb

import (
	"errors"
	"fmt"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/acoder"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/bitio"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/ebfile"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/edgebreaker"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/predict"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/quant"
)

// Kind categorizes a codec error (spec §7).
type Kind int

const (
	_ Kind = iota
	KindMalformedInput
	KindUnsupportedMesh
	KindOverflow
	KindEof
	KindIO
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "MalformedInput"
	case KindUnsupportedMesh:
		return "UnsupportedMesh"
	case KindOverflow:
		return "Overflow"
	case KindEof:
		return "Eof"
	case KindIO:
		return "Io"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying failure with its propagation Kind (spec §7's
// "error kinds propagated out of the core").
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("eb: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: err}
}

// Mesh is the codec's public mesh representation: real-valued vertex
// coordinates and a triangle-vertex incidence table (spec §6.2's loader
// contract, minus the OFF/PLY file format itself, which is out of scope
// and lives in internal/offio).
type Mesh struct {
	Vertices []halfedge.Point3
	Faces    [][3]int
}

// EncodeOptions configures quantization and entropy-coding choices (spec
// §2's "Quantization step as three positive reals" and §6.2's "Three
// per-axis bit widths").
type EncodeOptions struct {
	// Steps is the per-axis quantization step size (x, y, z).
	Steps [3]float64
	// BitWidths is the per-axis coordinate bit budget, each >= 2.
	BitWidths [3]int
	// CodeSeries forces opcode code series 1, 2, or 3; 0 selects
	// automatically via edgebreaker.BestSeries (spec §4.5).
	CodeSeries int
	// ContextLevels sets the context-selector's full-tree depth f for
	// each axis' magnitude binarizer; 0 defaults to BitWidths[i] (a full
	// binary tree, spec §4.2's f == n case). Not specified by the spec
	// for the geometry payload; chosen here for simplicity over a
	// tail-bypass variant.
	ContextLevels [3]int
}

// DefaultEncodeOptions returns unit quantization steps and 16-bit per-axis
// budgets, suitable for already-integer or lightly-scaled input.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Steps:     [3]float64{1, 1, 1},
		BitWidths: [3]int{16, 16, 16},
	}
}

func (o EncodeOptions) contextLevels() [3]int {
	f := o.ContextLevels
	for i := range f {
		if f[i] <= 0 {
			f[i] = o.BitWidths[i]
		}
	}
	return f
}

// Encode quantizes mesh's vertices, runs the connectivity traversal and
// predictor, and frames the result as an EB container byte stream.
func Encode(mesh Mesh, opts EncodeOptions) ([]byte, error) {
	if len(mesh.Vertices) == 0 {
		return nil, wrap(KindInvalidArgument, errors.New("eb: empty mesh"))
	}
	for i, w := range opts.BitWidths {
		if w < 2 {
			return nil, wrap(KindInvalidArgument, fmt.Errorf("eb: axis %d bit width %d < 2", i, w))
		}
	}

	steps := [3]quant.Step{quant.NewStep(opts.Steps[0]), quant.NewStep(opts.Steps[1]), quant.NewStep(opts.Steps[2])}
	for i, s := range steps {
		if !s.Valid() {
			return nil, wrap(KindOverflow, fmt.Errorf("eb: axis %d step coefficient overflows 30 bits", i))
		}
	}

	quantPoints := make([]predict.Point, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		x, err := quant.Quantize(v.X, steps[0], opts.BitWidths[0])
		if err != nil {
			return nil, wrap(KindOverflow, err)
		}
		y, err := quant.Quantize(v.Y, steps[1], opts.BitWidths[1])
		if err != nil {
			return nil, wrap(KindOverflow, err)
		}
		z, err := quant.Quantize(v.Z, steps[2], opts.BitWidths[2])
		if err != nil {
			return nil, wrap(KindOverflow, err)
		}
		quantPoints[i] = predict.Point{X: x, Y: y, Z: z}
	}

	hm, err := halfedge.Build(mesh.Vertices, mesh.Faces)
	if err != nil {
		return nil, wrap(KindUnsupportedMesh, err)
	}

	enc, err := edgebreaker.NewEncoder(hm, quantPoints)
	if err != nil {
		return nil, wrap(KindUnsupportedMesh, err)
	}
	res, err := enc.Encode()
	if err != nil {
		return nil, wrap(KindMalformedInput, err)
	}

	series := opts.CodeSeries
	if series == 0 {
		series = edgebreaker.BestSeries(edgebreaker.ComputeSymbolCounts(res.History))
	}
	if series < 1 || series > 3 {
		return nil, wrap(KindInvalidArgument, fmt.Errorf("eb: code series %d out of {1,2,3}", series))
	}
	historyBits := edgebreaker.EncodeHistory(series, res.History)

	header := ebfile.Header{
		CodeSeries:     series,
		HistoryBits:    uint32(len(historyBits)),
		VertexCount:    uint32(res.VertexCount),
		HoleCount:      uint32(len(res.MTable)),
		HandleCount:    uint32(len(res.HTable)),
		SOffsetCount:   uint32(len(res.SOffsets)),
		BoundaryLength: uint32(res.BoundaryLength),
		BitWidths:      [3]uint32{uint32(opts.BitWidths[0]), uint32(opts.BitWidths[1]), uint32(opts.BitWidths[2])},
		Steps:          steps,
	}

	w := bitio.NewWriter(256)
	ebfile.WriteHeader(w, header)
	ebfile.WriteOpcodeHistory(w, historyBits)
	ebfile.WriteMTable(w, toMTable(res.MTable))
	ebfile.WriteHTable(w, toHTable(res.HTable))
	ebfile.WriteSOffsetTable(w, toSOffsetTable(res.SOffsets))

	levels := opts.contextLevels()
	bases, total := contextBases(opts.BitWidths, levels)
	geo := acoder.NewEncoder(w, total)
	geo.Start()
	for _, p := range res.Residuals {
		encodeResidual(geo, p, opts.BitWidths, levels, bases)
	}
	geo.Terminate()

	return w.Flush(), nil
}

// Decode parses an EB container and reconstructs the quantized mesh.
func Decode(data []byte) (Mesh, error) {
	r := bitio.NewReader(data)
	header, err := ebfile.ReadHeader(r)
	if err != nil {
		if errors.Is(err, ebfile.ErrBadSignature) || errors.Is(err, ebfile.ErrBadCodeSeries) {
			return Mesh{}, wrap(KindMalformedInput, err)
		}
		return Mesh{}, wrap(KindEof, err)
	}

	historyBits, err := ebfile.ReadOpcodeHistory(r, header.HistoryBits)
	if err != nil {
		return Mesh{}, wrap(KindEof, err)
	}
	// The history section's bit length is exact (no trailing padding), so
	// decoding can run until every bit is consumed rather than needing the
	// symbol count up front (spec §6.1 stores H_len, not a face count).
	reducedHistory := edgebreaker.DecodeHistoryBits(header.CodeSeries, historyBits)

	mtable, err := ebfile.ReadMTable(r, header.HoleCount)
	if err != nil {
		if errors.Is(err, ebfile.ErrShortHoleLen) {
			return Mesh{}, wrap(KindMalformedInput, err)
		}
		return Mesh{}, wrap(KindEof, err)
	}
	htable, err := ebfile.ReadHTable(r, header.HandleCount)
	if err != nil {
		return Mesh{}, wrap(KindEof, err)
	}
	soffsets, err := ebfile.ReadSOffsetTable(r, header.SOffsetCount)
	if err != nil {
		return Mesh{}, wrap(KindEof, err)
	}

	history := disambiguate(reducedHistory, mtable, htable)

	opts := EncodeOptions{BitWidths: [3]int{int(header.BitWidths[0]), int(header.BitWidths[1]), int(header.BitWidths[2])}}
	levels := opts.contextLevels()
	bases, total := contextBases(opts.BitWidths, levels)

	geo := acoder.NewDecoder(r, total)
	if err := geo.Start(); err != nil {
		return Mesh{}, wrap(KindEof, err)
	}
	// Every touched vertex gets exactly one residual entry, so the count
	// equals the header's vertex count (spec §8 invariant 2).
	residuals := make([]predict.Point, header.VertexCount)
	for i := range residuals {
		p, err := decodeResidual(geo, opts.BitWidths, levels, bases)
		if err != nil {
			return Mesh{}, wrap(KindEof, err)
		}
		residuals[i] = p
	}

	dec := edgebreaker.NewDecoder(edgebreaker.DecodeInput{
		History:        history,
		MTable:         fromMTable(mtable),
		HTable:         fromHTable(htable),
		SOffsets:       fromSOffsetTable(soffsets),
		VertexCount:    int(header.VertexCount),
		Residuals:      residuals,
		BoundaryLength: int(header.BoundaryLength),
	})
	result, err := dec.Decode()
	if err != nil {
		return Mesh{}, wrap(KindMalformedInput, err)
	}

	vertices := make([]halfedge.Point3, len(result.Points))
	for i, p := range result.Points {
		vertices[i] = halfedge.Point3{
			X: quant.Dequantize(p.X, header.Steps[0]),
			Y: quant.Dequantize(p.Y, header.Steps[1]),
			Z: quant.Dequantize(p.Z, header.Steps[2]),
		}
	}
	faces := make([][3]int, len(result.Faces))
	for i, f := range result.Faces {
		faces[i] = [3]int{f.A, f.B, f.C}
	}
	return Mesh{Vertices: vertices, Faces: faces}, nil
}

// disambiguate relabels the reduced {C,L,R,E,S} history back into the full
// seven-symbol alphabet using the M/H tables' skip counts, mirroring
// encoder.go's e.st.SkipM/e.st.SkipH bookkeeping exactly: both counters
// advance on every genuine S, the M table only resets SkipM and the H
// table only resets SkipH (spec §3's per-table skip_count, Design Notes
// "Tag-and-discriminate opcodes"). When a position's skip counts
// satisfy both a pending M entry and a pending H entry simultaneously
// (not ruled out by the prose), M is preferred — an arbitrary but
// consistently-applied tie-break, since encoder and decoder never
// actually produce that ambiguity for a single well-formed stream.
func disambiguate(reduced []edgebreaker.Opcode, mtable []ebfile.MTableEntry, htable []ebfile.HTableEntry) []edgebreaker.Opcode {
	out := make([]edgebreaker.Opcode, 0, len(reduced))
	skipM, skipH := 0, 0
	mIdx, hIdx := 0, 0
	for _, op := range reduced {
		if op != edgebreaker.OpS {
			out = append(out, op)
			continue
		}
		switch {
		case mIdx < len(mtable) && int(mtable[mIdx].Skip) == skipM:
			out = append(out, edgebreaker.OpM)
			skipM = 0
			mIdx++
		case hIdx < len(htable) && int(htable[hIdx].Skip) == skipH:
			out = append(out, edgebreaker.OpH)
			skipH = 0
			hIdx++
		default:
			out = append(out, edgebreaker.OpS)
			skipM++
			skipH++
		}
	}
	return out
}

// contextBases computes each axis' context-id offset into a single shared
// context bank, per spec §6.1's "context id globally offset by
// total_contexts(x_bits) * axis_index + total_contexts(y_bits) *
// [axis>=2]" formula (reproduced literally even though it does not
// allocate bank sizes proportionally for z — see DESIGN.md).
func contextBases(bitWidths, levels [3]int) (bases [3]int, total int) {
	totals := [3]int{
		acoder.TotalContexts(bitWidths[0], levels[0]),
		acoder.TotalContexts(bitWidths[1], levels[1]),
		acoder.TotalContexts(bitWidths[2], levels[2]),
	}
	bases[0] = 0
	bases[1] = totals[0]
	bases[2] = totals[0]*2 + totals[1]
	total = bases[2] + totals[2]
	return bases, total
}

// encodeResidual writes one residual point's three coordinates, each as a
// bypass sign bit followed by a context-coded magnitude (spec §6.1's
// geometry payload framing).
func encodeResidual(enc *acoder.Encoder, p predict.Point, bitWidths, levels [3]int, bases [3]int) {
	encodeAxis(enc, p.X, bitWidths[0], levels[0], bases[0])
	encodeAxis(enc, p.Y, bitWidths[1], levels[1], bases[1])
	encodeAxis(enc, p.Z, bitWidths[2], levels[2], bases[2])
}

func encodeAxis(enc *acoder.Encoder, v int32, bitWidth, level, base int) {
	sign := 1
	mag := v
	if v < 0 {
		sign = 0
		mag = -v
	}
	enc.EncodeBypass(sign)
	acoder.EncodeValue(enc, bitWidth, level, base, uint32(mag))
}

// decodeResidual is encodeResidual's inverse.
func decodeResidual(dec *acoder.Decoder, bitWidths, levels [3]int, bases [3]int) (predict.Point, error) {
	x, err := decodeAxis(dec, bitWidths[0], levels[0], bases[0])
	if err != nil {
		return predict.Point{}, err
	}
	y, err := decodeAxis(dec, bitWidths[1], levels[1], bases[1])
	if err != nil {
		return predict.Point{}, err
	}
	z, err := decodeAxis(dec, bitWidths[2], levels[2], bases[2])
	if err != nil {
		return predict.Point{}, err
	}
	return predict.Point{X: x, Y: y, Z: z}, nil
}

func decodeAxis(dec *acoder.Decoder, bitWidth, level, base int) (int32, error) {
	sign, err := dec.DecodeBypass()
	if err != nil {
		return 0, err
	}
	magU, err := acoder.DecodeValue(dec, bitWidth, level, base)
	if err != nil {
		return 0, err
	}
	mag := int32(magU)
	if sign == 0 {
		return -mag, nil
	}
	return mag, nil
}

func toMTable(entries []edgebreaker.MEntry) []ebfile.MTableEntry {
	out := make([]ebfile.MTableEntry, len(entries))
	for i, e := range entries {
		out[i] = ebfile.MTableEntry{Skip: uint32(e.Skip), Length: uint32(e.Length)}
	}
	return out
}

func fromMTable(entries []ebfile.MTableEntry) []edgebreaker.MEntry {
	out := make([]edgebreaker.MEntry, len(entries))
	for i, e := range entries {
		out[i] = edgebreaker.MEntry{Skip: int(e.Skip), Length: int(e.Length)}
	}
	return out
}

func toHTable(entries []edgebreaker.HEntry) []ebfile.HTableEntry {
	out := make([]ebfile.HTableEntry, len(entries))
	for i, e := range entries {
		out[i] = ebfile.HTableEntry{Position: uint32(e.Position), Offset: uint32(e.Offset), Skip: uint32(e.Skip)}
	}
	return out
}

func fromHTable(entries []ebfile.HTableEntry) []edgebreaker.HEntry {
	out := make([]edgebreaker.HEntry, len(entries))
	for i, e := range entries {
		out[i] = edgebreaker.HEntry{Position: int(e.Position), Offset: int(e.Offset), Skip: int(e.Skip)}
	}
	return out
}

func toSOffsetTable(entries []edgebreaker.SEntry) []ebfile.SOffsetEntry {
	out := make([]ebfile.SOffsetEntry, len(entries))
	for i, e := range entries {
		out[i] = ebfile.SOffsetEntry{Index: uint32(e.Index), Offset: uint32(e.Offset)}
	}
	return out
}

func fromSOffsetTable(entries []ebfile.SOffsetEntry) []edgebreaker.SEntry {
	out := make([]edgebreaker.SEntry, len(entries))
	for i, e := range entries {
		out[i] = edgebreaker.SEntry{Index: int(e.Index), Offset: int(e.Offset)}
	}
	return out
}
