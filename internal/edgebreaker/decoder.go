package edgebreaker

import (
	"errors"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/predict"
)

// ErrMalformedHistory is returned when the opcode history and the
// auxiliary tables cannot be reconciled into a consistent reconstruction.
var ErrMalformedHistory = errors.New("edgebreaker: opcode history inconsistent with tables")

type decFrame struct {
	loop   *halfedge.CircList
	savedD int
}

// DecodeInput bundles the artifacts an Encoder produced (or that were
// read back from an ebfile container) that the Decoder needs to
// reconstruct connectivity and geometry.
type DecodeInput struct {
	History     []Opcode
	MTable      []MEntry
	HTable      []HEntry
	SOffsets    []SEntry
	VertexCount int
	Residuals   []predict.Point

	// BoundaryLength is the length of the open mesh's outer boundary
	// loop, or 0 for a closed mesh. Spec §3 assigns that loop's vertices
	// indices n-1..0 in geometric order, which means walking indices in
	// ascending order 0..n-1 retraces the loop in the opposite direction
	// — so the loop itself needs no separate transmission, only its
	// length.
	BoundaryLength int
}

// DecodeResult is the reconstructed mesh: Points indexed by assigned
// vertex index, Faces as vertex-index triples in emission order.
type DecodeResult struct {
	Points []predict.Point
	Faces  []Triangle
}

// Decoder replays an opcode history against a freshly seeded boundary
// loop, mirroring Encoder's CircList-based surgery in reverse, and
// reconstructs geometry in lock-step with the parallelogram predictor.
//
// Grounded on original_source/src/decoder.cpp/decoder.hpp; see Encoder's
// doc comment for why the bounding loop is a halfedge.CircList of vertex
// indices rather than a half-edge shadow chain.
type Decoder struct {
	in DecodeInput

	points []predict.Point
	faces  []Triangle

	nextIndex int
	mUsed     int
	hUsed     int
	sOffsetAt int

	frames []decFrame

	savedD    int
	hasSavedD bool

	residualAt int
}

// NewDecoder creates a Decoder over in.
func NewDecoder(in DecodeInput) *Decoder {
	return &Decoder{
		in:     in,
		points: make([]predict.Point, in.VertexCount),
	}
}

func (d *Decoder) nextResidual() predict.Point {
	r := d.in.Residuals[d.residualAt]
	d.residualAt++
	return r
}

func (d *Decoder) assign(v int, p predict.Point) {
	d.points[v] = p
}

// seedBoundaryLoop reconstructs an open mesh's outer boundary: indices
// 0..n-1 walked in ascending order retrace the original loop (spec §3's
// reverse index assignment), each predicted from the previous one (the
// first from the origin), mirroring Encoder's boundary bootstrap.
func (d *Decoder) seedBoundaryLoop(n int) *halfedge.CircList {
	verts := make([]int, n)
	for i := 0; i < n; i++ {
		verts[i] = i
	}
	var prev predict.Point
	hasPrev := false
	for i := 0; i < n; i++ {
		p := predict.Predict(prev, predict.Point{}, predict.Point{}, hasPrev, false, false)
		pt := predict.Reconstruct(d.nextResidual(), p)
		d.assign(i, pt)
		prev, hasPrev = pt, true
	}
	d.nextIndex = n
	return halfedge.NewCircListFrom(verts)
}

// Decode replays the full opcode history and returns the reconstructed
// mesh.
func (d *Decoder) Decode() (DecodeResult, error) {
	if len(d.in.History) == 0 {
		return DecodeResult{}, ErrMalformedHistory
	}

	var loop *halfedge.CircList
	if d.in.BoundaryLength > 0 {
		loop = d.seedBoundaryLoop(d.in.BoundaryLength)
	} else {
		start := 1
		end := 0
		d.nextIndex = 2
		p0 := predict.Predict(predict.Point{}, predict.Point{}, predict.Point{}, false, false, false)
		d.assign(start, predict.Reconstruct(d.nextResidual(), p0))
		p1 := predict.Predict(d.points[start], predict.Point{}, predict.Point{}, true, false, false)
		d.assign(end, predict.Reconstruct(d.nextResidual(), p1))

		// Mirrors Encoder.buildInitialLoopFromTriangle: vertex index 0
		// (the gate's head, "end" on the encode side) must be the list
		// head so the two sides' gate/G.P/G.N agree from the very first
		// step.
		loop = halfedge.NewCircListFrom([]int{end, start})
	}
	head := loop.HeadNode()

	for _, op := range d.in.History {
		head = loop.HeadNode()
		g := loop.ValueAt(head)
		gp := loop.ValueAt(loop.Prev(head))
		gn := loop.ValueAt(loop.Next(head))

		switch op {
		case OpC:
			v := d.nextIndex
			d.nextIndex++
			p := predict.Predict(d.points[gp], d.points[g], d.points[d.savedD], true, true, d.hasSavedD)
			d.assign(v, predict.Reconstruct(d.nextResidual(), p))
			d.faces = append(d.faces, Triangle{gp, g, v})
			loop.InsertBefore(head, v)
			d.savedD, d.hasSavedD = gp, true

		case OpL:
			d.faces = append(d.faces, Triangle{gp, g, gpp(loop, head)})
			gpNode := loop.Prev(head)
			gpVal := loop.ValueAt(gpNode)
			loop.Remove(gpNode)
			d.savedD, d.hasSavedD = gpVal, true

		case OpR:
			d.faces = append(d.faces, Triangle{gp, g, gn})
			gVal := loop.ValueAt(head)
			next := loop.Next(head)
			loop.Remove(head)
			d.savedD, d.hasSavedD = gVal, true
			loop.SetHead(next)
			continue

		case OpE:
			d.faces = append(d.faces, Triangle{gp, g, gn})
			if len(d.frames) == 0 {
				continue
			}
			top := d.frames[len(d.frames)-1]
			d.frames = d.frames[:len(d.frames)-1]
			d.savedD, d.hasSavedD = top.savedD, true
			loop = top.loop
			loop.SetHead(top.loop.HeadNode())
			continue

		case OpS:
			offset := d.in.SOffsets[d.sOffsetAt].Offset
			d.sOffsetAt++
			gnNode := loop.Next(head)
			vNode := gnNode
			for i := 0; i < offset; i++ {
				vNode = loop.Next(vNode)
			}
			v := loop.ValueAt(vNode)
			d.faces = append(d.faces, Triangle{gp, g, v})

			sub := loop.SplitAfter(loop.Next(head), vNode)
			gInSub := sub.InsertBefore(sub.HeadNode(), g)
			sub.SetHead(gInSub)

			loop.Remove(head)
			vInLoop := loop.InsertBefore(loop.HeadNode(), v)
			loop.SetHead(vInLoop)

			d.frames = append(d.frames, decFrame{loop: loop, savedD: gp})
			d.savedD, d.hasSavedD = gp, true
			loop = sub
			loop.SetHead(gInSub)
			continue

		case OpM:
			entry := d.in.MTable[d.mUsed]
			d.mUsed++
			length := entry.Length
			hole := halfedge.NewCircList()
			firstV := -1
			prevAssigned := gp
			for i := 0; i < length; i++ {
				v := d.nextIndex
				d.nextIndex++
				var p predict.Point
				if i == 0 {
					p = predict.Predict(d.points[gp], d.points[g], d.points[d.savedD], true, true, d.hasSavedD)
					firstV = v
				} else {
					p = predict.Predict(d.points[prevAssigned], d.points[g], d.points[d.savedD], true, true, d.hasSavedD)
				}
				d.assign(v, predict.Reconstruct(d.nextResidual(), p))
				prevAssigned = v
				hole.PushBack(v)
			}
			d.faces = append(d.faces, Triangle{gp, g, firstV})
			loop.Splice(head, hole)
			d.savedD, d.hasSavedD = gp, true

		case OpH:
			entry := d.in.HTable[d.hUsed]
			d.hUsed++
			if entry.Position < 0 || entry.Position >= len(d.frames) {
				return DecodeResult{}, ErrMalformedHistory
			}
			saved := d.frames[entry.Position]
			n := saved.loop.HeadNode()
			for i := 0; i < entry.Offset; i++ {
				n = saved.loop.Next(n)
			}
			v := saved.loop.ValueAt(n)
			d.faces = append(d.faces, Triangle{gp, g, v})
			saved.loop.SetHead(n)
			loop.Splice(head, saved.loop)
			d.frames = append(d.frames[:entry.Position], d.frames[entry.Position+1:]...)
			d.savedD, d.hasSavedD = gp, true
		}
		loop.SetHead(head)
	}

	return DecodeResult{Points: d.points, Faces: d.faces}, nil
}

// gpp returns the vertex two steps back from head (G.P.P), the apex used
// by an L opcode's emitted triangle.
func gpp(loop *halfedge.CircList, head int) int {
	return loop.ValueAt(loop.Prev(loop.Prev(head)))
}
