package edgebreaker

import (
	"errors"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/predict"
)

// ErrDuplicatePoint is returned when two vertices quantize to the same
// integer point (spec §4.5 step 3).
var ErrDuplicatePoint = errors.New("edgebreaker: quantized points are not unique")

// EncodeResult collects everything the EB container needs to serialize.
type EncodeResult struct {
	History     []Opcode
	MTable      []MEntry
	HTable      []HEntry
	SOffsets    []SEntry
	VertexCount int
	FaceCount   int
	// BoundaryLength is the open mesh's outer boundary length, or 0 for a
	// closed mesh; see DecodeInput.BoundaryLength.
	BoundaryLength int
	// Residuals holds, in geometry encounter order, the value fed to the
	// arithmetic coder for each vertex: the first entry is the initial
	// gate's start vertex (full coordinates, predicted from the origin),
	// the second is its end vertex (predicted from the start), and the
	// rest are residuals from the parallelogram predictor. For an open
	// mesh the first BoundaryLength entries are instead the outer
	// boundary chain written by encodeBoundaryLoop.
	Residuals []predict.Point
}

type encFrame struct {
	loop   *halfedge.CircList
	savedD int
}

// Encoder runs the Edgebreaker connectivity traversal over a half-edge
// mesh whose vertices have already been quantized, producing the opcode
// history, auxiliary tables, and the geometry residual stream.
//
// Grounded on original_source/src/encoder.cpp/encoder.hpp; the bounding
// loop is tracked with halfedge.CircList (an index-addressed ring of
// vertex ids) rather than the source's per-half-edge
// prev_on_border/next_on_border shadow chain, since the two are
// equivalent for a simple boundary cycle and the former composes
// directly with spec §9's arena+index recommendation.
type Encoder struct {
	mesh   *halfedge.Mesh
	points []predict.Point // quantized point, indexed by original vertex id

	st TraversalState

	indexOf   []int // original vertex id -> assigned index, -1 if unassigned
	nextIndex int
	vmark     []int // original vertex id -> spec §3 vertex mark

	holeLoopOf map[int]*halfedge.CircList

	history  []Opcode
	mTable   []MEntry
	hTable   []HEntry
	sOffsets []SEntry

	frames []encFrame

	residuals      []predict.Point
	savedD         int
	hasSavedD      bool
	boundaryLength int
}

// NewEncoder creates an Encoder over mesh with points as the quantized
// per-vertex coordinates (indexed by mesh vertex id, matching
// halfedge.Mesh.Vertices).
func NewEncoder(mesh *halfedge.Mesh, points []predict.Point) (*Encoder, error) {
	if mesh.ConnectedComponents() > 1 {
		return nil, halfedge.ErrMultiComponent
	}
	seen := make(map[predict.Point]bool, len(points))
	for _, p := range points {
		if seen[p] {
			return nil, ErrDuplicatePoint
		}
		seen[p] = true
	}
	e := &Encoder{
		mesh:       mesh,
		points:     points,
		indexOf:    make([]int, len(points)),
		vmark:      make([]int, len(points)),
		holeLoopOf: make(map[int]*halfedge.CircList),
	}
	for i := range e.indexOf {
		e.indexOf[i] = -1
	}
	return e, nil
}

// Encode runs the full traversal and returns the connectivity artifacts
// plus the geometry residual stream.
func (e *Encoder) Encode() (EncodeResult, error) {
	loops := e.mesh.BoundaryLoops()
	var activeLoop *halfedge.CircList
	var gateHead, gateStart int
	if len(loops) == 0 {
		gateHead = e.mesh.Faces[0].HalfEdge
		start := e.mesh.Origin(gateHead)
		end := e.mesh.HalfEdges[gateHead].Vertex
		e.indexOf[end] = 0
		e.indexOf[start] = 1
		e.nextIndex = 2
		activeLoop = e.buildInitialLoopFromTriangle(gateHead)
		gateStart = start
	} else {
		longest := longestLoop(loops)
		verts := loopVertices(e.mesh, longest)
		n := len(verts)
		for i, v := range verts {
			e.indexOf[v] = n - 1 - i
			e.vmark[v] = halfedge.VMarkActive
		}
		e.nextIndex = n
		for _, lp := range loops {
			if sameLoop(lp, longest) {
				continue
			}
			hverts := loopVertices(e.mesh, lp)
			for _, v := range hverts {
				e.vmark[v] = halfedge.VMarkHole
			}
			hole := halfedge.NewCircListFrom(hverts)
			for _, v := range hverts {
				e.holeLoopOf[v] = hole
			}
		}
		activeLoop = halfedge.NewCircListFrom(verts)
		gateHe := e.findInitialGateForOpenMesh(longest)
		gateHead = gateHe
		gateStart = e.mesh.Origin(gateHe)
	}

	if len(loops) == 0 {
		e.encodeFirstTwo(gateStart, e.mesh.HalfEdges[gateHead].Vertex, false)
	} else {
		e.boundaryLength = activeLoop.Size()
		e.encodeBoundaryLoop(activeLoop)
	}

	loop := activeLoop
	head := e.findNodeForVertex(loop, e.mesh.HalfEdges[gateHead].Vertex)
	loop.SetHead(head)

	for {
		head = loop.HeadNode()
		g := loop.ValueAt(head)
		gp := loop.ValueAt(loop.Prev(head))
		gn := loop.ValueAt(loop.Next(head))

		he, ok := e.mesh.HalfEdgeByDirectedEdge(gp, g)
		if !ok {
			return EncodeResult{}, errors.New("edgebreaker: active loop edge not found in mesh")
		}
		v := e.mesh.ThirdVertex(he)

		op := e.classify(v, g, gp, gn, loop, head)
		e.history = append(e.history, op)
		e.st.TriangleCnt++
		e.st.ProcessedCnt++

		switch op {
		case OpC:
			e.applyC(loop, head, v)
		case OpL:
			head = e.applyL(loop, head)
		case OpR:
			head = e.applyR(loop, head)
		case OpS:
			loop, head = e.applyS(loop, head, v)
		case OpM:
			e.applyM(loop, head, v)
		case OpH:
			e.applyH(loop, head, v)
		case OpE:
			done, nl, nh := e.applyE()
			if done {
				return e.finish(), nil
			}
			loop, head = nl, nh
			continue
		}
		loop.SetHead(head)
	}
}

func (e *Encoder) finish() EncodeResult {
	return EncodeResult{
		History:        e.history,
		MTable:         e.mTable,
		HTable:         e.hTable,
		SOffsets:       e.sOffsets,
		VertexCount:    e.nextIndex,
		BoundaryLength: e.boundaryLength,
		FaceCount:      e.st.TriangleCnt,
		Residuals:   e.residuals,
	}
}

// encodeFirstTwo performs spec §4.5 step 6 for a closed mesh: the gate
// start vertex is encoded directly (prediction = origin), then the end
// vertex with the start as sole predictor.
func (e *Encoder) encodeFirstTwo(start, end int, _ bool) {
	e.vmark[start] = halfedge.VMarkActive
	e.vmark[end] = halfedge.VMarkActive
	p0 := predict.Predict(predict.Point{}, predict.Point{}, predict.Point{}, false, false, false)
	e.residuals = append(e.residuals, predict.Residual(e.points[start], p0))
	p1 := predict.Predict(e.points[start], predict.Point{}, predict.Point{}, true, false, false)
	e.residuals = append(e.residuals, predict.Residual(e.points[end], p1))
}

// encodeBoundaryLoop records the geometry residual for an open mesh's
// outer boundary, in ascending-index order (spec §3 assigns that loop
// indices n-1..0 in geometric order, so ascending index order retraces
// the loop backwards). Each vertex is predicted from the previously
// encoded one, the first from the origin; BoundaryLength lets the
// decoder retrace the same loop and chain without any extra
// connectivity data.
func (e *Encoder) encodeBoundaryLoop(loop *halfedge.CircList) {
	n := loop.Size()
	order := make([]int, n)
	node := loop.HeadNode()
	for i := 0; i < n; i++ {
		order[n-1-i] = loop.ValueAt(node)
		node = loop.Next(node)
	}
	var prev predict.Point
	hasPrev := false
	for _, v := range order {
		p := predict.Predict(prev, predict.Point{}, predict.Point{}, hasPrev, false, false)
		e.residuals = append(e.residuals, predict.Residual(e.points[v], p))
		prev, hasPrev = e.points[v], true
	}
}

func (e *Encoder) findNodeForVertex(loop *halfedge.CircList, v int) int {
	n := loop.HeadNode()
	start := n
	for {
		if loop.ValueAt(n) == v {
			return n
		}
		n = loop.Next(n)
		if n == start {
			return start
		}
	}
}

// buildInitialLoopFromTriangle seeds the active loop with just the two
// gate vertices (spec §4.5 step 6): the apex of the first face is left
// untouched and is picked up by the first classify/applyC step, exactly
// as every later C opcode introduces its new vertex.
func (e *Encoder) buildInitialLoopFromTriangle(he int) *halfedge.CircList {
	start := e.mesh.Origin(he)
	end := e.mesh.HalfEdges[he].Vertex
	e.vmark[start] = halfedge.VMarkActive
	e.vmark[end] = halfedge.VMarkActive
	return halfedge.NewCircListFrom([]int{end, start})
}

func (e *Encoder) findInitialGateForOpenMesh(longest []int) int {
	for _, bhe := range longest {
		face := e.mesh.Faces[e.mesh.HalfEdges[bhe].Face]
		cur := face.HalfEdge
		for k := 0; k < 3; k++ {
			if !e.mesh.IsBoundary(cur) {
				return cur
			}
			cur = e.mesh.HalfEdges[cur].Next
		}
	}
	return longest[0]
}

func longestLoop(loops [][]int) []int {
	best := loops[0]
	for _, l := range loops[1:] {
		if len(l) > len(best) {
			best = l
		}
	}
	return best
}

func sameLoop(a, b []int) bool {
	return len(a) == len(b) && len(a) > 0 && a[0] == b[0]
}

func loopVertices(m *halfedge.Mesh, loop []int) []int {
	verts := make([]int, len(loop))
	for i, he := range loop {
		verts[i] = m.HalfEdges[he].Vertex
	}
	return verts
}

// classify implements spec §4.5's classifier.
func (e *Encoder) classify(v, g, gp, gn int, loop *halfedge.CircList, head int) Opcode {
	switch e.vmark[v] {
	case halfedge.VMarkUntouched:
		return OpC
	case halfedge.VMarkHole:
		return OpM
	}
	gpp := loop.ValueAt(loop.Prev(loop.Prev(head)))
	condR := v == gn
	condL := v == gpp
	switch {
	case condR && condL:
		return OpE
	case condR:
		return OpR
	case condL:
		return OpL
	case e.vmark[v] == halfedge.VMarkFrozen:
		return OpH
	default:
		return OpS
	}
}

func (e *Encoder) newVertexResidual(v, a, b, d int, hasD bool) {
	pa, pb := e.points[a], e.points[b]
	var pd predict.Point
	if hasD {
		pd = e.points[d]
	}
	p := predict.Predict(pa, pb, pd, true, true, hasD)
	e.residuals = append(e.residuals, predict.Residual(e.points[v], p))
}

func (e *Encoder) applyC(loop *halfedge.CircList, head, v int) {
	gp := loop.ValueAt(loop.Prev(head))
	g := loop.ValueAt(head)
	e.indexOf[v] = e.nextIndex
	e.nextIndex++
	e.vmark[v] = halfedge.VMarkActive
	e.newVertexResidual(v, gp, g, e.savedD, e.hasSavedD)
	loop.InsertBefore(head, v)
	e.savedD, e.hasSavedD = gp, true
}

func (e *Encoder) applyL(loop *halfedge.CircList, head int) int {
	gpNode := loop.Prev(head)
	gpVal := loop.ValueAt(gpNode)
	loop.Remove(gpNode)
	e.savedD, e.hasSavedD = gpVal, true
	return head
}

func (e *Encoder) applyR(loop *halfedge.CircList, head int) int {
	gVal := loop.ValueAt(head)
	next := loop.Next(head)
	loop.Remove(head)
	e.savedD, e.hasSavedD = gVal, true
	return next
}

// applyE closes off the current sub-mesh. It reports whether the whole
// traversal is finished; if not, it returns the restored (loop, head)
// from the popped frame.
func (e *Encoder) applyE() (done bool, loop *halfedge.CircList, head int) {
	if len(e.frames) == 0 {
		return true, nil, 0
	}
	top := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	for n := top.loop.HeadNode(); ; {
		v := top.loop.ValueAt(n)
		if e.vmark[v] == halfedge.VMarkFrozen {
			e.vmark[v] = halfedge.VMarkActive
		}
		n = top.loop.Next(n)
		if n == top.loop.HeadNode() {
			break
		}
	}
	e.savedD, e.hasSavedD = top.savedD, true
	return false, top.loop, top.loop.HeadNode()
}

// splitOffset counts the Next-steps from gn's node to v's node within loop.
func splitOffset(loop *halfedge.CircList, gnNode, v int) (int, int) {
	n := gnNode
	offset := 0
	for loop.ValueAt(n) != v {
		n = loop.Next(n)
		offset++
	}
	return offset, n
}

func (e *Encoder) applyS(loop *halfedge.CircList, head, v int) (*halfedge.CircList, int) {
	g := loop.ValueAt(head)
	gp := loop.ValueAt(loop.Prev(head))
	gnNode := loop.Next(head)
	offset, vNode := splitOffset(loop, gnNode, v)

	e.sOffsets = append(e.sOffsets, SEntry{Index: e.st.SCount, Offset: offset})
	e.st.SCount++
	e.st.SkipM++
	e.st.SkipH++

	sub := loop.SplitAfter(gnNode, vNode)
	gInSub := sub.InsertBefore(sub.HeadNode(), g)
	sub.SetHead(gInSub)

	loop.Remove(head)
	vInLoop := loop.InsertBefore(loop.HeadNode(), v)
	loop.SetHead(vInLoop)

	e.frames = append(e.frames, encFrame{loop: loop, savedD: gp})

	e.savedD, e.hasSavedD = gp, true
	return sub, gInSub
}

func (e *Encoder) applyM(loop *halfedge.CircList, head, v int) {
	gp := loop.ValueAt(loop.Prev(head))
	g := loop.ValueAt(head)

	hole := e.holeLoopOf[v]
	start := e.findNodeForVertex(hole, v)
	hole.SetHead(start)

	length := hole.Size()
	first := true
	prevAssigned := gp
	n := hole.HeadNode()
	for i := 0; i < length; i++ {
		hv := hole.ValueAt(n)
		e.indexOf[hv] = e.nextIndex
		e.nextIndex++
		e.vmark[hv] = halfedge.VMarkActive
		if first {
			e.newVertexResidual(hv, gp, g, e.savedD, e.hasSavedD)
			first = false
		} else {
			e.newVertexResidual(hv, prevAssigned, g, e.savedD, e.hasSavedD)
		}
		prevAssigned = hv
		n = hole.Next(n)
	}

	loop.Splice(head, hole)
	delete(e.holeLoopOf, v)

	e.mTable = append(e.mTable, MEntry{Skip: e.st.SkipM, Length: length})
	e.st.SkipM = 0
	e.savedD, e.hasSavedD = gp, true
}

func (e *Encoder) applyH(loop *halfedge.CircList, head, v int) {
	gp := loop.ValueAt(loop.Prev(head))

	frameIdx := -1
	var vNode int
	for i, f := range e.frames {
		if n := e.findNodeForVertex(f.loop, v); f.loop.ValueAt(n) == v {
			frameIdx = i
			vNode = n
			break
		}
	}
	if frameIdx < 0 {
		return
	}
	saved := e.frames[frameIdx]
	offset, _ := splitOffset(saved.loop, saved.loop.HeadNode(), v)

	for n := saved.loop.HeadNode(); ; {
		vv := saved.loop.ValueAt(n)
		if e.vmark[vv] == halfedge.VMarkFrozen {
			e.vmark[vv] = halfedge.VMarkActive
		}
		n = saved.loop.Next(n)
		if n == saved.loop.HeadNode() {
			break
		}
	}
	saved.loop.SetHead(vNode)

	loop.Splice(head, saved.loop)
	e.frames = append(e.frames[:frameIdx], e.frames[frameIdx+1:]...)

	e.hTable = append(e.hTable, HEntry{Position: frameIdx, Offset: offset, Skip: e.st.SkipH})
	e.st.SkipH = 0
	e.savedD, e.hasSavedD = gp, true
}
