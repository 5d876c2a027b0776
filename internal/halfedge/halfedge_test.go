package halfedge

import "testing"

func tetrahedron() (*Mesh, error) {
	pts := []Point3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	faces := [][3]int{
		{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2},
	}
	return Build(pts, faces)
}

func TestBuildTetrahedronClosed(t *testing.T) {
	m, err := tetrahedron()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.HalfEdges) != 12 {
		t.Fatalf("got %d half-edges, want 12", len(m.HalfEdges))
	}
	for i := range m.HalfEdges {
		if m.IsBoundary(i) {
			t.Fatalf("half-edge %d unexpectedly on boundary in a closed mesh", i)
		}
	}
	if loops := m.BoundaryLoops(); len(loops) != 0 {
		t.Fatalf("closed mesh reported %d boundary loops, want 0", len(loops))
	}
	if got := m.ConnectedComponents(); got != 1 {
		t.Fatalf("ConnectedComponents = %d, want 1", got)
	}
}

func openSquare() (*Mesh, error) {
	pts := []Point3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	faces := [][3]int{{0, 1, 2}, {0, 2, 3}}
	return Build(pts, faces)
}

func TestBuildOpenSquareBoundary(t *testing.T) {
	m, err := openSquare()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	loops := m.BoundaryLoops()
	if len(loops) != 1 {
		t.Fatalf("got %d boundary loops, want 1", len(loops))
	}
	if len(loops[0]) != 4 {
		t.Fatalf("boundary loop length = %d, want 4", len(loops[0]))
	}
}

func TestThirdVertexAndOrigin(t *testing.T) {
	m, err := openSquare()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	he := m.Faces[0].HalfEdge
	origin := m.Origin(he)
	head := m.HalfEdges[he].Vertex
	apex := m.ThirdVertex(he)
	if origin == head || origin == apex || head == apex {
		t.Fatalf("degenerate triangle corners: origin=%d head=%d apex=%d", origin, head, apex)
	}
}

func TestCircListPushAndSplit(t *testing.T) {
	l := NewCircListFrom([]int{10, 20, 30, 40, 50})
	if got := l.Size(); got != 5 {
		t.Fatalf("Size = %d, want 5", got)
	}

	// Split out [20,30,40] and verify both halves are valid rings.
	from := l.Next(l.HeadNode())          // node holding 20
	to := l.Next(l.Next(from))            // node holding 40
	sub := l.SplitAfter(from, to)

	if got := sub.Size(); got != 3 {
		t.Fatalf("sub.Size = %d, want 3", got)
	}
	if got := l.Size(); got != 2 {
		t.Fatalf("l.Size = %d, want 2", got)
	}
	vals := map[int]bool{}
	n := sub.HeadNode()
	for i := 0; i < sub.Size(); i++ {
		vals[sub.ValueAt(n)] = true
		n = sub.Next(n)
	}
	for _, want := range []int{20, 30, 40} {
		if !vals[want] {
			t.Fatalf("sub list missing value %d", want)
		}
	}
}

func TestCircListSplice(t *testing.T) {
	l := NewCircListFrom([]int{1, 2, 3})
	other := NewCircListFrom([]int{9, 8})
	at := l.HeadNode()
	l.Splice(at, other)
	if got := l.Size(); got != 5 {
		t.Fatalf("Size after splice = %d, want 5", got)
	}
}

func TestCircListRemoveSingleton(t *testing.T) {
	l := NewCircListFrom([]int{7})
	l.Remove(l.HeadNode())
	if !l.Empty() {
		t.Fatalf("expected empty list after removing sole element")
	}
}
