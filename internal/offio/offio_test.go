package offio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
)

func tetrahedron() Mesh {
	return Mesh{
		Vertices: []halfedge.Point3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := tetrahedron()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Vertices) != len(m.Vertices) || len(got.Faces) != len(m.Faces) {
		t.Fatalf("got %d verts/%d faces, want %d/%d", len(got.Vertices), len(got.Faces), len(m.Vertices), len(m.Faces))
	}
	for i := range m.Vertices {
		if got.Vertices[i] != m.Vertices[i] {
			t.Fatalf("vertex %d = %+v, want %+v", i, got.Vertices[i], m.Vertices[i])
		}
	}
	for i := range m.Faces {
		if got.Faces[i] != m.Faces[i] {
			t.Fatalf("face %d = %v, want %v", i, got.Faces[i], m.Faces[i])
		}
	}
}

func TestReadRejectsMissingHeader(t *testing.T) {
	r := strings.NewReader("4 4 0\n0 0 0\n")
	if _, err := Read(r); err != ErrBadHeader {
		t.Fatalf("got %v, want ErrBadHeader", err)
	}
}

func TestReadRejectsNonTriangleFace(t *testing.T) {
	r := strings.NewReader("OFF\n4 1 0\n0 0 0\n1 0 0\n0 1 0\n0 0 1\n4 0 1 2 3\n")
	if _, err := Read(r); err == nil {
		t.Fatalf("expected an error for a quad face")
	}
}

func TestReadSkipsBlankLines(t *testing.T) {
	r := strings.NewReader("OFF\n\n3 1 0\n\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n")
	m, err := Read(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Fatalf("got %d verts/%d faces, want 3/1", len(m.Vertices), len(m.Faces))
	}
}
