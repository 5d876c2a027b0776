package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/offio"
)

const tetrahedronOFF = `OFF
4 4 0
0 0 0
1 0 0
0 1 0
0 0 1
3 0 1 2
3 0 3 1
3 0 2 3
3 1 3 2
`

func TestEncodeProducesNonEmptyOutput(t *testing.T) {
	var out bytes.Buffer
	cfg := encodeConfig{
		stdin:  strings.NewReader(tetrahedronOFF),
		stdout: &out,
		bits:   8,
		scale:  1,
	}
	if err := encode(cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected non-empty EB output")
	}
}

func TestEncodeRejectsBadBitWidth(t *testing.T) {
	cfg := encodeConfig{
		stdin:  strings.NewReader(tetrahedronOFF),
		stdout: &bytes.Buffer{},
		bits:   1,
		scale:  1,
	}
	if err := encode(cfg); err == nil || !isUsageError(err) {
		t.Fatalf("got %v, want a usage error", err)
	}
}

func TestEncodeRejectsBadScale(t *testing.T) {
	cfg := encodeConfig{
		stdin:  strings.NewReader(tetrahedronOFF),
		stdout: &bytes.Buffer{},
		bits:   8,
		scale:  0,
	}
	if err := encode(cfg); err == nil || !isUsageError(err) {
		t.Fatalf("got %v, want a usage error", err)
	}
}

func TestEncodeWritesResultFile(t *testing.T) {
	var out bytes.Buffer
	resultPath := filepath.Join(t.TempDir(), "result.txt")
	cfg := encodeConfig{
		stdin:      strings.NewReader(tetrahedronOFF),
		stdout:     &out,
		bits:       8,
		scale:      1,
		resultPath: resultPath,
	}
	if err := encode(cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := os.ReadFile(resultPath)
	if err != nil {
		t.Fatalf("reading result file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty result file")
	}
}

func TestDedupVerticesCollapsesCoincidentPoints(t *testing.T) {
	m := offio.Mesh{
		Vertices: []halfedge.Point3{
			{X: 0, Y: 0, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces: [][3]int{{0, 2, 3}, {1, 2, 3}},
	}
	got := dedupVertices(m)
	if len(got.Vertices) != 3 {
		t.Fatalf("got %d unique vertices, want 3", len(got.Vertices))
	}
	if len(got.Faces) != 2 {
		t.Fatalf("got %d faces, want 2", len(got.Faces))
	}
	for _, f := range got.Faces {
		if f[0] != 0 && f[1] != 0 && f[2] != 0 {
			t.Fatalf("face %v does not reference remapped vertex 0", f)
		}
	}
}

func TestFillDefaultStepsUsesRangeOver256(t *testing.T) {
	m := offio.Mesh{
		Vertices: []halfedge.Point3{
			{X: 0, Y: 0, Z: 0},
			{X: 256, Y: 0, Z: 0},
		},
	}
	steps := [3]float64{0, 0, 0}
	fillDefaultSteps(m, &steps)
	if steps[0] != 1 {
		t.Fatalf("got x step %g, want 1", steps[0])
	}
}
