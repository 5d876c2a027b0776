package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	eb "github.com/uvic-aurora/edgebreaker-sub000"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
)

func tetrahedronEB(t *testing.T) []byte {
	t.Helper()
	mesh := eb.Mesh{
		Vertices: []halfedge.Point3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}},
	}
	opts := eb.EncodeOptions{Steps: [3]float64{1, 1, 1}, BitWidths: [3]int{8, 8, 8}}
	data, err := eb.Encode(mesh, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestDecodeWritesOFFMesh(t *testing.T) {
	data := tetrahedronEB(t)
	var out bytes.Buffer
	cfg := decodeConfig{stdin: bytes.NewReader(data), stdout: &out}
	if err := decode(cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(out.String(), "OFF\n") {
		t.Fatalf("output does not start with an OFF header: %q", out.String())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cfg := decodeConfig{stdin: bytes.NewReader(make([]byte, 4)), stdout: &bytes.Buffer{}}
	if err := decode(cfg); err == nil {
		t.Fatalf("expected an error decoding garbage input")
	}
}

func TestDecodeWritesResultFile(t *testing.T) {
	data := tetrahedronEB(t)
	resultPath := filepath.Join(t.TempDir(), "result.txt")
	cfg := decodeConfig{stdin: bytes.NewReader(data), stdout: &bytes.Buffer{}, resultPath: resultPath}
	if err := decode(cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	info, err := os.Stat(resultPath)
	if err != nil {
		t.Fatalf("stat result file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty result file")
	}
}
