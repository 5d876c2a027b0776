package edgebreaker

import (
	"testing"

	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/predict"
)

func tetrahedronPoints() []predict.Point {
	return []predict.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 0, Y: 0, Z: 10},
	}
}

func buildTetrahedron(t *testing.T) *halfedge.Mesh {
	t.Helper()
	pts := []halfedge.Point3{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 0, Y: 10, Z: 0}, {X: 0, Y: 0, Z: 10},
	}
	faces := [][3]int{
		{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2},
	}
	m, err := halfedge.Build(pts, faces)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestEncodeTetrahedronProducesSingleE(t *testing.T) {
	m := buildTetrahedron(t)
	enc, err := NewEncoder(m, tetrahedronPoints())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	res, err := enc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.VertexCount != 4 {
		t.Fatalf("VertexCount = %d, want 4", res.VertexCount)
	}
	if res.FaceCount != 4 {
		t.Fatalf("FaceCount = %d, want 4", res.FaceCount)
	}
	if len(res.History) == 0 || res.History[len(res.History)-1] != OpE {
		t.Fatalf("history does not end in E: %v", res.History)
	}
	if len(res.Residuals) != 4 {
		t.Fatalf("got %d residuals, want 4 (one per vertex)", len(res.Residuals))
	}
}

func TestEncodeDecodeTetrahedronRoundTrip(t *testing.T) {
	m := buildTetrahedron(t)
	pts := tetrahedronPoints()
	enc, err := NewEncoder(m, pts)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	res, err := enc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := NewDecoder(DecodeInput{
		History:     res.History,
		MTable:      res.MTable,
		HTable:      res.HTable,
		SOffsets:    res.SOffsets,
		VertexCount: res.VertexCount,
		Residuals:   res.Residuals,
	})
	out, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Faces) != res.FaceCount {
		t.Fatalf("got %d faces, want %d", len(out.Faces), res.FaceCount)
	}
	if len(out.Points) != res.VertexCount {
		t.Fatalf("got %d points, want %d", len(out.Points), res.VertexCount)
	}
	gotCoords := make(map[predict.Point]bool, len(out.Points))
	for _, p := range out.Points {
		gotCoords[p] = true
	}
	for _, p := range pts {
		if !gotCoords[p] {
			t.Fatalf("reconstructed mesh is missing original coordinate %+v", p)
		}
	}
}

func buildOpenSquare(t *testing.T) (*halfedge.Mesh, []predict.Point) {
	t.Helper()
	pts := []halfedge.Point3{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0},
	}
	faces := [][3]int{{0, 1, 2}, {0, 2, 3}}
	m, err := halfedge.Build(pts, faces)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	quant := []predict.Point{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0},
	}
	return m, quant
}

func TestEncodeOpenSquareReachesE(t *testing.T) {
	m, pts := buildOpenSquare(t)
	enc, err := NewEncoder(m, pts)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	res, err := enc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.VertexCount != 4 {
		t.Fatalf("VertexCount = %d, want 4", res.VertexCount)
	}
	if res.FaceCount != 2 {
		t.Fatalf("FaceCount = %d, want 2", res.FaceCount)
	}
	if res.History[len(res.History)-1] != OpE {
		t.Fatalf("history does not end in E: %v", res.History)
	}
}

func TestEncodeDecodeOpenSquareRoundTrip(t *testing.T) {
	m, pts := buildOpenSquare(t)
	enc, err := NewEncoder(m, pts)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	res, err := enc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.BoundaryLength != 4 {
		t.Fatalf("BoundaryLength = %d, want 4", res.BoundaryLength)
	}

	dec := NewDecoder(DecodeInput{
		History:        res.History,
		MTable:         res.MTable,
		HTable:         res.HTable,
		SOffsets:       res.SOffsets,
		VertexCount:    res.VertexCount,
		Residuals:      res.Residuals,
		BoundaryLength: res.BoundaryLength,
	})
	out, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Faces) != res.FaceCount {
		t.Fatalf("got %d faces, want %d", len(out.Faces), res.FaceCount)
	}
	gotCoords := make(map[predict.Point]bool, len(out.Points))
	for _, p := range out.Points {
		gotCoords[p] = true
	}
	for _, p := range pts {
		if !gotCoords[p] {
			t.Fatalf("reconstructed mesh is missing original coordinate %+v", p)
		}
	}
}

func TestBestSeriesPicksLowerIndexOnTie(t *testing.T) {
	c := SymbolCounts{T: 10, SA: 2, RA: 2, RN: 4, E: 0, L: 4}
	if got := BestSeries(c); got != 1 {
		t.Fatalf("BestSeries = %d, want 1 on a tie", got)
	}
}

func TestEncodeHistoryDecodeHistoryRoundTrip(t *testing.T) {
	history := []Opcode{OpC, OpR, OpC, OpR, OpL, OpE}
	for series := 1; series <= 3; series++ {
		bits := EncodeHistory(series, history)
		got := DecodeHistory(series, bits, len(history))
		for i, op := range history {
			if got[i] != op.Reduced() {
				t.Fatalf("series %d: symbol %d = %v, want %v", series, i, got[i], op.Reduced())
			}
		}
	}
}
