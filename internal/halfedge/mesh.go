// Package halfedge provides the arena-indexed half-edge mesh used during
// Edgebreaker encoding, plus the circular doubly-linked index list used
// during decoding (spec §9's explicit recommendation: "arena + index
// rather than ambient pointers").
//
// Grounded on the arena/index link pattern of
// other_examples/arl-go-detour's tile data (nodes stored in a single
// growable pool referenced by a typed integer index, links threaded by
// index rather than pointer) and on the interface shape of
// original_source/doc/Circ_list.hpp (a circulator over a circular
// doubly-linked list), reimplemented over indices instead of node
// pointers so splices are index swaps rather than allocations.
package halfedge

import "errors"

// ErrMultiComponent is returned when the input mesh has more than one
// connected component (spec §4.5 step 1, a Non-goal).
var ErrMultiComponent = errors.New("halfedge: mesh has more than one connected component")

// ErrNonTriangular is returned when a face does not have exactly three
// vertices.
var ErrNonTriangular = errors.New("halfedge: face is not a triangle")

// Point3 is a real-valued 3-D coordinate, as supplied by the mesh loader
// (spec §6.2: "vertex coordinates as doubles").
type Point3 struct {
	X, Y, Z float64
}

// Vertex mark values (spec §3).
const (
	VMarkUntouched = 0
	VMarkActive    = 1
	VMarkHole      = 2
	VMarkFrozen    = 3
)

// Halfedge mark values (spec §3).
const (
	HMarkInterior = 0
	HMarkActive   = 1
	HMarkHole     = 2
	HMarkFrozen   = 3
)

const noEdge = -1

// HalfEdge is one directed arena-indexed half-edge: Vertex is the vertex
// it points to (its head); Twin is the opposite half-edge of the same
// undirected edge, or -1 on the mesh boundary; Next/Prev cycle the three
// half-edges of the owning triangle.
type HalfEdge struct {
	Vertex int
	Twin   int
	Next   int
	Prev   int
	Face   int
	Mark   int

	// Shadow bounding-loop chain (spec §3, "Bounding-loop relation"),
	// valid only while this half-edge's Mark is Active or Hole.
	PrevBorder int
	NextBorder int
}

// Vertex holds a mesh vertex's geometry, traversal mark, and one incident
// half-edge usable as a traversal seed.
type Vertex struct {
	Point    Point3
	Mark     int
	Outgoing int // arbitrary half-edge that starts at this vertex, or -1
}

// Face is a triangle, identified by one of its three half-edges.
type Face struct {
	HalfEdge int
}

// Mesh is the arena-indexed half-edge representation built from a plain
// triangle-vertex incidence table.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face

	directed map[[2]int]int // (origin, head) vertex pair -> half-edge index
}

// edgeKey identifies an undirected edge by its two endpoint indices.
type edgeKey struct{ a, b int }

func makeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Build constructs a half-edge mesh from vertex coordinates and a
// triangle-vertex incidence table (each inner slice must have length 3).
func Build(points []Point3, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		Vertices: make([]Vertex, len(points)),
		Faces:    make([]Face, len(faces)),
	}
	for i, p := range points {
		m.Vertices[i] = Vertex{Point: p, Outgoing: noEdge}
	}
	m.HalfEdges = make([]HalfEdge, 0, 3*len(faces))

	edges := make(map[edgeKey][]int) // undirected edge -> half-edge indices sharing it

	for fi, tri := range faces {
		base := len(m.HalfEdges)
		for k := 0; k < 3; k++ {
			m.HalfEdges = append(m.HalfEdges, HalfEdge{
				Vertex: tri[(k+1)%3],
				Twin:   noEdge,
				Face:   fi,
			})
		}
		for k := 0; k < 3; k++ {
			he := base + k
			m.HalfEdges[he].Next = base + (k+1)%3
			m.HalfEdges[he].Prev = base + (k+2)%3
			from := tri[k]
			to := tri[(k+1)%3]
			m.Vertices[from].Outgoing = he
			edges[makeKey(from, to)] = append(edges[makeKey(from, to)], he)
		}
		m.Faces[fi] = Face{HalfEdge: base}
	}

	for _, hs := range edges {
		if len(hs) == 2 {
			m.HalfEdges[hs[0]].Twin = hs[1]
			m.HalfEdges[hs[1]].Twin = hs[0]
		}
		// len(hs) == 1: boundary half-edge, Twin stays -1.
		// len(hs) > 2: non-manifold; left to the caller's validation pass.
	}

	m.directed = make(map[[2]int]int, len(m.HalfEdges))
	for i, he := range m.HalfEdges {
		origin := m.HalfEdges[he.Prev].Vertex
		m.directed[[2]int{origin, he.Vertex}] = i
	}
	return m, nil
}

// HalfEdgeByDirectedEdge returns the half-edge whose tail is origin and
// head is head, if the mesh has one. Since the active boundary loop
// (tracked by the traversal as a cycle of vertex indices) only ever
// contains real mesh edges, this is how the traversal recovers the
// half-edge and its incident triangle for a loop edge.
func (m *Mesh) HalfEdgeByDirectedEdge(origin, head int) (int, bool) {
	he, ok := m.directed[[2]int{origin, head}]
	return he, ok
}

// Opposite returns the twin of half-edge he, or -1 if he is a boundary
// half-edge.
func (m *Mesh) Opposite(he int) int {
	return m.HalfEdges[he].Twin
}

// ThirdVertex returns the apex vertex of the triangle incident to gate g:
// the vertex of g's face that is not an endpoint of g.
func (m *Mesh) ThirdVertex(g int) int {
	return m.HalfEdges[m.HalfEdges[g].Next].Vertex
}

// Origin returns the vertex half-edge he starts from.
func (m *Mesh) Origin(he int) int {
	return m.HalfEdges[m.HalfEdges[he].Prev].Vertex
}

// IsBoundary reports whether he has no twin (lies on the mesh boundary).
func (m *Mesh) IsBoundary(he int) bool {
	return m.HalfEdges[he].Twin == noEdge
}

// BoundaryLoops returns every boundary loop as a sequence of boundary
// half-edges ordered so that each half-edge's head vertex is the next
// half-edge's tail vertex. A closed mesh returns no loops.
func (m *Mesh) BoundaryLoops() [][]int {
	visited := make(map[int]bool)
	var loops [][]int
	for i := range m.HalfEdges {
		if !m.IsBoundary(i) || visited[i] {
			continue
		}
		var loop []int
		cur := i
		for {
			visited[cur] = true
			loop = append(loop, cur)
			nxt := m.nextBoundary(cur)
			if nxt == i {
				break
			}
			cur = nxt
		}
		loops = append(loops, loop)
	}
	return loops
}

// nextBoundary finds the boundary half-edge whose tail is he's head,
// walking the fan of half-edges around that vertex.
func (m *Mesh) nextBoundary(he int) int {
	v := m.HalfEdges[he].Vertex
	start := m.Vertices[v].Outgoing
	cur := start
	for {
		if m.IsBoundary(cur) {
			return cur
		}
		cur = m.HalfEdges[m.HalfEdges[cur].Twin].Next
		if cur == start {
			return he // degenerate: no boundary edge found, avoid infinite loop
		}
	}
}

// ConnectedComponents returns the number of connected components reachable
// via face adjacency (through twin edges), used to enforce the
// single-component Non-goal.
func (m *Mesh) ConnectedComponents() int {
	if len(m.Faces) == 0 {
		return 0
	}
	visited := make([]bool, len(m.Faces))
	count := 0
	var stack []int
	for start := range m.Faces {
		if visited[start] {
			continue
		}
		count++
		stack = append(stack, start)
		visited[start] = true
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			he := m.Faces[f].HalfEdge
			for k := 0; k < 3; k++ {
				if t := m.HalfEdges[he].Twin; t != noEdge {
					nf := m.HalfEdges[t].Face
					if !visited[nf] {
						visited[nf] = true
						stack = append(stack, nf)
					}
				}
				he = m.HalfEdges[he].Next
			}
		}
	}
	return count
}
