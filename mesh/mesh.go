/*package mesh precomputes the immutable geometry used to intersect
rays with a triangulated free-form surface: per-face normals and
centers, a vertex-to-face adjacency table, a nearest-vertex spatial
index, and optional scattered-data interpolators for smooth normals.

A Model is built once during optic setup and is strictly read-only
afterward, so it may be shared by any number of intersection calls
without synchronization.
*/
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// AdjacencyCap is the maximum number of faces that may share a single
// vertex. Meshes with a higher adjacency degree are rejected at
// construction time.
const AdjacencyCap = 8

// Model is the precomputed form of one triangulated surface.
type Model struct {
	vertices   []r3.Vec
	faces      [][3]int
	faceNormal []r3.Vec
	faceCenter []r3.Vec

	// Fixed-capacity adjacency lists with an explicit validity mask.
	// Padding slots are masked out rather than holding a sentinel,
	// since any face index, including 0, is valid.
	adjFace [][AdjacencyCap]int
	adjMask [][AdjacencyCap]bool

	tree   *kdtree.Tree
	interp *SurfaceInterp
}

// New builds a Model from raw mesh arrays. Face normals are always
// derived from the winding order of each face, which must be
// consistent across the mesh; they define the face planes the
// intersection engines test against. normals gives one unit normal per
// vertex, may be nil, and feeds only the smooth-normal interpolators.
// If interpolate is set and vertex normals were supplied,
// scattered-data interpolators for surface height and smooth normals
// are built over the local (x, y) projection; without vertex normals
// the request is silently downgraded to flat face normals.
func New(
	vertices []r3.Vec, faces [][3]int, normals []r3.Vec, interpolate bool,
) (*Model, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("mesh has %d vertices, need at least 3", len(vertices))
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("mesh has no faces")
	}
	if normals != nil && len(normals) != len(vertices) {
		return nil, fmt.Errorf(
			"mesh has %d vertices but %d vertex normals",
			len(vertices), len(normals),
		)
	}

	m := &Model{
		vertices:   vertices,
		faces:      faces,
		faceNormal: make([]r3.Vec, len(faces)),
		faceCenter: make([]r3.Vec, len(faces)),
		adjFace:    make([][AdjacencyCap]int, len(vertices)),
		adjMask:    make([][AdjacencyCap]bool, len(vertices)),
	}

	adjDegree := make([]int, len(vertices))
	for fi, face := range faces {
		for _, vi := range face {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf(
					"face %d references vertex %d, but mesh has %d vertices",
					fi, vi, len(vertices),
				)
			}
			if adjDegree[vi] == AdjacencyCap {
				return nil, fmt.Errorf(
					"vertex %d is shared by more than %d faces",
					vi, AdjacencyCap,
				)
			}
			m.adjFace[vi][adjDegree[vi]] = fi
			m.adjMask[vi][adjDegree[vi]] = true
			adjDegree[vi]++
		}

		p0, p1, p2 := vertices[face[0]], vertices[face[1]], vertices[face[2]]
		m.faceCenter[fi] = r3.Scale(1.0/3.0, r3.Add(p0, r3.Add(p1, p2)))

		cross := r3.Cross(r3.Sub(p0, p1), r3.Sub(p2, p1))
		if r3.Norm(cross) == 0 {
			return nil, fmt.Errorf("face %d is degenerate (zero area)", fi)
		}
		m.faceNormal[fi] = r3.Unit(cross)
	}

	m.tree = newVertexTree(vertices, false)

	if interpolate && normals != nil {
		m.interp = newSurfaceInterp(m, normals)
	}

	return m, nil
}

// NumVertices returns the number of mesh vertices.
func (m *Model) NumVertices() int { return len(m.vertices) }

// NumFaces returns the number of mesh faces.
func (m *Model) NumFaces() int { return len(m.faces) }

// Vertex returns the position of vertex i.
func (m *Model) Vertex(i int) r3.Vec { return m.vertices[i] }

// Face returns the vertex indices of face i.
func (m *Model) Face(i int) [3]int { return m.faces[i] }

// FaceVertices returns the three corner positions of face i.
func (m *Model) FaceVertices(i int) (p0, p1, p2 r3.Vec) {
	f := m.faces[i]
	return m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]
}

// FaceNormal returns the unit normal of face i.
func (m *Model) FaceNormal(i int) r3.Vec { return m.faceNormal[i] }

// FaceCenter returns the centroid of face i.
func (m *Model) FaceCenter(i int) r3.Vec { return m.faceCenter[i] }

// AdjacentFaces returns the candidate face list of vertex v together
// with its validity mask. Only entries with a set mask are meaningful.
func (m *Model) AdjacentFaces(v int) ([AdjacencyCap]int, [AdjacencyCap]bool) {
	return m.adjFace[v], m.adjMask[v]
}

// NearestVertex returns the index of the mesh vertex closest to p.
func (m *Model) NearestVertex(p r3.Vec) int {
	got, _ := m.tree.Nearest(vertexPoint{pos: p})
	return got.(vertexPoint).idx
}

// Interp returns the surface interpolator, or nil when interpolation
// is disabled for this mesh.
func (m *Model) Interp() *SurfaceInterp { return m.interp }
