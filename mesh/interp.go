package mesh

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// barycentricEps absorbs floating point error when deciding whether a
// projected query point lies inside a triangle.
const barycentricEps = 1e-12

// SurfaceInterp interpolates surface height and smooth normals from
// per-vertex data. Queries are 2D: the mesh is projected onto its
// local (x, y) plane and values are interpolated barycentrically over
// the projected triangulation, so mesh optics should be defined in a
// local frame where (x, y) parameterizes the surface.
//
// A query that falls outside every face adjacent to its nearest
// projected vertex (off the mesh edge, or a badly shaped
// triangulation) degrades to that vertex's own height and normal.
type SurfaceInterp struct {
	m       *Model
	normals []r3.Vec
	tree    *kdtree.Tree
}

func newSurfaceInterp(m *Model, normals []r3.Vec) *SurfaceInterp {
	return &SurfaceInterp{
		m:       m,
		normals: normals,
		tree:    newVertexTree(m.vertices, true),
	}
}

// locate finds the projected triangle containing (x, y) among the faces
// adjacent to the nearest projected vertex. It returns that vertex, the
// face with its barycentric weights when one contains the point, and
// whether the search succeeded.
func (si *SurfaceInterp) locate(x, y float64) (nearest, face int, w [3]float64, ok bool) {
	got, _ := si.tree.Nearest(vertexPoint{pos: r3.Vec{X: x, Y: y}})
	nearest = got.(vertexPoint).idx

	adjFace, adjMask := si.m.AdjacentFaces(nearest)
	for c := 0; c < AdjacencyCap; c++ {
		if !adjMask[c] {
			continue
		}
		fi := adjFace[c]
		p0, p1, p2 := si.m.FaceVertices(fi)

		det := (p1.Y-p2.Y)*(p0.X-p2.X) + (p2.X-p1.X)*(p0.Y-p2.Y)
		if det == 0 {
			continue
		}
		w0 := ((p1.Y-p2.Y)*(x-p2.X) + (p2.X-p1.X)*(y-p2.Y)) / det
		w1 := ((p2.Y-p0.Y)*(x-p2.X) + (p0.X-p2.X)*(y-p2.Y)) / det
		w2 := 1 - w0 - w1
		if w0 >= -barycentricEps && w1 >= -barycentricEps && w2 >= -barycentricEps {
			return nearest, fi, [3]float64{w0, w1, w2}, true
		}
	}
	return nearest, -1, w, false
}

// Eval returns the interpolated surface height and unit normal at the
// projected point (x, y).
func (si *SurfaceInterp) Eval(x, y float64) (z float64, normal r3.Vec) {
	nearest, face, w, ok := si.locate(x, y)
	if !ok {
		return si.m.vertices[nearest].Z, r3.Unit(si.normals[nearest])
	}

	f := si.m.faces[face]
	v0, v1, v2 := si.m.vertices[f[0]], si.m.vertices[f[1]], si.m.vertices[f[2]]
	n0, n1, n2 := si.normals[f[0]], si.normals[f[1]], si.normals[f[2]]

	z = w[0]*v0.Z + w[1]*v1.Z + w[2]*v2.Z
	normal = r3.Add(
		r3.Scale(w[0], n0),
		r3.Add(r3.Scale(w[1], n1), r3.Scale(w[2], n2)),
	)
	return z, r3.Unit(normal)
}
