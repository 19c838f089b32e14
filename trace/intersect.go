/*package trace finds where rays strike optical surfaces. It contains
the two mesh intersection engines (an exhaustive all-faces test and a
candidate-restricted test), the coarse-to-fine refinement pipeline that
combines them, and the Tracer strategy variants an optic is configured
with.

All tracing operates on a ray batch in the optic's local frame and
narrows the batch mask in place: rays that miss are deactivated, never
removed.
*/
package trace

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/mesh"
)

const (
	// parallelEps rejects rays nearly parallel to a face in the
	// Möller-Trumbore determinant test.
	parallelEps = 1e-15

	// areaEps is the tolerance of the area-based inside-triangle test
	// used by the candidate-restricted engine.
	areaEps = 1e-10
)

// IntersectAll tests every active ray against every face of the mesh
// with the Möller-Trumbore algorithm. It returns the hit point and hit
// face index per ray (face -1 where there is none) and narrows the
// batch mask to rays accepted by at least one face.
//
// When several faces accept a ray, the last one in face-iteration order
// wins. Cost is O(active rays x faces); small meshes only, or the
// coarse stage of Refine.
func IntersectAll(rays *geom.RayBatch, m *mesh.Model) (hits []r3.Vec, faces []int) {
	n := rays.Len()
	hits = make([]r3.Vec, n)
	faces = make([]int, n)
	accepted := make([]bool, n)
	for i := range faces {
		faces[i] = -1
	}

	// Rays active on entry; the set tested for every face. The batch
	// mask itself narrows only once, after the face loop.
	active := make([]int, 0, n)
	for i, ok := range rays.Mask {
		if ok {
			active = append(active, i)
		}
	}

	for fi := 0; fi < m.NumFaces(); fi++ {
		p0, p1, p2 := m.FaceVertices(fi)
		edge1 := r3.Sub(p1, p0)
		edge2 := r3.Sub(p2, p0)

		for _, i := range active {
			d := rays.Direction[i]
			h := r3.Cross(d, edge2)
			f := r3.Dot(edge1, h)
			if f > -parallelEps && f < parallelEps {
				continue // near-parallel, no stable intersection
			}
			inv := 1 / f

			s := r3.Sub(rays.Origin[i], p0)
			u := inv * r3.Dot(s, h)
			if u < 0 || u > 1 {
				continue
			}

			q := r3.Cross(s, edge1)
			v := inv * r3.Dot(d, q)
			if v < 0 || u+v > 1 {
				continue
			}

			t := inv * r3.Dot(edge2, q)
			accepted[i] = true
			faces[i] = fi
			hits[i] = r3.Add(rays.Origin[i], r3.Scale(t, d))
		}
	}

	for _, i := range active {
		rays.Mask[i] = accepted[i]
	}
	return hits, faces
}

// IntersectCandidates tests each active ray against only its candidate
// faces, given per ray as a fixed-capacity index list plus validity
// mask (the layout produced by mesh.Model.AdjacentFaces). A candidate
// accepts a ray when the ray/face-plane intersection has a non-negative
// ray parameter and lies inside the triangle by the area test. Among
// passing candidates the lowest-index one wins; rays with none are
// deactivated.
func IntersectCandidates(
	rays *geom.RayBatch, m *mesh.Model,
	candFace [][mesh.AdjacencyCap]int, candMask [][mesh.AdjacencyCap]bool,
) (hits []r3.Vec, faces []int) {
	n := rays.Len()
	hits = make([]r3.Vec, n)
	faces = make([]int, n)
	for i := range faces {
		faces[i] = -1
	}

	for i := 0; i < n; i++ {
		if !rays.Mask[i] {
			continue
		}
		o, d := rays.Origin[i], rays.Direction[i]

		hit := false
		for c := 0; c < mesh.AdjacencyCap; c++ {
			if !candMask[i][c] {
				continue
			}
			fi := candFace[i][c]
			p0, p1, p2 := m.FaceVertices(fi)
			normal := m.FaceNormal(fi)

			den := r3.Dot(d, normal)
			if den == 0 {
				continue
			}
			t := r3.Dot(r3.Sub(p0, o), normal) / den
			if t < 0 {
				continue
			}
			x := r3.Add(o, r3.Scale(t, d))

			// The point is inside the triangle when its three
			// sub-triangles tile the full face area.
			a := r3.Sub(x, p0)
			b := r3.Sub(x, p1)
			cc := r3.Sub(x, p2)
			diff := r3.Norm(r3.Cross(b, cc)) +
				r3.Norm(r3.Cross(cc, a)) +
				r3.Norm(r3.Cross(a, b)) -
				r3.Norm(r3.Cross(r3.Sub(p0, p1), r3.Sub(p0, p2)))
			if diff >= areaEps {
				continue
			}

			hits[i] = x
			faces[i] = fi
			hit = true
			break
		}
		rays.Mask[i] = hit
	}
	return hits, faces
}
