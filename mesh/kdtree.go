package mesh

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// vertexPoint is a mesh vertex stored in a kd-tree, tagged with its
// index into the vertex array so that nearest-neighbor queries can
// recover the vertex, not just its position.
type vertexPoint struct {
	pos r3.Vec
	idx int
}

func vecComp(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (p vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(vertexPoint)
	return vecComp(p.pos, d) - vecComp(q.pos, d)
}

func (p vertexPoint) Dims() int { return 3 }

func (p vertexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(vertexPoint)
	return r3.Norm2(r3.Sub(p.pos, q.pos))
}

// vertexPoints implements kdtree.Interface.
type vertexPoints []vertexPoint

func (p vertexPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p vertexPoints) Len() int                      { return len(p) }
func (p vertexPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p vertexPoints) Pivot(d kdtree.Dim) int {
	return vertexPlane{Dim: d, vertexPoints: p}.Pivot()
}

// vertexPlane sorts vertexPoints along a single dimension for pivot
// selection during tree construction.
type vertexPlane struct {
	kdtree.Dim
	vertexPoints
}

func (p vertexPlane) Less(i, j int) bool {
	return vecComp(p.vertexPoints[i].pos, p.Dim) < vecComp(p.vertexPoints[j].pos, p.Dim)
}
func (p vertexPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertexPoints = p.vertexPoints[start:end]
	return p
}
func (p vertexPlane) Swap(i, j int) {
	p.vertexPoints[i], p.vertexPoints[j] = p.vertexPoints[j], p.vertexPoints[i]
}

// newVertexTree builds a kd-tree over the given vertices. If project is
// set the vertices are projected onto the (x, y) plane first, which
// turns nearest-neighbor queries into 2D lookups for the surface
// interpolator.
func newVertexTree(vertices []r3.Vec, project bool) *kdtree.Tree {
	pts := make(vertexPoints, len(vertices))
	for i, v := range vertices {
		if project {
			v.Z = 0
		}
		pts[i] = vertexPoint{pos: v, idx: i}
	}
	return kdtree.New(pts, false)
}
