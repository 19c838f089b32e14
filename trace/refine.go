package trace

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/mesh"
)

// Refine intersects rays with a dense mesh without paying the
// O(rays x faces) cost of the exhaustive engine. An exhaustive pass
// over the coarse companion mesh yields approximate hit points; the
// fine mesh's nearest vertex to each approximate hit proposes its
// adjacent faces as candidates; a candidate-restricted pass resolves
// the true hit.
//
// Rays active after the coarse pass but rejected by every candidate
// are "lost in refinement". This happens when the nearest-vertex
// heuristic misses the true hit face, typically at mesh boundaries or
// under oblique incidence. The loss is logged as a warning and
// returned, but is not an error and is not retried.
func Refine(
	rays *geom.RayBatch, fine, coarse *mesh.Model, log *zap.Logger,
) (hits []r3.Vec, faces []int, lost int) {
	coarseHits, _ := IntersectAll(rays, coarse)
	nCoarse := rays.ActiveCount()

	candFace := make([][mesh.AdjacencyCap]int, rays.Len())
	candMask := make([][mesh.AdjacencyCap]bool, rays.Len())
	for i := range coarseHits {
		if !rays.Mask[i] {
			continue
		}
		v := fine.NearestVertex(coarseHits[i])
		candFace[i], candMask[i] = fine.AdjacentFaces(v)
	}

	hits, faces = IntersectCandidates(rays, fine, candFace, candMask)

	lost = nCoarse - rays.ActiveCount()
	if lost != 0 {
		log.Warn("rays lost in mesh refinement",
			zap.Int("lost", lost),
			zap.Int("coarseHits", nCoarse),
		)
	}
	return hits, faces, lost
}
