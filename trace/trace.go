package trace

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/mesh"
)

// Result is the outcome of tracing a batch against one surface. All
// slices are indexed by ray; entries are only meaningful where the
// batch mask is still set.
type Result struct {
	// Normals holds the resolved unit surface normal at each hit.
	Normals []r3.Vec
	// Faces holds the hit face index, -1 for flat optics and for rays
	// without a hit. Diagnostic only.
	Faces []int
	// Lost counts rays dropped by the refinement pipeline; zero for
	// the other strategies.
	Lost int
}

// Tracer intersects a local-frame ray batch with one optical surface,
// replacing each active ray's origin with its hit point and
// deactivating rays that miss. The variant an optic uses is chosen at
// construction time from its configuration.
type Tracer interface {
	Trace(rays *geom.RayBatch) *Result
}

var (
	_ Tracer = Plane{}
	_ Tracer = &MeshTracer{}
	_ Tracer = &RefineTracer{}
)

func newResult(n int) *Result {
	faces := make([]int, n)
	for i := range faces {
		faces[i] = -1
	}
	return &Result{Normals: make([]r3.Vec, n), Faces: faces}
}

// Plane is the flat-shape strategy: the surface is the local z = 0
// plane with normal +z. Used by mirrors and crystals whose profile is
// analytic rather than meshed.
type Plane struct{}

func (Plane) Trace(rays *geom.RayBatch) *Result {
	res := newResult(rays.Len())
	for i := range rays.Mask {
		if !rays.Mask[i] {
			continue
		}
		dz := rays.Direction[i].Z
		if dz == 0 {
			rays.Mask[i] = false
			continue
		}
		t := -rays.Origin[i].Z / dz
		if t < 0 {
			rays.Mask[i] = false
			continue
		}
		rays.Origin[i] = r3.Add(rays.Origin[i], r3.Scale(t, rays.Direction[i]))
		res.Normals[i] = r3.Vec{Z: 1}
	}
	return res
}

// MeshTracer is the mesh-shape strategy without acceleration: every
// active ray is tested against every face.
type MeshTracer struct {
	model *mesh.Model
	log   *zap.Logger
}

func NewMeshTracer(model *mesh.Model, log *zap.Logger) *MeshTracer {
	return &MeshTracer{model: model, log: log}
}

func (mt *MeshTracer) Trace(rays *geom.RayBatch) *Result {
	hits, faces := IntersectAll(rays, mt.model)
	res := resolveHits(rays, mt.model, hits, faces)
	mt.log.Debug("rays on mesh", zap.Int("active", rays.ActiveCount()))
	return res
}

// RefineTracer is the mesh-shape strategy with two-level acceleration
// over a coarse/fine mesh pair.
type RefineTracer struct {
	fine   *mesh.Model
	coarse *mesh.Model
	log    *zap.Logger
}

func NewRefineTracer(fine, coarse *mesh.Model, log *zap.Logger) *RefineTracer {
	return &RefineTracer{fine: fine, coarse: coarse, log: log}
}

func (rt *RefineTracer) Trace(rays *geom.RayBatch) *Result {
	hits, faces, lost := Refine(rays, rt.fine, rt.coarse, rt.log)
	res := resolveHits(rays, rt.fine, hits, faces)
	res.Lost = lost
	return res
}

// resolveHits writes hit points back into the batch and resolves the
// surface normal per ray: through the mesh's interpolators when it has
// them (re-projecting the hit height as well), flat face normals
// otherwise.
func resolveHits(
	rays *geom.RayBatch, m *mesh.Model, hits []r3.Vec, faces []int,
) *Result {
	res := newResult(rays.Len())
	si := m.Interp()
	for i := range rays.Mask {
		if !rays.Mask[i] {
			continue
		}
		x := hits[i]
		if si != nil {
			z, n := si.Eval(x.X, x.Y)
			x.Z = z
			res.Normals[i] = n
		} else {
			res.Normals[i] = m.FaceNormal(faces[i])
		}
		rays.Origin[i] = x
		res.Faces[i] = faces[i]
	}
	return res
}
