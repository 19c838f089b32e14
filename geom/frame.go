package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is the position and orientation of an optical element with
// respect to the external coordinate system. The basis rows are the
// local x, y, and z axes expressed in external coordinates and form a
// right-handed orthonormal triple (y = z cross x).
//
// Frames built through NewFrame are always orthonormal. Frames built
// through NewFrameWithXAxis trust the caller's x-axis: a non-orthogonal
// axis pair is not corrected.
type Frame struct {
	origin r3.Vec
	basis  [3]r3.Vec
}

// DefaultXAxis returns the x-axis used when a frame is defined by its
// z-axis alone: the normalized cross product of the global z-axis with
// zaxis. If zaxis is parallel to global z the cross product vanishes
// and the global x-axis is used instead.
func DefaultXAxis(zaxis r3.Vec) r3.Vec {
	xaxis := r3.Cross(r3.Vec{Z: 1}, zaxis)
	if xaxis == (r3.Vec{}) {
		return r3.Vec{X: 1}
	}
	return r3.Unit(xaxis)
}

// NewFrame creates a frame at origin whose local z-axis points along
// zaxis, with the x-axis given by DefaultXAxis.
func NewFrame(origin, zaxis r3.Vec) *Frame {
	z := r3.Unit(zaxis)
	return NewFrameWithXAxis(origin, z, DefaultXAxis(z))
}

// NewFrameWithXAxis creates a frame at origin from an explicit axis
// pair. zaxis is normalized; xaxis is used as given and must be unit
// length and orthogonal to zaxis for the frame to be orthonormal.
func NewFrameWithXAxis(origin, zaxis, xaxis r3.Vec) *Frame {
	z := r3.Unit(zaxis)
	return &Frame{
		origin: origin,
		basis:  [3]r3.Vec{xaxis, r3.Cross(z, xaxis), z},
	}
}

func (f *Frame) Origin() r3.Vec { return f.origin }
func (f *Frame) XAxis() r3.Vec  { return f.basis[0] }
func (f *Frame) YAxis() r3.Vec  { return f.basis[1] }
func (f *Frame) ZAxis() r3.Vec  { return f.basis[2] }

// VectorToExternal rotates a local vector into external coordinates by
// contracting it against the basis rows.
func (f *Frame) VectorToExternal(v r3.Vec) r3.Vec {
	x, y, z := f.basis[0], f.basis[1], f.basis[2]
	return r3.Vec{
		X: v.X*x.X + v.Y*y.X + v.Z*z.X,
		Y: v.X*x.Y + v.Y*y.Y + v.Z*z.Y,
		Z: v.X*x.Z + v.Y*y.Z + v.Z*z.Z,
	}
}

// VectorToLocal rotates an external vector into local coordinates. This
// is the exact transpose of VectorToExternal.
func (f *Frame) VectorToLocal(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: r3.Dot(f.basis[0], v),
		Y: r3.Dot(f.basis[1], v),
		Z: r3.Dot(f.basis[2], v),
	}
}

// PointToExternal transforms a local position into external
// coordinates: rotate, then translate by the frame origin.
func (f *Frame) PointToExternal(p r3.Vec) r3.Vec {
	return r3.Add(f.VectorToExternal(p), f.origin)
}

// PointToLocal transforms an external position into local coordinates:
// translate to the frame origin, then rotate.
func (f *Frame) PointToLocal(p r3.Vec) r3.Vec {
	return f.VectorToLocal(r3.Sub(p, f.origin))
}

// VectorsToExternal rotates a batch of vectors in place.
func (f *Frame) VectorsToExternal(vs []r3.Vec) {
	for i := range vs {
		vs[i] = f.VectorToExternal(vs[i])
	}
}

// VectorsToLocal rotates a batch of vectors in place.
func (f *Frame) VectorsToLocal(vs []r3.Vec) {
	for i := range vs {
		vs[i] = f.VectorToLocal(vs[i])
	}
}

// PointsToExternal transforms a batch of positions in place.
func (f *Frame) PointsToExternal(ps []r3.Vec) {
	for i := range ps {
		ps[i] = f.PointToExternal(ps[i])
	}
}

// PointsToLocal transforms a batch of positions in place.
func (f *Frame) PointsToLocal(ps []r3.Vec) {
	for i := range ps {
		ps[i] = f.PointToLocal(ps[i])
	}
}

// RaysToLocal transforms a ray batch into the local frame in place.
// Origins transform as points, directions as vectors. Inactive rays are
// transformed along with the rest; the transform is mask-independent.
func (f *Frame) RaysToLocal(rays *RayBatch) {
	f.PointsToLocal(rays.Origin)
	f.VectorsToLocal(rays.Direction)
}

// RaysToExternal transforms a ray batch back into the external frame
// in place.
func (f *Frame) RaysToExternal(rays *RayBatch) {
	f.PointsToExternal(rays.Origin)
	f.VectorsToExternal(rays.Direction)
}

// AimAt returns the normalized (zaxis, xaxis) pair that points the
// frame's z-axis from its origin toward point, with the x-axis from
// DefaultXAxis. The frame itself is not modified.
func (f *Frame) AimAt(point r3.Vec) (zaxis, xaxis r3.Vec) {
	zaxis = r3.Unit(r3.Sub(point, f.origin))
	return zaxis, DefaultXAxis(zaxis)
}

// AimAtWithXAxis is AimAt with a caller-supplied x-axis, passed through
// unchanged.
func (f *Frame) AimAtWithXAxis(point, xaxis r3.Vec) (r3.Vec, r3.Vec) {
	return r3.Unit(r3.Sub(point, f.origin)), xaxis
}
