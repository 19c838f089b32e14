package io

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/mesh"
	"github.com/npickett/goxrt/trace"
)

// BuildOptic turns a validated OpticConfig into a traceable optic. The
// tracing strategy is fixed here: a flat plane without UseMeshgrid, the
// exhaustive mesh engine with it, and the coarse-to-fine refinement
// pipeline when a coarse companion mesh is configured.
func BuildOptic(opt *OpticConfig, log *zap.Logger) (*trace.Optic, error) {
	var frame *geom.Frame
	if opt.hasXAxis {
		frame = geom.NewFrameWithXAxis(opt.origin, opt.zaxis, opt.xaxis)
	} else {
		frame = geom.NewFrame(opt.origin, opt.zaxis)
	}

	if !opt.UseMeshgrid {
		return trace.NewOptic(opt.name, frame, trace.Plane{}, log), nil
	}

	verts, faces, normals, err := ReadMeshTables(
		opt.MeshVertexFile, opt.MeshFaceFile, opt.MeshNormalFile,
	)
	if err != nil {
		return nil, err
	}
	model, err := mesh.New(verts, faces, normals, opt.MeshInterpolate)
	if err != nil {
		return nil, fmt.Errorf("mesh of Optic '%s': %s", opt.name, err.Error())
	}

	if !opt.refine {
		return trace.NewOptic(opt.name, frame, trace.NewMeshTracer(model, log), log), nil
	}

	coarseVerts, coarseFaces, coarseNormals, err := ReadMeshTables(
		opt.CoarseVertexFile, opt.CoarseFaceFile, opt.CoarseNormalFile,
	)
	if err != nil {
		return nil, err
	}
	// The coarse mesh only seeds candidate lookup; it never resolves
	// normals, so its interpolators are never built.
	coarse, err := mesh.New(coarseVerts, coarseFaces, coarseNormals, false)
	if err != nil {
		return nil, fmt.Errorf("coarse mesh of Optic '%s': %s", opt.name, err.Error())
	}

	return trace.NewOptic(
		opt.name, frame, trace.NewRefineTracer(model, coarse, log), log,
	), nil
}

// BuildSource generates the collimated ray bundle of one source: a
// uniform NX by NY grid of origins across the aperture, every ray aimed
// along the source's z-axis toward the Aim point. Wavelength and weight
// are filled in for the response stage and never read by tracing.
func BuildSource(src *SourceConfig) *geom.RayBatch {
	frame := geom.NewFrame(src.origin, r3.Sub(src.aim, src.origin))
	dir := frame.ZAxis()

	rays := geom.NewRayBatch(src.NX * src.NY)
	k := 0
	for iy := 0; iy < src.NY; iy++ {
		for ix := 0; ix < src.NX; ix++ {
			local := r3.Vec{
				X: gridOffset(ix, src.NX, src.Width),
				Y: gridOffset(iy, src.NY, src.Height),
			}
			rays.Origin[k] = frame.PointToExternal(local)
			rays.Direction[k] = dir
			rays.Wavelength[k] = src.Wavelength
			rays.Weight[k] = 1
			k++
		}
	}
	return rays
}

// gridOffset spreads n samples over an extent centered on zero.
func gridOffset(i, n int, extent float64) float64 {
	if n == 1 {
		return 0
	}
	return (float64(i)/float64(n-1) - 0.5) * extent
}
