package trace

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/npickett/goxrt/geom"
	"github.com/npickett/goxrt/mesh"
)

// bundleOver fills a batch with rays above [0,1]^2 pointing down.
func bundleOver(n int, seed int64) *geom.RayBatch {
	rng := rand.New(rand.NewSource(seed))
	rays := geom.NewRayBatch(n)
	for i := range rays.Mask {
		rays.Origin[i] = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: 3}
		// Slightly off-axis directions, not unit length.
		rays.Direction[i] = r3.Vec{
			X: 0.2 * (rng.Float64() - 0.5),
			Y: 0.2 * (rng.Float64() - 0.5),
			Z: -2,
		}
	}
	return rays
}

func copyBatch(rays *geom.RayBatch) *geom.RayBatch {
	out := geom.NewRayBatch(rays.Len())
	copy(out.Origin, rays.Origin)
	copy(out.Direction, rays.Direction)
	copy(out.Mask, rays.Mask)
	return out
}

func TestRefineMatchesExhaustiveOnIdenticalMeshes(t *testing.T) {
	zf := func(x, y float64) float64 { return 0.1 * math.Sin(3*x) * math.Cos(2*y) }
	verts, faceIdx := gridMesh(9, 9, zf)
	fine, err := mesh.New(verts, faceIdx, nil, false)
	require.NoError(t, err)
	coarse, err := mesh.New(verts, faceIdx, nil, false)
	require.NoError(t, err)

	raysA := bundleOver(256, 5)
	raysB := copyBatch(raysA)

	wantHits, wantFaces := IntersectAll(raysA, fine)
	gotHits, gotFaces, lost := Refine(raysB, fine, coarse, zap.NewNop())

	// With a coarse mesh geometrically equal to the fine mesh the
	// acceleration path introduces no bias: every ray resolves to the
	// same face and hit point as the exhaustive test.
	assert.Equal(t, 0, lost, "no rays lost")
	for i := range raysA.Mask {
		require.Equal(t, raysA.Mask[i], raysB.Mask[i], "mask of ray %d", i)
		if !raysA.Mask[i] {
			continue
		}
		assert.Equal(t, wantFaces[i], gotFaces[i], "face of ray %d", i)
		assertVecInDelta(t, wantHits[i], gotHits[i], 1e-9, "hit of ray")
	}
}

func TestRefineLosesBoundaryRays(t *testing.T) {
	// The coarse mesh covers [0,1]^2 but the fine mesh only reaches
	// its lower-left cell, so rays hitting the far side of the coarse
	// mesh find no passing candidate on the fine mesh.
	coarseVerts, coarseFaces := gridMesh(2, 2, func(x, y float64) float64 { return 0 })
	coarse, err := mesh.New(coarseVerts, coarseFaces, nil, false)
	require.NoError(t, err)

	fineVerts, fineFaces := gridMesh(5, 5, func(x, y float64) float64 { return 0 })
	for i := range fineVerts {
		fineVerts[i].X *= 0.25
		fineVerts[i].Y *= 0.25
	}
	fine, err := mesh.New(fineVerts, fineFaces, nil, false)
	require.NoError(t, err)

	rays := geom.NewRayBatch(2)
	rays.Origin[0] = r3.Vec{X: 0.1, Y: 0.1, Z: 1}
	rays.Origin[1] = r3.Vec{X: 0.9, Y: 0.9, Z: 1}
	rays.Direction[0] = r3.Vec{Z: -1}
	rays.Direction[1] = r3.Vec{Z: -1}

	_, _, lost := Refine(rays, fine, coarse, zap.NewNop())

	assert.True(t, rays.Mask[0], "ray over the fine mesh survives")
	assert.False(t, rays.Mask[1], "ray past the fine mesh is lost")
	assert.Equal(t, 1, lost, "loss is reported, not fatal")
}

func TestRefineWithVertexNormals(t *testing.T) {
	// A curved mesh carrying analytic vertex normals for interpolation
	// refines exactly like the same mesh without them.
	zf := func(x, y float64) float64 { return 0.1 * math.Sin(3*x) * math.Cos(2*y) }
	verts, faceIdx := gridMesh(9, 9, zf)
	normals := make([]r3.Vec, len(verts))
	for i, v := range verts {
		normals[i] = r3.Unit(r3.Vec{
			X: -0.3 * math.Cos(3*v.X) * math.Cos(2*v.Y),
			Y: 0.2 * math.Sin(3*v.X) * math.Sin(2*v.Y),
			Z: 1,
		})
	}
	fine, err := mesh.New(verts, faceIdx, normals, true)
	require.NoError(t, err)
	coarse, err := mesh.New(verts, faceIdx, nil, false)
	require.NoError(t, err)
	bare, err := mesh.New(verts, faceIdx, nil, false)
	require.NoError(t, err)

	raysA := bundleOver(256, 11)
	raysB := copyBatch(raysA)

	wantHits, wantFaces, wantLost := Refine(raysA, bare, coarse, zap.NewNop())
	gotHits, gotFaces, lost := Refine(raysB, fine, coarse, zap.NewNop())

	assert.Equal(t, wantLost, lost, "losses match")
	assert.Equal(t, 0, lost, "no rays lost")
	require.Greater(t, raysB.ActiveCount(), 0, "bundle hits the mesh")
	for i := range raysA.Mask {
		require.Equal(t, raysA.Mask[i], raysB.Mask[i], "mask of ray %d", i)
		if !raysA.Mask[i] {
			continue
		}
		assert.Equal(t, wantFaces[i], gotFaces[i], "face of ray %d", i)
		assertVecInDelta(t, wantHits[i], gotHits[i], 1e-12, "hit of ray")
	}
}

func BenchmarkRefine(b *testing.B) {
	zf := func(x, y float64) float64 { return 0.05 * x * x }
	fineVerts, fineFaces := gridMesh(33, 33, zf)
	fine, err := mesh.New(fineVerts, fineFaces, nil, false)
	if err != nil {
		b.Fatal(err)
	}
	coarseVerts, coarseFaces := gridMesh(5, 5, zf)
	coarse, err := mesh.New(coarseVerts, coarseFaces, nil, false)
	if err != nil {
		b.Fatal(err)
	}

	rays := bundleOver(512, 2)
	mask := make([]bool, rays.Len())
	copy(mask, rays.Mask)
	log := zap.NewNop()

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		copy(rays.Mask, mask)
		Refine(rays, fine, coarse, log)
	}
}
