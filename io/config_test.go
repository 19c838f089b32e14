package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestExampleConfig(t *testing.T) {
	cfg, err := ReadConfigString(ExampleConfigFile)
	require.NoError(t, err, "the example config must always validate")

	assert.Equal(t, []string{"mirror", "detector"}, cfg.Main.OpticNames())
	assert.Equal(t, []string{"beam"}, cfg.SourceNames())

	src := cfg.Source["beam"]
	assert.Equal(t, 50, src.NX)
	assert.Equal(t, r3.Vec{}, src.origin)
	assert.Equal(t, r3.Vec{Z: 1}, src.aim)

	mirror := cfg.Optic["mirror"]
	assert.True(t, mirror.UseMeshgrid)
	assert.True(t, mirror.MeshInterpolate)
	// MeshRefine is unset in the example; coarse tables are present,
	// so it resolves to true.
	assert.True(t, mirror.Refine())

	detector := cfg.Optic["detector"]
	assert.False(t, detector.UseMeshgrid)
	assert.False(t, detector.Refine())
}

const minimalConfig = `[Main]
Optics = screen
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
[Optic "screen"]
Origin = 0 0 1
ZAxis = 0 0 -1
`

func TestMinimalConfig(t *testing.T) {
	cfg, err := ReadConfigString(minimalConfig)
	require.NoError(t, err)

	src := cfg.Source["s"]
	assert.Equal(t, 1, src.NX, "ray counts default to 1")
	assert.Equal(t, 1, src.NY)

	opt := cfg.Optic["screen"]
	assert.False(t, opt.hasXAxis)
	assert.Equal(t, r3.Vec{Z: -1}, opt.zaxis)
}

func TestMeshRefineTriState(t *testing.T) {
	base := `[Main]
Optics = m
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
[Optic "m"]
Origin = 0 0 1
ZAxis = 0 0 -1
UseMeshgrid = true
MeshVertexFile = v.dat
MeshFaceFile = f.dat
`
	// Unset without coarse tables: refinement off.
	cfg, err := ReadConfigString(base)
	require.NoError(t, err)
	assert.False(t, cfg.Optic["m"].Refine())

	// Unset with coarse tables: refinement on.
	cfg, err = ReadConfigString(base +
		"CoarseVertexFile = cv.dat\nCoarseFaceFile = cf.dat\n")
	require.NoError(t, err)
	assert.True(t, cfg.Optic["m"].Refine())

	// Explicitly disabled despite coarse tables.
	cfg, err = ReadConfigString(base +
		"CoarseVertexFile = cv.dat\nCoarseFaceFile = cf.dat\nMeshRefine = false\n")
	require.NoError(t, err)
	assert.False(t, cfg.Optic["m"].Refine())

	// Explicitly enabled without coarse tables: invalid.
	_, err = ReadConfigString(base + "MeshRefine = true\n")
	assert.Error(t, err)

	// Junk value.
	_, err = ReadConfigString(base + "MeshRefine = maybe\n")
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name, text string
	}{
		{"no sources", `[Main]
Optics = m
[Optic "m"]
Origin = 0 0 0
ZAxis = 0 0 1
`},
		{"no optics listed", `[Main]
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
`},
		{"unknown optic name", `[Main]
Optics = ghost
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
`},
		{"bad vector", `[Main]
Optics = m
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
[Optic "m"]
Origin = 0 zero 0
ZAxis = 0 0 1
`},
		{"zero zaxis", `[Main]
Optics = m
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
[Optic "m"]
Origin = 0 0 0
ZAxis = 0 0 0
`},
		{"source aimed at itself", `[Main]
Optics = m
[Source "s"]
Origin = 1 2 3
Aim = 1 2 3
[Optic "m"]
Origin = 0 0 0
ZAxis = 0 0 1
`},
		{"meshgrid without tables", `[Main]
Optics = m
[Source "s"]
Origin = 0 0 0
Aim = 0 0 1
[Optic "m"]
Origin = 0 0 0
ZAxis = 0 0 1
UseMeshgrid = true
`},
	}

	for _, test := range tests {
		_, err := ReadConfigString(test.text)
		assert.Error(t, err, test.name)
	}
}

func TestParseVec(t *testing.T) {
	v, err := ParseVec("1.5  -2 3e-2")
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 1.5, Y: -2, Z: 0.03}, v)

	_, err = ParseVec("1 2")
	assert.Error(t, err, "too few components")
	_, err = ParseVec("1 2 3 4")
	assert.Error(t, err, "too many components")
	_, err = ParseVec("1 2 x")
	assert.Error(t, err, "non-numeric component")
}
