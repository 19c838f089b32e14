package io

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadVecTable reads a three-column whitespace table of vectors, one
// row per vertex.
func ReadVecTable(file string) ([]r3.Vec, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot read vector table '%s': %s", file, err.Error())
	}
	vecs := make([]r3.Vec, len(cols[0]))
	for i := range vecs {
		vecs[i] = r3.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]}
	}
	return vecs, nil
}

// ReadFaceTable reads a three-column whitespace table of vertex
// indices, one row per triangle. Every entry must be a non-negative
// integer.
func ReadFaceTable(file string) ([][3]int, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot read face table '%s': %s", file, err.Error())
	}
	faces := make([][3]int, len(cols[0]))
	for i := range faces {
		for c := 0; c < 3; c++ {
			v := cols[c][i]
			if v < 0 || v != math.Trunc(v) {
				return nil, fmt.Errorf(
					"face table '%s' row %d: '%g' is not a vertex index",
					file, i, v,
				)
			}
			faces[i][c] = int(v)
		}
	}
	return faces, nil
}

// ReadMeshTables reads the vertex, face, and optional normal tables of
// one mesh. normalFile may be empty, in which case normals is nil.
func ReadMeshTables(
	vertexFile, faceFile, normalFile string,
) (verts []r3.Vec, faces [][3]int, normals []r3.Vec, err error) {
	if verts, err = ReadVecTable(vertexFile); err != nil {
		return nil, nil, nil, err
	}
	if faces, err = ReadFaceTable(faceFile); err != nil {
		return nil, nil, nil, err
	}
	if normalFile != "" {
		if normals, err = ReadVecTable(normalFile); err != nil {
			return nil, nil, nil, err
		}
	}
	return verts, faces, normals, nil
}
