/*package geom contains the geometric primitives shared by every optical
element: ray bundles and the local/external coordinate frame transform.
*/
package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// RayBatch is a struct-of-arrays collection of rays. Origin, Direction,
// and Mask always have the same length. Direction is not required to be
// unit length. Rays with Mask set to false are frozen: tracing neither
// tests nor advances them.
//
// Wavelength and Weight are carried for the optical response stage and
// are never read or written by the intersection code.
type RayBatch struct {
	Origin    []r3.Vec
	Direction []r3.Vec
	Mask      []bool

	Wavelength []float64
	Weight     []float64
}

// NewRayBatch allocates a batch of n rays with every ray active and all
// fields zeroed.
func NewRayBatch(n int) *RayBatch {
	rays := &RayBatch{
		Origin:     make([]r3.Vec, n),
		Direction:  make([]r3.Vec, n),
		Mask:       make([]bool, n),
		Wavelength: make([]float64, n),
		Weight:     make([]float64, n),
	}
	for i := range rays.Mask {
		rays.Mask[i] = true
	}
	return rays
}

// Len returns the number of rays in the batch, active or not.
func (rays *RayBatch) Len() int { return len(rays.Mask) }

// ActiveCount returns the number of rays with Mask set.
func (rays *RayBatch) ActiveCount() int {
	n := 0
	for _, ok := range rays.Mask {
		if ok {
			n++
		}
	}
	return n
}
