// Package grid places a spherically symmetric star on a Cartesian grid.
package grid

import (
	"fmt"
)

// Grid is a rectilinear Cartesian grid. Points are stored with x varying fastest.
type Grid struct {
	X, Y, Z []float64
}

// NewUniform returns a grid of n points per axis spanning [-extent, extent].
// A single point sits at the origin.
func NewUniform(n int, extent float64) (*Grid, error) {
	if n < 1 || !(extent > 0) {
		return nil, fmt.Errorf("invalid uniform grid of %d points over %g", n, extent)
	}
	axis := make([]float64, n)
	if n > 1 {
		dx := 2 * extent / float64(n-1)
		for i := range axis {
			axis[i] = -extent + float64(i)*dx
		}
	}
	return &Grid{X: axis, Y: append([]float64(nil), axis...), Z: append([]float64(nil), axis...)}, nil
}

// Size returns the number of grid points.
func (g *Grid) Size() int {
	return len(g.X) * len(g.Y) * len(g.Z)
}

// Index returns the storage index of point (i, j, k).
func (g *Grid) Index(i, j, k int) int {
	return i + len(g.X)*(j+len(g.Y)*k)
}
