package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cutoff is the edge length, in cells, of the smallest octree region.
// Regions of this size are handed to the cell evaluator.
const Cutoff = 1

// Grid describes the cubic sampling domain. Cell (i, j, k) spans from
// Origin + (i, j, k)*Resolution to Origin + (i+1, j+1, k+1)*Resolution.
type Grid struct {
	// Size is the number of cells along each edge of the domain.
	// It must be a power of two.
	Size int
	// Resolution is the edge length of one cell in world units.
	Resolution float64
	// Origin is the world position of the domain's minimum corner.
	Origin r3.Vec
}

// Validate returns an error if the grid can not be octree-subdivided.
func (g Grid) Validate() error {
	switch {
	case g.Size < Cutoff:
		return fmt.Errorf("grid size %d smaller than cutoff %d", g.Size, Cutoff)
	case g.Size&(g.Size-1) != 0:
		return fmt.Errorf("grid size %d is not a power of two", g.Size)
	case math.IsNaN(g.Resolution) || math.IsInf(g.Resolution, 0) || g.Resolution <= 0:
		return errors.New("grid resolution must be positive and finite")
	}
	return nil
}

// World converts grid-space coordinates to world coordinates.
// Coordinates need not be integer so cell centers are representable.
func (g Grid) World(v r3.Vec) r3.Vec {
	return r3.Add(g.Origin, r3.Scale(g.Resolution, v))
}

// Corner returns the world position of the grid node at cell.
func (g Grid) Corner(cell isomesh.V3i) r3.Vec {
	return g.World(cell.ToV3())
}

// Cells returns the total number of unit cells in the grid.
func (g Grid) Cells() int { return g.Size * g.Size * g.Size }

// Bounds returns the world space box covered by the grid.
func (g Grid) Bounds() r3.Box {
	return r3.Box{Min: g.Origin, Max: g.World(d3.Elem(float64(g.Size)))}
}

// GridFor returns a grid of size cells per edge enclosing box b. The box is
// first scaled about its center by 1+margin so that the surface does not lie
// on the domain boundary, where it would not be closed.
func GridFor(b r3.Box, size int, margin float64) Grid {
	bb := d3.Box(b).ScaleAboutCenter(1 + margin)
	longAxis := d3.Max(bb.Size())
	if longAxis <= 0 {
		// Single point bounds. Any positive resolution will do.
		longAxis = 1
	}
	res := longAxis / float64(size)
	// Center the cubic domain on the box.
	half := d3.Elem(0.5 * longAxis)
	return Grid{
		Size:       size,
		Resolution: res,
		Origin:     r3.Sub(bb.Center(), half),
	}
}
