package render

import (
	"math"

	"github.com/soypat/isomesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// marchingCubesMaxTriangles is the most triangles a single cell can produce.
const marchingCubesMaxTriangles = 5

// CellEvaluator triangulates a single unit cell of a grid.
type CellEvaluator interface {
	// EvaluateCell emits the triangles of the cell whose minimum corner is
	// at cell to dst and returns how many were emitted.
	EvaluateCell(cell isomesh.V3i, dst Sink) int
}

// CellEvaluatorFunc creates the CellEvaluator used for one build.
type CellEvaluatorFunc func(s isomesh.Sampler, g Grid) CellEvaluator

// mcCornerOffsets are the cube corners in marching cubes order.
var mcCornerOffsets = [8]isomesh.V3i{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// MarchingCubes is the classic marching cubes cell evaluator. It samples
// the field at the eight corners of a cell, classifies them against the
// iso level and emits the interpolated triangles of the cell.
type MarchingCubes struct {
	s    isomesh.Sampler
	grid Grid
	iso  float64
}

var _ CellEvaluator = (*MarchingCubes)(nil)

// NewMarchingCubes returns a cell evaluator for the field s sampled on g.
func NewMarchingCubes(s isomesh.Sampler, g Grid) *MarchingCubes {
	return &MarchingCubes{s: s, grid: g, iso: s.IsoLevel()}
}

func newMarchingCubes(s isomesh.Sampler, g Grid) CellEvaluator {
	return NewMarchingCubes(s, g)
}

// EvaluateCell implements CellEvaluator.
func (mc *MarchingCubes) EvaluateCell(cell isomesh.V3i, dst Sink) int {
	var (
		corners [8]r3.Vec
		values  [8]float64
		tris    [marchingCubesMaxTriangles]Triangle3
	)
	for i, off := range mcCornerOffsets {
		corners[i] = mc.grid.Corner(cell.Add(off))
		values[i] = mc.s.Evaluate(corners[i])
	}
	n := mcToTriangles(tris[:], corners, values, mc.iso)
	for _, t := range tris[:n] {
		dst.Emit(t)
	}
	return n
}

// mcToTriangles writes the non-degenerate triangles of a cube with corners p
// and field values v at iso level x to dst and returns how many were written.
// dst must have room for marchingCubesMaxTriangles triangles.
func mcToTriangles(dst []Triangle3, p [8]r3.Vec, v [8]float64, x float64) int {
	// which cube corners are inside the surface?
	index := 0
	for i := 0; i < 8; i++ {
		if v[i] < x {
			index |= 1 << uint(i)
		}
	}
	if mcEdgeTable[index] == 0 {
		// no surface in this cube
		return 0
	}
	// work out the interpolated points on the edges
	var points [12]r3.Vec
	for i := 0; i < 12; i++ {
		if mcEdgeTable[index]&(1<<uint(i)) == 0 {
			continue
		}
		a, b := mcEdgeCorners[i][0], mcEdgeCorners[i][1]
		// Interpolate shared edges in the same direction from every
		// neighbouring cube so vertices match exactly.
		if mcCornerOffsets[b].Less(mcCornerOffsets[a]) {
			a, b = b, a
		}
		points[i] = mcInterpolate(p[a], p[b], v[a], v[b], x)
	}
	table := mcTriangleTable[index]
	count := 0
	for i := 0; i < len(table); i += 3 {
		// Table winding has normals facing inwards, swap to face out.
		t := Triangle3{V: [3]r3.Vec{
			points[table[i]],
			points[table[i+2]],
			points[table[i+1]],
		}}
		// Corners exactly at the iso level collapse triangles to a point or line.
		if !t.Degenerate(0) {
			dst[count] = t
			count++
		}
	}
	return count
}

// mcInterpolate returns the point between p1 and p2 where the linearly
// interpolated field value equals x.
func mcInterpolate(p1, p2 r3.Vec, v1, v2, x float64) r3.Vec {
	const epsilon = 1e-12
	closeToV1 := math.Abs(x-v1) < epsilon
	closeToV2 := math.Abs(x-v2) < epsilon
	switch {
	case closeToV1 && !closeToV2:
		return p1
	case closeToV2 && !closeToV1:
		return p2
	}
	var t float64
	if math.Abs(v2-v1) < epsilon {
		t = 0.5
	} else {
		t = (x - v1) / (v2 - v1)
	}
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}
