// Package isomesh defines parametric scalar fields whose iso-surfaces are
// extracted into triangle meshes by the render package.
package isomesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/isomesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sampler is the interface to a scalar field consumed by the mesh builders.
//
// Octree pruning relies on the field being 1-Lipschitz: the value may not
// change faster than the distance between two points. Distance fields such as
// Field satisfy this. A Sampler which does not will have surface silently
// dropped by the octree builder.
type Sampler interface {
	// Evaluate returns the field value at an arbitrary point in space.
	Evaluate(p r3.Vec) float64
	// IsoLevel returns the value whose level set is the extracted surface.
	IsoLevel() float64
}

var (
	_ Sampler = (*Field)(nil)
	_ Sampler = (*KDField)(nil)
)

// Field is a parametric scalar field. Its value at a point is the
// Euclidean distance to the nearest of a fixed set of seed points.
// A Field is immutable and safe for concurrent use.
type Field struct {
	points []r3.Vec
	iso    float64
	bb     r3.Box
}

// NewField returns a Field over a copy of points. The surface extracted
// is the set of points at distance isoLevel from the nearest seed.
func NewField(points []r3.Vec, isoLevel float64) (*Field, error) {
	if len(points) == 0 {
		return nil, errors.New("field requires at least one point")
	}
	if math.IsNaN(isoLevel) || math.IsInf(isoLevel, 0) {
		return nil, errors.New("iso level must be finite")
	}
	f := &Field{
		points: make([]r3.Vec, len(points)),
		iso:    isoLevel,
	}
	copy(f.points, points)
	for i, p := range f.points {
		if badVec(p) {
			return nil, fmt.Errorf("point %d is not finite: %v", i, p)
		}
	}
	f.bb = r3.Box{Min: d3.Set(f.points).Min(), Max: d3.Set(f.points).Max()}
	return f, nil
}

// Evaluate returns the distance from p to the closest seed point.
func (f *Field) Evaluate(p r3.Vec) float64 {
	// Compare squared distances and take a single square root at the end.
	min := math.MaxFloat64
	for _, q := range f.points {
		dx := p.X - q.X
		dy := p.Y - q.Y
		dz := p.Z - q.Z
		d2 := dx*dx + dy*dy + dz*dz
		if d2 < min {
			min = d2
		}
	}
	return math.Sqrt(min)
}

// IsoLevel returns the field's iso level.
func (f *Field) IsoLevel() float64 { return f.iso }

// Len returns the number of seed points.
func (f *Field) Len() int { return len(f.points) }

// Points returns a copy of the seed points.
func (f *Field) Points() []r3.Vec {
	return append([]r3.Vec(nil), f.points...)
}

// Bounds returns the bounding box of the seed points. The surface
// lies within this box enlarged by the iso level on every side.
func (f *Field) Bounds() r3.Box { return f.bb }

// SurfaceBounds returns the box which completely contains the iso-surface.
func (f *Field) SurfaceBounds() r3.Box {
	iso := math.Max(f.iso, 0)
	return r3.Box(d3.Box(f.bb).Enlarge(d3.Elem(2 * iso)))
}

func badVec(v r3.Vec) bool {
	return math.IsNaN(v.X) || math.IsInf(v.X, 0) ||
		math.IsNaN(v.Y) || math.IsInf(v.Y, 0) ||
		math.IsNaN(v.Z) || math.IsInf(v.Z, 0)
}
