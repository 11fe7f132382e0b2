package render

import (
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshBuilder extracts the iso-surface of a field into a triangle mesh.
type MeshBuilder interface {
	// Build extracts the surface of s and returns the number of triangles
	// generated. It returns once all triangles are available in Triangles.
	Build(s isomesh.Sampler) int
	// Triangles returns the triangles generated by the last call to Build.
	Triangles() []Triangle3
	// Name identifies the builder in logs.
	Name() string
}

// Triangle3 is a 3D triangle. Vertices are wound so that the normal
// points away from the region where the field is below the iso level.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// Degenerate returns true if two of the triangle's vertices are within tol
// of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}
