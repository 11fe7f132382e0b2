package render

import (
	"math"
	"testing"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestGridValidate(t *testing.T) {
	for _, test := range []struct {
		grid    Grid
		wantErr bool
	}{
		{grid: Grid{Size: 1, Resolution: 1}},
		{grid: Grid{Size: 64, Resolution: 0.01}},
		{grid: Grid{Size: 0, Resolution: 1}, wantErr: true},
		{grid: Grid{Size: -8, Resolution: 1}, wantErr: true},
		{grid: Grid{Size: 48, Resolution: 1}, wantErr: true},
		{grid: Grid{Size: 8, Resolution: -1}, wantErr: true},
		{grid: Grid{Size: 8, Resolution: math.Inf(1)}, wantErr: true},
	} {
		err := test.grid.Validate()
		if (err != nil) != test.wantErr {
			t.Errorf("%+v: got error %v, want error %t", test.grid, err, test.wantErr)
		}
	}
}

func TestGridWorld(t *testing.T) {
	g := Grid{Size: 4, Resolution: 0.5, Origin: r3.Vec{X: -1, Y: 2, Z: 0}}
	got := g.Corner(isomesh.V3i{1, 2, 3})
	want := r3.Vec{X: -0.5, Y: 3, Z: 1.5}
	if !d3.EqualWithin(got, want, 1e-12) {
		t.Errorf("got corner %v, want %v", got, want)
	}
	bb := g.Bounds()
	if !d3.EqualWithin(bb.Max, r3.Vec{X: 1, Y: 4, Z: 2}, 1e-12) {
		t.Errorf("got bounds max %v", bb.Max)
	}
	if g.Cells() != 64 {
		t.Errorf("got %d cells", g.Cells())
	}
}

func TestGridFor(t *testing.T) {
	box := r3.Box{Min: r3.Vec{X: -1, Y: 0, Z: 2}, Max: r3.Vec{X: 3, Y: 1, Z: 2.5}}
	g := GridFor(box, 16, 0.1)
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	bb := d3.Box(g.Bounds())
	lo, hi := d3.MinElem(bb.Min, box.Min), d3.MaxElem(bb.Max, box.Max)
	if lo != bb.Min || hi != bb.Max {
		t.Errorf("grid bounds %v do not contain %v", bb, box)
	}
	if !d3.EqualWithin(bb.Center(), d3.Box(box).Center(), 1e-9) {
		t.Errorf("grid not centered on box: %v vs %v", bb.Center(), d3.Box(box).Center())
	}
	// Single point boxes still give a usable grid.
	g = GridFor(r3.Box{Min: r3.Vec{X: 1}, Max: r3.Vec{X: 1}}, 8, 0)
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}
