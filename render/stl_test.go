package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSTLCreateWriteRead(t *testing.T) {
	const quality = 16
	field, err := isomesh.NewField([]r3.Vec{{X: 0.4, Y: 0.5, Z: 0.5}, {X: 0.6, Y: 0.5, Z: 0.5}}, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := render.NewTreeMeshBuilder(render.GridFor(field.SurfaceBounds(), quality, 0.1))
	if err != nil {
		t.Fatal(err)
	}
	model := render.BuildAll(tree, field)
	path := filepath.Join(t.TempDir(), "pair.stl")
	if err := render.CreateSTL(path, model); err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if b.Len() != 84+50*len(model) {
		t.Fatalf("STL of %d triangles is %d bytes long", len(model), b.Len())
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	read, err := render.ReadSTLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(read) != len(model) {
		t.Fatalf("read %d triangles, wrote %d", len(read), len(model))
	}
	if _, err := render.ReadSTLFile(filepath.Join(t.TempDir(), "missing.stl")); err == nil {
		t.Error("expected error reading missing file")
	}
}

func TestWriteSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}
