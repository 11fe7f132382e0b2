package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/isomesh/internal/config"
	"github.com/urfave/cli/v2"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "isomesh.hcl")
	err := os.WriteFile(cfgPath, []byte(`
input     = "file.xyz"
output    = "file.stl"
grid_size = 32
iso_level = 0.4
builder   = "loop"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	var got config.Config
	app := newApp()
	app.Commands[0].Action = func(c *cli.Context) (err error) {
		got, err = loadConfig(c)
		return err
	}
	err = app.Run([]string{"isomesh", "build", "--config", cfgPath, "--output", "flag.stl", "--grid", "16", "--kdtree"})
	if err != nil {
		t.Fatal(err)
	}
	want := config.Default()
	want.Input = "file.xyz"
	want.Output = "flag.stl"
	want.GridSize = 16
	want.IsoLevel = 0.4
	want.Builder = "loop"
	want.KDTree = true
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBuildAndInfo(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "points.xyz")
	output := filepath.Join(dir, "mesh.stl")
	err := os.WriteFile(points, []byte("# two seeds\n0.4 0.5 0.5\n0.6 0.5 0.5\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	err = newApp().Run([]string{"isomesh", "build", "-i", points, "-o", output, "--grid", "16", "--iso", "0.2", "--workers", "2"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run([]string{"isomesh", "info", output}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "degenerate: 0\n") || strings.Contains(out.String(), "triangles:  0\n") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
	if err := newApp().Run([]string{"isomesh", "info"}); err == nil {
		t.Error("expected error without an STL file")
	}
}
