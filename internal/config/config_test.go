package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"
)

func TestParse(t *testing.T) {
	const src = `
input     = "seeds.xyz"
output    = "out.stl"
grid_size = 128
iso_level = 0.25
workers   = 3
builder   = "loop"
kdtree    = true
`
	cfg, err := Parse([]byte(src), "test.hcl")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Input = "seeds.xyz"
	want.Output = "out.stl"
	want.GridSize = 128
	want.IsoLevel = 0.25
	want.Workers = 3
	want.Builder = BuilderLoop
	want.KDTree = true
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestParsePartial(t *testing.T) {
	cfg, err := Parse([]byte(`input = "a.xyz"`), "partial.hcl")
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Input = "a.xyz"
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`input = `,
		`grid_size = "big"`,
		`unknown_setting = 1`,
	} {
		if _, err := Parse([]byte(src), "bad.hcl"); err == nil {
			t.Errorf("%q: expected error", src)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isomesh.hcl")
	err := os.WriteFile(path, []byte("input = \"p.xyz\"\nmargin = 0.5\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "p.xyz" || cfg.Margin != 0.5 {
		t.Errorf("got %+v", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("expected error loading missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.GridSize = 100
	cfg.Margin = -1
	cfg.Workers = 0
	cfg.Builder = "voxel"
	err := cfg.Validate()
	// Input missing, grid size, margin, workers and builder.
	if got := len(multierr.Errors(err)); got != 5 {
		t.Errorf("got %d errors, want 5: %v", got, err)
	}
}

func TestValidateNonFinite(t *testing.T) {
	for _, test := range []struct {
		name        string
		iso, margin float64
		wantErrs    int
	}{
		{name: "nan iso", iso: math.NaN(), wantErrs: 1},
		{name: "inf iso", iso: math.Inf(-1), wantErrs: 1},
		{name: "nan margin", iso: 0.1, margin: math.NaN(), wantErrs: 1},
		{name: "inf margin", iso: 0.1, margin: math.Inf(1), wantErrs: 1},
		{name: "both", iso: math.Inf(1), margin: math.NaN(), wantErrs: 2},
	} {
		cfg := Default()
		cfg.Input = "points.xyz"
		cfg.IsoLevel = test.iso
		cfg.Margin = test.margin
		if got := len(multierr.Errors(cfg.Validate())); got != test.wantErrs {
			t.Errorf("%s: got %d errors, want %d", test.name, got, test.wantErrs)
		}
	}
}
