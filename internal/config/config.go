// Package config loads the settings of a mesh build from HCL files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/multierr"
)

// Builder names accepted in Config.Builder.
const (
	BuilderOctree = "octree"
	BuilderLoop   = "loop"
)

// Config holds everything needed to turn a point file into a mesh.
type Config struct {
	// Input is the path of the seed point file.
	Input string
	// Output is the path of the STL file written.
	Output string
	// GridSize is the number of cells along each edge of the domain.
	GridSize int
	IsoLevel float64
	// Margin enlarges the domain beyond the surface bounds by this fraction.
	Margin  float64
	Workers int
	// Builder is either BuilderOctree or BuilderLoop.
	Builder string
	// KDTree selects the k-d tree accelerated field sampler.
	KDTree  bool
	Verbose bool
}

// Default returns the configuration used for settings a file or flag does not set.
func Default() Config {
	return Config{
		Output:   "mesh.stl",
		GridSize: 64,
		IsoLevel: 0.15,
		Margin:   0.1,
		Workers:  runtime.GOMAXPROCS(0),
		Builder:  BuilderOctree,
	}
}

// hclConfigFile is the decoding target of a config file. Absent
// attributes are left nil and do not override defaults.
type hclConfigFile struct {
	Input    *string  `hcl:"input,optional"`
	Output   *string  `hcl:"output,optional"`
	GridSize *int     `hcl:"grid_size,optional"`
	IsoLevel *float64 `hcl:"iso_level,optional"`
	Margin   *float64 `hcl:"margin,optional"`
	Workers  *int     `hcl:"workers,optional"`
	Builder  *string  `hcl:"builder,optional"`
	KDTree   *bool    `hcl:"kdtree,optional"`
	Verbose  *bool    `hcl:"verbose,optional"`
}

// Load reads the HCL file at path over the default configuration.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(src, path)
}

// Parse decodes HCL source over the default configuration. filename is
// only used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	cfg := Default()
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	var parsed hclConfigFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}
	parsed.apply(&cfg)
	return cfg, nil
}

func (f *hclConfigFile) apply(cfg *Config) {
	setIf(&cfg.Input, f.Input)
	setIf(&cfg.Output, f.Output)
	setIf(&cfg.GridSize, f.GridSize)
	setIf(&cfg.IsoLevel, f.IsoLevel)
	setIf(&cfg.Margin, f.Margin)
	setIf(&cfg.Workers, f.Workers)
	setIf(&cfg.Builder, f.Builder)
	setIf(&cfg.KDTree, f.KDTree)
	setIf(&cfg.Verbose, f.Verbose)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate returns all problems found in the configuration.
func (c Config) Validate() (err error) {
	if c.Input == "" {
		err = multierr.Append(err, errors.New("no input point file"))
	}
	if c.Output == "" {
		err = multierr.Append(err, errors.New("no output file"))
	}
	if c.GridSize < 1 || c.GridSize&(c.GridSize-1) != 0 {
		err = multierr.Append(err, fmt.Errorf("grid size %d is not a power of two", c.GridSize))
	}
	if !finite(c.IsoLevel) {
		err = multierr.Append(err, fmt.Errorf("iso level %g is not finite", c.IsoLevel))
	}
	if !finite(c.Margin) || c.Margin < 0 {
		err = multierr.Append(err, fmt.Errorf("margin %g is not a finite non-negative number", c.Margin))
	}
	if c.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("need at least one worker, got %d", c.Workers))
	}
	switch c.Builder {
	case BuilderOctree, BuilderLoop:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown builder %q", c.Builder))
	}
	return err
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
