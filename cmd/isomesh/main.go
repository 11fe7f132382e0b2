// Package main is the isomesh command. It extracts the iso-surface of a
// point distance field into an STL mesh.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/config"
	"github.com/soypat/isomesh/internal/d3"
	"github.com/soypat/isomesh/render"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	flagConfig  = "config"
	flagInput   = "input"
	flagOutput  = "output"
	flagGrid    = "grid"
	flagIso     = "iso"
	flagMargin  = "margin"
	flagWorkers = "workers"
	flagBuilder = "builder"
	flagKDTree  = "kdtree"
	flagVerbose = "verbose"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "isomesh",
		Usage: "extract iso-surfaces of point distance fields",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "build a mesh from a point file and write it as STL",
				UsageText: "isomesh build --input points.txt [--grid 64] [--iso 0.15] [--output mesh.stl]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load build settings from HCL `FILE`",
					},
					&cli.StringFlag{
						Name:    flagInput,
						Aliases: []string{"i"},
						Usage:   "seed point `FILE`, one x y z triple per line",
					},
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "STL output `FILE`",
					},
					&cli.IntFlag{
						Name:  flagGrid,
						Usage: "cells per domain edge, a power of two",
					},
					&cli.Float64Flag{
						Name:  flagIso,
						Usage: "iso level of the extracted surface",
					},
					&cli.Float64Flag{
						Name:  flagMargin,
						Usage: "fraction the domain is enlarged beyond the surface bounds",
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Usage: "number of concurrent workers",
					},
					&cli.StringFlag{
						Name:  flagBuilder,
						Usage: "mesh builder: octree or loop",
					},
					&cli.BoolFlag{
						Name:  flagKDTree,
						Usage: "find nearest seed points with a k-d tree",
					},
					&cli.BoolFlag{
						Name:    flagVerbose,
						Aliases: []string{"v"},
						Usage:   "enable debug logging",
					},
				},
				Action: buildAction,
			},
			{
				Name:      "info",
				Usage:     "print a summary of a binary STL file",
				UsageText: "isomesh info mesh.stl",
				Action:    infoAction,
			},
		},
	}
}

func buildAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	return build(cfg, logger)
}

// loadConfig merges the config file, if any, with the flags set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet(flagInput) {
		cfg.Input = c.String(flagInput)
	}
	if c.IsSet(flagOutput) {
		cfg.Output = c.String(flagOutput)
	}
	if c.IsSet(flagGrid) {
		cfg.GridSize = c.Int(flagGrid)
	}
	if c.IsSet(flagIso) {
		cfg.IsoLevel = c.Float64(flagIso)
	}
	if c.IsSet(flagMargin) {
		cfg.Margin = c.Float64(flagMargin)
	}
	if c.IsSet(flagWorkers) {
		cfg.Workers = c.Int(flagWorkers)
	}
	if c.IsSet(flagBuilder) {
		cfg.Builder = c.String(flagBuilder)
	}
	if c.IsSet(flagKDTree) {
		cfg.KDTree = c.Bool(flagKDTree)
	}
	if c.IsSet(flagVerbose) {
		cfg.Verbose = c.Bool(flagVerbose)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func build(cfg config.Config, logger *zap.Logger) error {
	field, err := isomesh.LoadField(cfg.Input, cfg.IsoLevel)
	if err != nil {
		return err
	}
	var sampler isomesh.Sampler = field
	if cfg.KDTree {
		sampler = isomesh.NewKDField(field)
	}
	grid := render.GridFor(field.SurfaceBounds(), cfg.GridSize, cfg.Margin)
	logger.Debug("field loaded",
		zap.String("input", cfg.Input),
		zap.Int("points", field.Len()),
		zap.Float64("resolution", grid.Resolution),
	)

	opts := []render.Option{
		render.WithWorkers(cfg.Workers),
		render.WithLogger(logger),
	}
	var builder render.MeshBuilder
	switch cfg.Builder {
	case config.BuilderLoop:
		builder, err = render.NewLoopMeshBuilder(grid, opts...)
	default:
		builder, err = render.NewTreeMeshBuilder(grid, opts...)
	}
	if err != nil {
		return err
	}
	n := builder.Build(sampler)
	logger.Info("mesh built",
		zap.String("builder", builder.Name()),
		zap.Int("grid", cfg.GridSize),
		zap.Int("triangles", n),
	)
	if n == 0 {
		return errors.New("field has no surface inside the domain, nothing written")
	}
	if err := render.CreateSTL(cfg.Output, builder.Triangles()); err != nil {
		return err
	}
	logger.Info("mesh written", zap.String("output", cfg.Output))
	return nil
}

func infoAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("info takes exactly one STL file")
	}
	model, err := render.ReadSTLFile(c.Args().First())
	if err != nil {
		return err
	}
	var (
		degenerate int
		area       float64
		vertices   = make(d3.Set, 0, 3*len(model))
	)
	for _, t := range model {
		if t.Degenerate(0) {
			degenerate++
		}
		area += r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))) / 2
		vertices = append(vertices, t.V[:]...)
	}
	fmt.Fprintf(c.App.Writer, "triangles:  %d\n", len(model))
	fmt.Fprintf(c.App.Writer, "degenerate: %d\n", degenerate)
	fmt.Fprintf(c.App.Writer, "area:       %g\n", area)
	fmt.Fprintf(c.App.Writer, "bounds:     %v %v\n", vertices.Min(), vertices.Max())
	return nil
}
