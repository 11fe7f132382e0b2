package render

import (
	"runtime"

	"go.uber.org/zap"
)

type builderConfig struct {
	workers int
	log     *zap.Logger
	newCell CellEvaluatorFunc
}

func defaultBuilderConfig() builderConfig {
	return builderConfig{
		workers: runtime.GOMAXPROCS(0),
		log:     zap.NewNop(),
		newCell: newMarchingCubes,
	}
}

// Option configures a mesh builder.
type Option func(*builderConfig)

// WithWorkers sets how many goroutines may evaluate the field at once.
// A single worker builds the mesh sequentially on the calling goroutine.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *builderConfig) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger builds report to. Builds are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *builderConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCellEvaluator replaces the marching cubes cell evaluator.
func WithCellEvaluator(fn CellEvaluatorFunc) Option {
	return func(c *builderConfig) {
		if fn != nil {
			c.newCell = fn
		}
	}
}
