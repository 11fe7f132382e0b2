package render

import (
	"fmt"
	"time"

	"github.com/soypat/isomesh"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loopChunk is the number of consecutive cells a worker claims at a time.
const loopChunk = 32

// LoopMeshBuilder evaluates every cell of the grid. It does no pruning and
// serves as the reference result for TreeMeshBuilder.
//
// A LoopMeshBuilder must not be used by more than one goroutine at a time.
type LoopMeshBuilder struct {
	grid Grid
	cfg  builderConfig
	sink TriangleSink
}

var _ MeshBuilder = (*LoopMeshBuilder)(nil)

// NewLoopMeshBuilder returns a brute force mesh builder over grid g.
func NewLoopMeshBuilder(g Grid, opts ...Option) (*LoopMeshBuilder, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("loop builder: %w", err)
	}
	lb := &LoopMeshBuilder{grid: g, cfg: defaultBuilderConfig()}
	for _, opt := range opts {
		opt(&lb.cfg)
	}
	return lb, nil
}

// Name returns "loop".
func (lb *LoopMeshBuilder) Name() string { return "loop" }

// Grid returns the grid the builder samples.
func (lb *LoopMeshBuilder) Grid() Grid { return lb.grid }

// Build evaluates every cell of the grid for the surface of s and returns
// the number of triangles generated.
func (lb *LoopMeshBuilder) Build(s isomesh.Sampler) int {
	start := time.Now()
	lb.sink.Reset()
	cell := lb.cfg.newCell(s, lb.grid)
	var (
		size      = lb.grid.Size
		ncells    = int64(lb.grid.Cells())
		cursor    atomic.Int64
		triangles atomic.Int64
		workers   errgroup.Group
	)
	worker := func() error {
		n := 0
		for {
			end := cursor.Add(loopChunk)
			begin := end - loopChunk
			if begin >= ncells {
				break
			}
			if end > ncells {
				end = ncells
			}
			for i := begin; i < end; i++ {
				c := isomesh.V3i{
					int(i) % size,
					(int(i) / size) % size,
					int(i) / (size * size),
				}
				n += cell.EvaluateCell(c, &lb.sink)
			}
		}
		triangles.Add(int64(n))
		return nil
	}
	for w := 1; w < lb.cfg.workers; w++ {
		workers.Go(worker)
	}
	worker()
	workers.Wait() // workers never fail

	n := int(triangles.Load())
	lb.cfg.log.Debug("mesh built",
		zap.String("builder", lb.Name()),
		zap.Int("grid", size),
		zap.Int("workers", lb.cfg.workers),
		zap.Int("triangles", n),
		zap.Int64("cells", ncells),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n
}

// Triangles returns the triangles generated by the last build.
func (lb *LoopMeshBuilder) Triangles() []Triangle3 { return lb.sink.Triangles() }
