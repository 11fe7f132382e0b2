package render

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/spatial/r3"
)

// halfSqrt3 is the ratio of a cube's center-to-corner distance to its edge.
var halfSqrt3 = math.Sqrt(3) / 2

// octants are the minimum corners of the 8 sub-cubes of a unit cube.
var octants = [8]isomesh.V3i{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// TreeMeshBuilder extracts iso-surfaces by recursively subdividing the grid
// into octants and skipping those which can not contain the surface.
// Non-empty octants are processed concurrently. The resulting mesh is
// identical to evaluating every cell of the grid.
//
// Empty octants are detected by sampling the field at their center. This
// is only sound for 1-Lipschitz fields such as distance fields: a field that
// changes faster than distance will have parts of its surface dropped.
//
// A TreeMeshBuilder must not be used by more than one goroutine at a time.
type TreeMeshBuilder struct {
	grid  Grid
	cfg   builderConfig
	sink  TriangleSink
	stats buildStats
	// onPrune is called for every region pruned during a build.
	onPrune func(origin isomesh.V3i, edge int)
}

var _ MeshBuilder = (*TreeMeshBuilder)(nil)

// NewTreeMeshBuilder returns an octree mesh builder over grid g.
func NewTreeMeshBuilder(g Grid, opts ...Option) (*TreeMeshBuilder, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("octree builder: %w", err)
	}
	tb := &TreeMeshBuilder{grid: g, cfg: defaultBuilderConfig()}
	for _, opt := range opts {
		opt(&tb.cfg)
	}
	return tb, nil
}

// Name returns "octree".
func (tb *TreeMeshBuilder) Name() string { return "octree" }

// Grid returns the grid the builder samples.
func (tb *TreeMeshBuilder) Grid() Grid { return tb.grid }

// Build extracts the iso-surface of s and returns the number of triangles
// generated. Triangles discards the result of any previous build.
func (tb *TreeMeshBuilder) Build(s isomesh.Sampler) int {
	start := time.Now()
	tb.sink.Reset()
	tb.stats.reset()
	b := &treeBuild{
		s:       s,
		iso:     s.IsoLevel(),
		grid:    tb.grid,
		cell:    tb.cfg.newCell(s, tb.grid),
		sem:     semaphore.NewWeighted(int64(tb.cfg.workers)),
		sink:    &tb.sink,
		stats:   &tb.stats,
		onPrune: tb.onPrune,
	}
	// The calling goroutine is the first worker.
	b.acquire()
	var buf triangle3Buffer
	n := b.divide(&buf, isomesh.V3i{}, tb.grid.Size)
	buf.Flush(&tb.sink)
	b.sem.Release(1)

	tb.stats.triangles.Store(int64(n))
	tb.stats.elapsed.Store(time.Since(start))
	tb.cfg.log.Debug("mesh built",
		zap.String("builder", tb.Name()),
		zap.Int("grid", tb.grid.Size),
		zap.Int("workers", tb.cfg.workers),
		zap.Int("triangles", n),
		zap.Int64("nodes", tb.stats.nodes.Load()),
		zap.Int64("pruned", tb.stats.pruned.Load()),
		zap.Int64("leaves", tb.stats.leaves.Load()),
		zap.Int64("tasks", tb.stats.tasks.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n
}

// Triangles returns the triangles generated by the last build.
func (tb *TreeMeshBuilder) Triangles() []Triangle3 { return tb.sink.Triangles() }

// Stats returns counters describing the last build.
func (tb *TreeMeshBuilder) Stats() Stats { return tb.stats.snapshot() }

// treeBuild holds the state shared by all tasks of a single build.
type treeBuild struct {
	s    isomesh.Sampler
	iso  float64
	grid Grid
	cell CellEvaluator
	// sem holds one slot per goroutine actively evaluating the tree.
	sem     *semaphore.Weighted
	sink    *TriangleSink
	stats   *buildStats
	onPrune func(origin isomesh.V3i, edge int)
}

// divide returns the number of triangles in the cubic region with minimum
// corner origin and the given edge length, both in cells. Triangles are
// emitted to buf, the buffer of the task running divide.
func (b *treeBuild) divide(buf *triangle3Buffer, origin isomesh.V3i, edge int) int {
	b.stats.nodes.Inc()
	if edge == Cutoff {
		b.stats.leaves.Inc()
		return b.cell.EvaluateCell(origin, buf)
	}
	// No point of the region is further from its center than half the
	// diagonal, so the field can not drop below the iso level if the
	// center value exceeds the iso level by more than that.
	center := b.grid.World(r3.Add(origin.ToV3(), d3.Elem(0.5*float64(edge))))
	threshold := b.iso + halfSqrt3*float64(edge)*b.grid.Resolution
	if b.s.Evaluate(center) > threshold {
		b.stats.pruned.Inc()
		if b.onPrune != nil {
			b.onPrune(origin, edge)
		}
		return 0
	}

	half := edge / 2
	var (
		counts  [8]int
		wg      sync.WaitGroup
		spawned bool
	)
	for i, oct := range octants {
		child := origin.Add(isomesh.V3i{oct[0] * half, oct[1] * half, oct[2] * half})
		if !b.sem.TryAcquire(1) {
			// All workers busy, process the octant in this task.
			counts[i] = b.divide(buf, child, half)
			continue
		}
		spawned = true
		b.stats.tasks.Inc()
		wg.Add(1)
		go func(i int, child isomesh.V3i) {
			defer wg.Done()
			var local triangle3Buffer
			counts[i] = b.divide(&local, child, half)
			local.Flush(b.sink)
			b.sem.Release(1)
		}(i, child)
	}
	if spawned {
		// Waiting tasks hand their slot over to the children.
		b.sem.Release(1)
		wg.Wait()
		b.acquire()
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func (b *treeBuild) acquire() {
	if err := b.sem.Acquire(context.Background(), 1); err != nil {
		panic(err) // unreachable with a background context
	}
}

// Stats are counters describing a single build.
type Stats struct {
	// Nodes is the number of regions visited, leaves included.
	Nodes int64
	// Pruned is the number of regions skipped for containing no surface.
	Pruned int64
	// Leaves is the number of unit cells handed to the cell evaluator.
	Leaves int64
	// Tasks is the number of regions processed on a new goroutine.
	Tasks     int64
	Triangles int64
	Elapsed   time.Duration
}

type buildStats struct {
	nodes     atomic.Int64
	pruned    atomic.Int64
	leaves    atomic.Int64
	tasks     atomic.Int64
	triangles atomic.Int64
	elapsed   atomic.Duration
}

func (bs *buildStats) reset() {
	bs.nodes.Store(0)
	bs.pruned.Store(0)
	bs.leaves.Store(0)
	bs.tasks.Store(0)
	bs.triangles.Store(0)
	bs.elapsed.Store(0)
}

func (bs *buildStats) snapshot() Stats {
	return Stats{
		Nodes:     bs.nodes.Load(),
		Pruned:    bs.pruned.Load(),
		Leaves:    bs.leaves.Load(),
		Tasks:     bs.tasks.Load(),
		Triangles: bs.triangles.Load(),
		Elapsed:   bs.elapsed.Load(),
	}
}
