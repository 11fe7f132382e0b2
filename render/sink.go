package render

import "sync"

// Sink receives triangles emitted by a CellEvaluator.
type Sink interface {
	Emit(t Triangle3)
}

// TriangleSink is an append-only triangle collector shared by concurrent
// producers. Triangles from different producers are stored in no
// particular order.
type TriangleSink struct {
	mu        sync.Mutex
	triangles []Triangle3
}

var _ Sink = (*TriangleSink)(nil)

// Emit appends one triangle to the sink.
func (ts *TriangleSink) Emit(t Triangle3) {
	ts.mu.Lock()
	ts.triangles = append(ts.triangles, t)
	ts.mu.Unlock()
}

// EmitBatch appends several triangles to the sink under a single lock.
func (ts *TriangleSink) EmitBatch(t []Triangle3) {
	if len(t) == 0 {
		return
	}
	ts.mu.Lock()
	ts.triangles = append(ts.triangles, t...)
	ts.mu.Unlock()
}

// Len returns the number of triangles collected.
func (ts *TriangleSink) Len() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.triangles)
}

// Triangles returns a copy of the triangles collected.
func (ts *TriangleSink) Triangles() []Triangle3 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]Triangle3(nil), ts.triangles...)
}

// Reset discards all triangles while keeping the allocated storage.
func (ts *TriangleSink) Reset() {
	ts.mu.Lock()
	ts.triangles = ts.triangles[:0]
	ts.mu.Unlock()
}
