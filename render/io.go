package render

import "github.com/soypat/isomesh"

// BuildAll builds the surface of s with b and returns the resulting mesh.
func BuildAll(b MeshBuilder, s isomesh.Sampler) []Triangle3 {
	b.Build(s)
	return b.Triangles()
}

// triangle3Buffer gathers the triangles of a single task so they reach the
// shared sink in one batch. It is not safe for concurrent use.
type triangle3Buffer struct {
	buf []Triangle3
}

var _ Sink = (*triangle3Buffer)(nil)

// Emit appends a triangle to this buffer.
func (b *triangle3Buffer) Emit(t Triangle3) {
	b.buf = append(b.buf, t)
}

// Flush moves the buffered triangles to dst and empties the buffer.
func (b *triangle3Buffer) Flush(dst *TriangleSink) {
	dst.EmitBatch(b.buf)
	b.buf = b.buf[:0]
}

func (b *triangle3Buffer) Len() int { return len(b.buf) }
