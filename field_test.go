package isomesh_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/soypat/isomesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFieldEvaluate(t *testing.T) {
	f, err := isomesh.NewField([]r3.Vec{{X: 0}, {X: 10}, {Y: 4, Z: 3}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{}, want: 0},
		{p: r3.Vec{X: 3}, want: 3},
		{p: r3.Vec{X: 7}, want: 3},
		{p: r3.Vec{X: 0, Y: 8, Z: 6}, want: 5},
		{p: r3.Vec{X: 5, Y: 4, Z: 3}, want: 5},
	} {
		got := f.Evaluate(test.p)
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("Evaluate(%v) = %g, want %g", test.p, got, test.want)
		}
	}
	if f.IsoLevel() != 1 || f.Len() != 3 {
		t.Errorf("got iso %g and %d points", f.IsoLevel(), f.Len())
	}
	bb := f.Bounds()
	if bb.Min != (r3.Vec{}) || bb.Max != (r3.Vec{X: 10, Y: 4, Z: 3}) {
		t.Errorf("got bounds %v", bb)
	}
	sb := f.SurfaceBounds()
	if sb.Min != (r3.Vec{X: -1, Y: -1, Z: -1}) || sb.Max != (r3.Vec{X: 11, Y: 5, Z: 4}) {
		t.Errorf("got surface bounds %v", sb)
	}
}

func TestFieldImmutable(t *testing.T) {
	pts := []r3.Vec{{X: 1}}
	f, err := isomesh.NewField(pts, 0)
	if err != nil {
		t.Fatal(err)
	}
	pts[0].X = 5
	f.Points()[0].X = 7
	if got := f.Evaluate(r3.Vec{X: 1}); got != 0 {
		t.Errorf("field changed after modifying points: got %g", got)
	}
}

func TestNewFieldErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		points []r3.Vec
		iso    float64
	}{
		{name: "empty", points: nil},
		{name: "nan iso", points: []r3.Vec{{}}, iso: math.NaN()},
		{name: "inf point", points: []r3.Vec{{}, {Y: math.Inf(-1)}}},
	} {
		if _, err := isomesh.NewField(test.points, test.iso); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestKDField(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := make([]r3.Vec, 500)
	for i := range pts {
		pts[i] = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
	}
	f, err := isomesh.NewField(pts, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	kd := isomesh.NewKDField(f)
	if kd.IsoLevel() != f.IsoLevel() {
		t.Fatal("iso level mismatch")
	}
	for i := 0; i < 2000; i++ {
		p := r3.Vec{X: 2*rng.Float64() - 0.5, Y: 2*rng.Float64() - 0.5, Z: 2*rng.Float64() - 0.5}
		want := f.Evaluate(p)
		got := kd.Evaluate(p)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("Evaluate(%v): k-d tree got %g, brute force got %g", p, got, want)
		}
	}
}

func TestReadPoints(t *testing.T) {
	const input = `# seed points
0 0 0
1.5, -2, 3e-1

	4	5	6
`
	got, err := isomesh.ReadPoints(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []r3.Vec{{}, {X: 1.5, Y: -2, Z: 0.3}, {X: 4, Y: 5, Z: 6}}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}
	for _, bad := range []string{
		"",
		"# only a comment\n",
		"1 2\n",
		"1 2 3 4\n",
		"1 2 x\n",
	} {
		if _, err := isomesh.ReadPoints(strings.NewReader(bad)); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func BenchmarkFieldEvaluate(b *testing.B) {
	benchmarkSampler(b, func(f *isomesh.Field) isomesh.Sampler { return f })
}

func BenchmarkKDFieldEvaluate(b *testing.B) {
	benchmarkSampler(b, func(f *isomesh.Field) isomesh.Sampler { return isomesh.NewKDField(f) })
}

func benchmarkSampler(b *testing.B, sampler func(*isomesh.Field) isomesh.Sampler) {
	rng := rand.New(rand.NewSource(1))
	pts := make([]r3.Vec, 5000)
	for i := range pts {
		pts[i] = r3.Vec{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
	}
	f, err := isomesh.NewField(pts, 0.01)
	if err != nil {
		b.Fatal(err)
	}
	s := sampler(f)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Evaluate(pts[i%len(pts)])
	}
}
