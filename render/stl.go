package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"
)

// stlRecordSize is the size in bytes of one triangle record.
const stlRecordSize = 50

const trianglesInBuffer = 1 << 10

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle is a triangle record as stored in a binary STL file.
type stlTriangle struct {
	Normal [3]float32
	V      [3][3]float32
}

// CreateSTL writes model triangles to a binary STL file at path.
func CreateSTL(path string, model []Triangle3) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()
	w := bufio.NewWriterSize(file, stlRecordSize*trianglesInBuffer)
	if err = WriteSTL(w, model); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return w.Flush()
}

// WriteSTL writes model triangles to a writer in STL file format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{
		Count: uint32(len(model)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlRecordSize]byte
	for _, t := range model {
		newSTLTriangle(t).marshal(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads a binary STL model. Stored normals must be finite but are
// otherwise discarded; Triangle3 derives its normal from the winding.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("STL model has no triangles")
	}
	var (
		model = make([]Triangle3, 0, min(int(header.Count), trianglesInBuffer))
		b     [stlRecordSize]byte
		d     stlTriangle
	)
	for i := 1; i <= int(header.Count); i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("reading STL triangle %d of %d: %w", i, header.Count, err)
		}
		d.unmarshal(b[:])
		if !d.finite() {
			return nil, fmt.Errorf("STL triangle %d of %d has inf or NaN components", i, header.Count)
		}
		model = append(model, d.triangle())
	}
	return model, nil
}

// ReadSTLFile reads the binary STL file at path.
func ReadSTLFile(path string) ([]Triangle3, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	model, err := ReadSTL(bufio.NewReaderSize(fp, stlRecordSize*trianglesInBuffer))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

func newSTLTriangle(t Triangle3) (d stlTriangle) {
	d.Normal = toF32(t.Normal())
	for i, v := range t.V {
		d.V[i] = toF32(v)
	}
	return d
}

func (d stlTriangle) triangle() (t Triangle3) {
	for i, v := range d.V {
		t.V[i] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}
	return t
}

// marshal writes the record to b. The attribute byte count is always zero.
func (d stlTriangle) marshal(b []byte) {
	_ = b[stlRecordSize-1]
	putF32s(b, d.Normal)
	for i, v := range d.V {
		putF32s(b[12*(i+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (d *stlTriangle) unmarshal(b []byte) {
	_ = b[stlRecordSize-1]
	d.Normal = getF32s(b)
	for i := range d.V {
		d.V[i] = getF32s(b[12*(i+1):])
	}
}

func (d stlTriangle) finite() bool {
	return finiteF32s(d.Normal) && finiteF32s(d.V[0]) && finiteF32s(d.V[1]) && finiteF32s(d.V[2])
}

func toF32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func putF32s(b []byte, f [3]float32) {
	for i, c := range f {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(c))
	}
}

func getF32s(b []byte) (f [3]float32) {
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return f
}

func finiteF32s(f [3]float32) bool {
	for _, c := range f {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
