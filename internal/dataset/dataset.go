package dataset

import (
	"errors"
	"fmt"

	"github.com/san-kum/xyzprep/internal/xyz"
	"gonum.org/v1/gonum/mat"
)

// ErrShape indicates arrays whose dimensions do not fit the requested layout.
var ErrShape = errors.New("dataset: shape mismatch")

// Field selects which per-atom vector of a frame is stacked.
type Field int

const (
	Coords Field = iota
	Forces
)

func (f Field) String() string {
	if f == Forces {
		return "force"
	}
	return "coord"
}

func (f Field) rows(fr *xyz.Frame) [][3]float64 {
	if f == Forces {
		return fr.Forces
	}
	return fr.Coords
}

// Stack lays the frames out as a T x 3N matrix, one frame per row. It returns
// nil for zero frames or zero atoms.
func Stack(frames []xyz.Frame, field Field) (*mat.Dense, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	n := len(field.rows(&frames[0]))
	for i := range frames {
		if got := len(field.rows(&frames[i])); got != n {
			return nil, fmt.Errorf("%w: frame %d has %d %s rows, frame 1 has %d", ErrShape, i+1, got, field, n)
		}
	}
	if n == 0 {
		return nil, nil
	}

	data := make([]float64, 0, len(frames)*n*3)
	for i := range frames {
		for _, v := range field.rows(&frames[i]) {
			data = append(data, v[0], v[1], v[2])
		}
	}
	return mat.NewDense(len(frames), n*3, data), nil
}

// Group reshapes m in row-major order into groups rows. An empty input stays
// empty.
func Group(m *mat.Dense, groups int) (*mat.Dense, error) {
	if groups <= 0 {
		return nil, fmt.Errorf("%w: %d groups", ErrShape, groups)
	}
	if m == nil {
		return nil, nil
	}
	r, c := m.Dims()
	total := r * c
	if total%groups != 0 {
		return nil, fmt.Errorf("%w: cannot reshape %d elements into %d groups", ErrShape, total, groups)
	}
	return mat.NewDense(groups, total/groups, rawData(m)), nil
}

// GroupFrames stacks the field and reshapes it into exactly groups rows. When
// strict is set the frame count itself must equal groups, so that each row
// holds one frame.
func GroupFrames(frames []xyz.Frame, field Field, groups int, strict bool) (*mat.Dense, error) {
	if strict && len(frames) != groups {
		return nil, fmt.Errorf("%w: %d timesteps, reshape target needs exactly %d", ErrShape, len(frames), groups)
	}
	m, err := Stack(frames, field)
	if err != nil {
		return nil, err
	}
	return Group(m, groups)
}

// Ungroup recovers per-frame atom vectors from a grouped or stacked matrix.
func Ungroup(m *mat.Dense, natoms int) ([][][3]float64, error) {
	if natoms <= 0 {
		return nil, fmt.Errorf("%w: %d atoms per frame", ErrShape, natoms)
	}
	data := rawData(m)
	per := natoms * 3
	if len(data)%per != 0 {
		return nil, fmt.Errorf("%w: %d elements are not a whole number of %d-atom frames", ErrShape, len(data), natoms)
	}

	out := make([][][3]float64, 0, len(data)/per)
	for off := 0; off < len(data); off += per {
		frame := make([][3]float64, natoms)
		for a := range frame {
			copy(frame[a][:], data[off+a*3:off+a*3+3])
		}
		out = append(out, frame)
	}
	return out, nil
}

// Warning is a non-fatal shape problem found by Validate.
type Warning struct {
	Frame int
	Field Field
	Rows  int
	Want  int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at timestep %d has incorrect shape: (%d, 3), want (%d, 3)", w.Field, w.Frame, w.Rows, w.Want)
}

// Validate compares every frame's coordinate and force shape with natoms x 3.
func Validate(frames []xyz.Frame, natoms int) []Warning {
	var out []Warning
	for i := range frames {
		for _, f := range []Field{Coords, Forces} {
			if n := len(f.rows(&frames[i])); n != natoms {
				out = append(out, Warning{Frame: i + 1, Field: f, Rows: n, Want: natoms})
			}
		}
	}
	return out
}

// Boxes returns a T x 9 matrix of lattice vectors, or nil for an empty trajectory.
func Boxes(t *xyz.Trajectory) (*mat.Dense, error) {
	boxes, err := t.Boxes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if len(boxes) == 0 {
		return nil, nil
	}
	data := make([]float64, 0, len(boxes)*9)
	for _, b := range boxes {
		data = append(data, b[:]...)
	}
	return mat.NewDense(len(boxes), 9, data), nil
}

// Energies returns one energy per frame.
func Energies(t *xyz.Trajectory) ([]float64, error) {
	if t.Len() == 0 {
		return []float64{}, nil
	}
	if !t.HasEnergies() {
		return nil, fmt.Errorf("%w: %s has frames without energy", ErrShape, t.Source)
	}
	return t.Energies(), nil
}

// rawData copies m into a contiguous row-major slice.
func rawData(m *mat.Dense) []float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	raw := m.RawMatrix()
	if raw.Stride == c {
		return append([]float64(nil), raw.Data[:r*c]...)
	}
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}
