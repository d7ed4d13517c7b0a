package xyz

import "fmt"

// Box is a 3x3 periodic cell flattened row-major.
type Box [9]float64

// Frame is one simulation snapshot.
type Frame struct {
	// Natoms is the count declared on the frame's header line.
	Natoms int
	Coords [][3]float64
	Forces [][3]float64

	Energy    float64
	HasEnergy bool

	Box    Box
	HasBox bool
}

// Observed reports how many coordinate and force rows were actually read.
func (f *Frame) Observed() (atoms, forces int) {
	return len(f.Coords), len(f.Forces)
}

// FlatCoords returns the coordinates as x0 y0 z0 x1 ...
func (f *Frame) FlatCoords() []float64 {
	return flatten(f.Coords)
}

// FlatForces returns the forces as fx0 fy0 fz0 fx1 ...
func (f *Frame) FlatForces() []float64 {
	return flatten(f.Forces)
}

func flatten(v [][3]float64) []float64 {
	out := make([]float64, 0, len(v)*3)
	for _, r := range v {
		out = append(out, r[0], r[1], r[2])
	}
	return out
}

// Trajectory is the ordered list of frames read from one file.
type Trajectory struct {
	Source string
	Frames []Frame
}

func (t *Trajectory) Len() int {
	return len(t.Frames)
}

// Energies returns the energy of every frame. Frames without an energy
// contribute nothing, so callers that need one value per frame should check
// HasEnergies first.
func (t *Trajectory) Energies() []float64 {
	out := make([]float64, 0, len(t.Frames))
	for _, f := range t.Frames {
		if f.HasEnergy {
			out = append(out, f.Energy)
		}
	}
	return out
}

// HasEnergies is true when every frame carries an energy.
func (t *Trajectory) HasEnergies() bool {
	for _, f := range t.Frames {
		if !f.HasEnergy {
			return false
		}
	}
	return len(t.Frames) > 0
}

// Boxes returns the box of every frame in order. It fails on the first frame
// that has no lattice.
func (t *Trajectory) Boxes() ([]Box, error) {
	out := make([]Box, 0, len(t.Frames))
	for i, f := range t.Frames {
		if !f.HasBox {
			return nil, fmt.Errorf("frame %d has no lattice", i+1)
		}
		out = append(out, f.Box)
	}
	return out, nil
}

// Uniform returns the atom count shared by every frame.
func (t *Trajectory) Uniform() (int, error) {
	if len(t.Frames) == 0 {
		return 0, nil
	}
	n := len(t.Frames[0].Coords)
	for i, f := range t.Frames {
		if len(f.Coords) != n || len(f.Forces) != n {
			return 0, fmt.Errorf("frame %d has %d atoms and %d forces, frame 1 has %d",
				i+1, len(f.Coords), len(f.Forces), n)
		}
	}
	return n, nil
}

// CountMismatch describes a frame whose body disagrees with its header.
type CountMismatch struct {
	Frame    int
	Declared int
	Atoms    int
	Forces   int
}

func (m CountMismatch) String() string {
	return fmt.Sprintf("timestep %d declares %d atoms, read %d atoms and %d forces",
		m.Frame, m.Declared, m.Atoms, m.Forces)
}

// CheckCounts lists frames whose atom or force rows differ from the declared count.
func (t *Trajectory) CheckCounts() []CountMismatch {
	var out []CountMismatch
	for i, f := range t.Frames {
		a, fc := f.Observed()
		if a != f.Natoms || fc != f.Natoms {
			out = append(out, CountMismatch{Frame: i + 1, Declared: f.Natoms, Atoms: a, Forces: fc})
		}
	}
	return out
}
