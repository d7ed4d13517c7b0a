package metrics

import "github.com/san-kum/xyzprep/internal/xyz"

// Metric accumulates a scalar over the frames of a trajectory.
type Metric interface {
	Name() string
	Observe(index int, f *xyz.Frame)
	Value() float64
	Reset()
}

// Set fans frames out to several metrics. It satisfies xyz.Observer, but
// energies are attached only after a parse completes, so energy metrics
// need Observe on the finished trajectory.
type Set []Metric

func (s Set) OnFrame(index int, f *xyz.Frame) {
	for _, m := range s {
		m.Observe(index, f)
	}
}

// Values returns name/value pairs in set order.
func (s Set) Values() (names []string, values []float64) {
	for _, m := range s {
		names = append(names, m.Name())
		values = append(values, m.Value())
	}
	return names, values
}

// Observe replays every frame of traj through s.
func (s Set) Observe(traj *xyz.Trajectory) {
	for i := range traj.Frames {
		s.OnFrame(i, &traj.Frames[i])
	}
}

// Default is the set reported by inspect.
func Default() Set {
	return Set{NewMeanEnergy(), NewEnergyDrift(), NewMaxForce(), NewConsistency()}
}
