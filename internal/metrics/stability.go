package metrics

import (
	"math"

	"github.com/san-kum/xyzprep/internal/xyz"
)

// MaxForce is the largest per-atom force magnitude seen.
type MaxForce struct {
	name string
	max  float64
}

func NewMaxForce() *MaxForce {
	return &MaxForce{name: "force_max"}
}

func (m *MaxForce) Name() string { return m.name }

func (m *MaxForce) Observe(index int, f *xyz.Frame) {
	for _, v := range f.Forces {
		m.max = math.Max(m.max, math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]))
	}
}

func (m *MaxForce) Value() float64 { return m.max }

func (m *MaxForce) Reset() { m.max = 0 }

// Consistency is the fraction of frames whose atom and force lines match
// the declared count.
type Consistency struct {
	name       string
	violations int
	samples    int
}

func NewConsistency() *Consistency {
	return &Consistency{name: "count_consistency"}
}

func (c *Consistency) Name() string {
	return c.name
}

func (c *Consistency) Observe(index int, f *xyz.Frame) {
	c.samples++
	atoms, forces := f.Observed()
	if atoms != f.Natoms || forces != f.Natoms {
		c.violations++
	}
}

func (c *Consistency) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Consistency) Reset() {
	c.violations = 0
	c.samples = 0
}
