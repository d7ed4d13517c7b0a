package metrics

import (
	"math"

	"github.com/san-kum/xyzprep/internal/xyz"
	"gonum.org/v1/gonum/stat"
)

// MeanEnergy is the average energy over frames that carry one.
type MeanEnergy struct {
	name     string
	energies []float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "energy_mean"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(index int, f *xyz.Frame) {
	if !f.HasEnergy {
		return
	}
	e.energies = append(e.energies, f.Energy)
}

func (e *MeanEnergy) Value() float64 {
	if len(e.energies) == 0 {
		return 0
	}
	return stat.Mean(e.energies, nil)
}

// StdDev is the sample standard deviation of the observed energies.
func (e *MeanEnergy) StdDev() float64 {
	if len(e.energies) < 2 {
		return 0
	}
	return stat.StdDev(e.energies, nil)
}

func (e *MeanEnergy) Reset() {
	e.energies = e.energies[:0]
}

// EnergyDrift is the largest relative departure from the first energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(index int, f *xyz.Frame) {
	if !f.HasEnergy {
		return
	}
	if e.samples == 0 {
		e.initialEnergy = f.Energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(f.Energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
