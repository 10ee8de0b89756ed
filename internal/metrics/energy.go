package metrics

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/world"
)

// EnergyDrift tracks the largest relative departure of total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *world.World, p world.Params, t float64) {
	energy := w.TotalEnergy(p)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyIncreases counts steps where total energy rose by more than
// tolerance. With non-negative damping and no pointer spring it should stay
// at zero.
type EnergyIncreases struct {
	name      string
	tolerance float64
	last      float64
	samples   int
	increases int
}

func NewEnergyIncreases(tolerance float64) *EnergyIncreases {
	return &EnergyIncreases{name: "energy_increases", tolerance: tolerance}
}

func (e *EnergyIncreases) Name() string { return e.name }

func (e *EnergyIncreases) Observe(w *world.World, p world.Params, t float64) {
	energy := w.TotalEnergy(p)
	if e.samples > 0 && energy > e.last+e.tolerance {
		e.increases++
	}
	e.last = energy
	e.samples++
}

func (e *EnergyIncreases) Value() float64 { return float64(e.increases) }

func (e *EnergyIncreases) Reset() {
	e.last = 0
	e.samples = 0
	e.increases = 0
}
