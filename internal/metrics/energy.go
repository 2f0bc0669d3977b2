package metrics

import (
	"math"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// KineticEnergy computes the translational plus rotational kinetic
// energy of a rigid body.
type KineticEnergy struct {
	Props rigid.MassProperties
}

func (k KineticEnergy) Energy(x sim.State) float64 {
	v := norm3(x, rigid.U)
	p := k.Props
	rot := p.Ix*x[rigid.PhiDot]*x[rigid.PhiDot] + p.Iy*x[rigid.ThetaDot]*x[rigid.ThetaDot] + p.Iz*x[rigid.PsiDot]*x[rigid.PsiDot]
	return 0.5*p.Mass*v*v + 0.5*rot
}

// Energy is the mean kinetic energy over a run.
type Energy struct {
	name        string
	ec          sim.EnergyComputer
	samples     int
	totalEnergy float64
}

func NewEnergy(mp rigid.MassProperties) *Energy {
	return &Energy{
		name: "energy",
		ec:   KineticEnergy{Props: mp},
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, u sim.Control, t float64) {
	if len(x) != rigid.StateDim {
		return
	}
	e.totalEnergy += e.ec.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of a conserved quantity
// from its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	ec            sim.EnergyComputer
}

func NewEnergyDrift(ec sim.EnergyComputer) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		ec:   ec,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x sim.State, u sim.Control, t float64) {
	energy := e.ec.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
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
	e.maxDrift = 0
	e.samples = 0
}
