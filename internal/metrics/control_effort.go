package metrics

import (
	"math"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// ControlEffort is the mean magnitude of the applied force over a run.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x sim.State, u sim.Control, t float64) {
	c.sum += norm3(u, rigid.Fx)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Impulse integrates the force magnitude over time (N·s). Each sample is
// held until the next one.
type Impulse struct {
	total float64
	prevF float64
	prevT float64
	first bool
}

func NewImpulse() *Impulse { return &Impulse{first: true} }

func (i *Impulse) Name() string { return "impulse" }

func (i *Impulse) Observe(x sim.State, u sim.Control, t float64) {
	if !i.first {
		i.total += i.prevF * (t - i.prevT)
	}
	i.first = false
	i.prevF = norm3(u, rigid.Fx)
	i.prevT = t
}

func (i *Impulse) Value() float64 { return i.total }

func (i *Impulse) Reset() {
	i.total = 0
	i.first = true
}

func norm3(v []float64, from int) float64 {
	if len(v) < from+3 {
		return 0
	}
	return math.Sqrt(v[from]*v[from] + v[from+1]*v[from+1] + v[from+2]*v[from+2])
}
