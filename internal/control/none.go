package control

import "github.com/c-bruce/rocketsim/internal/sim"

type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(x sim.State, t float64) sim.Control {
	return make(sim.Control, n.dim)
}

// Constant applies the same input at every step.
type Constant struct {
	U sim.Control
}

func NewConstant(u sim.Control) *Constant {
	return &Constant{U: u.Clone()}
}

func (c *Constant) Compute(x sim.State, t float64) sim.Control {
	return c.U.Clone()
}
