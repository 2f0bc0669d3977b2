package integrators

import "github.com/c-bruce/rocketsim/internal/sim"

// EulerScheme is the explicit first-order update state1 = state0 + stateDot·dt.
func EulerScheme(x0, xDot sim.State, dt float64) sim.State {
	result := make(sim.State, len(x0))
	for i := range x0 {
		result[i] = x0[i] + xDot[i]*dt
	}
	return result
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	return EulerScheme(x, dyn.Derivative(x, u, t), dt)
}
