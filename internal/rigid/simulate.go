package rigid

import (
	"fmt"

	"github.com/c-bruce/rocketsim/internal/sim"
)

// Object is anything that carries a rigid-body state history.
type Object interface {
	State() sim.State
	U() sim.Control
	MassProperties() MassProperties
	AppendState(sim.State)
}

// Simulate advances obj by one step of dt: it evaluates the state
// derivative from the object's current state and force vector, applies
// scheme and appends the result to the object's history.
func Simulate(obj Object, scheme sim.Scheme, dt float64) (sim.State, error) {
	state1, err := Step(obj, scheme, dt)
	if err != nil {
		return nil, err
	}
	obj.AppendState(state1)
	return state1, nil
}

// Step returns the state obj would reach after dt without touching its
// history.
func Step(obj Object, scheme sim.Scheme, dt float64) (sim.State, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", sim.ErrInvalidConfig, dt)
	}
	state0 := obj.State()
	stateDot, err := Derive(obj.MassProperties(), state0, obj.U())
	if err != nil {
		return nil, err
	}
	state1 := scheme(state0, stateDot, dt)
	if !state1.IsValid() {
		return nil, sim.ErrInvalidState
	}
	return state1, nil
}

// SemiImplicitEuler is the symplectic variant of the Euler scheme:
// velocities and rates are updated first and the new values are used to
// advance position and attitude.
func SemiImplicitEuler(x0, xDot sim.State, dt float64) sim.State {
	x1 := make(sim.State, len(x0))
	for i := range x0 {
		x1[i] = x0[i] + xDot[i]*dt
	}
	for i := 0; i < 3; i++ {
		x1[X+i] += xDot[U+i] * dt * dt
		x1[Phi+i] += xDot[PhiDot+i] * dt * dt
	}
	return x1
}
