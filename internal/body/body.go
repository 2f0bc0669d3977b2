// Package body holds the bookkeeping for celestial bodies and vessels:
// their state history, the force vector acting on them and their mass
// properties.
package body

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

type Kind string

const (
	KindCelestial Kind = "celestial"
	KindVessel    Kind = "vessel"
	KindRigid     Kind = "rigid"
)

// Body is the state history and applied force vector shared by every
// simulated object. The last element of the history is the current state.
type Body struct {
	Name   string
	states []sim.State
	u      sim.Control
}

func newBody(name string) Body {
	return Body{
		Name:   name,
		states: []sim.State{make(sim.State, rigid.StateDim)},
		u:      make(sim.Control, rigid.ControlDim),
	}
}

func (b *Body) State() sim.State { return b.states[len(b.states)-1] }

// States returns the retained history, oldest first.
func (b *Body) States() []sim.State { return b.states }

func (b *Body) AppendState(s sim.State) { b.states = append(b.states, s) }

// SetState replaces the current state.
func (b *Body) SetState(s sim.State) error {
	if err := s.CheckDim(rigid.StateDim); err != nil {
		return fmt.Errorf("%s: %w", b.Name, err)
	}
	b.states[len(b.states)-1] = s.Clone()
	return nil
}

func (b *Body) snapshot() Body {
	return Body{Name: b.Name, states: []sim.State{b.State().Clone()}, u: b.u.Clone()}
}

// Truncate drops all history except the current state.
func (b *Body) Truncate() {
	b.states = []sim.State{b.State()}
}

func (b *Body) U() sim.Control { return b.u }

func (b *Body) SetU(u sim.Control) error {
	if len(u) != rigid.ControlDim {
		return fmt.Errorf("%s: %w: force vector has %d elements", b.Name, sim.ErrDimensionMismatch, len(u))
	}
	b.u = u.Clone()
	return nil
}

// ClearForces zeroes the force vector ahead of a new accumulation.
func (b *Body) ClearForces() {
	b.u = make(sim.Control, rigid.ControlDim)
}

func (b *Body) AddForce(f mgl64.Vec3) {
	b.u[rigid.Fx] += f[0]
	b.u[rigid.Fy] += f[1]
	b.u[rigid.Fz] += f[2]
}

func (b *Body) AddMoment(m mgl64.Vec3) {
	b.u[rigid.Mx] += m[0]
	b.u[rigid.My] += m[1]
	b.u[rigid.Mz] += m[2]
}

func (b *Body) set(i int, v [3]float64) {
	s := b.State().Clone()
	copy(s[i:i+3], v[:])
	b.states[len(b.states)-1] = s
}

func (b *Body) SetVelocity(v mgl64.Vec3)    { b.set(rigid.U, v) }
func (b *Body) SetPosition(p mgl64.Vec3)    { b.set(rigid.X, p) }
func (b *Body) SetAttitudeDot(w mgl64.Vec3) { b.set(rigid.PhiDot, w) }

// SetAttitude sets the Euler angles (φ, θ, ψ).
func (b *Body) SetAttitude(a mgl64.Vec3) { b.set(rigid.Phi, a) }

func (b *Body) Velocity() mgl64.Vec3 { return rigid.Velocity(b.State()) }
func (b *Body) Position() mgl64.Vec3 { return rigid.Position(b.State()) }
func (b *Body) Frame() rigid.Frame   { return rigid.FrameOf(b.State()) }
