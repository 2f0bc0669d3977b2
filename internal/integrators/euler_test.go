package integrators

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/c-bruce/rocketsim/internal/sim"
)

func TestEulerScheme(t *testing.T) {
	tests := []struct {
		name string
		x0   sim.State
		xDot sim.State
		dt   float64
	}{
		{"zero derivative", sim.State{1, 2, 3}, sim.State{0, 0, 0}, 0.5},
		{"unit step", sim.State{1, -1}, sim.State{2, 3}, 1},
		{"fractional step", sim.State{0.25, 4, -8}, sim.State{-1, 0.5, 16}, 0.125},
		{"rigid body", make(sim.State, 12), sim.State{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EulerScheme(tt.x0, tt.xDot, tt.dt)
			if len(got) != len(tt.x0) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.x0))
			}
			for i := range got {
				if want := tt.x0[i] + tt.xDot[i]*tt.dt; !scalar.EqualWithinAbsOrRel(got[i], want, 1e-12, 1e-12) {
					t.Errorf("[%d] = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestEulerSchemeDoesNotMutateInput(t *testing.T) {
	x0 := sim.State{1, 2}
	EulerScheme(x0, sim.State{1, 1}, 1)
	if x0[0] != 1 || x0[1] != 2 {
		t.Errorf("input mutated: %v", x0)
	}
}

type constantVelocity struct{}

func (c *constantVelocity) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return sim.State{u[0]}
}
func (c *constantVelocity) StateDim() int   { return 1 }
func (c *constantVelocity) ControlDim() int { return 1 }

func TestEulerStepMatchesScheme(t *testing.T) {
	integ := NewEuler()
	x := sim.State{0}
	for i := 0; i < 10; i++ {
		x = integ.Step(&constantVelocity{}, x, sim.Control{2}, float64(i), 0.5)
	}
	if x[0] != 10 {
		t.Errorf("expected 10, got %v", x[0])
	}
}
