package rigid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/c-bruce/rocketsim/internal/sim"
)

// Propagate returns the exact state after t seconds under a constant
// force vector u. The input is folded into an augmented 18-state system
//
//	d/dt [x; u] = [A B; 0 0]·[x; u]
//
// whose solution is exp(M·t)·[x0; u].
func Propagate(mp MassProperties, x0 sim.State, u sim.Control, t float64) (sim.State, error) {
	if err := mp.Validate(); err != nil {
		return nil, err
	}
	if err := x0.CheckDim(StateDim); err != nil {
		return nil, err
	}
	if len(u) != ControlDim {
		return nil, fmt.Errorf("%w: force vector has %d elements, want %d", sim.ErrDimensionMismatch, len(u), ControlDim)
	}

	const n = StateDim + ControlDim
	m := mat.NewDense(n, n, nil)
	m.Slice(0, StateDim, 0, StateDim).(*mat.Dense).Copy(stateMatrix)
	m.Slice(0, StateDim, StateDim, n).(*mat.Dense).Copy(InputMatrix(mp))
	m.Scale(t, m)

	var phi mat.Dense
	phi.Exp(m)

	z := make([]float64, n)
	copy(z, x0)
	copy(z[StateDim:], u)

	var out mat.VecDense
	out.MulVec(&phi, mat.NewVecDense(n, z))

	x := make(sim.State, StateDim)
	copy(x, out.RawVector().Data[:StateDim])
	return x, nil
}

// Exact is an integrator that advances the rigid-body model with its
// closed-form solution, holding the input constant over the step.
type Exact struct{}

func NewExact() *Exact { return &Exact{} }

func (e *Exact) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	model, ok := dyn.(*Model)
	if !ok {
		panic(fmt.Sprintf("rigid: exact integrator needs *rigid.Model, got %T", dyn))
	}
	next, err := Propagate(model.props, x, u, dt)
	if err != nil {
		panic(err)
	}
	return next
}
