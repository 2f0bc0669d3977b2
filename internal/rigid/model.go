package rigid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/c-bruce/rocketsim/internal/sim"
)

// MassProperties holds the mass and principal moments of inertia of a body.
type MassProperties struct {
	Mass float64 `json:"mass" yaml:"mass"`
	Ix   float64 `json:"ix" yaml:"ix"`
	Iy   float64 `json:"iy" yaml:"iy"`
	Iz   float64 `json:"iz" yaml:"iz"`
}

func (mp MassProperties) Validate() error {
	if mp.Mass <= 0 || mp.Ix <= 0 || mp.Iy <= 0 || mp.Iz <= 0 {
		return fmt.Errorf("%w: m=%g Ix=%g Iy=%g Iz=%g", sim.ErrInvalidMass, mp.Mass, mp.Ix, mp.Iy, mp.Iz)
	}
	return nil
}

var stateMatrix = func() *mat.Dense {
	a := mat.NewDense(StateDim, StateDim, nil)
	for i := 0; i < 3; i++ {
		a.Set(X+i, U+i, 1)
		a.Set(Phi+i, PhiDot+i, 1)
	}
	return a
}()

// StateMatrix returns a copy of A.
func StateMatrix() *mat.Dense {
	return mat.DenseCopyOf(stateMatrix)
}

// InputMatrix returns B for the given mass properties.
func InputMatrix(mp MassProperties) *mat.Dense {
	b := mat.NewDense(StateDim, ControlDim, nil)
	for i := 0; i < 3; i++ {
		b.Set(U+i, Fx+i, 1/mp.Mass)
	}
	b.Set(PhiDot, Mx, 1/mp.Ix)
	b.Set(ThetaDot, My, 1/mp.Iy)
	b.Set(PsiDot, Mz, 1/mp.Iz)
	return b
}

// Model is a rigid body with fixed mass properties. It implements
// sim.Dynamics.
type Model struct {
	props MassProperties
	b     *mat.Dense
}

func NewModel(mp MassProperties) (*Model, error) {
	if err := mp.Validate(); err != nil {
		return nil, err
	}
	return &Model{props: mp, b: InputMatrix(mp)}, nil
}

func (m *Model) MassProperties() MassProperties { return m.props }

func (m *Model) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return derive(m.b, x, u)
}

func (m *Model) StateDim() int   { return StateDim }
func (m *Model) ControlDim() int { return ControlDim }

// Derive computes A·state + B·U.
func Derive(mp MassProperties, state sim.State, u sim.Control) (sim.State, error) {
	if err := mp.Validate(); err != nil {
		return nil, err
	}
	if err := state.CheckDim(StateDim); err != nil {
		return nil, err
	}
	if len(u) != ControlDim {
		return nil, fmt.Errorf("%w: force vector has %d elements, want %d", sim.ErrDimensionMismatch, len(u), ControlDim)
	}
	return derive(InputMatrix(mp), state, u), nil
}

func derive(b *mat.Dense, x sim.State, u sim.Control) sim.State {
	var ax, bu mat.VecDense
	ax.MulVec(stateMatrix, mat.NewVecDense(StateDim, x))
	bu.MulVec(b, mat.NewVecDense(ControlDim, u))
	ax.AddVec(&ax, &bu)
	return sim.State(ax.RawVector().Data)
}
