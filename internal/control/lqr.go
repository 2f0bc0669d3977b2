package control

import (
	"gonum.org/v1/gonum/mat"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// StateFeedback is the linear control law u = -K·(x - target).
type StateFeedback struct {
	K      *mat.Dense
	Target sim.State
}

func NewStateFeedback(k *mat.Dense, target sim.State) *StateFeedback {
	return &StateFeedback{K: k, Target: target}
}

func (s *StateFeedback) Compute(x sim.State, t float64) sim.Control {
	rows, cols := s.K.Dims()
	e := make([]float64, cols)
	for j := range e {
		if j < len(x) {
			e[j] = x[j]
		}
		if j < len(s.Target) {
			e[j] -= s.Target[j]
		}
	}

	var u mat.VecDense
	u.MulVec(s.K, mat.NewVecDense(cols, e))
	u.ScaleVec(-1, &u)

	out := make(sim.Control, rows)
	copy(out, u.RawVector().Data)
	return out
}

// NewAttitudeFeedback returns a PD attitude regulator for a rigid body:
// each moment is -kp·I·(angle - target) - kd·I·rate, which gives every
// axis the same closed-loop response regardless of its inertia.
func NewAttitudeFeedback(mp rigid.MassProperties, target [3]float64, kp, kd float64) *StateFeedback {
	k := mat.NewDense(rigid.ControlDim, rigid.StateDim, nil)
	inertia := [3]float64{mp.Ix, mp.Iy, mp.Iz}
	for i := 0; i < 3; i++ {
		k.Set(rigid.Mx+i, rigid.Phi+i, kp*inertia[i])
		k.Set(rigid.Mx+i, rigid.PhiDot+i, kd*inertia[i])
	}

	goal := make(sim.State, rigid.StateDim)
	copy(goal[rigid.Phi:], target[:])
	return NewStateFeedback(k, goal)
}
