package rigid

// Indices into a rigid-body state vector.
const (
	U = iota
	V
	W
	X
	Y
	Z
	PhiDot
	ThetaDot
	PsiDot
	Phi
	Theta
	Psi

	StateDim = 12
)

// Indices into a generalised force vector.
const (
	Fx = iota
	Fy
	Fz
	Mx
	My
	Mz

	ControlDim = 6
)

// Velocity returns the linear velocity part of a state.
func Velocity(s []float64) [3]float64 { return [3]float64{s[U], s[V], s[W]} }

// Position returns the position part of a state.
func Position(s []float64) [3]float64 { return [3]float64{s[X], s[Y], s[Z]} }

// AngularRate returns the Euler angle rates of a state.
func AngularRate(s []float64) [3]float64 { return [3]float64{s[PhiDot], s[ThetaDot], s[PsiDot]} }

// Attitude returns the Euler angles (φ, θ, ψ) of a state.
func Attitude(s []float64) [3]float64 { return [3]float64{s[Phi], s[Theta], s[Psi]} }
