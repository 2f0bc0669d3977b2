// Package rigid implements the linear 12-state rigid-body model.
//
// A state vector is laid out as
//
//	[u, v, w, x, y, z, φ̇, θ̇, ψ̇, φ, θ, ψ]
//
// (linear velocity, position, angular rate, Euler angles) and the
// generalised force as [Fx, Fy, Fz, Mx, My, Mz]. The model is the
// constant-coefficient system
//
//	stateDot = A·state + B·U
//
// where A only couples position to velocity and orientation to angular
// rate, and B scales forces by 1/m and moments by 1/I per axis.
package rigid
