// Package control provides feedback controllers for rigid bodies.
//
// Controllers implement the [sim.Controller] interface to compute the
// generalised force [Fx, Fy, Fz, Mx, My, Mz] from the current state:
//
//   - [PID]: scalar Proportional-Integral-Derivative loop
//   - [AttitudeHold]: three PID loops driving the Euler angles to a target
//   - [StateFeedback]: linear full-state feedback u = -K(x - target)
//   - [Constant], [None]: fixed inputs
//
// # Usage
//
//	hold := control.NewAttitudeHold(mgl64.Vec3{0, -math.Pi / 2, 0}, 2e5, 0, 4e5)
//	s := sim.New(model, integrators.NewEuler(), hold)
//	// Controller.Compute is called each timestep
package control
