// Package sim provides the state-space primitives shared by every model in
// rocketsim.
//
// The package defines the fundamental interfaces and types:
//
//   - [State]: vector representing a model state
//   - [Dynamics]: interface for state-space models (dX/dt = f(X, u, t))
//   - [Scheme]: explicit update rule state1 = scheme(state0, stateDot, dt)
//   - [Integrator]: numerical integrator interface
//   - [Controller]: feedback controller interface
//   - [Simulator]: orchestrates single-model runs
//
// # Example
//
//	model, _ := rigid.NewModel(rigid.MassProperties{Mass: 1, Ix: 1, Iy: 1, Iz: 1})
//	s := sim.New(model, integrators.NewEuler(), control.NewConstant(u))
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run one Simulator per goroutine.
package sim
