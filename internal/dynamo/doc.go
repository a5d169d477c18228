// Package dynamo provides the simulation primitives used to check a
// synthesized feedback law in closed loop.
//
//   - [State], [Control]: plain vectors
//   - [System]: ODE dx/dt = f(x, u, t)
//   - [Integrator]: one fixed step of a numerical scheme
//   - [Controller]: state feedback
//   - [Simulator]: runs a system under a controller and collects metrics
//
// # Example
//
//	sys, _ := linsys.New(f, g)
//	sim := dynamo.New(sys, integrators.NewRK4(), design.Controller(nil))
//	res, _ := sim.Run(ctx, x0, dynamo.DefaultConfig())
//
// Simulator instances are not safe for concurrent use.
package dynamo
