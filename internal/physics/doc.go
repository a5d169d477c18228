// Package physics provides nonlinear plant models whose linearizations are
// the built-in LQR problems.
//
// Each model implements [dynamo.System], so a gain designed on the
// linearized plant can be checked against the full dynamics:
//
//	plant := physics.ForProblem("cartpole")
//	sim := dynamo.New(plant, integrators.NewRK4(), design.Controller(nil))
//
// [Linearize] recovers (F, G) at an operating point by central finite
// differences. Models are [Tunable], so a design can be tested against a
// plant whose parameters differ from the ones it was built for.
package physics
