// Package control turns a linear plant and quadratic weights into a state
// feedback gain, and provides the controllers that apply it.
//
// [Synthesize] minimizes
//
//	J = ∫ xᵗQx + 2xᵗMu + uᵗRu dt   subject to   dx/dt = Fx + Gu
//
// by solving the associated algebraic Riccati equation with package care.
// The resulting [Design] carries the gain K and the Riccati solution X.
//
// Controllers implement [dynamo.Controller]:
//
//   - [LQR]: state feedback u = −K(x − target)
//   - [None]: zero input, for open-loop comparison runs
//
// # Usage
//
//	d, err := control.Synthesize(ctx, sys, control.Weights{Q: q, R: r}, control.DefaultOptions())
//	sim := dynamo.New(sys, integrators.NewRK4(), d.Controller(nil))
package control
