// Package care solves the continuous-time algebraic Riccati equation
//
//	XA + AᵗX − XBX + C = 0
//
// for symmetric positive semidefinite B and C by Newton-Kleinman iteration
// with exact line search.
//
// Each iteration solves one Lyapunov equation for the Newton direction H
// and picks the step t minimizing ‖R(X + tH)‖_F. The starting point comes
// from a shifted Lyapunov solve on the Schur form of A (see
// [Solver.InitialGuess]).
//
// # Usage
//
//	s := care.New(care.DefaultOptions())
//	sol, err := s.Solve(ctx, a, b, c)
//	if err != nil {
//	    return err
//	}
//	if !sol.Converged() {
//	    // sol.X is the last iterate; sol.Residual says how far off it is
//	}
//
// A [Solver] holds only options and may be shared between goroutines.
package care
