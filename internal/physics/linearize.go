package physics

import (
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/linsys"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// ForProblem returns the nonlinear model behind a built-in problem name,
// or nil when the problem is linear only.
func ForProblem(name string) dynamo.System {
	switch name {
	case "pendulum":
		return NewPendulum()
	case "cartpole":
		return NewCartPole()
	case "spring_mass":
		return NewSpringMass()
	}
	return nil
}

// Linearize returns F = ∂f/∂x and G = ∂f/∂u at (x0, u0).
func Linearize(sys dynamo.System, x0 dynamo.State, u0 dynamo.Control) (*linsys.System, error) {
	n, m := sys.StateDim(), sys.ControlDim()
	settings := &fd.JacobianSettings{Formula: fd.Central}

	f := mat.NewDense(n, n, nil)
	fd.Jacobian(f, func(y, x []float64) {
		copy(y, sys.Derive(x, u0, 0))
	}, x0, settings)

	g := mat.NewDense(n, m, nil)
	fd.Jacobian(g, func(y, u []float64) {
		copy(y, sys.Derive(x0, u, 0))
	}, u0, settings)

	return linsys.New(f, g)
}
