package integrators

import "github.com/san-kum/riccati/internal/dynamo"

// Euler is the explicit first-order scheme, kept for comparison runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return x.AddScaled(dt, sys.Derive(x, u, t))
}

// New returns the integrator registered under name, or nil.
func New(name string) dynamo.Integrator {
	switch name {
	case "rk4", "":
		return NewRK4()
	case "euler":
		return NewEuler()
	}
	return nil
}

// Names lists the accepted integrator names.
func Names() []string {
	return []string{"rk4", "euler"}
}
