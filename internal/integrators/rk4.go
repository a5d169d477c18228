package integrators

import (
	"github.com/san-kum/riccati/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical fourth-order Runge–Kutta scheme with a zero-order
// hold on the control over the step. Stage buffers are reused between
// calls, so an RK4 value must not be shared across goroutines.
type RK4 struct {
	k      [4]dynamo.State
	trial  dynamo.State
	weight [4]float64
}

func NewRK4() *RK4 {
	return &RK4{weight: [4]float64{1, 2, 2, 1}}
}

func (r *RK4) grow(n int) {
	if len(r.trial) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.trial = make(dynamo.State, n)
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.grow(len(x))

	offsets := [4]float64{0, dt / 2, dt / 2, dt}
	copy(r.k[0], sys.Derive(x, u, t))
	for s := 1; s < 4; s++ {
		floats.AddScaledTo(r.trial, x, offsets[s], r.k[s-1])
		copy(r.k[s], sys.Derive(r.trial, u, t+offsets[s]))
	}

	next := x.Clone()
	for s, k := range r.k {
		floats.AddScaled(next, dt*r.weight[s]/6, k)
	}
	return next
}
