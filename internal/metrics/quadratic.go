package metrics

import (
	"github.com/san-kum/riccati/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// QuadraticCost accumulates the LQR running cost
//
//	∫ xᵗQx + 2xᵗMu + uᵗRu dt
//
// with a left Riemann sum over the sampled trajectory. M may be nil.
type QuadraticCost struct {
	q, r, m mat.Matrix
	dt      float64
	sum     float64
}

func NewQuadraticCost(q, r, m mat.Matrix, dt float64) *QuadraticCost {
	return &QuadraticCost{q: q, r: r, m: m, dt: dt}
}

func (c *QuadraticCost) Name() string { return "quadratic_cost" }

func (c *QuadraticCost) Observe(x dynamo.State, u dynamo.Control, t float64) {
	xv := x.Vec()
	stage := mat.Inner(xv, c.q, xv)
	if uv := u.Vec(); uv != nil {
		stage += mat.Inner(uv, c.r, uv)
		if c.m != nil {
			stage += 2 * mat.Inner(xv, c.m, uv)
		}
	}
	c.sum += stage * c.dt
}

func (c *QuadraticCost) Value() float64 { return c.sum }

func (c *QuadraticCost) Reset() { c.sum = 0 }
