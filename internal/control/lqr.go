package control

import (
	"github.com/san-kum/riccati/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// LQR applies u = −K(x − target). A nil target regulates to the origin.
type LQR struct {
	K      *mat.Dense
	Target dynamo.State
}

func NewLQR(k mat.Matrix, target dynamo.State) *LQR {
	return &LQR{K: mat.DenseCopyOf(k), Target: target}
}

// Controller wraps the design gain in an LQR controller.
func (d *Design) Controller(target dynamo.State) *LQR {
	return NewLQR(d.K, target)
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	m, _ := l.K.Dims()
	e := x.Clone()
	if l.Target != nil {
		e = x.Sub(l.Target)
	}
	u := make(dynamo.Control, m)
	uv := mat.NewVecDense(m, u)
	uv.MulVec(l.K, e.Vec())
	uv.ScaleVec(-1, uv)
	return u
}
