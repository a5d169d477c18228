// Package linsys holds continuous-time linear plants dx/dt = Fx + Gu.
package linsys

import (
	"fmt"

	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// System is the pair (F, G): F is n×n, G is n×m with n, m ≥ 1.
// Its matrices are private copies and are never mutated.
type System struct {
	F *mat.Dense
	G *mat.Dense
}

// New copies f and g after checking their shapes.
func New(f, g mat.Matrix) (*System, error) {
	n, c := f.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("linsys: F is %dx%d: %w", n, c, linalg.ErrInvalidDimension)
	}
	gr, m := g.Dims()
	if m == 0 || gr != n {
		return nil, fmt.Errorf("linsys: G is %dx%d, want %d rows: %w", gr, m, n, linalg.ErrInvalidDimension)
	}
	return &System{F: mat.DenseCopyOf(f), G: mat.DenseCopyOf(g)}, nil
}

// FromRows builds a system from row-major slices, as read from config.
func FromRows(f, g [][]float64) (*System, error) {
	fm, err := linalg.FromRows(f)
	if err != nil {
		return nil, fmt.Errorf("linsys: F: %w", err)
	}
	gm, err := linalg.FromRows(g)
	if err != nil {
		return nil, fmt.Errorf("linsys: G: %w", err)
	}
	return New(fm, gm)
}

// Dims returns the state and input dimensions.
func (s *System) Dims() (n, m int) {
	n, _ = s.F.Dims()
	_, m = s.G.Dims()
	return n, m
}

// ControllabilityMatrix returns [G, FG, …, F^(n−1)G], an n×nm matrix.
func (s *System) ControllabilityMatrix() *mat.Dense {
	n, m := s.Dims()
	out := mat.NewDense(n, n*m, nil)
	block := mat.DenseCopyOf(s.G)
	for k := 0; k < n; k++ {
		out.Slice(0, n, k*m, (k+1)*m).(*mat.Dense).Copy(block)
		if k < n-1 {
			block = linalg.Mul(s.F, block)
		}
	}
	return out
}

// IsControllable reports whether the controllability matrix has full
// row rank, using the default SVD rank tolerance.
func (s *System) IsControllable() bool {
	n, _ := s.Dims()
	return linalg.Rank(s.ControllabilityMatrix(), 0) == n
}

// Derive returns Fx + Gu, so a System can be simulated directly.
func (s *System) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n, _ := s.Dims()
	out := make(dynamo.State, n)
	dx := mat.NewVecDense(n, out)
	dx.MulVec(s.F, x.Vec())
	if uv := u.Vec(); uv != nil {
		var gu mat.VecDense
		gu.MulVec(s.G, uv)
		dx.AddVec(dx, &gu)
	}
	return out
}

func (s *System) StateDim() int {
	n, _ := s.Dims()
	return n
}

func (s *System) ControlDim() int {
	_, m := s.Dims()
	return m
}
