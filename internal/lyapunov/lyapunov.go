// Package lyapunov solves the continuous Lyapunov equation
//
//	AᵗX + XA + Q = 0
//
// with the Bartels-Stewart method over a real Schur form.
//
// The solver does not check that A is stable. When eigenvalues of A nearly
// cancel pairwise (λᵢ + λⱼ ≈ 0) the shifted systems become ill-conditioned
// and the result is whatever the LU solves produce; callers own that risk.
package lyapunov

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular indicates that A and −Aᵗ share an eigenvalue, so the
// equation has no unique solution.
var ErrSingular = errors.New("lyapunov: singular shifted system")

// Solve returns X with AᵗX + XA = −Q.
func Solve(a, q mat.Matrix) (*mat.Dense, error) {
	n, c := a.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("lyapunov: A is %dx%d: %w", n, c, linalg.ErrInvalidDimension)
	}
	if err := linalg.RequireSquare("lyapunov: Q", q, n); err != nil {
		return nil, err
	}

	var rhs mat.Dense
	rhs.Scale(-1, q)
	return solveSchur(a.T(), &rhs)
}

// solveSchur returns X with MX + XMᵗ = rhs.
func solveSchur(m, rhs mat.Matrix) (*mat.Dense, error) {
	s, err := linalg.RealSchur(m)
	if err != nil {
		return nil, fmt.Errorf("lyapunov: %w", err)
	}

	q1 := linalg.Mul3(s.U.T(), rhs, s.U)
	y, err := backSubstitute(s.T, q1)
	if err != nil {
		return nil, err
	}
	return linalg.Mul3(s.U, y, s.U.T()), nil
}

// backSubstitute solves T Y + Y Tᵗ = Q for quasi upper triangular T,
// last column first. Column i satisfies
//
//	(T + T_ii I) y_i = q_i − Σ_{j>i} T_ij y_j
//
// and the two columns of a 2x2 diagonal block are solved together.
func backSubstitute(t, q *mat.Dense) (*mat.Dense, error) {
	n, _ := t.Dims()
	y := mat.NewDense(n, n, nil)

	// rhs returns q_i − Σ_{j>last} T_ij y_j.
	rhs := func(i, last int) *mat.VecDense {
		r := mat.NewVecDense(n, nil)
		r.CopyVec(q.ColView(i))
		for j := last + 1; j < n; j++ {
			if tij := t.At(i, j); tij != 0 {
				r.AddScaledVec(r, -tij, y.ColView(j))
			}
		}
		return r
	}

	for i := n - 1; i >= 0; {
		if i > 0 && t.At(i, i-1) != 0 {
			p := i - 1
			rp, rq := rhs(p, i), rhs(i, i)

			// [T + t_pp I, t_pq I; t_qp I, T + t_qq I] [y_p; y_i] = [r_p; r_i]
			sys := mat.NewDense(2*n, 2*n, nil)
			b := mat.NewVecDense(2*n, nil)
			for r := 0; r < n; r++ {
				for c := 0; c < n; c++ {
					sys.Set(r, c, t.At(r, c))
					sys.Set(n+r, n+c, t.At(r, c))
				}
				sys.Set(r, r, sys.At(r, r)+t.At(p, p))
				sys.Set(r, n+r, t.At(p, i))
				sys.Set(n+r, r, t.At(i, p))
				sys.Set(n+r, n+r, sys.At(n+r, n+r)+t.At(i, i))
				b.SetVec(r, rp.AtVec(r))
				b.SetVec(n+r, rq.AtVec(r))
			}

			var x mat.VecDense
			if err := solve(&x, sys, b); err != nil {
				return nil, fmt.Errorf("lyapunov: block %d: %w", p, err)
			}
			for r := 0; r < n; r++ {
				y.Set(r, p, x.AtVec(r))
				y.Set(r, i, x.AtVec(n+r))
			}
			i -= 2
			continue
		}

		shifted := mat.DenseCopyOf(t)
		for r := 0; r < n; r++ {
			shifted.Set(r, r, shifted.At(r, r)+t.At(i, i))
		}
		var x mat.VecDense
		if err := solve(&x, shifted, rhs(i, i)); err != nil {
			return nil, fmt.Errorf("lyapunov: column %d: %w", i, err)
		}
		y.SetCol(i, x.RawVector().Data)
		i--
	}
	return y, nil
}

// solve is an LU solve that tolerates ill-conditioning: a finite
// mat.Condition error still leaves a usable result in x.
func solve(x *mat.VecDense, a mat.Matrix, b mat.Vector) error {
	err := x.SolveVec(a, b)
	var cond mat.Condition
	if err == nil || (errors.As(err, &cond) && !math.IsInf(float64(cond), 1)) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrSingular, err)
}
