package control

import (
	"context"
	"fmt"

	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/linalg"
	"github.com/san-kum/riccati/internal/linsys"
	"gonum.org/v1/gonum/mat"
)

// Weights are the cost matrices: Q is n×n, R is m×m and the cross term M
// is n×m. A nil M means no cross term.
type Weights struct {
	Q mat.Matrix
	R mat.Matrix
	M mat.Matrix
}

// Riccati is the equation XA + AᵗX − XBX + C = 0 handed to the solver.
type Riccati struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
}

// Design is a synthesized regulator.
type Design struct {
	// K is the m×n feedback gain, u = −Kx.
	K *mat.Dense
	// X is the stabilizing Riccati solution.
	X *mat.Dense

	Problem  Riccati
	Solution *care.Solution
	// Warnings holds non-fatal conditions: ErrSingularInput and
	// care.ErrConvergenceNotReached.
	Warnings []error
}

// Converged reports whether the Riccati iteration met its tolerance.
func (d *Design) Converged() bool {
	return d.Solution.Converged()
}

// Synthesize computes the LQR gain for sys under w.
//
// With R⁺ the pseudo-inverse of R the Riccati data are
//
//	A = F − MR⁺Gᵗ
//	B = GR⁺Gᵗ
//	C = MR⁺M + Q
//
// and the gain is K = R⁺(GᵗX + Mᵗ). The product MR⁺M is only defined for
// a zero M or a square plant (n = m); other shapes with a non-zero M
// return linalg.ErrInvalidDimension. Controllability is not checked.
func Synthesize(ctx context.Context, sys *linsys.System, w Weights, opts Options) (*Design, error) {
	n, m := sys.Dims()
	if err := linalg.RequireSquare("control: Q", w.Q, n); err != nil {
		return nil, err
	}
	if err := linalg.RequireSquare("control: R", w.R, m); err != nil {
		return nil, err
	}
	cross := w.M
	if cross == nil {
		cross = mat.NewDense(n, m, nil)
	}
	if err := linalg.RequireShape("control: M", cross, n, m); err != nil {
		return nil, err
	}

	log := opts.Logger
	d := &Design{}

	rPinv, rank := linalg.PinvRank(w.R, opts.PinvTolerance)
	if rank < m {
		d.Warnings = append(d.Warnings, fmt.Errorf("%w: rank %d of %d", ErrSingularInput, rank, m))
		log.Warn().Int("rank", rank).Int("inputs", m).Msg("R is singular, using truncated pseudo-inverse")
	}

	if opts.Check {
		if err := checkWeighting(w.Q, cross, rPinv, opts.PositivityTolerance); err != nil {
			return nil, err
		}
	}

	problem, err := riccatiData(sys, w.Q, cross, rPinv)
	if err != nil {
		return nil, err
	}
	d.Problem = *problem

	sol, err := care.New(opts.CARE).Solve(ctx, problem.A, problem.B, problem.C)
	if err != nil {
		return nil, fmt.Errorf("control: riccati: %w", err)
	}
	if err := sol.Err(); err != nil {
		d.Warnings = append(d.Warnings, err)
	}
	d.Solution = sol
	d.X = sol.X

	var gx mat.Dense
	gx.Mul(sys.G.T(), sol.X)
	gx.Add(&gx, cross.T())
	d.K = linalg.Mul(rPinv, &gx)

	log.Info().
		Int("states", n).
		Int("inputs", m).
		Str("status", sol.Status.String()).
		Int("iterations", sol.Iterations).
		Float64("residual", sol.Residual).
		Msg("lqr gain synthesized")
	return d, nil
}

// checkWeighting rejects Q − MR⁺Mᵗ with an eigenvalue whose real part is
// below −tol.
func checkWeighting(q, cross, rPinv mat.Matrix, tol float64) error {
	var w mat.Dense
	w.Sub(q, linalg.Mul3(cross, rPinv, cross.T()))
	eig, err := linalg.Eigenvalues(&w)
	if err != nil {
		return fmt.Errorf("control: weighting spectrum: %w", err)
	}
	for _, v := range eig {
		if real(v) < -tol {
			return fmt.Errorf("%w: eigenvalue %.4g", ErrNonPositiveWeighting, real(v))
		}
	}
	return nil
}

func riccatiData(sys *linsys.System, q, cross, rPinv mat.Matrix) (*Riccati, error) {
	n, m := sys.Dims()

	var a mat.Dense
	a.Sub(sys.F, linalg.Mul3(cross, rPinv, sys.G.T()))

	b := linalg.Mul3(sys.G, rPinv, sys.G.T())

	c := mat.DenseCopyOf(q)
	if !linalg.IsZero(cross) {
		if n != m {
			return nil, fmt.Errorf("control: cross term MR⁺M needs a square plant, have n=%d m=%d: %w", n, m, linalg.ErrInvalidDimension)
		}
		c.Add(c, linalg.Mul3(cross, rPinv, cross))
	}
	return &Riccati{A: &a, B: b, C: c}, nil
}
