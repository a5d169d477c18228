package care

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/riccati/internal/linalg"
	"github.com/san-kum/riccati/internal/linesearch"
	"github.com/san-kum/riccati/internal/lyapunov"
	"gonum.org/v1/gonum/mat"
)

// initialCorrection is the identity weight added when re-solving an
// asymmetric initial guess.
const initialCorrection = 0.5

// Status tags how an iteration ended.
type Status int

const (
	Converged Status = iota
	MaxIterationsReached
	Interrupted
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Step records one Newton iteration.
type Step struct {
	Iteration int     `json:"iteration"`
	Residual  float64 `json:"residual"`
	StepSize  float64 `json:"step_size"`
}

// Solution is the outcome of a solve. X is always the last iterate, also
// when the tolerance was not met.
type Solution struct {
	X          *mat.Dense
	Status     Status
	Iterations int
	// Residual is ‖R(X)‖_F of the returned X.
	Residual float64
	Steps    []Step
}

// Converged reports whether the residual met the tolerance.
func (s *Solution) Converged() bool {
	return s.Status == Converged
}

// Err returns ErrConvergenceNotReached with the residual attached when the
// iteration budget ran out, nil otherwise.
func (s *Solution) Err() error {
	if s.Status != MaxIterationsReached {
		return nil
	}
	return fmt.Errorf("%w: residual %.3e after %d iterations", ErrConvergenceNotReached, s.Residual, s.Iterations)
}

type Solver struct {
	opts Options
}

// New returns a solver with opts; zero-valued fields take defaults.
func New(opts Options) *Solver {
	return &Solver{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (s *Solver) Options() Options {
	return s.opts
}

// Residual returns C + XA + AᵗX − XBX.
func Residual(a, b, c, x mat.Matrix) *mat.Dense {
	var r mat.Dense
	r.Add(c, linalg.Mul(x, a))
	r.Add(&r, linalg.Mul(a.T(), x))
	r.Sub(&r, linalg.Mul3(x, b, x))
	return &r
}

// Solve builds the initial guess and runs the Newton iteration.
func (s *Solver) Solve(ctx context.Context, a, b, c mat.Matrix) (*Solution, error) {
	if _, err := dims(a, b, c); err != nil {
		return nil, err
	}
	x0, err := s.InitialGuess(a, b)
	if err != nil {
		return nil, err
	}
	return s.SolveFrom(ctx, a, b, c, x0)
}

// SolveFrom runs the Newton iteration from x0.
//
// The loop continues while the residual of the current iterate exceeds
// the tolerance and the iteration budget remains. The residual is measured
// before the update, so a converged solution has taken one step past the
// iterate that met the tolerance. Context cancellation is checked once per
// iteration; it returns the last iterate with Status Interrupted together
// with ctx.Err().
func (s *Solver) SolveFrom(ctx context.Context, a, b, c, x0 mat.Matrix) (*Solution, error) {
	n, err := dims(a, b, c)
	if err != nil {
		return nil, err
	}
	if err := linalg.RequireSquare("care: X0", x0, n); err != nil {
		return nil, err
	}

	log := s.opts.Logger
	x := mat.DenseCopyOf(x0)
	sol := &Solution{Steps: make([]Step, 0, s.opts.MaxIterations)}

	if e := log.Debug(); e.Enabled() {
		if eig, err := linalg.Eigenvalues(closedLoop(a, b, x)); err == nil {
			e.Float64("abscissa", abscissa(eig)).Msg("initial closed-loop spectrum")
		} else {
			e.Discard()
		}
	}

	resNorm := math.Inf(1)
	k := 0
	for resNorm > s.opts.Tolerance && k < s.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			sol.finish(a, b, c, x, k, Interrupted)
			return sol, err
		}

		r := Residual(a, b, c, x)
		h, err := lyapunov.Solve(closedLoop(a, b, x), r)
		if err != nil {
			return nil, fmt.Errorf("care: newton direction at iteration %d: %w", k, err)
		}

		v := linalg.Mul3(h, b, h)
		t := linesearch.Exact(linesearch.NewMerit(r, v), s.opts.Bounds)

		var step mat.Dense
		step.Scale(t, h)
		x.Add(x, &step)

		resNorm = mat.Norm(r, 2)
		sol.Steps = append(sol.Steps, Step{Iteration: k, Residual: resNorm, StepSize: t})
		log.Debug().Int("iter", k).Float64("residual", resNorm).Float64("step", t).Msg("newton step")
		k++
	}

	status := Converged
	if resNorm > s.opts.Tolerance {
		status = MaxIterationsReached
	}
	sol.finish(a, b, c, x, k, status)

	if status == MaxIterationsReached {
		log.Warn().Int("iterations", k).Float64("residual", sol.Residual).
			Float64("tolerance", s.opts.Tolerance).Msg("care: precision not reached")
	} else {
		log.Debug().Int("iterations", k).Float64("residual", sol.Residual).Msg("care: converged")
	}
	return sol, nil
}

// InitialGuess returns the starting iterate for Newton's method.
//
// With A = U TA Uᵗ and TD = UᵗB, Z solves the shifted equation
//
//	(TA + βI) Z + Z (TA + βI)ᵗ = 2 TD TDᵗ,  β = max(0, −min Re λ(A)) + shift
//
// and X₀ = TDᵗ Z⁺ Uᵗ. If X₀ is not symmetric within SymmetryTolerance it
// is replaced by the solution of
//
//	(A − BX₀)ᵗX + X(A − BX₀) = −(X₀ᵗBX₀ + ½I).
func (s *Solver) InitialGuess(a, b mat.Matrix) (*mat.Dense, error) {
	n, _ := a.Dims()
	if !linalg.IsSquare(a) {
		r, c := a.Dims()
		return nil, fmt.Errorf("care: A is %dx%d: %w", r, c, linalg.ErrInvalidDimension)
	}
	if err := linalg.RequireSquare("care: B", b, n); err != nil {
		return nil, err
	}

	schur, err := linalg.RealSchur(a)
	if err != nil {
		return nil, fmt.Errorf("care: initial guess: %w", err)
	}
	td := linalg.Mul(schur.U.T(), b)

	beta := math.Max(0, -schur.MinReal()) + s.opts.Shift
	var shifted mat.Dense
	shifted.Add(schur.T, scaledIdentity(n, beta))

	var rhs mat.Dense
	rhs.Mul(td, td.T())
	rhs.Scale(2, &rhs)

	// lyapunov.Solve(M, Q) gives MᵗZ + ZM = −Q.
	var negRHS mat.Dense
	negRHS.Scale(-1, &rhs)
	z, err := lyapunov.Solve(shifted.T(), &negRHS)
	if err != nil {
		return nil, fmt.Errorf("care: initial guess: %w", err)
	}

	x := linalg.Mul3(td.T(), linalg.Pinv(z, s.opts.PinvTolerance), schur.U.T())

	asym := linalg.Asymmetry(x)
	s.opts.Logger.Debug().Float64("shift", beta).Float64("asymmetry", asym).Msg("initial guess")
	if asym > s.opts.SymmetryTolerance {
		m := linalg.Mul3(x.T(), b, x)
		m.Add(m, scaledIdentity(n, initialCorrection))
		x, err = lyapunov.Solve(closedLoop(a, b, x), m)
		if err != nil {
			return nil, fmt.Errorf("care: initial guess correction: %w", err)
		}
	}
	return x, nil
}

// closedLoop returns A − BX.
func closedLoop(a, b, x mat.Matrix) *mat.Dense {
	var cl mat.Dense
	cl.Sub(a, linalg.Mul(b, x))
	return &cl
}

func scaledIdentity(n int, v float64) *mat.Dense {
	id := linalg.Identity(n)
	id.Scale(v, id)
	return id
}

func abscissa(eig []complex128) float64 {
	m := math.Inf(-1)
	for _, v := range eig {
		m = math.Max(m, real(v))
	}
	return m
}

func dims(a, b, c mat.Matrix) (int, error) {
	n, cols := a.Dims()
	if n == 0 || n != cols {
		return 0, fmt.Errorf("care: A is %dx%d: %w", n, cols, linalg.ErrInvalidDimension)
	}
	if err := linalg.RequireSquare("care: B", b, n); err != nil {
		return 0, err
	}
	if err := linalg.RequireSquare("care: C", c, n); err != nil {
		return 0, err
	}
	return n, nil
}

func (sol *Solution) finish(a, b, c mat.Matrix, x *mat.Dense, iterations int, status Status) {
	sol.X = x
	sol.Iterations = iterations
	sol.Status = status
	sol.Residual = mat.Norm(Residual(a, b, c, x), 2)
}
