// Package linesearch computes the exact step length of a Newton step for
// the algebraic Riccati equation.
//
// Along X + tH the Riccati residual is R(t) = (1−t)R − t²V with V = HBH,
// so its squared Frobenius norm is the quartic
//
//	φ(t) = a − 2at + (a−2b)t² + 2bt³ + ct⁴
//
// where a = tr(RᵗR), b = tr(RᵗV) and c = tr(VᵗV). The minimizer over a
// bounded interval is found among the interval ends and the real roots of
// the cubic φ'.
package linesearch

import (
	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// rootImagTol decides when a companion eigenvalue counts as real.
const rootImagTol = 1e-8

// Bounds is the closed step interval searched.
type Bounds struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// DefaultBounds is the interval [1e-5, 2].
var DefaultBounds = Bounds{Lower: 1e-5, Upper: 2}

// Contains reports whether t lies in the interval.
func (b Bounds) Contains(t float64) bool {
	return t >= b.Lower && t <= b.Upper
}

// Merit holds the trace coefficients of the quartic merit function.
type Merit struct {
	A float64
	B float64
	C float64
}

// NewMerit forms the merit coefficients from the residual r and V = HBH.
func NewMerit(r, v mat.Matrix) Merit {
	return Merit{
		A: linalg.InnerTrace(r, r),
		B: linalg.InnerTrace(r, v),
		C: linalg.InnerTrace(v, v),
	}
}

// coefficients returns φ in ascending powers, normalized by c when c > 0.
func (m Merit) coefficients() []float64 {
	p := []float64{m.A, -2 * m.A, m.A - 2*m.B, 2 * m.B, m.C}
	if m.C > 0 {
		for i := range p {
			p[i] /= m.C
		}
	}
	return p
}

// Eval returns φ(t).
func (m Merit) Eval(t float64) float64 {
	return linalg.PolyEval(m.coefficients(), t)
}

// Slope returns φ'(t).
func (m Merit) Slope(t float64) float64 {
	return linalg.PolyEval(derivative(m.coefficients()), t)
}

func derivative(p []float64) []float64 {
	d := make([]float64, len(p)-1)
	for i := 1; i < len(p); i++ {
		d[i-1] = float64(i) * p[i]
	}
	return d
}

// Exact returns the step in bounds minimizing φ. Candidates are visited in
// the order lower bound, upper bound, then the critical points as the root
// finder reports them; a later candidate replaces the current best only if
// it is strictly smaller, so exact ties keep the earliest candidate.
func Exact(m Merit, bounds Bounds) float64 {
	p := m.coefficients()

	argmin := bounds.Lower
	minimum := linalg.PolyEval(p, argmin)
	if v := linalg.PolyEval(p, bounds.Upper); v < minimum {
		argmin, minimum = bounds.Upper, v
	}

	roots, err := linalg.RealRoots(derivative(p), rootImagTol)
	if err != nil {
		return argmin
	}
	for _, r := range roots {
		if !bounds.Contains(r) {
			continue
		}
		if v := linalg.PolyEval(p, r); v < minimum {
			argmin, minimum = r, v
		}
	}
	return argmin
}
