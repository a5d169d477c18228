package analysis

import (
	"math"
	"math/cmplx"
	"slices"

	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// ClosedLoop returns F − GK.
func ClosedLoop(f, g, k mat.Matrix) *mat.Dense {
	var cl mat.Dense
	cl.Sub(f, linalg.Mul(g, k))
	return &cl
}

// Poles are eigenvalues sorted by decreasing real part.
type Poles []complex128

// Spectrum returns the eigenvalues of a.
func Spectrum(a mat.Matrix) (Poles, error) {
	eig, err := linalg.Eigenvalues(a)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(eig, func(x, y complex128) int {
		switch {
		case real(x) > real(y):
			return -1
		case real(x) < real(y):
			return 1
		case imag(x) > imag(y):
			return -1
		case imag(x) < imag(y):
			return 1
		}
		return 0
	})
	return Poles(eig), nil
}

// Abscissa is the largest real part.
func (p Poles) Abscissa() float64 {
	if len(p) == 0 {
		return math.Inf(-1)
	}
	return real(p[0])
}

// Hurwitz reports whether all poles lie in the open left half plane.
func (p Poles) Hurwitz() bool {
	return len(p) > 0 && p.Abscissa() < 0
}

// Damping returns the smallest damping ratio −Re λ/|λ| over the poles.
// A pole at the origin counts as undamped.
func (p Poles) Damping() float64 {
	zeta := math.Inf(1)
	for _, v := range p {
		mag := cmplx.Abs(v)
		if mag == 0 {
			return 0
		}
		zeta = math.Min(zeta, -real(v)/mag)
	}
	return zeta
}
