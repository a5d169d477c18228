package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PolyEval evaluates the polynomial with ascending coefficients
// c[0] + c[1]x + … + c[d]x^d at x.
func PolyEval(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

// RealRoots returns the real roots of the polynomial with ascending
// coefficients c, in the order the companion eigensolver reports them.
// Roots whose imaginary part exceeds imagTol·max(1, |root|) are
// discarded. Trailing zero coefficients lower the degree; a constant
// polynomial has no roots.
func RealRoots(c []float64, imagTol float64) ([]float64, error) {
	d := len(c) - 1
	for d > 0 && c[d] == 0 {
		d--
	}
	switch d {
	case -1, 0:
		return nil, nil
	case 1:
		return []float64{-c[0] / c[1]}, nil
	}

	// Companion matrix of the monic polynomial: ones on the subdiagonal,
	// negated normalized coefficients in the last column.
	comp := mat.NewDense(d, d, nil)
	for i := 1; i < d; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < d; i++ {
		comp.Set(i, d-1, -c[i]/c[d])
	}

	values, err := Eigenvalues(comp)
	if err != nil {
		return nil, err
	}
	roots := make([]float64, 0, d)
	for _, v := range values {
		re, im := real(v), imag(v)
		if math.Abs(im) <= imagTol*math.Max(1, math.Abs(re)) {
			roots = append(roots, re)
		}
	}
	return roots, nil
}
