package linalg

import "gonum.org/v1/gonum/mat"

// DefaultPinvTolerance is the singular value cutoff used by Pinv when the
// caller passes a non-positive tolerance.
const DefaultPinvTolerance = 1e-6

// epsilon is the float64 machine epsilon.
const epsilon = 0x1p-52

// Pinv returns the Moore-Penrose pseudo-inverse of m. Singular values not
// exceeding tol are treated as zero.
func Pinv(m mat.Matrix, tol float64) *mat.Dense {
	p, _ := PinvRank(m, tol)
	return p
}

// PinvRank returns the pseudo-inverse of m together with the number of
// singular values that were inverted.
//
// The factorization is a full SVD m = UΣVᵗ and the result is VΣ⁺Uᵗ. A
// rank-deficient or rectangular m yields the minimum-norm least-squares
// inverse; nothing is reported as an error.
func PinvRank(m mat.Matrix, tol float64) (*mat.Dense, int) {
	if tol <= 0 {
		tol = DefaultPinvTolerance
	}
	r, c := m.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return mat.NewDense(c, r, nil), 0
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	out := mat.NewDense(c, r, nil)
	rank := 0
	for k, s := range values {
		if !(s > tol) {
			continue
		}
		rank++
		inv := 1 / s
		for i := 0; i < c; i++ {
			vik := v.At(i, k) * inv
			if vik == 0 {
				continue
			}
			for j := 0; j < r; j++ {
				out.Set(i, j, out.At(i, j)+vik*u.At(j, k))
			}
		}
	}
	return out, rank
}

// Rank returns the numerical rank of m. A non-positive tol selects
// max(rows, cols)·σ_max·ε.
func Rank(m mat.Matrix, tol float64) int {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}
	if tol <= 0 {
		r, c := m.Dims()
		tol = float64(max(r, c)) * values[0] * epsilon
	}
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank
}
