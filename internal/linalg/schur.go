package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/gonum"
	"gonum.org/v1/gonum/mat"
)

var impl = gonum.Implementation{}

// Schur holds a real Schur factorization A = U T Uᵗ. T is quasi upper
// triangular with 1x1 and 2x2 diagonal blocks, the latter carrying complex
// conjugate eigenvalue pairs. U is orthogonal.
type Schur struct {
	T *mat.Dense
	U *mat.Dense

	// Real and Imag are the eigenvalues of A in the order they appear on
	// the diagonal of T.
	Real []float64
	Imag []float64
}

// RealSchur computes the real Schur factorization of the square matrix a.
func RealSchur(a mat.Matrix) (*Schur, error) {
	n, c := a.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("schur of %dx%d matrix: %w", n, c, ErrInvalidDimension)
	}

	// Reduce to upper Hessenberg form H = Qᵗ A Q.
	h := mat.DenseCopyOf(a)
	hr := h.RawMatrix()
	tau := make([]float64, n-1)
	work := workspace(n, func(work []float64, lwork int) {
		impl.Dgehrd(n, 0, n-1, hr.Data, hr.Stride, tau, work, lwork)
	})
	impl.Dgehrd(n, 0, n-1, hr.Data, hr.Stride, tau, work, len(work))

	q := mat.DenseCopyOf(h)
	qr := q.RawMatrix()
	work = workspace(n, func(work []float64, lwork int) {
		impl.Dorghr(n, 0, n-1, qr.Data, qr.Stride, tau, work, lwork)
	})
	impl.Dorghr(n, 0, n-1, qr.Data, qr.Stride, tau, work, len(work))

	// Dgehrd leaves the reflectors below the first subdiagonal.
	clearBelowSubdiagonal(h)

	wr := make([]float64, n)
	wi := make([]float64, n)
	work = workspace(n, func(work []float64, lwork int) {
		impl.Dhseqr(lapack.EigenvaluesAndSchur, lapack.SchurOrig, n, 0, n-1,
			hr.Data, hr.Stride, wr, wi, qr.Data, qr.Stride, work, lwork)
	})
	unconverged := impl.Dhseqr(lapack.EigenvaluesAndSchur, lapack.SchurOrig, n, 0, n-1,
		hr.Data, hr.Stride, wr, wi, qr.Data, qr.Stride, work, len(work))
	if unconverged > 0 {
		return nil, fmt.Errorf("schur: %d eigenvalues unconverged: %w", unconverged, ErrNoConvergence)
	}

	clearBelowSubdiagonal(h)

	return &Schur{T: h, U: q, Real: wr, Imag: wi}, nil
}

// MinReal returns the smallest real part over the eigenvalues of the
// factorized matrix.
func (s *Schur) MinReal() float64 {
	m := s.Real[0]
	for _, v := range s.Real[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Reconstruct returns U T Uᵗ.
func (s *Schur) Reconstruct() *mat.Dense {
	return Mul3(s.U, s.T, s.U.T())
}

// workspace runs a LAPACK workspace query and allocates the optimal
// buffer, never smaller than n.
func workspace(n int, query func(work []float64, lwork int)) []float64 {
	work := make([]float64, 1)
	query(work, -1)
	return make([]float64, max(1, n, int(work[0])))
}

func clearBelowSubdiagonal(h *mat.Dense) {
	n, _ := h.Dims()
	for i := 2; i < n; i++ {
		for j := 0; j < i-1; j++ {
			h.Set(i, j, 0)
		}
	}
}
