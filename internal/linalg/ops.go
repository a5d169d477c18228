package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Identity returns the n×n identity matrix.
func Identity(n int) *mat.Dense {
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return id
}

// Mul returns a·b in a new matrix.
func Mul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// Mul3 returns a·b·c in a new matrix.
func Mul3(a, b, c mat.Matrix) *mat.Dense {
	return Mul(Mul(a, b), c)
}

// InnerTrace returns tr(aᵗb), the Frobenius inner product of a and b.
func InnerTrace(a, b mat.Matrix) float64 {
	r, c := a.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += a.At(i, j) * b.At(i, j)
		}
	}
	return sum
}

// Asymmetry returns ‖a − aᵗ‖_F.
func Asymmetry(a mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(a, a.T())
	return mat.Norm(&d, 2)
}

// Symmetrize returns (a + aᵗ)/2.
func Symmetrize(a mat.Matrix) *mat.Dense {
	var s mat.Dense
	s.Add(a, a.T())
	s.Scale(0.5, &s)
	return &s
}

// IsSquare reports whether a is a non-empty square matrix.
func IsSquare(a mat.Matrix) bool {
	r, c := a.Dims()
	return r > 0 && r == c
}

// RequireSquare returns ErrInvalidDimension unless a is n×n.
func RequireSquare(name string, a mat.Matrix, n int) error {
	r, c := a.Dims()
	if r != n || c != n {
		return fmt.Errorf("%s is %dx%d, want %dx%d: %w", name, r, c, n, n, ErrInvalidDimension)
	}
	return nil
}

// RequireShape returns ErrInvalidDimension unless a is rows×cols.
func RequireShape(name string, a mat.Matrix, rows, cols int) error {
	r, c := a.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("%s is %dx%d, want %dx%d: %w", name, r, c, rows, cols, ErrInvalidDimension)
	}
	return nil
}

// Eigenvalues returns the eigenvalues of the square matrix a.
func Eigenvalues(a mat.Matrix) ([]complex128, error) {
	if !IsSquare(a) {
		r, c := a.Dims()
		return nil, fmt.Errorf("eigenvalues of %dx%d matrix: %w", r, c, ErrInvalidDimension)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigenvalues: %w", ErrNoConvergence)
	}
	return eig.Values(nil), nil
}

// IsZero reports whether every element of a is exactly zero.
func IsZero(a mat.Matrix) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if a.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// IsFinite reports whether a holds no NaN or Inf entries.
func IsFinite(a mat.Matrix) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// FromRows builds a dense matrix from row slices. All rows must have the
// same non-zero length.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix: %w", ErrInvalidDimension)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrInvalidDimension)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// ToRows copies a into row slices.
func ToRows(a mat.Matrix) [][]float64 {
	r, c := a.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = a.At(i, j)
		}
	}
	return rows
}
