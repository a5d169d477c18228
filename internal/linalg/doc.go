// Package linalg adapts gonum's dense kernels to the operations the
// Riccati and Lyapunov solvers orchestrate:
//
//   - [RealSchur]: real Schur factorization A = U T Uᵗ (LAPACK Dgehrd/Dorghr/Dhseqr)
//   - [Pinv]: Moore-Penrose pseudo-inverse by truncated SVD
//   - [Rank]: numerical rank from singular values
//   - [RealRoots]: real roots of a polynomial via its companion matrix
//
// Matrices are gonum [mat.Matrix] values; results are freshly allocated
// [mat.Dense] and never alias the inputs.
package linalg
