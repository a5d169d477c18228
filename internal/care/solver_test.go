package care_test

import (
	"bytes"
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

func scalar(v float64) *mat.Dense {
	return mat.NewDense(1, 1, []float64{v})
}

var _ = Describe("Solver", func() {
	var (
		ctx    context.Context
		solver *care.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()
		solver = care.New(care.DefaultOptions())
	})

	Describe("scalar equation 2ax − bx² + c = 0", func() {
		It("converges to the positive root for a=−1, b=1, c=1", func() {
			sol, err := solver.Solve(ctx, scalar(-1), scalar(1), scalar(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Converged()).To(BeTrue())
			Expect(sol.Err()).NotTo(HaveOccurred())
			Expect(sol.Iterations).To(BeNumerically("<", 20))
			Expect(sol.X.At(0, 0)).To(BeNumerically("~", math.Sqrt2-1, 1e-6))
			Expect(sol.Residual).To(BeNumerically("<=", care.DefaultTolerance))
		})

		It("starts from the shifted Lyapunov guess", func() {
			// β = 1.5, Z = 2, X₀ = Z⁺ = 0.5
			x0, err := solver.InitialGuess(scalar(-1), scalar(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(x0.At(0, 0)).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("handles an unstable plant", func() {
			// 2x − x² + 1 = 0 → x = 1 + √2
			sol, err := solver.Solve(ctx, scalar(1), scalar(1), scalar(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Converged()).To(BeTrue())
			Expect(sol.X.At(0, 0)).To(BeNumerically("~", 1+math.Sqrt2, 1e-6))
		})
	})

	Describe("double integrator", func() {
		var a, b, c *mat.Dense

		BeforeEach(func() {
			a = mat.NewDense(2, 2, []float64{0, 1, 0, 0})
			b = mat.NewDense(2, 2, []float64{0, 0, 0, 1})
			c = linalg.Identity(2)
		})

		It("matches the analytic solution", func() {
			sol, err := solver.Solve(ctx, a, b, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(care.Converged))

			s3 := math.Sqrt(3)
			want := mat.NewDense(2, 2, []float64{s3, 1, 1, s3})
			Expect(mat.EqualApprox(sol.X, want, 1e-5)).To(BeTrue(), "X = %v", mat.Formatted(sol.X))
		})

		It("returns a symmetric solution with a small residual", func() {
			sol, err := solver.Solve(ctx, a, b, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(linalg.Asymmetry(sol.X)).To(BeNumerically("<", 1e-8))
			Expect(mat.Norm(care.Residual(a, b, c, sol.X), 2)).To(BeNumerically("<=", care.DefaultTolerance))
		})

		It("records one step per iteration inside the line search bounds", func() {
			sol, err := solver.Solve(ctx, a, b, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Steps).To(HaveLen(sol.Iterations))
			for _, st := range sol.Steps {
				Expect(st.StepSize).To(BeNumerically(">=", 1e-5))
				Expect(st.StepSize).To(BeNumerically("<=", 2))
			}
		})

		It("is a fixed point when restarted from its own solution", func() {
			sol, err := solver.Solve(ctx, a, b, c)
			Expect(err).NotTo(HaveOccurred())

			again, err := solver.SolveFrom(ctx, a, b, c, sol.X)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Converged()).To(BeTrue())
			Expect(again.Iterations).To(Equal(1))
			Expect(again.Residual).To(BeNumerically("<=", care.DefaultTolerance))
		})
	})

	Describe("cart-pole linearization", func() {
		It("stabilizes the closed loop", func() {
			a := mat.NewDense(4, 4, []float64{
				0, 1, 0, 0,
				0, 0, -0.981, 0,
				0, 0, 0, 1,
				0, 0, 21.582, 0,
			})
			g := mat.NewDense(4, 1, []float64{0, 1, 0, -2})
			var b mat.Dense
			b.Mul(g, g.T())

			opts := care.DefaultOptions()
			opts.MaxIterations = 50
			sol, err := care.New(opts).Solve(ctx, a, &b, linalg.Identity(4))
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Converged()).To(BeTrue())

			var cl mat.Dense
			cl.Sub(a, linalg.Mul(&b, sol.X))
			eig, err := linalg.Eigenvalues(&cl)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range eig {
				Expect(real(v)).To(BeNumerically("<", 0))
			}
		})
	})

	Describe("iteration budget", func() {
		It("returns the last iterate and a non-fatal warning", func() {
			opts := care.DefaultOptions()
			opts.MaxIterations = 1
			opts.Tolerance = 1e-14
			sol, err := care.New(opts).Solve(ctx, scalar(-1), scalar(1), scalar(1))

			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Status).To(Equal(care.MaxIterationsReached))
			Expect(sol.X).NotTo(BeNil())
			Expect(sol.Iterations).To(Equal(1))
			Expect(errors.Is(sol.Err(), care.ErrConvergenceNotReached)).To(BeTrue())
		})

		It("logs a warning when precision is not reached", func() {
			var buf bytes.Buffer
			opts := care.DefaultOptions()
			opts.MaxIterations = 1
			opts.Tolerance = 1e-14
			opts.Logger = zerolog.New(&buf).Level(zerolog.WarnLevel)

			_, err := care.New(opts).Solve(ctx, scalar(-1), scalar(1), scalar(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("precision not reached"))
		})

		It("stays silent with default options", func() {
			Expect(care.DefaultOptions().Logger.GetLevel()).To(Equal(zerolog.Disabled))
		})
	})

	Describe("cancellation", func() {
		It("stops before iterating on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			sol, err := solver.Solve(canceled, scalar(-1), scalar(1), scalar(1))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(sol.Status).To(Equal(care.Interrupted))
			Expect(sol.Iterations).To(Equal(0))
			Expect(sol.X.At(0, 0)).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Describe("options", func() {
		It("fills zero fields with defaults", func() {
			opts := care.New(care.Options{}).Options()
			Expect(opts.Tolerance).To(Equal(care.DefaultTolerance))
			Expect(opts.MaxIterations).To(Equal(care.DefaultMaxIterations))
			Expect(opts.Shift).To(Equal(care.DefaultShift))
			Expect(opts.PinvTolerance).To(Equal(linalg.DefaultPinvTolerance))
			Expect(opts.Bounds.Lower).To(Equal(1e-5))
			Expect(opts.Bounds.Upper).To(Equal(2.0))
		})
	})

	Describe("dimension checks", func() {
		DescribeTable("rejects mismatched shapes",
			func(a, b, c mat.Matrix) {
				_, err := solver.Solve(ctx, a, b, c)
				Expect(errors.Is(err, linalg.ErrInvalidDimension)).To(BeTrue())
			},
			Entry("rectangular A", mat.NewDense(2, 3, nil), linalg.Identity(2), linalg.Identity(2)),
			Entry("B too small", linalg.Identity(2), linalg.Identity(1), linalg.Identity(2)),
			Entry("C too large", linalg.Identity(2), linalg.Identity(2), linalg.Identity(3)),
		)

		It("rejects a mismatched initial iterate", func() {
			_, err := solver.SolveFrom(ctx, scalar(-1), scalar(1), scalar(1), linalg.Identity(2))
			Expect(errors.Is(err, linalg.ErrInvalidDimension)).To(BeTrue())
		})
	})

	It("prints status names", func() {
		Expect(care.Converged.String()).To(Equal("converged"))
		Expect(care.MaxIterationsReached.String()).To(Equal("max_iterations_reached"))
		Expect(care.Interrupted.String()).To(Equal("interrupted"))
	})
})
