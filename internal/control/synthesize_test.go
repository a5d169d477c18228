package control_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/riccati/internal/analysis"
	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/linalg"
	"github.com/san-kum/riccati/internal/linsys"
	"gonum.org/v1/gonum/mat"
)

func plant(f, g [][]float64) *linsys.System {
	sys, err := linsys.FromRows(f, g)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func hurwitz(sys *linsys.System, k mat.Matrix) bool {
	p, err := analysis.Spectrum(analysis.ClosedLoop(sys.F, sys.G, k))
	Expect(err).NotTo(HaveOccurred())
	return p.Hurwitz()
}

var _ = Describe("Synthesize", func() {
	var (
		ctx  context.Context
		opts control.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		opts = control.DefaultOptions()
	})

	Context("double integrator with Q = I, R = 1", func() {
		var sys *linsys.System

		BeforeEach(func() {
			sys = plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
		})

		It("returns K = [1, √3]", func() {
			d, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1)}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Warnings).To(BeEmpty())
			Expect(d.Converged()).To(BeTrue())

			r, c := d.K.Dims()
			Expect([]int{r, c}).To(Equal([]int{1, 2}))
			Expect(d.K.At(0, 0)).To(BeNumerically("~", 1, 1e-5))
			Expect(d.K.At(0, 1)).To(BeNumerically("~", math.Sqrt(3), 1e-5))
			Expect(hurwitz(sys, d.K)).To(BeTrue())
		})

		It("exposes the Riccati data it solved", func() {
			d, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1)}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(mat.Equal(d.Problem.A, sys.F)).To(BeTrue())
			Expect(mat.Equal(d.Problem.B, mat.NewDense(2, 2, []float64{0, 0, 0, 1}))).To(BeTrue())
			Expect(mat.Equal(d.Problem.C, linalg.Identity(2))).To(BeTrue())
			Expect(mat.Norm(care.Residual(d.Problem.A, d.Problem.B, d.Problem.C, d.X), 2)).To(BeNumerically("<=", care.DefaultTolerance))
		})

		It("scales the gain with the input weight", func() {
			// k₁ = 1/√R for the double integrator.
			d, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(2), R: mat.NewDense(1, 1, []float64{4})}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.K.At(0, 0)).To(BeNumerically("~", 0.5, 1e-5))
			Expect(hurwitz(sys, d.K)).To(BeTrue())
		})

		It("warns and still designs when R is singular", func() {
			twoInputs := plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0, 1}, {1, 0}})
			r := mat.NewDense(2, 2, []float64{1, 0, 0, 0})

			d, err := control.Synthesize(ctx, twoInputs, control.Weights{Q: linalg.Identity(2), R: r}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Warnings).To(HaveLen(1))
			Expect(errors.Is(d.Warnings[0], control.ErrSingularInput)).To(BeTrue())

			want := mat.NewDense(2, 2, []float64{1, math.Sqrt(3), 0, 0})
			Expect(mat.EqualApprox(d.K, want, 1e-5)).To(BeTrue(), "K = %v", mat.Formatted(d.K))
			Expect(hurwitz(twoInputs, d.K)).To(BeTrue())
		})

		It("reports an unfinished Riccati iteration as a warning", func() {
			opts.CARE.MaxIterations = 1
			opts.CARE.Tolerance = 1e-14

			d, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1)}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Converged()).To(BeFalse())
			Expect(d.K).NotTo(BeNil())
			Expect(d.Warnings).To(ContainElement(MatchError(care.ErrConvergenceNotReached)))
		})
	})

	Context("stabilizing unstable plants", func() {
		DescribeTable("closed loop is Hurwitz",
			func(f, g [][]float64) {
				sys := plant(f, g)
				n, m := sys.Dims()
				sopts := control.DefaultOptions()
				sopts.CARE.MaxIterations = 50

				d, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(n), R: linalg.Identity(m)}, sopts)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Converged()).To(BeTrue())
				Expect(hurwitz(sys, d.K)).To(BeTrue())
			},
			Entry("inverted pendulum", [][]float64{{0, 1}, {9.81, 0}}, [][]float64{{0}, {1}}),
			Entry("cart-pole", [][]float64{{0, 1, 0, 0}, {0, 0, -0.981, 0}, {0, 0, 0, 1}, {0, 0, 21.582, 0}}, [][]float64{{0}, {1}, {0}, {-2}}),
			Entry("scalar unstable", [][]float64{{2}}, [][]float64{{1}}),
		)
	})

	Context("weighting precondition", func() {
		var sys *linsys.System

		BeforeEach(func() {
			sys = plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
		})

		It("rejects an indefinite Q", func() {
			q := mat.NewDiagDense(2, []float64{1, -1})
			d, err := control.Synthesize(ctx, sys, control.Weights{Q: q, R: linalg.Identity(1)}, opts)
			Expect(errors.Is(err, control.ErrNonPositiveWeighting)).To(BeTrue())
			Expect(d).To(BeNil())
		})

		It("rejects a cross term that dominates Q", func() {
			m := mat.NewDense(2, 1, []float64{2, 0})
			_, err := control.Synthesize(ctx, sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1), M: m}, opts)
			Expect(errors.Is(err, control.ErrNonPositiveWeighting)).To(BeTrue())
		})

		It("accepts eigenvalues within the positivity tolerance", func() {
			q := mat.NewDiagDense(2, []float64{1, -1e-9})
			opts.PositivityTolerance = 1e-6
			opts.CARE.MaxIterations = 50
			_, err := control.Synthesize(ctx, sys, control.Weights{Q: q, R: linalg.Identity(1)}, opts)
			Expect(errors.Is(err, control.ErrNonPositiveWeighting)).To(BeFalse())
		})
	})

	Context("cross term", func() {
		It("uses K = R⁺(GᵗX + Mᵗ) on a square plant", func() {
			sys := plant([][]float64{{1}}, [][]float64{{1}})
			w := control.Weights{
				Q: mat.NewDense(1, 1, []float64{1}),
				R: mat.NewDense(1, 1, []float64{1}),
				M: mat.NewDense(1, 1, []float64{0.5}),
			}
			d, err := control.Synthesize(ctx, sys, w, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(d.Problem.A.At(0, 0)).To(BeNumerically("~", 0.5, 1e-12))
			Expect(d.Problem.C.At(0, 0)).To(BeNumerically("~", 1.25, 1e-12))
			Expect(d.K.At(0, 0)).To(BeNumerically("~", d.X.At(0, 0)+0.5, 1e-12))
		})

		It("rejects a non-zero cross term on a non-square plant", func() {
			sys := plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
			opts.Check = false
			w := control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1), M: mat.NewDense(2, 1, []float64{0.1, 0})}
			_, err := control.Synthesize(ctx, sys, w, opts)
			Expect(errors.Is(err, linalg.ErrInvalidDimension)).To(BeTrue())
		})
	})

	DescribeTable("dimension checks",
		func(w control.Weights) {
			sys := plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
			_, err := control.Synthesize(context.Background(), sys, w, control.DefaultOptions())
			Expect(errors.Is(err, linalg.ErrInvalidDimension)).To(BeTrue())
		},
		Entry("Q too small", control.Weights{Q: linalg.Identity(1), R: linalg.Identity(1)}),
		Entry("R too large", control.Weights{Q: linalg.Identity(2), R: linalg.Identity(2)}),
		Entry("M transposed", control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1), M: mat.NewDense(1, 2, nil)}),
	)

	It("propagates context cancellation", func() {
		sys := plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := control.Synthesize(canceled, sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1)}, opts)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
