package control_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/integrators"
	"github.com/san-kum/riccati/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

var _ = Describe("LQR controller", func() {
	k := mat.NewDense(1, 2, []float64{1, 2})

	It("outputs zero at the target", func() {
		u := control.NewLQR(k, dynamo.State{0, 0}).Compute(dynamo.State{0, 0}, 0)
		Expect(u).To(Equal(dynamo.Control{0}))
	})

	It("applies u = −K(x − target)", func() {
		u := control.NewLQR(k, dynamo.State{1, 0}).Compute(dynamo.State{2, 1}, 0)
		Expect(u).To(HaveLen(1))
		Expect(u[0]).To(BeNumerically("~", -3, 1e-15))
	})

	It("regulates to the origin without a target", func() {
		u := control.NewLQR(k, nil).Compute(dynamo.State{1, 1}, 0)
		Expect(u[0]).To(BeNumerically("~", -3, 1e-15))
	})

	It("does not alias the gain", func() {
		src := mat.DenseCopyOf(k)
		ctrl := control.NewLQR(src, nil)
		src.Set(0, 0, 100)
		Expect(ctrl.K.At(0, 0)).To(Equal(1.0))
	})

	It("drives the double integrator to rest", func() {
		sys := plant([][]float64{{0, 1}, {0, 0}}, [][]float64{{0}, {1}})
		d, err := control.Synthesize(context.Background(), sys, control.Weights{Q: linalg.Identity(2), R: linalg.Identity(1)}, control.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		sim := dynamo.New(sys, integrators.NewRK4(), d.Controller(nil))
		res, err := sim.Run(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.01, Duration: 20, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Errors).To(BeEmpty())
		Expect(res.Final().Norm()).To(BeNumerically("<", 1e-4))
	})
})

var _ = Describe("None controller", func() {
	It("returns a zero vector of the input dimension", func() {
		u := control.NewNone(2).Compute(dynamo.State{1, 2}, 0)
		Expect(u).To(Equal(dynamo.Control{0, 0}))
	})

	It("leaves an unstable plant unstable", func() {
		sys := plant([][]float64{{1}}, [][]float64{{1}})
		res, err := dynamo.New(sys, integrators.NewRK4(), control.NewNone(1)).
			Run(context.Background(), dynamo.State{1}, dynamo.Config{Dt: 0.01, Duration: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final()[0]).To(BeNumerically("~", math.E, 1e-6))
	})
})
