package models_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/models"
)

var _ = Describe("DoublePendulum", func() {
	var dp *models.DoublePendulum

	BeforeEach(func() {
		p, err := models.NewParams(models.DefaultLength, models.DefaultGravity)
		Expect(err).NotTo(HaveOccurred())
		dp, err = models.NewDoublePendulum(p)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("mass matrix", func() {
		It("is never singular", func() {
			for t1 := -2 * math.Pi; t1 <= 2*math.Pi; t1 += 0.1 {
				for t2 := -2 * math.Pi; t2 <= 2*math.Pi; t2 += 0.1 {
					m := dp.MassMatrix(dynamo.State{t1, 0, t2, 0})
					Expect(mat.Det(m)).To(BeNumerically(">=", 1-1e-12))
				}
			}
		})

		It("is symmetric", func() {
			m := dp.MassMatrix(dynamo.State{0.7, 0, -1.9, 0})
			Expect(m.At(0, 1)).To(Equal(m.At(1, 0)))
			Expect(m.At(0, 0)).To(Equal(2.0))
			Expect(m.At(1, 1)).To(Equal(1.0))
		})
	})

	Describe("derivative", func() {
		It("solves the mass matrix system", func() {
			x := dynamo.State{1.1, -0.4, 2.3, 0.9}
			dx := dp.Derive(x, nil, 0)

			var lhs mat.VecDense
			lhs.MulVec(dp.MassMatrix(x), mat.NewVecDense(2, []float64{dx[models.Omega1], dx[models.Omega2]}))
			v := dp.Forcing(x)

			Expect(lhs.AtVec(0)).To(BeNumerically("~", v.AtVec(0), 1e-12))
			Expect(lhs.AtVec(1)).To(BeNumerically("~", v.AtVec(1), 1e-12))
		})

		It("ignores time", func() {
			x := dynamo.State{0.2, 0.1, -0.3, 0.5}
			Expect(dp.Derive(x, nil, 0)).To(Equal(dp.Derive(x, nil, 123.4)))
		})

		It("does not modify its input", func() {
			x := dynamo.State{0.2, 0.1, -0.3, 0.5}
			before := x.Clone()
			dp.Derive(x, nil, 0)
			Expect(x).To(Equal(before))
		})
	})

	Describe("energy along a trajectory", func() {
		It("is conserved by an accurate solve", func() {
			x0 := models.InitialState(90, 0, 0, 0)
			opts := integrators.DefaultOptions()
			opts.RTol, opts.ATol = 1e-10, 1e-10

			sol, err := integrators.Solve(context.Background(), dp, integrators.NewRK45(), x0, 0, 5, opts)
			Expect(err).NotTo(HaveOccurred())

			e0 := dp.Energy(x0)
			Expect(e0).To(BeNumerically("~", -9.81, 1e-12))
			for _, tt := range []float64{0.5, 1.7, 3.14, 4.99} {
				x, err := sol.At(tt)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(dp.Energy(x)-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-3))
			}
		})
	})
})
