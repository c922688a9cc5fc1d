package sim_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/sim"
)

var _ = Describe("closed-loop driver", func() {
	var (
		s   *sim.Simulator
		ctx context.Context
	)

	BeforeEach(func() {
		s = sim.New(sim.DefaultConfig())
		ctx = context.Background()
	})

	Context("with the default dashboard inputs", func() {
		var result *sim.Result

		BeforeEach(func() {
			var err error
			result, err = s.Run(ctx, control.Gains{Kp: 15, Ki: 5, Kd: 0.04}, 5)
			Expect(err).NotTo(HaveOccurred())
		})

		It("produces the canonical first sample", func() {
			Expect(result.Series.Speed[0]).To(BeNumerically("~", 0.1, 1e-12))
			Expect(result.Series.Output[0]).To(Equal(72.0))
			Expect(result.Series.Current[0]).To(BeNumerically("~", 7.2, 1e-12))
			Expect(result.Series.Voltage[0]).To(BeNumerically("~", 14.41, 1e-12))
		})

		It("records 250 index-aligned samples", func() {
			Expect(result.Series.Time).To(HaveLen(250))
			Expect(result.Series.Speed).To(HaveLen(250))
			Expect(result.Series.Target).To(HaveLen(250))
			Expect(result.Series.Output).To(HaveLen(250))
			Expect(result.Series.Current).To(HaveLen(250))
			Expect(result.Series.Voltage).To(HaveLen(250))
		})

		It("lays out the time grid by integer step", func() {
			for k, tm := range result.Series.Time {
				Expect(tm).To(Equal(float64(k) * 0.01))
			}
		})

		It("overlays a constant target", func() {
			for _, v := range result.Series.Target {
				Expect(v).To(Equal(5.0))
			}
		})

		It("moves the motor towards the target", func() {
			Expect(result.Series.Speed[249]).To(BeNumerically(">", 2.5))
		})
	})

	staysInsideLimits := func(g control.Gains, target float64) {
		result, err := s.Run(ctx, g, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Series.Len()).To(Equal(250))

		for i := 0; i < result.Series.Len(); i++ {
			Expect(result.Series.Output[i]).To(BeNumerically(">=", 0))
			Expect(result.Series.Output[i]).To(BeNumerically("<=", 72))
			Expect(result.Series.Speed[i]).To(BeNumerically(">=", 0))
			Expect(result.Series.Speed[i]).To(BeNumerically("<=", 20))
		}
	}

	DescribeTable("keeps every sample inside the saturation limits",
		append([]interface{}{staysInsideLimits}, gainCases()...)...,
	)

	It("is deterministic across repeated and concurrent runs", func() {
		g := control.Gains{Kp: 22.5, Ki: 12.3, Kd: 0.071}
		first, err := s.Run(ctx, g, 7.25)
		Expect(err).NotTo(HaveOccurred())

		cases := make([]sim.Case, 8)
		for i := range cases {
			cases[i] = sim.Case{Name: fmt.Sprint(i), Gains: g, Target: 7.25}
		}
		results, err := s.Sweep(ctx, cases, 4)
		Expect(err).NotTo(HaveOccurred())

		for _, r := range results {
			Expect(r.Series).To(Equal(first.Series))
		}
	})

	It("keeps the constant drive torque independent of the controller", func() {
		result, err := s.Run(ctx, control.Gains{}, 0)
		Expect(err).NotTo(HaveOccurred())

		for _, u := range result.Series.Output {
			Expect(u).To(Equal(0.0))
		}
		Expect(result.Series.Speed[0]).To(BeNumerically(">", 0))
		Expect(result.Series.Speed[249]).To(BeNumerically(">", result.Series.Speed[0]))
	})
})

func gainCases() []interface{} {
	entries := make([]interface{}, 0)
	for _, kp := range []float64{0, 5, 15, 50, 200} {
		for _, ki := range []float64{0, 5, 30} {
			for _, kd := range []float64{0, 0.04, 0.1, 1} {
				for _, target := range []float64{0, 2.5, 10, 40} {
					entries = append(entries, Entry(
						fmt.Sprintf("kp=%g ki=%g kd=%g target=%g", kp, ki, kd, target),
						control.Gains{Kp: kp, Ki: ki, Kd: kd}, target,
					))
				}
			}
		}
	}
	return entries
}
