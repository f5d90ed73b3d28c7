package mc_test

import (
	"context"
	"errors"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mcsim/internal/compute"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/metrics"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
	"gonum.org/v1/gonum/spatial/r3"
)

// scripted returns energies from a function of the call index.
type scripted struct {
	calls int
	next  func(call int) float64
	err   error
}

func (s *scripted) Name() string              { return "scripted" }
func (s *scripted) Available() bool           { return true }
func (s *scripted) DeviceTime() time.Duration { return 0 }
func (s *scripted) Cleanup()                  {}

func (s *scripted) Energy(req compute.Request) (float64, error) {
	call := s.calls
	s.calls++
	if s.err != nil && call > 0 {
		return 0, s.err
	}
	return s.next(call), nil
}

func lattice(n int, charged bool) *particles.System {
	box, err := particles.NewBox(10)
	Expect(err).NotTo(HaveOccurred())
	sys, err := particles.NewLattice(box, particles.LatticeSpec{DistToEdge: 1, Step: 1, Count: n}, charged)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func newSampler(backend compute.Backend, params mc.Params, initial *particles.System, seed int64) *mc.Sampler {
	rng := rand.New(rand.NewSource(seed))
	eval := mc.NewEvaluator(potential.NewLennardJones(2.5), backend)
	gen := mc.NewTrialGenerator(rng, params.MaxDeviation, params.TrialMode)
	s, err := mc.NewSampler(eval, gen, rng, params, initial)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Accept", func() {
	It("always accepts a lower energy", func() {
		for _, mode := range []mc.AcceptanceMode{mc.AcceptLiteral, mc.AcceptMetropolis} {
			for _, r := range []float64{0, 0.25, 0.5, 0.999999} {
				Expect(mc.Accept(mode, 1, 0.5, 1, r)).To(BeTrue())
				Expect(mc.Accept(mode, -3, -300, 0.01, r)).To(BeTrue())
			}
		}
	})

	It("compares probability <= draw in literal mode", func() {
		// exp(-1) ~ 0.368
		Expect(mc.Accept(mc.AcceptLiteral, 0, 1, 1, 0.5)).To(BeTrue())
		Expect(mc.Accept(mc.AcceptLiteral, 0, 1, 1, 0.2)).To(BeFalse())
	})

	It("compares draw <= probability in metropolis mode", func() {
		Expect(mc.Accept(mc.AcceptMetropolis, 0, 1, 1, 0.5)).To(BeFalse())
		Expect(mc.Accept(mc.AcceptMetropolis, 0, 1, 1, 0.2)).To(BeTrue())
	})

	It("rejects an equal energy in literal mode", func() {
		for _, r := range []float64{0, 0.5, 0.999999} {
			Expect(mc.Accept(mc.AcceptLiteral, 2, 2, 1, r)).To(BeFalse())
		}
	})
})

var _ = Describe("Params", func() {
	DescribeTable("Validate",
		func(p mc.Params, ok bool) {
			err := p.Validate()
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(errors.Is(err, mc.ErrInvalidParams)).To(BeTrue())
			}
		},
		Entry("valid", mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 10, TotalIt: 10}, true),
		Entry("zero caps", mc.Params{Temperature: 1}, true),
		Entry("zero temperature", mc.Params{Temperature: 0, NMax: 1, TotalIt: 1}, false),
		Entry("negative deviation", mc.Params{Temperature: 1, MaxDeviation: -1}, false),
		Entry("negative nmax", mc.Params{Temperature: 1, NMax: -1}, false),
		Entry("negative total_it", mc.Params{Temperature: 1, TotalIt: -1}, false),
	)

	It("parses mode names", func() {
		m, err := mc.ParseAcceptanceMode("metropolis")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(mc.AcceptMetropolis))
		Expect(m.String()).To(Equal("metropolis"))

		tm, err := mc.ParseTrialMode("shared")
		Expect(err).NotTo(HaveOccurred())
		Expect(tm).To(Equal(mc.SharedOffset))

		_, err = mc.ParseTrialMode("diagonal")
		Expect(err).To(HaveOccurred())
		_, err = mc.ParseAcceptanceMode("glauber")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("TrialGenerator", func() {
	It("displaces every axis within half the deviation without touching the source", func() {
		cur := lattice(27, false)
		orig := cur.Clone()
		dst := cur.Clone()

		gen := mc.NewTrialGenerator(rand.New(rand.NewSource(1)), 0.2, mc.IndependentAxes)
		Expect(gen.Propose(dst, cur)).To(Succeed())

		Expect(cur.Positions).To(Equal(orig.Positions))
		distinct := false
		for i := range cur.Positions {
			d := r3.Sub(dst.Positions[i], cur.Positions[i])
			for _, c := range []float64{d.X, d.Y, d.Z} {
				Expect(c).To(BeNumerically(">=", -0.1))
				Expect(c).To(BeNumerically("<", 0.1))
			}
			if d.X != d.Y || d.Y != d.Z {
				distinct = true
			}
		}
		Expect(distinct).To(BeTrue())
	})

	It("applies one offset to all axes in shared mode", func() {
		cur := lattice(8, false)
		dst := cur.Clone()
		gen := mc.NewTrialGenerator(rand.New(rand.NewSource(2)), 0.5, mc.SharedOffset)
		Expect(gen.Propose(dst, cur)).To(Succeed())

		for i := range cur.Positions {
			d := r3.Sub(dst.Positions[i], cur.Positions[i])
			Expect(d.Y).To(BeNumerically("~", d.X, 1e-12))
			Expect(d.Z).To(BeNumerically("~", d.X, 1e-12))
		}
	})

	It("consumes three draws per particle in both modes", func() {
		cur := lattice(5, false)
		a, b := rand.New(rand.NewSource(9)), rand.New(rand.NewSource(9))
		Expect(mc.NewTrialGenerator(a, 0.1, mc.IndependentAxes).Propose(cur.Clone(), cur)).To(Succeed())
		Expect(mc.NewTrialGenerator(b, 0.1, mc.SharedOffset).Propose(cur.Clone(), cur)).To(Succeed())
		Expect(a.Float64()).To(Equal(b.Float64()))
	})

	It("rejects a buffer of the wrong size", func() {
		gen := mc.NewTrialGenerator(rand.New(rand.NewSource(1)), 0.1, mc.IndependentAxes)
		Expect(gen.Propose(lattice(3, false), lattice(4, false))).NotTo(Succeed())
	})
})

var _ = Describe("Sampler", func() {
	var backend *compute.CPUBackend

	BeforeEach(func() {
		backend = compute.NewCPUBackend(2)
	})

	AfterEach(func() {
		backend.Cleanup()
	})

	It("reports the initial energy when total_it is zero", func() {
		sys := lattice(27, false)
		s := newSampler(backend, mc.Params{Temperature: 1, MaxDeviation: 0.007, NMax: 10, TotalIt: 0}, sys, 42)

		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Accepted).To(BeZero())
		Expect(res.Attempts).To(BeZero())
		Expect(res.AcceptanceRatio).To(BeZero())
		Expect(res.History).To(BeEmpty())

		direct, err := mc.NewEvaluator(potential.NewLennardJones(2.5), backend).Energy(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.EnergyPerParticle).To(BeNumerically("~", direct/27, 1e-12))
		Expect(res.Final.Positions).To(Equal(sys.Positions))
	})

	It("stops at nmax when every trial lowers the energy", func() {
		be := &scripted{next: func(call int) float64 { return -float64(call) }}
		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 5, TotalIt: 100}, lattice(8, false), 1)

		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Accepted).To(Equal(5))
		Expect(res.Attempts).To(Equal(5))
		Expect(res.AcceptanceRatio).To(Equal(1.0))
		Expect(res.History).To(Equal([]float64{-1, -2, -3, -4, -5}))
		Expect(res.Energy).To(Equal(-5.0))
		Expect(res.EnergyPerParticle).To(Equal(-5.0 / 8))
	})

	It("stops at total_it and keeps the state when nothing is accepted", func() {
		be := &scripted{next: func(int) float64 { return 3 }}
		sys := lattice(8, false)
		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 5, TotalIt: 20}, sys, 1)

		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Accepted).To(BeZero())
		Expect(res.Attempts).To(Equal(20))
		Expect(res.Energy).To(Equal(3.0))
		Expect(res.Final.Positions).To(Equal(sys.Positions))
	})

	It("commits accepted trials as the new current state", func() {
		be := &scripted{next: func(call int) float64 { return -float64(call) }}
		sys := lattice(8, false)
		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 0.5, NMax: 1, TotalIt: 1}, sys, 3)

		info, err := s.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Commit).To(BeTrue())
		Expect(info.Accepted).To(Equal(1))
		Expect(s.Current().Positions).NotTo(Equal(sys.Positions))
		Expect(s.Energy()).To(Equal(-1.0))

		_, err = s.Step()
		Expect(errors.Is(err, mc.ErrFinished)).To(BeTrue())
	})

	It("does not wrap stored positions back into the box", func() {
		be := &scripted{next: func(call int) float64 { return -float64(call) }}
		box, _ := particles.NewBox(2)
		sys, err := particles.NewLattice(box, particles.LatticeSpec{Step: 1, Count: 1}, false)
		Expect(err).NotTo(HaveOccurred())

		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 1.9, NMax: 500, TotalIt: 500}, sys, 4)
		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		p := res.Final.Positions[0]
		outside := p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 || p.Z < -1 || p.Z > 1
		Expect(outside).To(BeTrue())
	})

	It("is reproducible for a fixed seed", func() {
		params := mc.Params{Temperature: 0.5, MaxDeviation: 0.05, NMax: 50, TotalIt: 200}
		a, err := newSampler(backend, params, lattice(64, false), 7).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		b, err := newSampler(backend, params, lattice(64, false), 7).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.History).To(Equal(b.History))
		Expect(a.Final.Positions).To(Equal(b.Final.Positions))
		Expect(a.Accepted).To(BeNumerically("<=", params.NMax))
		Expect(len(a.History)).To(Equal(a.Accepted))
	})

	It("agrees between the cpu and device backends on the initial energy", func() {
		dev, err := compute.NewHostDevice(2)
		Expect(err).NotTo(HaveOccurred())
		offload := compute.NewOffloadBackend(dev)
		defer offload.Cleanup()

		params := mc.Params{Temperature: 1, MaxDeviation: 0.007, NMax: 1, TotalIt: 1}
		sys := lattice(125, false)
		cpu := newSampler(backend, params, sys, 1)
		gpu := newSampler(offload, params, sys, 1)
		Expect(gpu.InitialEnergy()).To(BeNumerically("~", cpu.InitialEnergy(), 1e-3))
	})

	It("feeds metrics and observers on every step", func() {
		be := &scripted{next: func(call int) float64 { return -float64(call % 3) }}
		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 100, TotalIt: 30}, lattice(8, false), 5)

		var seen []mc.StepInfo
		s.AddObserver(observerFunc(func(i mc.StepInfo) { seen = append(seen, i) }))
		for _, m := range metrics.Defaults(8) {
			s.AddMetric(m)
		}

		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(30))
		Expect(seen[29].Iteration).To(Equal(29))
		Expect(res.Metrics).To(HaveKeyWithValue("acceptance", BeNumerically("~", res.AcceptanceRatio, 1e-12)))
		Expect(res.Metrics).To(HaveKey("energy_mean"))
	})

	It("aborts on a backend error", func() {
		be := &scripted{next: func(int) float64 { return 0 }, err: errors.New("device lost")}
		s := newSampler(be, mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 10, TotalIt: 10}, lattice(8, false), 1)

		res, err := s.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("device lost")))
		Expect(res).To(BeNil())
	})

	It("aborts when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := newSampler(backend, mc.Params{Temperature: 1, MaxDeviation: 0.01, NMax: 10, TotalIt: 10}, lattice(8, false), 1)

		res, err := s.Run(ctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res).To(BeNil())
	})

	It("rejects invalid parameters", func() {
		rng := rand.New(rand.NewSource(1))
		eval := mc.NewEvaluator(potential.NewLennardJones(2.5), backend)
		_, err := mc.NewSampler(eval, mc.NewTrialGenerator(rng, 0.1, mc.IndependentAxes), rng, mc.Params{}, lattice(8, false))
		Expect(errors.Is(err, mc.ErrInvalidParams)).To(BeTrue())
	})
})

type observerFunc func(mc.StepInfo)

func (f observerFunc) OnStep(i mc.StepInfo) { f(i) }

var _ = Describe("PositionPool", func() {
	It("hands out buffers of the pooled size", func() {
		pool := mc.NewPositionPool(4)
		buf := pool.Get()
		Expect(buf).To(HaveLen(4))
		pool.Put(buf)
	})

	It("copies without aliasing the source", func() {
		src := lattice(4, false).Positions
		pool := mc.NewPositionPool(4)
		dst := pool.GetAndCopy(src)
		Expect(dst).To(Equal(src))

		dst[0].X += 1
		Expect(dst[0].X).NotTo(Equal(src[0].X))
	})
})
