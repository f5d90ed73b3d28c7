package mc

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/particles"
)

// Sampler owns the current configuration and the accepted-energy history.
// Iterations are strictly sequential; each trial is built in a private buffer
// and swapped in only on acceptance.
type Sampler struct {
	eval      *Evaluator
	gen       *TrialGenerator
	rng       *rand.Rand
	params    Params
	pool      *PositionPool
	current   *particles.System
	u1        float64
	initial   float64
	attempts  int
	accepted  int
	history   []float64
	metrics   []Metric
	observers []Observer
	log       logging.Logger
	started   time.Time
}

// NewSampler clones initial and scores it. rng must be the generator gen
// draws from so the whole run consumes one seeded stream.
func NewSampler(eval *Evaluator, gen *TrialGenerator, rng *rand.Rand, params Params, initial *particles.System) (*Sampler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Sampler{
		eval:      eval,
		gen:       gen,
		rng:       rng,
		params:    params,
		pool:      NewPositionPool(initial.Len()),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.Nop{},
		started:   time.Now(),
	}
	s.current = &particles.System{
		Box:       initial.Box,
		Positions: s.pool.GetAndCopy(initial.Positions),
		Charges:   initial.Charges,
	}

	u, err := eval.Energy(s.current)
	if err != nil {
		return nil, fmt.Errorf("initial energy: %w", err)
	}
	s.u1 = u
	s.initial = u
	s.history = make([]float64, 0, min(params.NMax, 1<<16))
	return s, nil
}

func (s *Sampler) AddMetric(m Metric)         { s.metrics = append(s.metrics, m) }
func (s *Sampler) AddObserver(o Observer)     { s.observers = append(s.observers, o) }
func (s *Sampler) SetLogger(l logging.Logger) { s.log = l }
func (s *Sampler) Energy() float64            { return s.u1 }
func (s *Sampler) InitialEnergy() float64     { return s.initial }
func (s *Sampler) Attempts() int              { return s.attempts }
func (s *Sampler) Accepted() int              { return s.accepted }
func (s *Sampler) History() []float64         { return s.history }
func (s *Sampler) Current() *particles.System { return s.current }
func (s *Sampler) Params() Params             { return s.params }
func (s *Sampler) ParticleCount() int         { return s.current.Len() }

// Done reports whether either termination counter has reached its bound.
func (s *Sampler) Done() bool {
	return s.accepted >= s.params.NMax || s.attempts >= s.params.TotalIt
}

// Step runs one propose/score/accept iteration.
func (s *Sampler) Step() (StepInfo, error) {
	if s.Done() {
		return StepInfo{}, ErrFinished
	}

	trial := &particles.System{Positions: s.pool.Get()}
	if err := s.gen.Propose(trial, s.current); err != nil {
		s.pool.Put(trial.Positions)
		return StepInfo{}, err
	}

	u2, err := s.eval.Energy(trial)
	if err != nil {
		s.pool.Put(trial.Positions)
		return StepInfo{}, fmt.Errorf("iteration %d: %w", s.attempts, err)
	}

	info := StepInfo{
		Iteration:   s.attempts,
		U1:          s.u1,
		U2:          u2,
		Probability: math.Exp((s.u1 - u2) / s.params.Temperature),
		Draw:        s.rng.Float64(),
	}
	info.Commit = Accept(s.params.Acceptance, s.u1, u2, s.params.Temperature, info.Draw)

	if info.Commit {
		s.pool.Put(s.current.Positions)
		s.current = trial
		s.u1 = u2
		s.history = append(s.history, u2)
		s.accepted++
	} else {
		s.pool.Put(trial.Positions)
	}
	s.attempts++
	info.Accepted = s.accepted

	s.log.Debugf("iter %d u1=%f u2=%f p=%f r=%f accepted=%v", info.Iteration, info.U1, info.U2, info.Probability, info.Draw, info.Commit)
	for _, m := range s.metrics {
		m.Observe(info)
	}
	for _, o := range s.observers {
		o.OnStep(info)
	}
	return info, nil
}

// Run iterates until a counter hits its bound. A cancelled context aborts
// the run without a result.
func (s *Sampler) Run(ctx context.Context) (*Result, error) {
	for !s.Done() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}

	res := s.Result()
	s.log.Infof("energy is %f, good iters percent %f", res.EnergyPerParticle, res.AcceptanceRatio)
	return res, nil
}

// Result reports the last accepted energy, or the initial energy when no
// move was accepted.
func (s *Sampler) Result() *Result {
	energy := s.initial
	if n := len(s.history); n > 0 {
		energy = s.history[n-1]
	}

	ratio := 0.0
	if s.attempts > 0 {
		ratio = float64(s.accepted) / float64(s.attempts)
	}

	history := make([]float64, len(s.history))
	copy(history, s.history)

	res := &Result{
		InitialEnergy:     s.initial,
		Energy:            energy,
		EnergyPerParticle: energy / float64(s.current.Len()),
		Attempts:          s.attempts,
		Accepted:          s.accepted,
		AcceptanceRatio:   ratio,
		History:           history,
		Final:             s.current.Clone(),
		WallTime:          time.Since(s.started),
		DeviceTime:        s.eval.Backend().DeviceTime(),
		Metrics:           make(map[string]float64),
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
