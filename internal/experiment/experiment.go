package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/mcsim/internal/compute"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/metrics"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
	"github.com/san-kum/mcsim/internal/storage"
)

// Experiment wires one run: lattice, potential, backend and sampler.
type Experiment struct {
	cfg     *config.Config
	seed    int64
	log     logging.Logger
	pot     potential.Potential
	backend compute.Backend
	initial *particles.System
	sampler *mc.Sampler
}

// New takes the seed from cfg, or from the clock when cfg.Seed is zero.
func New(cfg *config.Config, log logging.Logger) *Experiment {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Experiment{cfg: cfg, seed: seed, log: log}
}

// Setup validates the configuration and brings up the backend. Any failure
// here is fatal to the run.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	box, err := e.cfg.Box()
	if err != nil {
		return err
	}
	e.pot, err = e.cfg.NewPotential()
	if err != nil {
		return err
	}

	e.initial, err = particles.NewLattice(box, e.cfg.Lattice(), e.pot.NeedsCharges())
	if err != nil {
		e.log.Errorf("%v", err)
		return err
	}

	kind, err := e.cfg.BackendKind()
	if err != nil {
		return err
	}
	e.backend, err = compute.Select(kind, e.cfg.BackendOptions())
	if err != nil {
		e.log.Errorf("backend %s: %v", kind, err)
		return fmt.Errorf("backend %s: %w", kind, err)
	}
	e.log.Infof("backend %s, potential %s, %d particles, seed %d", e.backend.Name(), e.pot.Kind(), e.initial.Len(), e.seed)

	params, err := e.cfg.Params()
	if err != nil {
		e.backend.Cleanup()
		return err
	}

	rng := rand.New(rand.NewSource(e.seed))
	gen := mc.NewTrialGenerator(rng, params.MaxDeviation, params.TrialMode)
	e.sampler, err = mc.NewSampler(mc.NewEvaluator(e.pot, e.backend), gen, rng, params, e.initial)
	if err != nil {
		e.backend.Cleanup()
		e.log.Errorf("%v", err)
		return err
	}
	e.sampler.SetLogger(e.log)
	for _, m := range metrics.Defaults(e.initial.Len()) {
		e.sampler.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*mc.Result, error) {
	if e.sampler == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	res, err := e.sampler.Run(ctx)
	if err != nil {
		e.log.Errorf("run aborted: %v", err)
		return nil, err
	}

	e.log.Infof("total time %v, device time %v", res.WallTime, res.DeviceTime)
	return res, nil
}

// Close releases the backend. It is safe to call more than once.
func (e *Experiment) Close() {
	if e.backend != nil {
		e.backend.Cleanup()
	}
}

func (e *Experiment) Sampler() *mc.Sampler           { return e.sampler }
func (e *Experiment) Backend() compute.Backend       { return e.backend }
func (e *Experiment) Initial() *particles.System     { return e.initial }
func (e *Experiment) Potential() potential.Potential { return e.pot }
func (e *Experiment) Seed() int64                    { return e.seed }

// Metadata describes a finished run for the store.
func (e *Experiment) Metadata(res *mc.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Potential:         e.pot.Kind().String(),
		Backend:           e.backend.Name(),
		Seed:              e.seed,
		Particles:         e.initial.Len(),
		BoxSize:           e.cfg.BoxSize,
		Temperature:       e.cfg.Temperature,
		MaxDeviation:      e.cfg.MaxDeviation,
		NMax:              e.cfg.NMax,
		TotalIt:           e.cfg.TotalIt,
		TrialMode:         e.cfg.TrialMode,
		Acceptance:        e.cfg.Acceptance,
		InitialEnergy:     res.InitialEnergy,
		Energy:            res.Energy,
		EnergyPerParticle: res.EnergyPerParticle,
		Attempts:          res.Attempts,
		Accepted:          res.Accepted,
		AcceptanceRatio:   res.AcceptanceRatio,
		WallTime:          res.WallTime,
		DeviceTime:        res.DeviceTime,
		Metrics:           res.Metrics,
	}
}
