package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/logging"
)

// TuneDeviation runs a short experiment per candidate max_deviation and
// returns the candidate whose acceptance ratio is closest to target, along
// with that ratio's distance from target.
func TuneDeviation(ctx context.Context, base *config.Config, candidates []float64, target float64, log logging.Logger) (float64, float64, error) {
	if len(candidates) == 0 {
		return 0, 0, errors.New("optim: no candidate deviations")
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		cfg.MaxDeviation = params["max_deviation"]
		exp := experiment.New(&cfg, log)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}
	score := func(metrics map[string]float64) float64 {
		return math.Abs(metrics["acceptance"] - target)
	}

	g := NewGridSearch([]string{"max_deviation"}, [][]float64{candidates})
	best, dist, err := g.Search(ctx, build, score)
	if err != nil {
		return 0, 0, err
	}
	return best["max_deviation"], dist, nil
}

// Geometric returns n values from lo to hi spaced by a constant ratio.
func Geometric(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	ratio := math.Pow(hi/lo, 1/float64(n-1))
	v := lo
	for i := range out {
		out[i] = v
		v *= ratio
	}
	out[n-1] = hi
	return out
}
