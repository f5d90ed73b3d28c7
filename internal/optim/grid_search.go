package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mcsim/internal/experiment"
)

// BuildFunc prepares a ready-to-run experiment for one grid point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

// ScoreFunc maps a run's metrics to a value to minimize.
type ScoreFunc func(metrics map[string]float64) float64

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points enumerates the cartesian product of the ranges. The last
// parameter varies fastest.
func (g *GridSearch) Points() ([]map[string]float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	total := 1
	for i, r := range g.ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %q", g.paramNames[i])
		}
		total *= len(r)
	}

	points := make([]map[string]float64, 0, total)
	idx := make([]int, len(g.ranges))
	for n := 0; n < total; n++ {
		p := make(map[string]float64, len(g.paramNames))
		for d, name := range g.paramNames {
			p[name] = g.ranges[d][idx[d]]
		}
		points = append(points, p)

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < len(g.ranges[d]) {
				break
			}
			idx[d] = 0
		}
	}
	return points, nil
}

// Search runs every grid point and returns the one with the lowest score.
// The first build or run error stops the search.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, score ScoreFunc) (map[string]float64, float64, error) {
	points, err := g.Points()
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, p := range points {
		val, err := runPoint(ctx, p, build, score)
		if err != nil {
			return nil, 0, err
		}
		if val < best {
			best, bestParams = val, p
		}
	}
	return bestParams, best, nil
}

func runPoint(ctx context.Context, p map[string]float64, build BuildFunc, score ScoreFunc) (float64, error) {
	exp, err := build(p)
	if err != nil {
		return 0, err
	}
	defer exp.Close()

	res, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	return score(res.Metrics), nil
}
