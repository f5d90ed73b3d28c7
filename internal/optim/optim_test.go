package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
)

func tuneConfig() *config.Config {
	cfg := config.GetPreset("small")
	cfg.Particles = 27
	cfg.Seed = 7
	cfg.Workers = 1
	cfg.NMax = 400
	cfg.TotalIt = 400
	cfg.Acceptance = "metropolis"
	return cfg
}

func TestGridSearch(t *testing.T) {
	var visited []map[string]float64
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		visited = append(visited, params)
		cfg := tuneConfig()
		cfg.TotalIt = 5
		cfg.Temperature = params["temperature"]
		cfg.MaxDeviation = params["max_deviation"]
		exp := experiment.New(cfg, nil)
		return exp, exp.Setup()
	}
	// prefer the highest temperature
	score := func(m map[string]float64) float64 { return -float64(len(visited)) }

	g := NewGridSearch(
		[]string{"temperature", "max_deviation"},
		[][]float64{{0.5, 1.0}, {0.01, 0.02, 0.03}},
	)
	best, val, err := g.Search(context.Background(), build, score)
	if err != nil {
		t.Fatal(err)
	}
	if len(visited) != 6 {
		t.Errorf("expected 6 grid points, got %d", len(visited))
	}
	if best["temperature"] != 1.0 || best["max_deviation"] != 0.03 {
		t.Errorf("expected the last grid point, got %v", best)
	}
	if val != -6 {
		t.Errorf("expected score -6, got %f", val)
	}
}

func TestGridSearch_Points(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	points, err := g.Points()
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["a"] != 1 || points[0]["b"] != 10 {
		t.Errorf("unexpected first point %v", points[0])
	}
	if points[1]["a"] != 1 || points[1]["b"] != 20 {
		t.Errorf("last parameter should vary fastest, got %v", points[1])
	}
	if points[5]["a"] != 2 || points[5]["b"] != 30 {
		t.Errorf("unexpected last point %v", points[5])
	}

	g = NewGridSearch([]string{"a"}, [][]float64{{}})
	if _, err := g.Points(); err == nil {
		t.Error("expected error for an empty range")
	}
}

func TestGridSearch_Errors(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), nil, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}

	boom := errors.New("boom")
	g = NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	build := func(map[string]float64) (*experiment.Experiment, error) { return nil, boom }
	if _, _, err := g.Search(context.Background(), build, nil); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestTuneDeviation(t *testing.T) {
	candidates := []float64{0.001, 0.05, 1.5}
	best, dist, err := TuneDeviation(context.Background(), tuneConfig(), candidates, 0.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	// tiny steps accept nearly everything, huge steps nearly nothing
	if best != 0.05 && best != 1.5 {
		t.Errorf("expected a non-trivial deviation, got %g", best)
	}
	if dist < 0 || dist > 0.5 {
		t.Errorf("distance out of range: %f", dist)
	}

	if _, _, err := TuneDeviation(context.Background(), tuneConfig(), nil, 0.5, nil); err == nil {
		t.Error("expected error without candidates")
	}
}

func TestGeometric(t *testing.T) {
	got := Geometric(0.001, 0.1, 3)
	want := []float64{0.001, 0.01, 0.1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %g, got %g", i, want[i], got[i])
		}
	}
	if len(Geometric(1, 2, 1)) != 1 {
		t.Error("n=1 should return the lower bound")
	}
}
