package tui

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/mcsim/internal/compute"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
)

func newTestSampler(t *testing.T, totalIt int) *mc.Sampler {
	t.Helper()
	backend := compute.NewCPUBackend(1)
	t.Cleanup(backend.Cleanup)

	box, err := particles.NewBox(5)
	if err != nil {
		t.Fatal(err)
	}
	sys, err := particles.NewLattice(box, particles.LatticeSpec{DistToEdge: 1, Step: 1, Count: 27}, false)
	if err != nil {
		t.Fatal(err)
	}

	params := mc.Params{Temperature: 1, MaxDeviation: 0.05, NMax: totalIt, TotalIt: totalIt}
	rng := rand.New(rand.NewSource(1))
	s, err := mc.NewSampler(
		mc.NewEvaluator(potential.NewLennardJones(2.5), backend),
		mc.NewTrialGenerator(rng, params.MaxDeviation, params.TrialMode),
		rng, params, sys,
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelStepsOnTick(t *testing.T) {
	s := newTestSampler(t, 100)
	m := newModel(s, "lj")

	next, cmd := m.Update(tickMsg{})
	m = next.(model)
	if s.Attempts() != m.speed {
		t.Errorf("expected %d attempts after one tick, got %d", m.speed, s.Attempts())
	}
	if cmd == nil {
		t.Error("expected another tick to be scheduled")
	}

	for i := 0; i < 20; i++ {
		next, _ = m.Update(tickMsg{})
		m = next.(model)
	}
	if !s.Done() {
		t.Error("sampler should have finished")
	}
	if s.Attempts() > 100 {
		t.Errorf("ticks must not overrun total_it, got %d attempts", s.Attempts())
	}

	if _, cmd = m.Update(tickMsg{}); cmd != nil {
		t.Error("finished model should stop ticking")
	}
	if !strings.Contains(m.View(), "finished") {
		t.Error("view should report the finished state")
	}
}

func TestModelPause(t *testing.T) {
	s := newTestSampler(t, 100)
	m := newModel(s, "lj")

	next, _ := m.Update(key(" "))
	m = next.(model)
	if !m.paused {
		t.Fatal("space should pause")
	}

	next, _ = m.Update(tickMsg{})
	m = next.(model)
	if s.Attempts() != 0 {
		t.Errorf("paused model stepped %d times", s.Attempts())
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view should report the paused state")
	}
}

func TestModelSpeed(t *testing.T) {
	m := newModel(newTestSampler(t, 10), "lj")

	next, _ := m.Update(key("+"))
	m = next.(model)
	if m.speed != 32 {
		t.Errorf("expected speed 32, got %d", m.speed)
	}

	for i := 0; i < 10; i++ {
		next, _ = m.Update(key("-"))
		m = next.(model)
	}
	if m.speed != 1 {
		t.Errorf("speed should floor at 1, got %d", m.speed)
	}

	next, _ = m.Update(key("0"))
	if next.(model).speed != 16 {
		t.Errorf("expected speed reset to 16, got %d", next.(model).speed)
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(newTestSampler(t, 10), "lj")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelGraph(t *testing.T) {
	s := newTestSampler(t, 500)
	m := newModel(s, "lj")
	m.speed = 500

	next, _ := m.Update(tickMsg{})
	m = next.(model)
	if len(s.History()) >= 2 && m.graph() == "" {
		t.Error("expected a graph once two energies were accepted")
	}
	if !strings.Contains(m.View(), "accepted") {
		t.Error("view should show accepted count")
	}
}

func TestModelBoxToggle(t *testing.T) {
	m := newModel(newTestSampler(t, 10), "lj")
	if !strings.Contains(m.View(), "┌") {
		t.Error("box projection should be shown by default")
	}

	next, _ := m.Update(key("b"))
	m = next.(model)
	if m.showBox {
		t.Fatal("b should hide the projection")
	}
	if strings.Contains(m.View(), "┌") {
		t.Error("hidden projection still rendered")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 1000, 10, 2)

	p.Start()
	p.OnStep(mc.StepInfo{Iteration: 0, Accepted: 1, U1: 4, U2: 2, Commit: true})
	p.Stop()

	out := buf.String()
	if !strings.Contains(out, "iter 1/10") {
		t.Errorf("missing iteration in %q", out)
	}
	if !strings.Contains(out, "U/N 1.000000") {
		t.Errorf("missing energy per particle in %q", out)
	}
	if !strings.HasSuffix(out, showCursor) {
		t.Error("Stop should restore the cursor")
	}
}
