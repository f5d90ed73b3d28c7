package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mcsim/internal/mc"
)

var ErrInterrupted = errors.New("tui: run interrupted before completion")

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	frame  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238"))
)

const (
	historyWindow = 200
	maxSpeed      = 4096
	boxCols       = 24
	boxRows       = 12
)

type model struct {
	sampler *mc.Sampler
	title   string

	paused    bool
	showBox   bool
	speed     int
	err       error
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func newModel(s *mc.Sampler, title string) model {
	return model{
		sampler: s,
		title:   title,
		speed:   16,
		showBox: true,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.err != nil || m.sampler.Done() {
			return m, nil
		}
		if !m.paused {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed && !m.sampler.Done(); i++ {
				if _, err := m.sampler.Step(); err != nil {
					m.err = err
					return m, nil
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "0":
		m.speed = 16
	case "b":
		m.showBox = !m.showBox
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	params := m.sampler.Params()
	n := float64(m.sampler.ParticleCount())

	statusIcon, statusText := green.Render("●"), green.Render("running")
	switch {
	case m.err != nil:
		statusIcon, statusText = red.Render("✕"), red.Render("failed")
	case m.sampler.Done():
		statusIcon, statusText = cyan.Render("■"), cyan.Render("finished")
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.title), statusText))

	progress := 0.0
	if params.TotalIt > 0 {
		progress = float64(m.sampler.Attempts()) / float64(params.TotalIt)
	}
	if params.NMax > 0 {
		progress = max(progress, float64(m.sampler.Accepted())/float64(params.NMax))
	}
	progress = min(progress, 1)
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar,
		dim.Render(fmt.Sprintf("%.0f%%", progress*100)),
		dim.Render(fmt.Sprintf("%.0ffps ×%d", m.fps, m.speed))))

	ratio := 0.0
	if m.sampler.Attempts() > 0 {
		ratio = float64(m.sampler.Accepted()) / float64(m.sampler.Attempts())
	}
	b.WriteString("   " + dim.Render("attempts ") + white.Render(fmt.Sprintf("%-8d", m.sampler.Attempts())) +
		dim.Render("accepted ") + white.Render(fmt.Sprintf("%-8d", m.sampler.Accepted())) +
		dim.Render("ratio ") + white.Render(fmt.Sprintf("%.4f", ratio)) + "\n")
	b.WriteString("   " + dim.Render("U/N ") + green.Render(fmt.Sprintf("%.6f", m.sampler.Energy()/n)) +
		dim.Render("   initial ") + white.Render(fmt.Sprintf("%.6f", m.sampler.InitialEnergy()/n)) + "\n\n")

	panel := m.graph()
	if m.showBox {
		panel = lipgloss.JoinHorizontal(lipgloss.Top, m.projection(), "   ", panel)
	}
	if panel != "" {
		for _, line := range strings.Split(panel, "\n") {
			b.WriteString("   " + line + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  0 reset speed  b box  q quit") + "\n")
	return b.String()
}

// graph plots the most recent accepted energies per particle.
func (m model) graph() string {
	history := m.sampler.History()
	if len(history) < 2 {
		return ""
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	n := float64(m.sampler.ParticleCount())
	data := make([]float64, len(history))
	for i, e := range history {
		data[i] = e / n
	}

	w := max(m.width-16, 30)
	if m.showBox {
		w = max(m.width-16-boxCols-3, 30)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(w),
		asciigraph.Caption("accepted energy per particle"),
	)
}

// projection is the x-y view of the current images.
func (m model) projection() string {
	c := NewCanvas(boxCols, boxRows)
	c.Project(m.sampler.Current())
	return frame.Render(c.String())
}

// Run drives s inside a full-screen program until it finishes or the user
// quits. Quitting early yields ErrInterrupted and no result.
func Run(s *mc.Sampler, title string) (*mc.Result, error) {
	p := tea.NewProgram(newModel(s, title), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(model)
	if m.err != nil {
		return nil, m.err
	}
	if !s.Done() {
		return nil, ErrInterrupted
	}
	return s.Result(), nil
}
