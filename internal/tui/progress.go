package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/mcsim/internal/mc"
)

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"
)

// Progress is an mc.Observer that redraws a single status line at most
// frameRate times per second.
type Progress struct {
	w         io.Writer
	frameRate int
	totalIt   int
	particles float64
	lastFrame time.Time
	last      mc.StepInfo
}

func NewProgress(w io.Writer, frameRate, totalIt, particles int) *Progress {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &Progress{
		w:         w,
		frameRate: frameRate,
		totalIt:   totalIt,
		particles: float64(particles),
	}
}

func (p *Progress) OnStep(s mc.StepInfo) {
	p.last = s
	if time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
		return
	}
	p.lastFrame = time.Now()
	p.render()
}

func (p *Progress) render() {
	u := p.last.U1
	if p.last.Commit {
		u = p.last.U2
	}
	fmt.Fprintf(p.w, "%s  iter %d/%d  accepted %d  U/N %.6f",
		clearLine, p.last.Iteration+1, p.totalIt, p.last.Accepted, u/p.particles)
}

func (p *Progress) Start() { fmt.Fprint(p.w, hideCursor) }

// Stop draws the final state and restores the cursor.
func (p *Progress) Stop() {
	p.render()
	fmt.Fprint(p.w, "\n"+showCursor)
}
