package tui

import (
	"strings"

	"github.com/san-kum/mcsim/internal/particles"
)

// Braille cells hold 2x4 dots; the rune offset is 0x2800.
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). The canvas is Width*2 by
// Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		b.WriteString(string(row))
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Project draws the x-y projection of every particle's periodic image, so
// the picture always covers exactly one box.
func (c *Canvas) Project(sys *particles.System) {
	c.Clear()
	w := float64(c.Width*2 - 1)
	h := float64(c.Height*4 - 1)
	for _, p := range sys.Positions {
		img := sys.Box.Image(p)
		x := (img.X + sys.Box.Half) / sys.Box.Size
		y := (sys.Box.Half - img.Y) / sys.Box.Size
		c.Set(int(x*w+0.5), int(y*h+0.5))
	}
}
