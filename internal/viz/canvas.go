package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Hue selects the palette a cell is drawn with.
type Hue int

const (
	HueRod Hue = iota
	HueUpper
	HueLower
)

// Ink is the color of a cell. When several strokes hit the same cell the
// most opaque one wins.
type Ink struct {
	Hue   Hue
	Alpha float64
}

var solid = Ink{Hue: HueRod, Alpha: 1}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	ink           [][]Ink
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		ink:    make([][]Ink, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]Ink, w)
	}
	c.Clear()
	return c
}

// SetInk sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) SetInk(x, y int, ink Ink) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if ink.Alpha > c.ink[row][col].Alpha {
		c.ink[row][col] = ink
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.ink[i][j] = Ink{}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.DrawLineInk(x0, y0, x1, y1, solid)
}

func (c *Canvas) DrawLineInk(x0, y0, x1, y1 int, ink Ink) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetInk(x0, y0, ink)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dot fills a (2r+1)² block of sub-pixels around (x, y).
func (c *Canvas) Dot(x, y, r int, ink Ink) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.SetInk(x+dx, y+dy, ink)
		}
	}
}

// Render returns the canvas with each cell colored by its ink. Runs of cells
// sharing a style are rendered together.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && color(c.ink[row][col]) == color(c.ink[row][start]) {
				continue
			}
			run := string(c.Grid[row][start:col])
			b.WriteString(inkStyle(c.ink[row][start]).Render(run))
			start = col
		}
		b.WriteString("\n")
	}
	return b.String()
}

func color(ink Ink) lipgloss.Color {
	s, _ := shade(ink)
	return s
}

func inkStyle(ink Ink) lipgloss.Style {
	s, ok := shade(ink)
	if !ok {
		return plainStyle
	}
	return lipgloss.NewStyle().Foreground(s)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
