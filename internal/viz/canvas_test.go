package viz

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetInk(0, 0, solid)
	c.SetInk(3, 3, solid)
	c.SetInk(-1, 0, solid)
	c.SetInk(100, 100, solid)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("cell 0 = %U, want %U", c.Grid[0][0], rune(blank|0x1))
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("cell 1 = %U, want %U", c.Grid[0][1], rune(blank|0x80))
	}
}

func TestCanvasInkKeepsStrongest(t *testing.T) {
	c := NewCanvas(1, 1)
	c.SetInk(0, 0, Ink{Hue: HueUpper, Alpha: 0.3})
	c.SetInk(0, 1, Ink{Hue: HueLower, Alpha: 0.8})
	c.SetInk(1, 0, Ink{Hue: HueUpper, Alpha: 0.5})

	if got := c.ink[0][0]; got.Hue != HueLower || got.Alpha != 0.8 {
		t.Errorf("ink = %+v, want lower at 0.8", got)
	}

	c.Clear()
	if c.ink[0][0].Alpha != 0 || c.Grid[0][0] != blank {
		t.Error("clear did not reset the cell")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)

	for col := 0; col < 4; col++ {
		if c.Grid[0][col] != blank|0x1|0x8 {
			t.Errorf("col %d = %U, want top row of both dots", col, c.Grid[0][col])
		}
	}

	out := c.Render()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Render should emit one line per row, got %q", out)
	}
	if !strings.Contains(out, string(rune(blank|0x1|0x8))) {
		t.Error("Render lost the drawn cells")
	}
}

func TestShade(t *testing.T) {
	if _, ok := shade(Ink{}); ok {
		t.Error("empty ink should have no shade")
	}

	faint, _ := shade(Ink{Hue: HueUpper, Alpha: 0.05})
	bright, _ := shade(Ink{Hue: HueUpper, Alpha: 1})
	over, _ := shade(Ink{Hue: HueUpper, Alpha: 1.5})

	p := palettes[HueUpper]
	if faint != p[0] || bright != p[len(p)-1] || over != p[len(p)-1] {
		t.Errorf("shades = %v %v %v", faint, bright, over)
	}
}

func TestViewport(t *testing.T) {
	v := NewViewport(160, 96, Reach(1))

	x, y := v.Map(0, 0)
	if x != 80 || y != 48 {
		t.Errorf("origin maps to (%d, %d), want (80, 48)", x, y)
	}

	_, yDown := v.Map(0, -2)
	if yDown <= 48 || yDown >= 96 {
		t.Errorf("fully extended bob maps to row %d, want inside lower half", yDown)
	}

	xRight, _ := v.Map(2, 0)
	if xRight <= 80 || xRight >= 160 {
		t.Errorf("fully extended bob maps to column %d, want inside right half", xRight)
	}
}
