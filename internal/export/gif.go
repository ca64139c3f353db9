package export

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/trail"
	"github.com/san-kum/dpend/internal/viz"
)

const shades = 5

// Palette layout: background, rods, then faint-to-bright ramps for the
// upper (yellow) and lower (blue) trails.
var gifPalette = func() color.Palette {
	pal := color.Palette{
		color.RGBA{0x0a, 0x0a, 0x0a, 0xff},
		color.RGBA{0xdd, 0xdd, 0xdd, 0xff},
	}
	for i := 1; i <= shades; i++ {
		k := uint8(0x0a + (0xff-0x0a)*i/shades)
		pal = append(pal, color.RGBA{k, k, uint8(0x0a * (shades - i) / shades), 0xff})
	}
	for i := 1; i <= shades; i++ {
		pal = append(pal, color.RGBA{uint8(0x33 * i / shades), uint8(0x99 * i / shades), uint8(0x0a + (0xff-0x0a)*i/shades), 0xff})
	}
	return pal
}()

const (
	idxBackground = 0
	idxRod        = 1
	idxUpper      = 2
	idxLower      = 2 + shades
)

type GIFOptions struct {
	Size  int
	Trail int
	// Delay between frames in 100ths of a second.
	Delay int
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Size: 320, Trail: trail.DefaultWindow, Delay: 3}
}

// WriteGIF renders every frame with fading trails and encodes the animation.
func WriteGIF(w io.Writer, frames []sim.Frame, p models.Params, opts GIFOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("nothing to render: no frames")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultGIFOptions().Size
	}
	if opts.Delay < 2 {
		opts.Delay = 2
	}

	view := viz.NewViewport(opts.Size, opts.Size, viz.Reach(p.Length))
	upper := trail.NewTrail(opts.Trail)
	lower := trail.NewTrail(opts.Trail)

	anim := gif.GIF{LoopCount: 0}
	for i, f := range frames {
		upper.Add(i, trail.Point{X: f.X1, Y: f.Y1})
		lower.Add(i, trail.Point{X: f.X2, Y: f.Y2})

		img := image.NewPaletted(image.Rect(0, 0, opts.Size, opts.Size), gifPalette)
		drawTrail(img, view, upper, idxUpper)
		drawTrail(img, view, lower, idxLower)

		px, py := view.Map(0, 0)
		x1, y1 := view.Map(f.X1, f.Y1)
		x2, y2 := view.Map(f.X2, f.Y2)
		line(img, px, py, x1, y1, idxRod)
		line(img, x1, y1, x2, y2, idxRod)
		dot(img, px, py, 2, idxRod)
		dot(img, x1, y1, 3, idxLower+shades-1)
		dot(img, x2, y2, 3, idxLower+shades-1)

		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, opts.Delay)
	}

	return gif.EncodeAll(w, &anim)
}

func drawTrail(img *image.Paletted, view viz.Viewport, tr *trail.Trail, base uint8) {
	tr.Each(func(age int, s trail.Segment) {
		level := int(math.Ceil(tr.Opacity(age)*shades)) - 1
		if level < 0 {
			level = 0
		}
		if level >= shades {
			level = shades - 1
		}
		x0, y0 := view.Map(s.From.X, s.From.Y)
		x1, y1 := view.Map(s.To.X, s.To.Y)
		line(img, x0, y0, x1, y1, base+uint8(level))
	})
}

// line draws with Bresenham's algorithm, keeping the brighter of two
// overlapping trail shades.
func line(img *image.Paletted, x0, y0, x1, y1 int, idx uint8) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		setPixel(img, x0, y0, idx)
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

func dot(img *image.Paletted, x, y, r int, idx uint8) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			img.SetColorIndex(x+dx, y+dy, idx)
		}
	}
}

func setPixel(img *image.Paletted, x, y int, idx uint8) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	cur := img.ColorIndexAt(x, y)
	if cur != idxBackground && sameRamp(cur, idx) && cur > idx {
		return
	}
	img.SetColorIndex(x, y, idx)
}

func sameRamp(a, b uint8) bool {
	return a >= idxUpper && b >= idxUpper && (a < idxLower) == (b < idxLower)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
