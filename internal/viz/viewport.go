package viz

import "math"

// Viewport maps pendulum coordinates (pivot at the origin, y up) onto
// canvas sub-pixels (y down), keeping the aspect ratio.
type Viewport struct {
	cx, cy int
	scale  float64
}

// NewViewport fits a square of half-width reach into a w×h sub-pixel area.
func NewViewport(w, h int, reach float64) Viewport {
	side := math.Min(float64(w), float64(h))
	return Viewport{
		cx:    w / 2,
		cy:    h / 2,
		scale: (side/2 - 1) / reach,
	}
}

func (v Viewport) Map(x, y float64) (int, int) {
	return v.cx + int(math.Round(x*v.scale)), v.cy - int(math.Round(y*v.scale))
}

// Reach is the half-width needed to show both arms at full extension.
func Reach(length float64) float64 {
	return 2 * length * 1.1
}
