package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/dpend/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// PhasePortrait holds one arm's angle (wrapped to (-π, π]) against its
// angular velocity.
type PhasePortrait struct {
	AngleIndex, RateIndex int
	Points                []Point
}

// NewPhasePortrait records states[i][angleIdx] against states[i][rateIdx].
// It returns nil if the indices do not fit the states.
func NewPhasePortrait(states []dynamo.State, angleIdx, rateIdx int) *PhasePortrait {
	if len(states) == 0 || angleIdx >= len(states[0]) || rateIdx >= len(states[0]) {
		return nil
	}

	portrait := &PhasePortrait{
		AngleIndex: angleIdx,
		RateIndex:  rateIdx,
		Points:     make([]Point, 0, len(states)),
	}
	for _, x := range states {
		portrait.Points = append(portrait.Points, Point{X: WrapAngle(x[angleIdx]), Y: x[rateIdx]})
	}
	return portrait
}

// WrapAngle maps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// PoincareSection returns the (θ1, ω1) pairs at which the lower arm passes
// upward through the vertical (θ2 crosses 0 with ω2 > 0), interpolated
// linearly between samples.
func PoincareSection(states []dynamo.State, angle1, rate1, angle2, rate2 int) []Point {
	var pts []Point
	for i := 1; i < len(states); i++ {
		prev, cur := WrapAngle(states[i-1][angle2]), WrapAngle(states[i][angle2])
		if !(prev < 0 && cur >= 0) || cur-prev > math.Pi || states[i][rate2] <= 0 {
			continue
		}
		frac := -prev / (cur - prev)
		a, b := states[i-1], states[i]
		pts = append(pts, Point{
			X: WrapAngle(a[angle1] + frac*(b[angle1]-a[angle1])),
			Y: a[rate1] + frac*(b[rate1]-a[rate1]),
		})
	}
	return pts
}

// ToASCII scatters the points onto a width×height grid, drawing the axes
// where they cross the visible area.
func ToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range canvas[r] {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}

	for _, p := range points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
