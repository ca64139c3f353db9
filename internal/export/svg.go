package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/viz"
)

const (
	upperStroke = "#ffff00"
	lowerStroke = "#3399ff"
	rodStroke   = "#dddddd"
)

// TrajectoryToSVG draws the paths of both bobs and the pendulum in its last
// pose. Both paths share one scale so the picture is not distorted.
func TrajectoryToSVG(frames []sim.Frame, p models.Params, size int) string {
	if len(frames) < 2 {
		return ""
	}

	view := viz.NewViewport(size, size, viz.Reach(p.Length))

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	writePath(&sb, frames, view, upperStroke, func(f sim.Frame) (float64, float64) { return f.X1, f.Y1 })
	writePath(&sb, frames, view, lowerStroke, func(f sim.Frame) (float64, float64) { return f.X2, f.Y2 })

	last := frames[len(frames)-1]
	px, py := view.Map(0, 0)
	x1, y1 := view.Map(last.X1, last.Y1)
	x2, y2 := view.Map(last.X2, last.Y2)
	sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="2" points="%d,%d %d,%d %d,%d"/>
`, rodStroke, px, py, x1, y1, x2, y2))
	sb.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="4" fill="%s"/>
<circle cx="%d" cy="%d" r="4" fill="%s"/>
<circle cx="%d" cy="%d" r="4" fill="%s"/>
`, px, py, rodStroke, x1, y1, lowerStroke, x2, y2, lowerStroke))

	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, frames []sim.Frame, view viz.Viewport, stroke string, pick func(sim.Frame) (float64, float64)) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.8" d="M`, stroke))
	for i, f := range frames {
		x, y := view.Map(pick(f))
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%d,%d", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%d,%d", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
