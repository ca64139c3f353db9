package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/models"
)

// Project maps an angular state to bob positions.
func Project(x dynamo.State, p models.Params) Frame {
	l := p.Length
	x1 := l * math.Sin(x[models.Theta1])
	y1 := -l * math.Cos(x[models.Theta1])
	return Frame{
		X1: x1,
		Y1: y1,
		X2: x1 + l*math.Sin(x[models.Theta2]),
		Y2: y1 - l*math.Cos(x[models.Theta2]),
	}
}

// FrameCount returns how many samples t0 + k·dt fall in [t0, t1).
//
// This is floor((t1-t0)/dt) only when the span is a multiple of dt, within
// a relative round-off of 1e-9. Otherwise the count is ceil((t1-t0)/dt), so
// a span of 1 with dt 0.3 gives 4 frames (0, 0.3, 0.6, 0.9) rather than 3,
// and any dt longer than the span gives the single frame at t0 rather than 0.
func FrameCount(t0, t1, dt float64) int {
	span := t1 - t0
	if !(span > 0) || !(dt > 0) {
		return 0
	}
	n := math.Round(span / dt)
	if math.Abs(n*dt-span) <= 1e-9*math.Max(span, dt) {
		return int(n)
	}
	return int(math.Ceil(span / dt))
}

// Sample evaluates sol every dt over the half-open span [t0, t1) and
// projects each state. Sample times are t0 + k·dt, never accumulated.
func Sample(sol *integrators.Solution, dt float64, p models.Params) ([]float64, []dynamo.State, []Frame, error) {
	if !(dt > 0) {
		return nil, nil, nil, fmt.Errorf("sample step %f: %w", dt, dynamo.ErrParameterBounds)
	}

	t0, t1 := sol.Span()
	n := FrameCount(t0, t1, dt)

	times := make([]float64, 0, n)
	states := make([]dynamo.State, 0, n)
	frames := make([]Frame, 0, n)

	for k := 0; k < n; k++ {
		t := t0 + float64(k)*dt
		x, err := sol.At(t)
		if err != nil {
			return nil, nil, nil, err
		}
		if !x.IsValid() {
			return nil, nil, nil, dynamo.Fail(k, t, x, dynamo.ErrInvalidState)
		}
		times = append(times, t)
		states = append(states, x)
		frames = append(frames, Project(x, p))
	}

	return times, states, frames, nil
}
