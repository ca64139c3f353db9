package metrics

import (
	"math"

	"github.com/san-kum/dpend/internal/dynamo"
)

// Flips counts how often the arm at index idx swings over the top of the
// pivot, i.e. how often its angle crosses an odd multiple of π.
type Flips struct {
	name    string
	idx     int
	last    float64
	flips   int
	samples int
}

func NewFlips(name string, idx int) *Flips {
	return &Flips{name: name, idx: idx}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if f.idx >= len(x) {
		return
	}
	turn := math.Floor((x[f.idx] + math.Pi) / (2 * math.Pi))
	if f.samples > 0 && turn != f.last {
		f.flips += int(math.Abs(turn - f.last))
	}
	f.last = turn
	f.samples++
}

func (f *Flips) Value() float64 {
	return float64(f.flips)
}

func (f *Flips) Reset() {
	f.last = 0
	f.flips = 0
	f.samples = 0
}
