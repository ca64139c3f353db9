// Package trail keeps the most recent path segments of a moving point in a
// fixed-capacity ring so a renderer can draw a fading trajectory without
// rebuilding it every frame.
package trail

// DefaultWindow is the number of segments kept per bob.
const DefaultWindow = 30

// Opacity of the newest segment, scaled to the window so a window of 30
// matches steps of 0.05 while filling and 0.03 once full.
const (
	fillPeak = 1.5
	fullPeak = 0.9
)

type Point struct {
	X, Y float64
}

// Segment is the stretch travelled between frame Frame-1 and frame Frame.
type Segment struct {
	Frame int
	From  Point
	To    Point
}

type Ring struct {
	buf  []Segment
	head int // next write position
	size int
}

func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Segment, capacity)}
}

func (r *Ring) Push(s Segment) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *Ring) Len() int { return r.size }
func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) Reset() {
	r.head = 0
	r.size = 0
}

// At returns the segment of the given age, 0 being the newest.
func (r *Ring) At(age int) (Segment, bool) {
	if age < 0 || age >= r.size {
		return Segment{}, false
	}
	idx := (r.head - 1 - age + len(r.buf)) % len(r.buf)
	return r.buf[idx], true
}

// Each visits the stored segments from newest to oldest.
func (r *Ring) Each(fn func(age int, s Segment)) {
	for age := 0; age < r.size; age++ {
		s, _ := r.At(age)
		fn(age, s)
	}
}

// Opacity is the alpha in [0, 1] for the segment of the given age. Fading
// is steeper while the ring is still filling up.
func (r *Ring) Opacity(age int) float64 {
	if age < 0 || age >= r.size {
		return 0
	}
	n := float64(len(r.buf))
	peak := fullPeak
	if r.size < len(r.buf) {
		peak = fillPeak
	}
	a := peak / n * (n - float64(age))
	if a > 1 {
		a = 1
	}
	return a
}

// Trail pairs a ring with the last point seen so callers can feed it
// positions instead of segments.
type Trail struct {
	*Ring
	last  Point
	begun bool
}

func NewTrail(capacity int) *Trail {
	return &Trail{Ring: New(capacity)}
}

// Add records the position for frame. The first call only sets the start.
func (t *Trail) Add(frame int, p Point) {
	if t.begun {
		t.Push(Segment{Frame: frame, From: t.last, To: p})
	}
	t.last, t.begun = p, true
}

func (t *Trail) Reset() {
	t.Ring.Reset()
	t.begun = false
}
