package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/trail"
)

const (
	width  = 80
	height = 24
)

type TickMsg time.Time

type PlayerOptions struct {
	FPS   int
	Trail int
	Loop  bool
	Title string
}

func DefaultPlayerOptions() PlayerOptions {
	return PlayerOptions{FPS: 40, Trail: trail.DefaultWindow, Title: "double pendulum"}
}

// Player steps through precomputed frames, one per tick.
type Player struct {
	frames   []sim.Frame
	times    []float64
	energies []float64
	idx      int
	fps      int
	loop     bool
	title    string
	canvas   *Canvas
	view     Viewport
	upper    *trail.Trail
	lower    *trail.Trail
	finished bool
}

func NewPlayer(res *sim.Result, p models.Params, opts PlayerOptions) Player {
	if opts.FPS <= 0 {
		opts.FPS = DefaultPlayerOptions().FPS
	}
	if opts.Trail <= 0 {
		opts.Trail = trail.DefaultWindow
	}

	m := Player{
		frames:   res.Frames,
		times:    res.Times,
		energies: res.Energies,
		fps:      opts.FPS,
		loop:     opts.Loop,
		title:    opts.Title,
		canvas:   NewCanvas(width, height),
		view:     NewViewport(width*2, height*4, Reach(p.Length)),
		upper:    trail.NewTrail(opts.Trail),
		lower:    trail.NewTrail(opts.Trail),
	}
	m.record()
	return m
}

// Run plays the frames in the terminal until they end or the user quits.
func Run(res *sim.Result, p models.Params, opts PlayerOptions) error {
	if len(res.Frames) == 0 {
		return fmt.Errorf("nothing to play: no frames")
	}
	_, err := tea.NewProgram(NewPlayer(res, p, opts)).Run()
	return err
}

func (m Player) Frame() int                           { return m.idx }
func (m Player) Finished() bool                       { return m.finished }
func (m Player) Trails() (*trail.Trail, *trail.Trail) { return m.upper, m.lower }

func (m Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Player) Init() tea.Cmd {
	return m.tick()
}

// Update advances one frame per tick.
func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case TickMsg:
		if m.finished {
			return m, nil
		}
		m.advance()
		if m.finished {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Player) advance() {
	if m.idx+1 < len(m.frames) {
		m.idx++
		m.record()
		return
	}
	if m.loop && len(m.frames) > 1 {
		m.idx = 0
		m.upper.Reset()
		m.lower.Reset()
		m.record()
		return
	}
	m.finished = true
}

// record pushes the current bob positions onto the trails.
func (m *Player) record() {
	if m.idx >= len(m.frames) {
		return
	}
	f := m.frames[m.idx]
	m.upper.Add(m.idx, trail.Point{X: f.X1, Y: f.Y1})
	m.lower.Add(m.idx, trail.Point{X: f.X2, Y: f.Y2})
}

func (m *Player) draw() {
	m.canvas.Clear()
	if m.idx >= len(m.frames) {
		return
	}

	m.drawTrail(m.upper, HueUpper)
	m.drawTrail(m.lower, HueLower)

	f := m.frames[m.idx]
	px, py := m.view.Map(0, 0)
	b1x, b1y := m.view.Map(f.X1, f.Y1)
	b2x, b2y := m.view.Map(f.X2, f.Y2)

	m.canvas.Dot(px, py, 1, solid)
	m.canvas.DrawLine(px, py, b1x, b1y)
	m.canvas.DrawLine(b1x, b1y, b2x, b2y)
	m.canvas.Dot(b1x, b1y, 1, Ink{Hue: HueLower, Alpha: 1})
	m.canvas.Dot(b2x, b2y, 1, Ink{Hue: HueLower, Alpha: 1})
}

func (m *Player) drawTrail(tr *trail.Trail, hue Hue) {
	tr.Each(func(age int, s trail.Segment) {
		x0, y0 := m.view.Map(s.From.X, s.From.Y)
		x1, y1 := m.view.Map(s.To.X, s.To.Y)
		m.canvas.DrawLineInk(x0, y0, x1, y1, Ink{Hue: hue, Alpha: tr.Opacity(age)})
	})
}

// View renders the canvas next to a stats panel.
func (m Player) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	if m.finished {
		s.WriteString(doneStyle.Render("DONE") + "\n\n")
	} else {
		s.WriteString(playStyle.Render("PLAYING") + "\n\n")
	}

	if m.idx < len(m.energies) && m.idx > 0 {
		chart := asciigraph.Plot(m.energies[:m.idx+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	t := 0.0
	if m.idx < len(m.times) {
		t = m.times[m.idx]
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d/%d", m.idx+1, len(m.frames))) + "\n")
	if m.idx < len(m.energies) {
		e, e0 := m.energies[m.idx], m.energies[0]
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f", e)) + "\n")
		if e0 != 0 {
			s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", math.Abs(e-e0)/math.Abs(e0))) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nQ:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
