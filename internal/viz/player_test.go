package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
)

func fakeResult(n int) *sim.Result {
	res := &sim.Result{}
	p := models.DefaultParams()
	for i := 0; i < n; i++ {
		theta := float64(i) * 0.1
		x := models.InitialState(90-float64(i), 0, float64(i), 0)
		res.Times = append(res.Times, float64(i)*0.025)
		res.States = append(res.States, x)
		res.Frames = append(res.Frames, sim.Project(x, p))
		res.Energies = append(res.Energies, -9.81+math.Sin(theta)*1e-4)
	}
	return res
}

func tickN(m tea.Model, n int) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		m, cmd = m.Update(TickMsg(time.Now()))
	}
	return m, cmd
}

func TestPlayerAdvances(t *testing.T) {
	opts := DefaultPlayerOptions()
	opts.Trail = 3
	m := NewPlayer(fakeResult(5), models.DefaultParams(), opts)

	next, cmd := tickN(m, 2)
	p := next.(Player)
	if p.Frame() != 2 {
		t.Errorf("frame = %d, want 2", p.Frame())
	}
	if cmd == nil {
		t.Error("player should keep ticking while frames remain")
	}

	upper, lower := p.Trails()
	if upper.Len() != 2 || lower.Len() != 2 {
		t.Errorf("trail lengths = %d/%d, want 2/2", upper.Len(), lower.Len())
	}

	next, _ = tickN(next, 10)
	p = next.(Player)
	if !p.Finished() || p.Frame() != 4 {
		t.Errorf("finished=%v frame=%d, want finished on frame 4", p.Finished(), p.Frame())
	}
	if upper.Len() != 3 {
		t.Errorf("trail should be capped at 3, got %d", upper.Len())
	}

	_, cmd = next.Update(TickMsg(time.Now()))
	if cmd != nil {
		t.Error("finished player should stop ticking")
	}
}

func TestPlayerLoops(t *testing.T) {
	opts := DefaultPlayerOptions()
	opts.Loop = true
	m := NewPlayer(fakeResult(3), models.DefaultParams(), opts)

	next, _ := tickN(m, 3)
	p := next.(Player)
	if p.Finished() || p.Frame() != 0 {
		t.Errorf("finished=%v frame=%d, want looping back to frame 0", p.Finished(), p.Frame())
	}
	upper, _ := p.Trails()
	if upper.Len() != 0 {
		t.Errorf("trail should restart on loop, got %d segments", upper.Len())
	}
}

func TestPlayerQuit(t *testing.T) {
	m := NewPlayer(fakeResult(3), models.DefaultParams(), DefaultPlayerOptions())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlayerView(t *testing.T) {
	opts := DefaultPlayerOptions()
	opts.Title = "demo"
	m := NewPlayer(fakeResult(4), models.DefaultParams(), opts)
	next, _ := tickN(m, 2)

	view := next.View()
	for _, want := range []string{"DEMO", "Time", "Frame", "3/4", "Energy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRunWithoutFrames(t *testing.T) {
	if err := Run(&sim.Result{}, models.DefaultParams(), DefaultPlayerOptions()); err == nil {
		t.Error("expected error for empty result")
	}
}
