package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dpend/internal/dynamo"
)

// blowUp diverges in finite time: x' = x², x(0)=1 reaches infinity at t=1.
type blowUp struct{}

func (b *blowUp) StateDim() int   { return 1 }
func (b *blowUp) ControlDim() int { return 0 }
func (b *blowUp) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

type poisoned struct{ after float64 }

func (p *poisoned) StateDim() int   { return 1 }
func (p *poisoned) ControlDim() int { return 0 }
func (p *poisoned) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	if t > p.after {
		return dynamo.State{math.NaN()}
	}
	return dynamo.State{1}
}

func TestSolveDenseOutput(t *testing.T) {
	dyn := &harmonicOscillator{}
	opts := DefaultOptions()
	opts.RTol, opts.ATol = 1e-9, 1e-12

	sol, err := Solve(context.Background(), dyn, NewRK45(), dynamo.State{1, 0}, 0, 5, opts)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	t0, t1 := sol.Span()
	if t0 != 0 || t1 != 5 {
		t.Fatalf("span = [%v, %v], want [0, 5]", t0, t1)
	}

	for _, tt := range []float64{0, 0.013, 1.5, math.Pi, 4.999, 5} {
		x, err := sol.At(tt)
		if err != nil {
			t.Fatalf("At(%v): %v", tt, err)
		}
		if math.Abs(x[0]-math.Cos(tt)) > 1e-6 {
			t.Errorf("At(%v) = %.9f, want %.9f", tt, x[0], math.Cos(tt))
		}
	}

	times := sol.Times()
	states := sol.xs
	if len(times) != sol.Steps+1 || len(states) != len(times) {
		t.Fatalf("got %d times and %d states for %d steps", len(times), len(states), sol.Steps)
	}
	for i, tt := range times {
		x, _ := sol.At(tt)
		if x[0] != states[i][0] || x[1] != states[i][1] {
			t.Errorf("At(knot %d) = %v, stored %v", i, x, states[i])
		}
	}
	if sol.Evaluations == 0 {
		t.Error("expected evaluation count")
	}
}

func TestSolveOutOfRange(t *testing.T) {
	sol, err := Solve(context.Background(), &harmonicOscillator{}, NewRK45(), dynamo.State{1, 0}, 0, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	for _, tt := range []float64{-0.001, 1.0001, math.NaN()} {
		if _, err := sol.At(tt); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At(%v) error = %v, want ErrOutOfRange", tt, err)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	run := func() *Solution {
		sol, err := Solve(context.Background(), &harmonicOscillator{}, NewRK45(), dynamo.State{0.3, 0.7}, 0, 10, DefaultOptions())
		if err != nil {
			t.Fatalf("solve failed: %v", err)
		}
		return sol
	}

	a, b := run(), run()
	ta, tb := a.Times(), b.Times()
	if len(ta) != len(tb) {
		t.Fatalf("step counts differ: %d vs %d", len(ta), len(tb))
	}
	xa, xb := a.xs, b.xs
	for i := range ta {
		if ta[i] != tb[i] || xa[i][0] != xb[i][0] || xa[i][1] != xb[i][1] {
			t.Fatalf("runs differ at step %d", i)
		}
	}
}

func TestSolveFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		dyn  dynamo.System
		x0   dynamo.State
		t1   float64
		opts func(*Options)
		want error
	}{
		{"reversed span", &harmonicOscillator{}, dynamo.State{1, 0}, -1, nil, dynamo.ErrParameterBounds},
		{"empty span", &harmonicOscillator{}, dynamo.State{1, 0}, 0, nil, dynamo.ErrParameterBounds},
		{"wrong dimension", &harmonicOscillator{}, dynamo.State{1}, 1, nil, dynamo.ErrDimensionMismatch},
		{"nan initial state", &harmonicOscillator{}, dynamo.State{math.NaN(), 0}, 1, nil, dynamo.ErrInvalidState},
		{"zero rtol", &harmonicOscillator{}, dynamo.State{1, 0}, 1, func(o *Options) { o.RTol = 0 }, dynamo.ErrParameterBounds},
		{"nan derivative", &poisoned{after: 0.5}, dynamo.State{0}, 1, nil, dynamo.ErrInvalidState},
		{"finite time blow up", &blowUp{}, dynamo.State{1}, 2, nil, dynamo.ErrStepTooSmall},
		{"step budget", &harmonicOscillator{}, dynamo.State{1, 0}, 100, func(o *Options) { o.MaxSteps = 3 }, dynamo.ErrUnstable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := Solve(ctx, tt.dyn, NewRK45(), tt.x0, 0, tt.t1, opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSolveFailureCarriesContext(t *testing.T) {
	_, err := Solve(context.Background(), &poisoned{after: 0.5}, NewRK45(), dynamo.State{0}, 0, 1, DefaultOptions())

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("error %v is not a SimulationError", err)
	}
	if simErr.Time <= 0 || simErr.Time > 1 {
		t.Errorf("failure time %v outside span", simErr.Time)
	}
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, &harmonicOscillator{}, NewRK45(), dynamo.State{1, 0}, 0, 1, DefaultOptions())
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("error = %v, want ErrContextCanceled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, s.Name())
		}
	}
	if _, err := New("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
