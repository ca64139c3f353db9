package integrators

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dpend/internal/dynamo"
)

// ErrOutOfRange is returned when a solution is evaluated outside its span.
var ErrOutOfRange = errors.New("integrators: time outside solution span")

// Interpolant evaluates a single accepted step at theta in [0, 1], where 0
// is the start of the step and 1 its end.
type Interpolant interface {
	At(theta float64) dynamo.State
}

// Step is the outcome of one trial step. Err is nil for methods without an
// embedded error estimate.
type Step struct {
	X     dynamo.State
	F     dynamo.State
	Err   dynamo.State
	Dense Interpolant
}

// Stepper advances a system by one step of size dt given the state x and its
// derivative f at time t.
type Stepper interface {
	Name() string
	Adaptive() bool
	ErrorOrder() int
	Step(dyn dynamo.System, x, f dynamo.State, t, dt float64) Step
}

type Options struct {
	RTol      float64
	ATol      float64
	FirstStep float64 // 0 selects the initial step automatically
	MaxStep   float64
	FixedStep float64 // step used by non-adaptive methods
	MaxSteps  int

	safety    float64
	minFactor float64
	maxFactor float64
}

func DefaultOptions() Options {
	return Options{
		RTol:      1e-3,
		ATol:      1e-6,
		MaxStep:   math.Inf(1),
		FixedStep: 1e-3,
		MaxSteps:  1_000_000,
	}
}

func (o Options) validate() error {
	if !(o.RTol > 0) || !(o.ATol > 0) {
		return fmt.Errorf("tolerances rtol=%g atol=%g: %w", o.RTol, o.ATol, dynamo.ErrParameterBounds)
	}
	if !(o.MaxStep > 0) {
		return fmt.Errorf("max step %g: %w", o.MaxStep, dynamo.ErrParameterBounds)
	}
	if o.FirstStep < 0 {
		return fmt.Errorf("first step %g: %w", o.FirstStep, dynamo.ErrParameterBounds)
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("max steps %d: %w", o.MaxSteps, dynamo.ErrParameterBounds)
	}
	return nil
}

// New returns the stepper registered under name.
func New(name string) (Stepper, error) {
	switch name {
	case "rk45", "":
		return NewRK45(), nil
	case "rk4":
		return NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
}

func Names() []string {
	return []string{"rk45", "rk4"}
}

// countingSystem tallies right-hand side evaluations.
type countingSystem struct {
	dynamo.System
	evals int
}

func (c *countingSystem) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	c.evals++
	return c.System.Derive(x, u, t)
}

// Solve integrates dyn from x0 over [t0, t1] and returns a dense solution.
// Any non-finite state or derivative aborts the run with an error wrapping
// dynamo.ErrInvalidState.
func Solve(ctx context.Context, dyn dynamo.System, m Stepper, x0 dynamo.State, t0, t1 float64, opts Options) (*Solution, error) {
	if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsInf(t1, 0) || !(t1 > t0) {
		return nil, fmt.Errorf("time span [%g, %g]: %w", t0, t1, dynamo.ErrParameterBounds)
	}
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("state has %d components, system wants %d: %w", len(x0), dyn.StateDim(), dynamo.ErrDimensionMismatch)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if !x0.IsValid() {
		return nil, dynamo.Fail(0, t0, x0, dynamo.ErrInvalidState)
	}
	if opts.safety == 0 {
		opts.safety, opts.minFactor, opts.maxFactor = 0.9, 0.2, 10.0
	}

	sys := &countingSystem{System: dyn}
	x := x0.Clone()
	f := sys.Derive(x, nil, t0)
	if !f.IsValid() {
		return nil, dynamo.Fail(0, t0, x, dynamo.ErrInvalidState)
	}

	sol := &Solution{
		ts: []float64{t0},
		xs: []dynamo.State{x},
	}

	var h float64
	switch {
	case !m.Adaptive():
		if !(opts.FixedStep > 0) {
			return nil, fmt.Errorf("fixed step %g: %w", opts.FixedStep, dynamo.ErrParameterBounds)
		}
		h = math.Min(opts.FixedStep, opts.MaxStep)
	case opts.FirstStep > 0:
		h = opts.FirstStep
	default:
		h = initialStep(sys, x, f, t0, m.ErrorOrder(), opts)
	}
	h = math.Min(h, t1-t0)

	t := t0
	rejectedInStep := false
	for t < t1 {
		select {
		case <-ctx.Done():
			return nil, dynamo.Fail(sol.Steps, t, x, errors.Join(dynamo.ErrContextCanceled, ctx.Err()))
		default:
		}

		if sol.Steps+sol.Rejected >= opts.MaxSteps {
			return nil, dynamo.Fail(sol.Steps, t, x, dynamo.ErrUnstable)
		}

		minStep := 10 * (math.Nextafter(t, math.Inf(1)) - t)
		if h < minStep {
			return nil, dynamo.Fail(sol.Steps, t, x, dynamo.ErrStepTooSmall)
		}

		tNew := t + h
		if tNew >= t1 {
			tNew = t1
			h = t1 - t
		}

		st := m.Step(sys, x, f, t, h)
		if !st.X.IsValid() || !st.F.IsValid() {
			return nil, dynamo.Fail(sol.Steps, tNew, st.X, dynamo.ErrInvalidState)
		}

		factor := 1.0
		if m.Adaptive() && st.Err != nil {
			errNorm := errorNorm(st.Err, x, st.X, opts)
			if math.IsNaN(errNorm) {
				return nil, dynamo.Fail(sol.Steps, tNew, st.X, dynamo.ErrInvalidState)
			}
			exponent := -1.0 / float64(m.ErrorOrder()+1)
			if errNorm > 1 {
				h *= math.Max(opts.minFactor, opts.safety*math.Pow(errNorm, exponent))
				rejectedInStep = true
				sol.Rejected++
				continue
			}
			if errNorm == 0 {
				factor = opts.maxFactor
			} else {
				factor = math.Min(opts.maxFactor, opts.safety*math.Pow(errNorm, exponent))
			}
			if rejectedInStep {
				factor = math.Min(1, factor)
			}
		}

		sol.ts = append(sol.ts, tNew)
		sol.xs = append(sol.xs, st.X)
		sol.dense = append(sol.dense, st.Dense)
		sol.Steps++
		rejectedInStep = false

		t, x, f = tNew, st.X, st.F
		h = math.Min(h*factor, opts.MaxStep)
	}

	sol.Evaluations = sys.evals
	return sol, nil
}

// errorNorm is the RMS of the local error scaled by the mixed tolerance.
func errorNorm(errEst, x, xNew dynamo.State, opts Options) float64 {
	sum := 0.0
	for i := range errEst {
		scale := opts.ATol + opts.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := errEst[i] / scale
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

func rmsScaled(v, x dynamo.State, opts Options) float64 {
	sum := 0.0
	for i := range v {
		r := v[i] / (opts.ATol + math.Abs(x[i])*opts.RTol)
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(v)))
}

// initialStep picks a first step from the size of the state, its derivative
// and a finite-difference estimate of the second derivative.
func initialStep(dyn dynamo.System, x, f dynamo.State, t0 float64, order int, opts Options) float64 {
	d0 := rmsScaled(x, x, opts)
	d1 := rmsScaled(f, x, opts)

	h0 := 0.01 * d0 / d1
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	}

	x1 := x.Add(f.Scale(h0))
	f1 := dyn.Derive(x1, nil, t0+h0)
	d2 := rmsScaled(f1.Sub(f), x, opts) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(order+1))
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		h = 1e-6
	}
	return math.Min(h, opts.MaxStep)
}

// Solution is the dense output of Solve. It is read-only.
type Solution struct {
	ts    []float64
	xs    []dynamo.State
	dense []Interpolant

	Steps       int
	Rejected    int
	Evaluations int
}

func (s *Solution) Span() (float64, float64) {
	return s.ts[0], s.ts[len(s.ts)-1]
}

// Times returns the accepted step times, including both ends of the span.
func (s *Solution) Times() []float64 {
	out := make([]float64, len(s.ts))
	copy(out, s.ts)
	return out
}

// At evaluates the solution at any t inside its span.
func (s *Solution) At(t float64) (dynamo.State, error) {
	t0, t1 := s.Span()
	if !(t >= t0 && t <= t1) {
		return nil, fmt.Errorf("t=%g not in [%g, %g]: %w", t, t0, t1, ErrOutOfRange)
	}

	i := sort.SearchFloat64s(s.ts, t)
	if s.ts[i] == t {
		return s.xs[i].Clone(), nil
	}

	lo, hi := s.ts[i-1], s.ts[i]
	return s.dense[i-1].At((t - lo) / (hi - lo)), nil
}
