package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/models"
)

// Simulator solves the pendulum once and samples the dense solution into
// frames. It is not safe for concurrent use.
type Simulator struct {
	dyn        *models.DoublePendulum
	integrator integrators.Stepper
	metrics    []dynamo.Metric
}

func New(dyn *models.DoublePendulum, integrator integrators.Stepper) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if s.dyn == nil || s.integrator == nil {
		return nil, fmt.Errorf("simulator needs a pendulum and an integrator: %w", dynamo.ErrParameterBounds)
	}
	if err := s.dyn.Params().Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	sol, err := integrators.Solve(ctx, s.dyn, s.integrator, x0, cfg.T0, cfg.T1, cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("integrate with %s: %w", s.integrator.Name(), err)
	}

	times, states, frames, err := Sample(sol, cfg.Dt, s.dyn.Params())
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	result := &Result{
		Times:       times,
		States:      states,
		Frames:      frames,
		Energies:    make([]float64, len(states)),
		Metrics:     make(map[string]float64),
		StepTimes:   sol.Times(),
		Steps:       sol.Steps,
		Rejected:    sol.Rejected,
		Evaluations: sol.Evaluations,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i, x := range states {
		result.Energies[i] = s.dyn.Energy(x)
		for _, m := range s.metrics {
			m.Observe(x, nil, times[i])
		}
	}

	if n := len(result.Energies); n > 1 && result.Energies[0] != 0 {
		initial := result.Energies[0]
		result.EnergyDrift = math.Abs(result.Energies[n-1]-initial) / math.Abs(initial)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
