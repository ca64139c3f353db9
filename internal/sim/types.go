package sim

import (
	"fmt"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
)

// Frame holds the Cartesian bob positions at one sampled time, with the
// pivot at the origin and y pointing up.
type Frame struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Config is the sampling span and solver tolerances of one run. The
// integration method is chosen by the Stepper handed to New.
type Config struct {
	T0     float64
	T1     float64
	Dt     float64
	Solver integrators.Options
}

func DefaultConfig() Config {
	return Config{
		T0:     0,
		T1:     5,
		Dt:     0.025,
		Solver: integrators.DefaultOptions(),
	}
}

func (c Config) validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if !(c.T1 > c.T0) {
		return fmt.Errorf("time span [%f, %f] is empty: %w", c.T0, c.T1, dynamo.ErrParameterBounds)
	}
	return nil
}

type Result struct {
	Times    []float64
	States   []dynamo.State
	Frames   []Frame
	Energies []float64
	Metrics  map[string]float64

	// StepTimes are the solver's accepted step times, both ends included.
	StepTimes []float64

	EnergyDrift float64
	Steps       int
	Rejected    int
	Evaluations int
}
