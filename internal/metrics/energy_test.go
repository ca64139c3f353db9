package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dpend/internal/dynamo"
)

// quadratic has energy x0² so drift is easy to predict.
type quadratic struct{}

func (quadratic) Energy(x dynamo.State) float64 { return x[0] * x[0] }

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(quadratic{})

	m.Observe(dynamo.State{1}, nil, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift after one sample, got %f", m.Value())
	}

	m.Observe(dynamo.State{math.Sqrt(1.1)}, nil, 0.1)
	m.Observe(dynamo.State{1}, nil, 0.2)

	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected max drift 0.1, got %f", m.Value())
	}
	if m.initialEnergy != 1 || m.currentEnergy != 1 {
		t.Errorf("initial/current = %f/%f, want 1/1", m.initialEnergy, m.currentEnergy)
	}
}

func TestEnergyDriftReset(t *testing.T) {
	m := NewEnergyDrift(quadratic{})

	m.Observe(dynamo.State{1}, nil, 0)
	m.Observe(dynamo.State{2}, nil, 1)
	if m.Value() == 0 {
		t.Error("expected non-zero drift")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}

	m.Observe(dynamo.State{2}, nil, 0)
	if m.initialEnergy != 4 {
		t.Errorf("reset did not re-seed initial energy, got %f", m.initialEnergy)
	}
}

func TestFlips(t *testing.T) {
	tests := []struct {
		name   string
		angles []float64
		want   float64
	}{
		{"hanging", []float64{0, 0.5, -0.5, 0.1}, 0},
		{"one turn", []float64{0, 2, 3, 3.5, 4}, 1},
		{"back and forth", []float64{3, 3.3, 3, 3.3}, 3},
		{"negative", []float64{0, -2, -3.5, -5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFlips("flips", 0)
			for i, a := range tt.angles {
				m.Observe(dynamo.State{a}, nil, float64(i))
			}
			if m.Value() != tt.want {
				t.Errorf("flips = %v, want %v", m.Value(), tt.want)
			}
		})
	}
}
