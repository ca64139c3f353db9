package models

import (
	"fmt"
	"math"

	"github.com/san-kum/dpend/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// State layout: angle and angular velocity of the upper arm, then the lower arm.
const (
	Theta1 = iota
	Omega1
	Theta2
	Omega2
)

// Params holds the physical constants of a double pendulum whose two arms
// share the same length and carry equal point masses.
type Params struct {
	Length  float64
	Gravity float64
}

// NewParams validates and returns a parameter set. Both values must be
// finite and strictly positive.
func NewParams(length, gravity float64) (Params, error) {
	p := Params{Length: length, Gravity: gravity}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate reports a non-positive or non-finite field wrapped in
// dynamo.ErrParameterBounds.
func (p Params) Validate() error {
	if !(p.Length > 0) || math.IsInf(p.Length, 0) {
		return fmt.Errorf("length %v: %w", p.Length, dynamo.ErrParameterBounds)
	}
	if !(p.Gravity > 0) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("gravity %v: %w", p.Gravity, dynamo.ErrParameterBounds)
	}
	return nil
}

func DefaultParams() Params {
	return Params{Length: DefaultLength, Gravity: DefaultGravity}
}

// InitialState converts angles and angular velocities given in degrees into
// a state vector in radians.
func InitialState(theta1, omega1, theta2, omega2 float64) dynamo.State {
	rad := math.Pi / 180
	return dynamo.State{theta1 * rad, omega1 * rad, theta2 * rad, omega2 * rad}
}

type DoublePendulum struct {
	p Params
}

// NewDoublePendulum rejects parameters that fail Params.Validate, so a
// literal Params cannot bypass NewParams.
func NewDoublePendulum(p Params) (*DoublePendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &DoublePendulum{p: p}, nil
}

func (d *DoublePendulum) Params() Params { return d.p }

func (d *DoublePendulum) StateDim() int   { return 4 }
func (d *DoublePendulum) ControlDim() int { return 0 }

// MassMatrix returns the 2x2 matrix multiplying the angular accelerations.
// Its determinant is 2 - cos²(θ2-θ1), which never drops below 1.
func (d *DoublePendulum) MassMatrix(x dynamo.State) *mat.Dense {
	c := math.Cos(x[Theta2] - x[Theta1])
	return mat.NewDense(2, 2, []float64{
		2, c,
		c, 1,
	})
}

// Forcing returns the right-hand side of M·α = v.
func (d *DoublePendulum) Forcing(x dynamo.State) *mat.VecDense {
	theta1, omega1, theta2, omega2 := x[Theta1], x[Omega1], x[Theta2], x[Omega2]
	gl := d.p.Gravity / d.p.Length
	s := math.Sin(theta2 - theta1)

	return mat.NewVecDense(2, []float64{
		-2*gl*math.Sin(theta1) + s*omega2*omega2,
		-gl*math.Sin(theta2) - s*omega1*omega1,
	})
}

// Derive returns (ω1, α1, ω2, α2). The system is autonomous and unforced, so
// u and t are ignored. Non-finite input yields non-finite output; detecting
// that is the integrator's job.
func (d *DoublePendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	if !x.IsValid() {
		nan := math.NaN()
		return dynamo.State{nan, nan, nan, nan}
	}

	var lu mat.LU
	lu.Factorize(d.MassMatrix(x))

	var alpha mat.VecDense
	if err := lu.SolveVecTo(&alpha, false, d.Forcing(x)); err != nil {
		nan := math.NaN()
		return dynamo.State{x[Omega1], nan, x[Omega2], nan}
	}

	return dynamo.State{x[Omega1], alpha.AtVec(0), x[Omega2], alpha.AtVec(1)}
}

// Energy returns kinetic plus potential energy per unit bob mass, with the
// pivot as the potential reference.
func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	theta1, omega1, theta2, omega2 := x[Theta1], x[Omega1], x[Theta2], x[Omega2]
	l, g := d.p.Length, d.p.Gravity

	ke := l * l * (omega1*omega1 + 0.5*omega2*omega2 + omega1*omega2*math.Cos(theta1-theta2))
	pe := -g * l * (2*math.Cos(theta1) + math.Cos(theta2))

	return ke + pe
}
