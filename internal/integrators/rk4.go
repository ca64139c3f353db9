package integrators

import "github.com/san-kum/dpend/internal/dynamo"

// RK4 is the classic fixed-step fourth order Runge-Kutta method. Dense
// output comes from cubic Hermite interpolation between step endpoints.
type RK4 struct {
	k2, k3, k4 dynamo.State
	scratch    dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string    { return "rk4" }
func (r *RK4) Adaptive() bool  { return false }
func (r *RK4) ErrorOrder() int { return 4 }

func (r *RK4) ensureScratch(n int) {
	if len(r.k2) != n {
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x, k1 dynamo.State, t, dt float64) Step {
	n := len(x)
	r.ensureScratch(n)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	copy(r.k2, dyn.Derive(r.scratch, nil, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derive(r.scratch, nil, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derive(r.scratch, nil, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	f := dyn.Derive(result, nil, t+dt)

	return Step{
		X: result,
		F: f,
		Dense: &hermiteDense{
			x0: x.Clone(), f0: k1.Clone(),
			x1: result, f1: f,
			h: dt,
		},
	}
}

type hermiteDense struct {
	x0, f0 dynamo.State
	x1, f1 dynamo.State
	h      float64
}

func (d *hermiteDense) At(theta float64) dynamo.State {
	t2 := theta * theta
	t3 := t2 * theta
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + theta
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	out := make(dynamo.State, len(d.x0))
	for i := range out {
		out[i] = h00*d.x0[i] + h10*d.h*d.f0[i] + h01*d.x1[i] + h11*d.h*d.f1[i]
	}
	return out
}
