package integrators

import "github.com/san-kum/dpend/internal/dynamo"

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// continuous extension (Hairer, Nørsett & Wanner)
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// RK45 is the Dormand-Prince 5(4) pair. The fifth order solution is
// propagated, the embedded fourth order one only drives step control, and
// the last stage doubles as the first stage of the next step.
type RK45 struct{}

func NewRK45() *RK45 {
	return &RK45{}
}

func (r *RK45) Name() string   { return "rk45" }
func (r *RK45) Adaptive() bool { return true }

// ErrorOrder is the order of the embedded error estimate.
func (r *RK45) ErrorOrder() int { return 4 }

func (r *RK45) Step(dyn dynamo.System, x, k1 dynamo.State, t, dt float64) Step {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, nil, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, nil, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, nil, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, nil, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, nil, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, nil, t+dt)

	errEst := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		errEst[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}

	dense := &dopriDense{
		r1: x.Clone(),
		r2: make(dynamo.State, n),
		r3: make(dynamo.State, n),
		r4: make(dynamo.State, n),
		r5: make(dynamo.State, n),
	}
	for i := 0; i < n; i++ {
		diff := xNew[i] - x[i]
		bspl := dt*k1[i] - diff
		dense.r2[i] = diff
		dense.r3[i] = bspl
		dense.r4[i] = diff - dt*k7[i] - bspl
		dense.r5[i] = dt * (d1*k1[i] + d3*k3[i] + d4*k4[i] + d5*k5[i] + d6*k6[i] + d7*k7[i])
	}

	return Step{X: xNew, F: k7, Err: errEst, Dense: dense}
}

// dopriDense is the fourth order interpolant of a single Dormand-Prince step.
type dopriDense struct {
	r1, r2, r3, r4, r5 dynamo.State
}

func (d *dopriDense) At(theta float64) dynamo.State {
	theta1 := 1 - theta
	out := make(dynamo.State, len(d.r1))
	for i := range out {
		out[i] = d.r1[i] + theta*(d.r2[i]+theta1*(d.r3[i]+theta*(d.r4[i]+theta1*d.r5[i])))
	}
	return out
}
