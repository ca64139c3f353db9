// Package dynamo provides the core primitives shared by the double pendulum
// kernel, the integrators and the sampler.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Hamiltonian]: systems that can report their total energy
//
// # Example
//
//	p, _ := models.NewParams(1, 9.81)
//	dyn, _ := models.NewDoublePendulum(p)
//	sol, err := integrators.Solve(ctx, dyn, integrators.NewRK45(), x0, 0, 5, integrators.DefaultOptions())
//
// Errors returned by the numerical code are either one of the sentinel
// errors below or a [*SimulationError] wrapping one of them, so callers
// can use errors.Is and errors.As.
package dynamo
