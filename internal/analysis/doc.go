// Package analysis characterizes a double pendulum run beyond its frames.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [NewPhasePortrait]: angle against angular velocity for one arm
//   - [PoincareSection]: states where the lower arm passes through the vertical
//   - [PowerSpectrum]: frequency content of a sampled angle
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(ctx, dyn, integrators.NewRK45(), x0, 0, 20, 0.1, 1e-8, opts)
//	if err == nil && lambda > 0 {
//	    // nearby starts separate exponentially
//	}
package analysis
