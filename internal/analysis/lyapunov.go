package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// reference trajectory and a neighbour started d0 away in θ1. After every
// interval the separation is logged and the neighbour pulled back to d0.
// The tolerances in opts must resolve separations of order d0.
func LyapunovExponent(
	ctx context.Context,
	dyn dynamo.System,
	m integrators.Stepper,
	x0 dynamo.State,
	t0, t1, interval, d0 float64,
	opts integrators.Options,
) (float64, error) {
	if !(interval > 0) || !(d0 > 0) || !(t1 > t0) {
		return 0, fmt.Errorf("lyapunov: interval=%g d0=%g span=[%g, %g]: %w", interval, d0, t0, t1, dynamo.ErrParameterBounds)
	}
	if len(x0) == 0 {
		return 0, dynamo.ErrDimensionMismatch
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += d0

	sumLog := 0.0
	elapsed := 0.0
	for t := t0; t < t1; {
		next := math.Min(t+interval, t1)

		var err error
		if x, err = advance(ctx, dyn, m, x, t, next, opts); err != nil {
			return 0, err
		}
		if xp, err = advance(ctx, dyn, m, xp, t, next, opts); err != nil {
			return 0, err
		}

		sep := Separation(x, xp)
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
		elapsed += next - t
		t = next
	}

	return sumLog / elapsed, nil
}

func advance(ctx context.Context, dyn dynamo.System, m integrators.Stepper, x dynamo.State, t0, t1 float64, opts integrators.Options) (dynamo.State, error) {
	sol, err := integrators.Solve(ctx, dyn, m, x, t0, t1, opts)
	if err != nil {
		return nil, err
	}
	return sol.At(t1)
}

// Separation is the Euclidean distance between two states.
func Separation(a, b dynamo.State) float64 {
	return a.Sub(b).Norm()
}
