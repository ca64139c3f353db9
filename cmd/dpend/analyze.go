package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpend/internal/analysis"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/models"
)

var arm int

// Separation and renormalization interval for the Lyapunov estimate.
const (
	lyapunovD0       = 1e-6
	lyapunovInterval = 0.1
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	if arm != 1 && arm != 2 {
		return fmt.Errorf("arm must be 1 or 2, got %d", arm)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, p, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if len(res.States) < 2 {
		return fmt.Errorf("no data")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis (%d samples, dt=%g)\n\n", len(res.States), cfg.Dt)

	angle, rate := models.Theta1, models.Omega1
	if arm == 2 {
		angle, rate = models.Theta2, models.Omega2
	}

	series := make([]float64, len(res.States))
	for i, x := range res.States {
		series[i] = x[angle]
	}
	power, freqs := analysis.PowerSpectrum(series, cfg.Dt)
	if len(power) > 1 {
		// Skip the constant bin and keep the low end where pendulum modes live.
		plotData := power[1:]
		if len(plotData) > 4 {
			plotData = plotData[:len(plotData)/4]
		}
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (theta%d), 0 to %.2f hz", arm, freqs[len(plotData)])),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	freq := analysis.DominantFrequency(series, cfg.Dt)
	fmt.Fprintf(out, "dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.3f s\n", 1.0/freq)
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}
	opts := integrators.DefaultOptions()
	opts.RTol, opts.ATol = 1e-10, 1e-12
	dyn, err := models.NewDoublePendulum(p)
	if err != nil {
		return err
	}
	lambda, err := analysis.LyapunovExponent(cmd.Context(), dyn, integ,
		cfg.GetInitState(), cfg.Start, cfg.Start+cfg.Duration, lyapunovInterval, lyapunovD0, opts)
	if err != nil {
		return fmt.Errorf("lyapunov: %w", err)
	}
	fmt.Fprintf(out, "largest lyapunov exponent: %.3f 1/s\n\n", lambda)

	portrait := analysis.NewPhasePortrait(res.States, angle, rate)
	fmt.Fprintf(out, "phase portrait: theta%d (x, rad) vs omega%d (y, rad/s)\n", arm, arm)
	fmt.Fprint(out, analysis.ToASCII(portrait.Points, 70, 20))

	section := analysis.PoincareSection(res.States, models.Theta1, models.Omega1, models.Theta2, models.Omega2)
	fmt.Fprintf(out, "\npoincare section (theta2 = 0, omega2 > 0): %d crossings\n", len(section))
	fmt.Fprint(out, analysis.ToASCII(section, 70, 12))

	return nil
}
