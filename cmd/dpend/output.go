package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/export"
	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
)

// driftWarn is the relative energy drift above which the summary flags the
// run as inaccurate.
const driftWarn = 1e-2

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	res, _, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("double pendulum"))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf(
		"l=%gm g=%gm/s² θ1=%g° ω1=%g°/s θ2=%g° ω2=%g°/s",
		cfg.Length, cfg.Gravity,
		cfg.InitState.Theta1, cfg.InitState.Omega1, cfg.InitState.Theta2, cfg.InitState.Omega2,
	)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "integrator\t%s\n", cfg.Integrator)
	fmt.Fprintf(w, "span\t[%g, %g) s, dt=%g\n", cfg.Start, cfg.Start+cfg.Duration, cfg.Dt)
	fmt.Fprintf(w, "frames\t%d\n", len(res.Frames))
	fmt.Fprintf(w, "steps\t%d accepted, %d rejected\n", res.Steps, res.Rejected)
	fmt.Fprintf(w, "evaluations\t%d\n", res.Evaluations)
	if lo, hi, ok := stepRange(res.StepTimes); ok {
		fmt.Fprintf(w, "step size\t%.3g to %.3g s\n", lo, hi)
	}
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	if n := len(res.Frames); n > 0 {
		last := res.Frames[n-1]
		fmt.Fprintf(w, "last frame\t(%.4f, %.4f) (%.4f, %.4f)\n", last.X1, last.Y1, last.X2, last.Y2)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, res.Metrics[name])
	}

	if res.EnergyDrift > driftWarn {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf(
			"\nenergy drifted by %.2f%%; try a smaller --rtol", res.EnergyDrift*100)))
	}
	return nil
}

// stepRange is the smallest and largest accepted solver step.
func stepRange(ts []float64) (lo, hi float64, ok bool) {
	if len(ts) < 2 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), 0
	for i := 1; i < len(ts); i++ {
		h := ts[i] - ts[i-1]
		lo, hi = math.Min(lo, h), math.Max(hi, h)
	}
	return lo, hi, true
}

func writeFramesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, _, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return writeFrames(cmd.OutOrStdout(), res, format)
}

type frameRecord struct {
	T  float64 `json:"t"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// writeFrames dumps the sampled frames with their times.
func writeFrames(w io.Writer, res *sim.Result, format string) error {
	if len(res.Frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"t", "x1", "y1", "x2", "y2"}); err != nil {
			return err
		}
		for i, f := range res.Frames {
			row := []string{strconv.FormatFloat(res.Times[i], 'g', -1, 64)}
			for _, v := range [4]float64{f.X1, f.Y1, f.X2, f.Y2} {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case "json":
		records := make([]frameRecord, len(res.Frames))
		for i, f := range res.Frames {
			records[i] = frameRecord{T: res.Times[i], X1: f.X1, Y1: f.Y1, X2: f.X2, Y2: f.Y2}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format: %s (available: csv, json)", format)
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	res, _, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if len(res.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "samples: %d\n\n", len(res.States))

	theta1 := make([]float64, len(res.States))
	theta2 := make([]float64, len(res.States))
	for i, x := range res.States {
		theta1[i] = x[models.Theta1]
		theta2[i] = x[models.Theta2]
	}

	graph := asciigraph.PlotMany([][]float64{theta1, theta2},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Blue),
		asciigraph.Caption("theta1 (yellow), theta2 (blue) [rad]"),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	graph = asciigraph.Plot(res.Energies,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("energy per unit mass [J/kg]"),
	)
	fmt.Fprintln(out, graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	kind := args[0]

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("trail") {
		cfg.Playback.Trail = trailLen
	}
	res, p, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = "trajectory." + kind
	}

	var buf bytes.Buffer
	if err := renderExport(&buf, kind, res, p, cfg, size); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", len(res.Frames), path)
	return nil
}

// renderExport encodes res as kind. px is the image width in pixels; zero
// keeps the format's default.
func renderExport(w io.Writer, kind string, res *sim.Result, p models.Params, cfg *config.Config, px int) error {
	switch kind {
	case "svg":
		if px <= 0 {
			px = 600
		}
		svg := export.TrajectoryToSVG(res.Frames, p, px)
		if svg == "" {
			return fmt.Errorf("not enough frames for svg")
		}
		_, err := io.WriteString(w, svg)
		return err
	case "gif":
		opts := export.DefaultGIFOptions()
		if px > 0 {
			opts.Size = px
		}
		opts.Trail = cfg.Playback.Trail
		opts.Delay = gifDelay(cfg.Dt)
		return export.WriteGIF(w, res.Frames, p, opts)
	case "png":
		return export.WritePNG(w, res.Frames, p, px)
	default:
		return fmt.Errorf("unknown export format: %s (available: svg, gif, png)", kind)
	}
}

// gifDelay plays the animation in real time where the format allows it.
// GIF delays are in 100ths of a second and viewers clamp anything below 2.
func gifDelay(dt float64) int {
	d := int(dt*100 + 0.5)
	if d < 2 {
		d = 2
	}
	return d
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators (dt=%.4f, duration=%.1fs)\n\n", cfg.Dt, cfg.Duration)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tEVALS\tFINAL X2\tFINAL Y2\tENERGY DRIFT\tTIME")

	for _, name := range args {
		run := *cfg
		run.Integrator = name

		start := time.Now()
		res, _, err := simulate(cmd.Context(), &run)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		last := res.Frames[len(res.Frames)-1]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.6f\t%.6f\t%.2e\t%v\n",
			name, res.Steps, res.Evaluations, last.X2, last.Y2, res.EnergyDrift, elapsed)
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if saveFile != "" {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Save(saveFile, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote configuration to %s\n", saveFile)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTHETA1\tOMEGA1\tTHETA2\tOMEGA2\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		s := p.InitState
		fmt.Fprintf(w, "%s\t%g°\t%g°/s\t%g°\t%g°/s\t%gs\n", name, s.Theta1, s.Omega1, s.Theta2, s.Omega2, p.Duration)
	}
	return w.Flush()
}
