package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/viz"
)

var (
	configFile string
	preset     string
	theta1     float64
	omega1     float64
	theta2     float64
	omega2     float64
	length     float64
	gravity    float64
	dt         float64
	duration   float64
	integrator string
	rtol       float64
	atol       float64
	// live view
	frameRate int
	trailLen  int
	loop      bool
	// output
	format   string
	outFile  string
	size     int
	saveFile string
)

// main plays the default run when no subcommand is given. It exits with
// status 1 if the command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd registers the commands and binds every flag, resetting the
// flag variables to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dpend",
		Short:        "double pendulum simulator",
		SilenceUsage: true,
		RunE:         runLive,
	}

	def := config.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Float64Var(&theta1, "theta1", def.InitState.Theta1, "initial upper angle (deg)")
	pf.Float64Var(&omega1, "omega1", def.InitState.Omega1, "initial upper angular velocity (deg/s)")
	pf.Float64Var(&theta2, "theta2", def.InitState.Theta2, "initial lower angle (deg)")
	pf.Float64Var(&omega2, "omega2", def.InitState.Omega2, "initial lower angular velocity (deg/s)")
	pf.Float64Var(&length, "length", def.Length, "rod length (m)")
	pf.Float64Var(&gravity, "gravity", def.Gravity, "gravitational acceleration (m/s^2)")
	pf.Float64Var(&dt, "dt", def.Dt, "sampling interval (s)")
	pf.Float64Var(&duration, "time", def.Duration, "duration (s)")
	pf.StringVar(&integrator, "method", def.Integrator, "integrator (rk45, rk4)")
	pf.Float64Var(&rtol, "rtol", def.RTol, "relative tolerance")
	pf.Float64Var(&atol, "atol", def.ATol, "absolute tolerance")
	rootCmd.Flags().IntVar(&frameRate, "fps", def.Playback.FPS, "frame rate")
	rootCmd.Flags().IntVar(&trailLen, "trail", def.Playback.Trail, "trail length in frames")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}

	framesCmd := &cobra.Command{
		Use:   "frames",
		Short: "write sampled bob positions to stdout",
		Args:  cobra.NoArgs,
		RunE:  writeFramesCmd,
	}
	framesCmd.Flags().StringVar(&format, "format", "csv", "output format (csv, json)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the pendulum in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", def.Playback.FPS, "frame rate")
	liveCmd.Flags().IntVar(&trailLen, "trail", def.Playback.Trail, "trail length in frames")
	liveCmd.Flags().BoolVar(&loop, "loop", def.Playback.Loop, "restart when the run ends")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot angles and energy",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:       "export [svg|gif|png]",
		Short:     "export the trajectory to a file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"svg", "gif", "png"},
		RunE:      exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default trajectory.<format>)")
	exportCmd.Flags().IntVar(&size, "size", 0, "image width in pixels (default svg 600, gif 320, png 900)")
	exportCmd.Flags().IntVar(&trailLen, "trail", def.Playback.Trail, "trail length in frames (gif)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same initial conditions",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "frequency, lyapunov and phase space analysis",
		Args:  cobra.NoArgs,
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&arm, "arm", 1, "arm to analyze (1 upper, 2 lower)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&saveFile, "save", "", "write the resolved configuration to a yaml file")

	rootCmd.AddCommand(runCmd, framesCmd, liveCmd, plotCmd, exportCmd, compareCmd, analyzeCmd, presetsCmd)
	return rootCmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		cfg.Playback.FPS = frameRate
	}
	if cmd.Flags().Changed("trail") {
		cfg.Playback.Trail = trailLen
	}
	if cmd.Flags().Changed("loop") {
		cfg.Playback.Loop = loop
	}

	res, p, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return viz.Run(res, p, viz.PlayerOptions{
		FPS:   cfg.Playback.FPS,
		Trail: cfg.Playback.Trail,
		Loop:  cfg.Playback.Loop,
		Title: fmt.Sprintf("double pendulum (%s)", cfg.Integrator),
	})
}
