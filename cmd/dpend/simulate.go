package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpend/internal/config"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/metrics"
	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
)

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		var loaded *config.Config
		var err error
		if preset == "" {
			loaded, err = config.Load(configFile)
		} else {
			loaded, err = config.Overlay(configFile, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("theta1") {
		cfg.InitState.Theta1 = theta1
	}
	if flags.Changed("omega1") {
		cfg.InitState.Omega1 = omega1
	}
	if flags.Changed("theta2") {
		cfg.InitState.Theta2 = theta2
	}
	if flags.Changed("omega2") {
		cfg.InitState.Omega2 = omega2
	}
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("method") {
		cfg.Integrator = integrator
	}
	if flags.Changed("rtol") {
		cfg.RTol = rtol
	}
	if flags.Changed("atol") {
		cfg.ATol = atol
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// simulate solves and samples one run described by cfg.
func simulate(ctx context.Context, cfg *config.Config) (*sim.Result, models.Params, error) {
	p, err := cfg.Params()
	if err != nil {
		return nil, models.Params{}, err
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, p, err
	}

	dyn, err := models.NewDoublePendulum(p)
	if err != nil {
		return nil, p, err
	}
	s := sim.New(dyn, integ)
	s.AddMetric(metrics.NewEnergyDrift(dyn))
	s.AddMetric(metrics.NewFlips("flips_upper", models.Theta1))
	s.AddMetric(metrics.NewFlips("flips_lower", models.Theta2))

	res, err := s.Run(ctx, cfg.GetInitState(), cfg.SimConfig())
	if err != nil {
		return nil, p, err
	}
	return res, p, nil
}
