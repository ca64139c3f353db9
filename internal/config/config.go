package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpend/internal/dynamo"
	"github.com/san-kum/dpend/internal/integrators"
	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/trail"
)

const (
	DefaultDt       = 0.025
	DefaultDuration = 5.0
	DefaultTheta1   = 90.0
	DefaultRTol     = 1e-3
	DefaultATol     = 1e-6
	DefaultFPS      = 40
)

type Config struct {
	Integrator string          `yaml:"integrator"`
	Length     float64         `yaml:"length"`
	Gravity    float64         `yaml:"gravity"`
	Start      float64         `yaml:"start"`
	Duration   float64         `yaml:"duration"`
	Dt         float64         `yaml:"dt"`
	RTol       float64         `yaml:"rtol"`
	ATol       float64         `yaml:"atol"`
	FixedStep  float64         `yaml:"fixed_step,omitempty"`
	InitState  InitStateConfig `yaml:"init_state"`
	Playback   PlaybackConfig  `yaml:"playback"`
}

// InitStateConfig is the starting state in degrees and degrees per second.
type InitStateConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Omega1 float64 `yaml:"omega1"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
}

type PlaybackConfig struct {
	FPS   int  `yaml:"fps"`
	Trail int  `yaml:"trail"`
	Loop  bool `yaml:"loop"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk45",
		Length:     models.DefaultLength,
		Gravity:    models.DefaultGravity,
		Duration:   DefaultDuration,
		Dt:         DefaultDt,
		RTol:       DefaultRTol,
		ATol:       DefaultATol,
		InitState: InitStateConfig{
			Theta1: DefaultTheta1,
		},
		Playback: PlaybackConfig{
			FPS:   DefaultFPS,
			Trail: trail.DefaultWindow,
		},
	}
}

func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads path on top of a copy of base. Keys missing from the file
// keep the value from base.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first out-of-range field wrapped in
// dynamo.ErrParameterBounds.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%v: %w", err, dynamo.ErrParameterBounds)
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"duration", c.Duration},
		{"dt", c.Dt},
		{"rtol", c.RTol},
		{"atol", c.ATol},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be positive and finite, got %g: %w", f.name, f.v, dynamo.ErrParameterBounds)
		}
	}
	if c.FixedStep < 0 {
		return fmt.Errorf("fixed_step must not be negative, got %g: %w", c.FixedStep, dynamo.ErrParameterBounds)
	}
	for _, v := range []float64{c.Start, c.InitState.Theta1, c.InitState.Omega1, c.InitState.Theta2, c.InitState.Omega2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("initial conditions must be finite: %w", dynamo.ErrParameterBounds)
		}
	}
	if c.Playback.FPS < 0 || c.Playback.Trail < 0 {
		return fmt.Errorf("playback fps=%d trail=%d: %w", c.Playback.FPS, c.Playback.Trail, dynamo.ErrParameterBounds)
	}
	return nil
}

func (c *Config) Params() (models.Params, error) {
	return models.NewParams(c.Length, c.Gravity)
}

func (c *Config) GetInitState() dynamo.State {
	s := c.InitState
	return models.InitialState(s.Theta1, s.Omega1, s.Theta2, s.Omega2)
}

// SimConfig converts the run parameters for sim.Simulator.Run.
func (c *Config) SimConfig() sim.Config {
	sc := sim.DefaultConfig()
	sc.T0 = c.Start
	sc.T1 = c.Start + c.Duration
	sc.Dt = c.Dt
	sc.Solver.RTol = c.RTol
	sc.Solver.ATol = c.ATol
	if c.FixedStep > 0 {
		sc.Solver.FixedStep = c.FixedStep
	}
	return sc
}
