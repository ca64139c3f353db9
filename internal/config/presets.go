package config

import "sort"

// Presets holds named starting conditions. "default" matches DefaultConfig.
var Presets = map[string]*Config{
	"default":  DefaultConfig(),
	"gentle":   withInit(DefaultConfig(), InitStateConfig{Theta1: 10, Theta2: 10}),
	"opposed":  withInit(DefaultConfig(), InitStateConfig{Theta1: 30, Theta2: -30}),
	"inverted": withInit(DefaultConfig(), InitStateConfig{Theta1: 179, Theta2: 180}),
	"whip":     withInit(DefaultConfig(), InitStateConfig{Theta1: 0, Omega1: 360, Theta2: 0}),
	"long": func() *Config {
		c := withInit(DefaultConfig(), InitStateConfig{Theta1: 120, Theta2: -10})
		c.Duration = 30
		return c
	}(),
}

func withInit(c *Config, s InitStateConfig) *Config {
	c.InitState = s
	return c
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
