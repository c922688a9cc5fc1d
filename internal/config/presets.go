package config

import (
	"sort"

	"github.com/san-kum/dcmotor/internal/control"
)

var Presets = map[string]*Config{
	"default":    DefaultConfig(),
	"aggressive": withGains(control.Gains{Kp: 50, Ki: 30, Kd: 0.1}, 8),
	"sluggish":   withGains(control.Gains{Kp: 2, Ki: 0.5, Kd: 0}, 5),
	"p_only":     withGains(control.Gains{Kp: 15}, 5),
	"pi":         withGains(control.Gains{Kp: 15, Ki: 5}, 5),
	"open_loop":  withGains(control.Gains{}, 5),
}

func withGains(g control.Gains, target float64) *Config {
	cfg := DefaultConfig()
	cfg.Gains = g
	cfg.Target = target
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
