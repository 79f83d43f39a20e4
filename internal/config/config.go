// Package config holds the user-tunable render, export and window settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/cbegin/songsynth-go/internal/wavout"
)

type Config struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Peak       int    `yaml:"peak"`
	Export     Export `yaml:"export"`
	Window     Window `yaml:"window"`
}

type Export struct {
	Enabled    bool `yaml:"enabled"`
	BitDepth   int  `yaml:"bit_depth"`
	SampleRate int  `yaml:"sample_rate,omitempty"`
	// Dir overrides the directory the .wav file is written to.
	Dir string `yaml:"dir,omitempty"`
}

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func Default() Config {
	return Config{
		SampleRate: 48000,
		Channels:   1,
		Peak:       0x7fff,
		Export: Export{
			Enabled:  true,
			BitDepth: 24,
		},
		Window: Window{
			Width:  1200,
			Height: 600,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	if c.Peak <= 0 || c.Peak > 0x7fff {
		return fmt.Errorf("peak must be in 1..32767, got %d", c.Peak)
	}
	switch c.Export.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("export.bit_depth must be 16, 24 or 32, got %d", c.Export.BitDepth)
	}
	if c.Export.SampleRate < 0 {
		return fmt.Errorf("export.sample_rate must not be negative, got %d", c.Export.SampleRate)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}

// Options builds the encoder settings for a buffer rendered at renderRate.
func (e Export) Options(renderRate int) wavout.Options {
	opt := wavout.DefaultOptions(renderRate)
	opt.BitDepth = e.BitDepth
	if e.SampleRate != renderRate {
		opt.TargetRate = e.SampleRate
	}
	return opt
}

// Path returns where the export of songPath goes: next to the song, or in Dir
// when set.
func (e Export) Path(songPath string) string {
	out := songPath + ".wav"
	if e.Dir == "" {
		return out
	}
	return filepath.Join(e.Dir, filepath.Base(out))
}
