// Package config reads the storybook settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every STORYBOOK_* setting.
type Config struct {
	CanvasWidth  float64       `env:"STORYBOOK_CANVAS_WIDTH" envDefault:"800"`
	TickRate     time.Duration `env:"STORYBOOK_TICK_RATE" envDefault:"16ms"`
	DemoFile     string        `env:"STORYBOOK_DEMO_FILE"`
	Demo         string        `env:"STORYBOOK_DEMO" envDefault:"egg-catch"`
	SkipHeadless bool          `env:"STORYBOOK_SKIP_HEADLESS" envDefault:"true"`
	SnapshotDir  string        `env:"STORYBOOK_SNAPSHOT_DIR"`
	// SnapshotFormat is json or yaml.
	SnapshotFormat string `env:"STORYBOOK_SNAPSHOT_FORMAT" envDefault:"yaml"`
	Verbose        bool   `env:"STORYBOOK_VERBOSE"`
	// Frames stops the CLI after that many ticks; 0 runs until interrupted.
	Frames int  `env:"STORYBOOK_FRAMES" envDefault:"0"`
	Watch  bool `env:"STORYBOOK_WATCH"`
	// Restore resumes demo actors from the snapshots in SnapshotDir.
	Restore bool `env:"STORYBOOK_RESTORE"`
	// DOT prints the Graphviz rendering of the loaded actors on exit.
	DOT bool `env:"STORYBOOK_DOT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and checks the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.CanvasWidth <= 0 {
		return fmt.Errorf("config: canvas width must be positive, got %v", c.CanvasWidth)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("config: tick rate must be positive, got %s", c.TickRate)
	}
	if c.Frames < 0 {
		return fmt.Errorf("config: frames must not be negative, got %d", c.Frames)
	}
	switch strings.ToLower(c.SnapshotFormat) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("config: unknown snapshot format %q", c.SnapshotFormat)
	}
	if c.Watch && c.DemoFile == "" {
		return fmt.Errorf("config: STORYBOOK_WATCH needs STORYBOOK_DEMO_FILE")
	}
	if c.Restore && c.SnapshotDir == "" {
		return fmt.Errorf("config: STORYBOOK_RESTORE needs STORYBOOK_SNAPSHOT_DIR")
	}
	return nil
}
