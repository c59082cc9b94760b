// Package tween interpolates character properties over time, either as a
// pure function of elapsed time or as an invoked child actor that completes
// with the final values once its duration has elapsed.
package tween

import (
	"errors"
	"fmt"
	"time"
)

// Property is an animatable property.
type Property string

const (
	X        Property = "x"
	Y        Property = "y"
	Rotation Property = "rotation"
	Opacity  Property = "opacity"
)

func (p Property) valid() bool {
	switch p {
	case X, Y, Rotation, Opacity:
		return true
	}
	return false
}

// Values holds a value per property. Missing properties are left untouched
// by a tween.
type Values map[Property]float64

// Clone copies v; nil stays nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for p, val := range v {
		out[p] = val
	}
	return out
}

// Merge returns a copy of v overwritten by every value in over.
func (v Values) Merge(over Values) Values {
	out := v.Clone()
	if out == nil {
		out = make(Values, len(over))
	}
	for p, val := range over {
		out[p] = val
	}
	return out
}

var ErrNoProperties = errors.New("tween: at least one target property is required")

// Config describes one tween. It holds plain data so it can live in an
// actor's context and be persisted.
type Config struct {
	Targets  Values        `json:"targets" yaml:"targets"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Easing   string        `json:"easing,omitempty" yaml:"easing,omitempty"`
	// Relative targets are offsets from the start values.
	Relative bool `json:"relative,omitempty" yaml:"relative,omitempty"`
}

// By returns a copy of c whose targets are offsets from the start values.
func (c Config) By() Config {
	c.Targets = c.Targets.Clone()
	c.Relative = true
	return c
}

// NewConfig validates and returns a tween config. A config without targets
// is rejected with ErrNoProperties.
func NewConfig(targets Values, duration time.Duration, easing string) (Config, error) {
	if len(targets) == 0 {
		return Config{}, ErrNoProperties
	}
	for p := range targets {
		if !p.valid() {
			return Config{}, fmt.Errorf("tween: unknown property %q", p)
		}
	}
	if duration < 0 {
		return Config{}, fmt.Errorf("tween: negative duration %s", duration)
	}
	if _, err := EasingByName(easing); err != nil {
		return Config{}, err
	}
	return Config{Targets: targets.Clone(), Duration: duration, Easing: easing}, nil
}

// MustConfig is NewConfig for package-level definitions; it panics on error.
func MustConfig(targets Values, duration time.Duration, easing string) Config {
	cfg, err := NewConfig(targets, duration, easing)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Progress is elapsed/duration clamped to [0, 1]. A zero duration is
// complete immediately.
func (c Config) Progress(elapsed time.Duration) float64 {
	if c.Duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(c.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (c Config) ease() Easing {
	e, err := EasingByName(c.Easing)
	if err != nil {
		return Linear
	}
	return e
}

// Compute samples the tween after elapsed, for the configured properties
// only. Start values default to zero. Once progress reaches 1 the targets
// are returned exactly.
func Compute(cfg Config, start Values, elapsed time.Duration) Values {
	progress := cfg.Progress(elapsed)
	if progress >= 1 {
		return Resolve(cfg, start)
	}
	eased := cfg.ease()(progress)
	out := make(Values, len(cfg.Targets))
	for p := range cfg.Targets {
		from := start[p]
		out[p] = from + (cfg.target(p, start)-from)*eased
	}
	return out
}

// Resolve returns the final values of the tween, eased progress 1.
func Resolve(cfg Config, start Values) Values {
	out := make(Values, len(cfg.Targets))
	for p := range cfg.Targets {
		out[p] = cfg.target(p, start)
	}
	return out
}

func (c Config) target(p Property, start Values) float64 {
	if c.Relative {
		return start[p] + c.Targets[p]
	}
	return c.Targets[p]
}
