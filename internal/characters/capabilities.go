// Package characters defines the statecharts of every character family in
// the storybook, along with the catch-game orchestrator that spawns and
// coordinates them.
//
// Families keep their per-actor state in typed capability structs stored in
// the actor context (Motion, Physics) plus a few scalar counters, so string
// guards can see the counters and renderers only need MotionOf.
package characters

import (
	"fmt"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Events understood by the families.
const (
	EventUpdate     = "Update"
	EventLay        = "Lay"
	EventCaught     = "Caught"
	EventEggDone    = "EggDone"
	EventCheckCatch = "CheckCatch"
)

// Context keys of the capability structs.
const (
	MotionKey  = "motion"
	PhysicsKey = "physics"
)

// Input is what every family factory receives: where to appear, where the
// ground is, and family-specific parameters.
type Input struct {
	Position cp.Vector      `json:"position" yaml:"position"`
	GroundY  float64        `json:"groundY" yaml:"groundY"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

func (in Input) Float(name string, def float64) float64 {
	switch v := in.Params[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func (in Input) Int(name string, def int) int {
	switch v := in.Params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func (in Input) Bool(name string, def bool) bool {
	if v, ok := in.Params[name].(bool); ok {
		return v
	}
	return def
}

// Duration accepts a time.Duration, a duration string ("1.5s") or a number
// of milliseconds.
func (in Input) Duration(name string, def time.Duration) time.Duration {
	switch v := in.Params[name].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	}
	return def
}

// Motion is the drawable state of a character.
type Motion struct {
	Position cp.Vector `json:"position" yaml:"position"`
	Velocity cp.Vector `json:"velocity" yaml:"velocity"`
	Rotation float64   `json:"rotation" yaml:"rotation"`
	Opacity  float64   `json:"opacity" yaml:"opacity"`
}

func (m Motion) String() string {
	return fmt.Sprintf("pos=(%.1f,%.1f) vel=(%.2f,%.2f) rot=%.0f op=%.2f",
		m.Position.X, m.Position.Y, m.Velocity.X, m.Velocity.Y, m.Rotation, m.Opacity)
}

// Values exposes the tweenable part of m.
func (m Motion) Values() tween.Values {
	return tween.Values{
		tween.X:        m.Position.X,
		tween.Y:        m.Position.Y,
		tween.Rotation: m.Rotation,
		tween.Opacity:  m.Opacity,
	}
}

// Apply overwrites the properties present in v.
func (m Motion) Apply(v tween.Values) Motion {
	for p, val := range v {
		switch p {
		case tween.X:
			m.Position.X = val
		case tween.Y:
			m.Position.Y = val
		case tween.Rotation:
			m.Rotation = val
		case tween.Opacity:
			m.Opacity = val
		}
	}
	return m
}

// Physics parameterizes free fall.
type Physics struct {
	Gravity     float64 `json:"gravity" yaml:"gravity"`
	MaxVelocity float64 `json:"maxVelocity" yaml:"maxVelocity"`
	GroundY     float64 `json:"groundY" yaml:"groundY"`
}

func MotionOf(ctx *primitives.Context) Motion {
	m, _ := primitives.Value[Motion](ctx, MotionKey)
	return m
}

func SetMotion(ctx *primitives.Context, m Motion) {
	ctx.Set(MotionKey, m)
}

func PhysicsOf(ctx *primitives.Context) Physics {
	p, _ := primitives.Value[Physics](ctx, PhysicsKey)
	return p
}

// LayData is the payload of Lay.
type LayData struct {
	Hen      string
	Position cp.Vector
}

// EggOutcome is the payload of EggDone.
type EggOutcome struct {
	Egg      string
	Outcome  string
	Position cp.Vector
}

// Egg outcomes.
const (
	Hatched  = "hatched"
	Splatted = "splatted"
	Caught   = "caught"
)
