package tween

import (
	"time"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// Context keys of a running tween actor.
const (
	ConfigKey    = "tween"
	StartKey     = "start"
	StartedAtKey = "startedAt"

	// LastPositionKey is where StoreLastPosition keeps a finished tween's values
	// in the invoking actor's context.
	LastPositionKey = "lastPosition"
)

// Machine returns a definition that plays cfg once. The actor's input is the
// start Values; it stays in "running" for the duration, then completes with
// the start values overwritten by the targets.
func Machine(cfg Config) *primitives.MachineConfig {
	b := primitives.NewMachineBuilder("tween", "running").
		Context(func(input any) map[string]any {
			start, _ := input.(Values)
			return map[string]any{ConfigKey: cfg, StartKey: start.Clone()}
		})
	b.Atomic("running").
		Entry(core.ActionFunc(markStarted)).
		After(cfg.Duration, "done")
	b.Final("done").
		Output(func(ctx *primitives.Context, _ primitives.Event) any {
			start, _ := primitives.Value[Values](ctx, StartKey)
			return start.Merge(Resolve(cfg, start))
		})
	return b.Build()
}

func markStarted(a *core.Actor, _ primitives.Event) error {
	a.Context().Set(StartedAtKey, a.System().Now())
	return nil
}

// Invoke attaches a tween to the invoking state. from computes the start
// values on entry; onDone transitions receive the final Values as event data.
func Invoke(id string, cfg Config, from func(*primitives.Context) Values, onDone ...primitives.TransitionConfig) primitives.InvokeConfig {
	return primitives.InvokeConfig{
		ID:  id,
		Src: Machine(cfg),
		Input: func(ctx *primitives.Context, _ primitives.Event) any {
			if from == nil {
				return Values{}
			}
			return from(ctx)
		},
		OnDone: onDone,
	}
}

// StoreLastPosition is an onDone action saving the finished tween's values
// under LastPositionKey.
func StoreLastPosition(ctx *primitives.Context, evt primitives.Event) {
	if v, ok := evt.Data.(Values); ok {
		ctx.Set(LastPositionKey, v.Clone())
	}
}

// Sample returns the current values of a tween actor: start values with the
// animated properties interpolated at the system clock.
func Sample(a *core.Actor) (Values, bool) {
	if a == nil {
		return nil, false
	}
	if snap := a.Snapshot(); snap.Status == core.Done {
		out, ok := snap.Output.(Values)
		return out, ok
	}
	ctx := a.Context()
	cfg, ok := primitives.Value[Config](ctx, ConfigKey)
	if !ok {
		return nil, false
	}
	start, _ := primitives.Value[Values](ctx, StartKey)
	startedAt, ok := primitives.Value[time.Time](ctx, StartedAtKey)
	if !ok {
		return start.Clone(), true
	}
	return start.Merge(Compute(cfg, start, a.System().Now().Sub(startedAt))), true
}
