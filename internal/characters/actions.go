package characters

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// ApplyGravity advances free fall by one Update.
func ApplyGravity(ctx *primitives.Context, _ primitives.Event) {
	m, ph := MotionOf(ctx), PhysicsOf(ctx)
	m.Velocity.Y = math.Min(m.Velocity.Y+ph.Gravity, ph.MaxVelocity)
	m.Position = m.Position.Add(m.Velocity)
	SetMotion(ctx, m)
}

// Grounded reports whether the character reached the ground.
func Grounded(ctx *primitives.Context, _ primitives.Event) bool {
	return MotionOf(ctx).Position.Y >= PhysicsOf(ctx).GroundY
}

// Land stops the character on the ground.
func Land(ctx *primitives.Context, _ primitives.Event) {
	m := MotionOf(ctx)
	m.Velocity = cp.Vector{}
	m.Position.Y = PhysicsOf(ctx).GroundY
	SetMotion(ctx, m)
}

// ApplyTween copies a finished tween's values (the onDone event data) into
// the motion.
func ApplyTween(ctx *primitives.Context, evt primitives.Event) {
	if v, ok := evt.Data.(tween.Values); ok {
		SetMotion(ctx, MotionOf(ctx).Apply(v))
	}
}

// MotionValues is the tween start for the current motion.
func MotionValues(ctx *primitives.Context) tween.Values {
	return MotionOf(ctx).Values()
}

// SyncMotion samples whichever of the named tweens is running into the
// motion, so the context always holds the drawn position.
func SyncMotion(ids ...string) core.ActionFunc {
	return func(a *core.Actor, _ primitives.Event) error {
		for _, id := range ids {
			child, ok := a.Invoked(id)
			if !ok {
				continue
			}
			if v, ok := tween.Sample(child); ok {
				SetMotion(a.Context(), MotionOf(a.Context()).Apply(v))
			}
			return nil
		}
		return nil
	}
}

// tweenDone is the onDone transition of a motion tween.
func tweenDone(target string, extra ...primitives.ActionRef) primitives.TransitionConfig {
	actions := append([]primitives.ActionRef{tween.StoreLastPosition, ApplyTween}, extra...)
	return primitives.NewTransition("", target, primitives.WithActions(actions...))
}

func increment(key string) func(*primitives.Context, primitives.Event) {
	return func(ctx *primitives.Context, _ primitives.Event) {
		ctx.Set(key, primitives.ValueOr(ctx, key, 0)+1)
	}
}
