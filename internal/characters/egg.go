package characters

import (
	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Egg (v1) spins down to the ground in a single tween, then either hatches
// or splats depending on the hatch parameter. Caught while falling ends it
// early. Every ending reports EggDone to the parent.
//
// Params: direction (sign of the spin), hatch (bool), fall (duration).
func Egg(in Input) *primitives.MachineConfig {
	spin := EggSpin
	if in.Float("direction", 1) < 0 {
		spin = -EggSpin
	}
	fall := tween.MustConfig(tween.Values{tween.Y: in.GroundY, tween.Rotation: spin}, in.Duration("fall", EggFallDuration), tween.LinearName)
	splat := tween.MustConfig(tween.Values{tween.Opacity: 0}, EggSplatDuration, tween.LinearName)

	b := primitives.NewMachineBuilder("egg", "falling").
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{
				MotionKey: Motion{Position: in.Position, Opacity: 1},
				"hatch":   in.Bool("hatch", true),
			}
		}).
		On(EventUpdate, "", primitives.WithActions(SyncMotion("fall", "splat")))

	b.Atomic("falling").Tag("airborne", "catchable").
		Invoke(tween.Invoke("fall", fall, MotionValues, tweenDone("landed"))).
		Transition(EventCaught, "caught")
	b.Atomic("landed").
		Always("hatching", primitives.WithGuard(func(ctx *primitives.Context, _ primitives.Event) bool {
			return primitives.ValueOr(ctx, "hatch", true)
		})).
		Always("splatting")
	b.Atomic("hatching").
		After(EggHatchDelay, "hatched")
	b.Atomic("splatting").
		Invoke(tween.Invoke("splat", splat, MotionValues, tweenDone("splatted")))
	for _, outcome := range []string{Hatched, Splatted, Caught} {
		b.Final(outcome).
			Entry(reportEgg(outcome)).
			Output(func(*primitives.Context, primitives.Event) any { return outcome })
	}
	return b.Build()
}

func reportEgg(outcome string) core.ActionFunc {
	return func(a *core.Actor, _ primitives.Event) error {
		a.SendParent(primitives.NewEvent(EventEggDone, EggOutcome{
			Egg:      a.ID(),
			Outcome:  outcome,
			Position: MotionOf(a.Context()).Position,
		}))
		return nil
	}
}
