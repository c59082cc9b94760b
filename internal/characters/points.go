package characters

import (
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Points (v1) floats a score label up while fading it out, then completes
// with its value as output.
func Points(in Input) *primitives.MachineConfig {
	value := in.Int("value", PointsValue)
	rise := tween.MustConfig(tween.Values{tween.Y: -PointsRise, tween.Opacity: -1}, PointsDuration, tween.EaseOutCubicName).By()

	b := primitives.NewMachineBuilder("points", "rising").
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{
				MotionKey: Motion{Position: in.Position, Opacity: 1},
				"value":   value,
			}
		}).
		On(EventUpdate, "", primitives.WithActions(SyncMotion("rise")))
	b.Atomic("rising").
		Invoke(tween.Invoke("rise", rise, MotionValues, tweenDone("gone")))
	b.Final("gone").
		Output(func(*primitives.Context, primitives.Event) any { return value })
	return b.Build()
}
