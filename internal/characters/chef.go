package characters

import (
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Chef (v1) paces right and left along the ground with a short pause at each
// end. Param range sets the walk distance.
func Chef(in Input) *primitives.MachineConfig {
	dist := in.Float("range", ChefRange)
	walk := in.Duration("walk", ChefWalkTime)
	pause := in.Duration("pause", ChefPause)
	right := tween.MustConfig(tween.Values{tween.X: dist}, walk, tween.LinearName).By()
	left := tween.MustConfig(tween.Values{tween.X: -dist}, walk, tween.LinearName).By()

	b := primitives.NewMachineBuilder("chef", "walkingRight").
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{MotionKey: Motion{Position: in.Position, Opacity: 1}}
		}).
		On(EventUpdate, "", primitives.WithActions(SyncMotion("walk")))

	b.Atomic("walkingRight").Tag("walking").
		Invoke(tween.Invoke("walk", right, MotionValues, tweenDone("pauseRight")))
	b.Atomic("pauseRight").After(pause, "walkingLeft")
	b.Atomic("walkingLeft").Tag("walking").
		Invoke(tween.Invoke("walk", left, MotionValues, tweenDone("pauseLeft")))
	b.Atomic("pauseLeft").After(pause, "walkingRight")
	return b.Build()
}
