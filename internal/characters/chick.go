package characters

import (
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Chick (v1) drops from the sky under gravity, lands, hatches, hops, bounces
// and then walks back and forth until it has walked max_walks times.
//
// The resting guard is a string expression, so the system running a chick
// needs the expression guard evaluator.
func Chick(in Input) *primitives.MachineConfig {
	ground := in.GroundY
	stride := in.Float("stride", ChickStride)
	walk := in.Duration("walk", ChickWalkDuration)
	pause := in.Duration("pause", ChickPause)

	jump := tween.MustConfig(tween.Values{tween.Y: -in.Float("jump", ChickJumpHeight)}, ChickJumpDuration, tween.EaseOutCubicName).By()
	bounce := tween.MustConfig(tween.Values{tween.Y: ground}, ChickBounceDuration, tween.BounceEaseOutName)
	right := tween.MustConfig(tween.Values{tween.X: stride}, walk, tween.LinearName).By()
	left := tween.MustConfig(tween.Values{tween.X: -stride}, walk, tween.LinearName).By()

	b := primitives.NewMachineBuilder("chick", "falling").
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{
				MotionKey: Motion{Position: in.Position, Opacity: 1},
				PhysicsKey: Physics{
					Gravity:     in.Float("gravity", Gravity),
					MaxVelocity: in.Float("max_velocity", MaxVelocity),
					GroundY:     ground,
				},
				"walks":     0,
				"max_walks": in.Int("max_walks", ChickMaxWalks),
			}
		}).
		Guard("grounded", Grounded).
		Guard("doneWalking", "walks >= max_walks").
		Guard("facingLeft", func(ctx *primitives.Context, _ primitives.Event) bool {
			return primitives.ValueOr(ctx, "walks", 0)%2 == 1
		}).
		On(EventUpdate, "", primitives.WithActions(SyncMotion("jump", "bounce", "walk")))

	b.Atomic("falling").Tag("airborne").
		Transition(EventUpdate, "", primitives.WithActions(ApplyGravity)).
		Always("landed", primitives.WithGuard("grounded"))
	b.Atomic("landed").
		Entry(Land).
		Always("hatching")
	b.Atomic("hatching").
		After(ChickHatchDelay, "jumping")
	b.Atomic("jumping").Tag("airborne").
		Invoke(tween.Invoke("jump", jump, MotionValues, tweenDone("bouncing")))
	b.Atomic("bouncing").Tag("airborne").
		Invoke(tween.Invoke("bounce", bounce, MotionValues, tweenDone("walkingRight")))
	b.Atomic("walkingRight").Tag("walking").
		Invoke(tween.Invoke("walk", right, MotionValues, tweenDone("pausing", increment("walks"))))
	b.Atomic("walkingLeft").Tag("walking").
		Invoke(tween.Invoke("walk", left, MotionValues, tweenDone("pausing", increment("walks"))))
	b.Atomic("pausing").
		Always("resting", primitives.WithGuard("doneWalking")).
		After(pause, "walkingLeft", primitives.WithGuard("facingLeft")).
		After(pause, "walkingRight")
	b.Atomic("resting").Tag("idle")
	return b.Build()
}
