package characters

import (
	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/tween"
)

// Hen (v1) sits in place and lays an egg every lay_interval by sending Lay
// to its parent.
func Hen(in Input) *primitives.MachineConfig {
	b := henBase(in, "1")
	interval := in.Duration("lay_interval", HenLayInterval)
	b.Atomic("idle").After(interval, "laying")
	b.Atomic("laying").Tag("laying").
		Entry(lay).
		After(HenLayDuration, "idle")
	return b.Build()
}

// HenStrolling (v2) lays like v1 but strolls to the other side of its perch
// after every egg.
func HenStrolling(in Input) *primitives.MachineConfig {
	b := henBase(in, "2")
	interval := in.Duration("lay_interval", HenLayInterval)
	stroll := in.Float("stroll", HenStroll)
	b.On(EventUpdate, "", primitives.WithActions(SyncMotion("stroll")))

	sides := []struct {
		at, laying, moving, next string
		dx                       float64
	}{
		{"idle", "laying", "toRight", "atRight", stroll},
		{"atRight", "layingRight", "toLeft", "idle", -stroll},
	}
	for _, s := range sides {
		move := tween.MustConfig(tween.Values{tween.X: s.dx}, HenStrollTime, tween.EaseOutCubicName).By()
		b.Atomic(s.at).After(interval, s.laying)
		b.Atomic(s.laying).Tag("laying").
			Entry(lay).
			After(HenLayDuration, s.moving)
		b.Atomic(s.moving).Tag("walking").
			Invoke(tween.Invoke("stroll", move, MotionValues, tweenDone(s.next)))
	}
	return b.Build()
}

func henBase(in Input, version string) *primitives.MachineBuilder {
	return primitives.NewMachineBuilder("hen", "idle").
		Version(version).
		Context(func(any) map[string]any {
			return map[string]any{
				MotionKey: Motion{Position: in.Position, Opacity: 1},
				"laid":    0,
			}
		})
}

var lay core.ActionFunc = func(a *core.Actor, _ primitives.Event) error {
	ctx := a.Context()
	ctx.Set("laid", primitives.ValueOr(ctx, "laid", 0)+1)
	a.SendParent(primitives.NewEvent(EventLay, LayData{Hen: a.ID(), Position: MotionOf(ctx).Position}))
	return nil
}
