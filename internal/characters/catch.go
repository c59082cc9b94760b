package characters

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// Context keys of the catch orchestrator.
const (
	HenKey      = "hen"
	ChefKey     = "chef"
	EggsKey     = "eggs"
	PointsKey   = "points"
	ScoreKey    = "score"
	OutcomesKey = "outcomes"
)

// EggCatch (v1) is the catch-game orchestrator. It spawns one hen and one
// chef, one egg per Lay, and a points child for every egg the chef catches.
//
// Each Update is broadcast to every child handle, followed by a CheckCatch
// the orchestrator sends itself; the queue guarantees the children have
// moved by the time the catch box is tested.
//
// Params: hen_version (1 or 2), hen_y, lay_interval, hatch_every (every
// n-th egg splats instead of hatching, 0 = all hatch).
func EggCatch(in Input) *primitives.MachineConfig {
	b := primitives.NewMachineBuilder("eggCatch", "playing").
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{
				ScoreKey:    0,
				"laid":      0,
				EggsKey:     []*core.Actor{},
				PointsKey:   []*core.Actor{},
				OutcomesKey: map[string]int{},
			}
		})
	b.Atomic("playing").
		Entry(spawnCast(in)).
		Transition(EventLay, "", primitives.WithActions(spawnEgg(in))).
		Transition(EventUpdate, "", primitives.WithActions(broadcastUpdate)).
		Transition(EventCheckCatch, "", primitives.WithActions(checkCatch(in))).
		Transition(EventEggDone, "", primitives.WithActions(eggDone))
	return b.Build()
}

func spawnCast(in Input) core.ActionFunc {
	return func(a *core.Actor, _ primitives.Event) error {
		henIn := Input{
			Position: cp.Vector{X: in.Position.X, Y: in.Float("hen_y", in.Position.Y)},
			GroundY:  in.GroundY,
			Params:   map[string]any{"lay_interval": in.Duration("lay_interval", HenLayInterval)},
		}
		henDef := Hen(henIn)
		if in.Int("hen_version", 1) == 2 {
			henDef = HenStrolling(henIn)
		}
		hen, err := a.Spawn(henDef, core.SpawnOptions{ID: a.ID() + ".hen", Input: henIn})
		if err != nil {
			return fmt.Errorf("spawn hen: %w", err)
		}
		a.Context().Set(HenKey, hen)

		chefIn := Input{
			Position: cp.Vector{X: in.Position.X, Y: in.GroundY},
			GroundY:  in.GroundY,
			Params:   map[string]any{"range": in.Float("range", ChefRange)},
		}
		chef, err := a.Spawn(Chef(chefIn), core.SpawnOptions{ID: a.ID() + ".chef", Input: chefIn})
		if err != nil {
			return fmt.Errorf("spawn chef: %w", err)
		}
		a.Context().Set(ChefKey, chef)
		return nil
	}
}

func spawnEgg(in Input) core.ActionFunc {
	every := in.Int("hatch_every", 3)
	return func(a *core.Actor, evt primitives.Event) error {
		lay, ok := evt.Data.(LayData)
		if !ok {
			return fmt.Errorf("lay: unexpected payload %T", evt.Data)
		}
		ctx := a.Context()
		n := primitives.ValueOr(ctx, "laid", 0) + 1
		ctx.Set("laid", n)

		direction := 1.0
		if n%2 == 0 {
			direction = -1
		}
		eggIn := Input{
			Position: lay.Position,
			GroundY:  in.GroundY,
			Params: map[string]any{
				"direction": direction,
				"hatch":     every == 0 || n%every != 0,
			},
		}
		egg, err := a.Spawn(Egg(eggIn), core.SpawnOptions{ID: fmt.Sprintf("%s.egg-%d", a.ID(), n), Input: eggIn})
		if err != nil {
			return fmt.Errorf("spawn egg %d: %w", n, err)
		}
		primitives.Append(ctx, EggsKey, egg)
		return nil
	}
}

// broadcastUpdate forwards the frame to every live child, then queues the
// catch test. The sends are queued behind the current step; a child that
// fails its Update is logged by the System and does not stop the frame.
func broadcastUpdate(a *core.Actor, evt primitives.Event) {
	ctx := a.Context()
	for _, key := range []string{HenKey, ChefKey} {
		if h, ok := primitives.Value[*core.Actor](ctx, key); ok {
			h.Send(evt)
		}
	}
	for _, key := range []string{EggsKey, PointsKey} {
		live := active(primitives.ValueOr[[]*core.Actor](ctx, key, nil))
		ctx.Set(key, live)
		for _, h := range live {
			h.Send(evt)
		}
	}
	a.Send(primitives.NewEvent(EventCheckCatch, nil))
}

// CatchBox is the rectangle above the chef's feet in which eggs count as
// caught.
func CatchBox(chef cp.Vector, groundY float64) cp.BB {
	return cp.BB{
		L: chef.X - CatchWidth/2,
		B: groundY - CatchHeight,
		R: chef.X + CatchWidth/2,
		T: groundY,
	}
}

func checkCatch(in Input) core.ActionFunc {
	return func(a *core.Actor, _ primitives.Event) error {
		ctx := a.Context()
		chef, ok := primitives.Value[*core.Actor](ctx, ChefKey)
		if !ok || chef.Status() != core.Active {
			return nil
		}
		box := CatchBox(MotionOf(chef.Context()).Position, in.GroundY)
		for _, egg := range primitives.ValueOr[[]*core.Actor](ctx, EggsKey, nil) {
			snap := egg.Snapshot()
			if snap.Status != core.Active || !snap.HasTag("catchable") {
				continue
			}
			pos := MotionOf(egg.Context()).Position
			if !box.ContainsVect(pos) {
				continue
			}
			if err := egg.Send(primitives.NewEvent(EventCaught, nil)); err != nil {
				return fmt.Errorf("catch %s: %w", egg.ID(), err)
			}
			value := in.Int("points", PointsValue)
			pointsIn := Input{Position: pos, GroundY: in.GroundY, Params: map[string]any{"value": value}}
			p, err := a.Spawn(Points(pointsIn), core.SpawnOptions{ID: egg.ID() + ".points", Input: pointsIn})
			if err != nil {
				return fmt.Errorf("spawn points: %w", err)
			}
			primitives.Append(ctx, PointsKey, p)
			ctx.Set(ScoreKey, primitives.ValueOr(ctx, ScoreKey, 0)+value)
		}
		return nil
	}
}

func eggDone(ctx *primitives.Context, evt primitives.Event) {
	out, ok := evt.Data.(EggOutcome)
	if !ok {
		return
	}
	counts := primitives.ValueOr(ctx, OutcomesKey, map[string]int{})
	next := make(map[string]int, len(counts)+1)
	for k, v := range counts {
		next[k] = v
	}
	next[out.Outcome]++
	ctx.Set(OutcomesKey, next)

	var live []*core.Actor
	for _, egg := range primitives.ValueOr[[]*core.Actor](ctx, EggsKey, nil) {
		if egg.ID() != out.Egg {
			live = append(live, egg)
		}
	}
	ctx.Set(EggsKey, live)
}

func active(actors []*core.Actor) []*core.Actor {
	var live []*core.Actor
	for _, h := range actors {
		if h.Status() == core.Active {
			live = append(live, h)
		}
	}
	return live
}
