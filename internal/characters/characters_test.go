package characters

import (
	"io"
	"log"
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/extensibility"
	"github.com/comalice/storybook/internal/primitives"
)

const frame = 16 * time.Millisecond

func newSystem() *core.System {
	return core.NewSystem(
		core.WithClock(time.Unix(0, 0)),
		core.WithLogger(log.New(io.Discard, "", 0)),
		core.WithGuardEvaluator(extensibility.NewExpressionGuardEvaluator(nil)),
	)
}

func start(t *testing.T, sys *core.System, def *primitives.MachineConfig, id string) *core.Actor {
	t.Helper()
	a := sys.NewActor(def, core.WithID(id))
	if err := a.Start(); err != nil {
		t.Fatalf("Start(%s) error = %v", id, err)
	}
	return a
}

func update() primitives.Event { return primitives.NewEvent(EventUpdate, nil) }

// tick runs one frame: deferred jobs, an Update to a, then the clock.
func tick(t *testing.T, sys *core.System, a *core.Actor) {
	t.Helper()
	sys.Scheduler().RunPending()
	if err := a.Send(update()); err != nil {
		t.Fatalf("Update error = %v", err)
	}
	sys.Scheduler().Advance(frame)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestChickFallsAndLands(t *testing.T) {
	sys := newSystem()
	chick := start(t, sys, Chick(Input{Position: cp.Vector{X: 10, Y: 0}, GroundY: 100}), "chick")

	if err := chick.Send(update()); err != nil {
		t.Fatal(err)
	}
	m := MotionOf(chick.Context())
	if !near(m.Velocity.Y, 0.15) || !near(m.Position.Y, 0.15) {
		t.Fatalf("after one Update motion = %v, want vel 0.15 pos 0.15", m)
	}

	for i := 0; i < 1000 && chick.Matches("falling"); i++ {
		if err := chick.Send(update()); err != nil {
			t.Fatal(err)
		}
	}
	if got := chick.Snapshot().Value; got != "hatching" {
		t.Fatalf("Value = %q, want hatching (landed passes straight through)", got)
	}
	m = MotionOf(chick.Context())
	if m.Velocity != (cp.Vector{}) {
		t.Errorf("Velocity = %v, want zero", m.Velocity)
	}
	if m.Position.Y != 100 {
		t.Errorf("Y = %v, want 100", m.Position.Y)
	}
}

func TestChickVelocityIsCapped(t *testing.T) {
	sys := newSystem()
	chick := start(t, sys, Chick(Input{GroundY: 5000}), "chick")

	peak := 0.0
	for i := 0; i < 2000 && chick.Matches("falling"); i++ {
		if err := chick.Send(update()); err != nil {
			t.Fatal(err)
		}
		peak = math.Max(peak, MotionOf(chick.Context()).Velocity.Y)
	}
	if peak != MaxVelocity {
		t.Errorf("peak velocity = %v, want %v", peak, MaxVelocity)
	}
	if !chick.Matches("hatching") {
		t.Errorf("Value = %q", chick.Snapshot().Value)
	}
}

func TestChickWalksUntilResting(t *testing.T) {
	sys := newSystem()
	chick := start(t, sys, Chick(Input{Position: cp.Vector{X: 10, Y: 100}, GroundY: 100}), "chick")
	if err := chick.Send(update()); err != nil {
		t.Fatal(err)
	}
	if !chick.Matches("hatching") {
		t.Fatalf("Value = %q, want hatching", chick.Snapshot().Value)
	}

	sys.Scheduler().Advance(ChickHatchDelay + ChickJumpDuration + ChickBounceDuration)
	if !chick.Matches("walkingRight") {
		t.Fatalf("Value = %q, want walkingRight", chick.Snapshot().Value)
	}
	if y := MotionOf(chick.Context()).Position.Y; y != 100 {
		t.Errorf("Y after bounce = %v, want 100", y)
	}

	sys.Scheduler().Advance(ChickWalkDuration / 2)
	if err := chick.Send(update()); err != nil {
		t.Fatal(err)
	}
	if x := MotionOf(chick.Context()).Position.X; !near(x, 10+ChickStride/2) {
		t.Errorf("X mid-walk = %v, want %v", x, 10+ChickStride/2)
	}

	sys.Scheduler().Advance(10 * time.Second)
	snap := chick.Snapshot()
	if snap.Value != "resting" || !snap.HasTag("idle") {
		t.Fatalf("Value = %q tags %v, want resting/idle", snap.Value, snap.Tags)
	}
	if walks := primitives.ValueOr(chick.Context(), "walks", 0); walks != ChickMaxWalks {
		t.Errorf("walks = %d, want %d", walks, ChickMaxWalks)
	}
	if x := MotionOf(chick.Context()).Position.X; x != 10 {
		t.Errorf("X after walking back and forth = %v, want 10", x)
	}
}

func TestChickWithoutExpressionGuardsNeverRests(t *testing.T) {
	sys := core.NewSystem(core.WithClock(time.Unix(0, 0)), core.WithLogger(log.New(io.Discard, "", 0)))
	chick := start(t, sys, Chick(Input{Position: cp.Vector{Y: 100}, GroundY: 100}), "chick")
	sys.Scheduler().Advance(10 * time.Second)
	if chick.Matches("resting") {
		t.Fatal("chick rested without an expression evaluator")
	}
	if walks := primitives.ValueOr(chick.Context(), "walks", 0); walks <= ChickMaxWalks {
		t.Errorf("walks = %d, want more than %d", walks, ChickMaxWalks)
	}
}

func TestEggEndings(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]any
		caught   bool
		wait     time.Duration
		want     string
		rotation float64
		opacity  float64
	}{
		{"hatch", map[string]any{"hatch": true}, false, EggFallDuration + EggHatchDelay, Hatched, EggSpin, 1},
		{"splat", map[string]any{"hatch": false, "direction": -1.0}, false, EggFallDuration + EggSplatDuration, Splatted, -EggSpin, 0},
		{"caught", nil, true, 0, Caught, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newSystem()
			egg := start(t, sys, Egg(Input{Position: cp.Vector{X: 50}, GroundY: 100, Params: tt.params}), "egg")
			if !egg.Snapshot().HasTag("catchable") {
				t.Fatalf("falling egg tags = %v", egg.Snapshot().Tags)
			}
			if tt.caught {
				if err := egg.Send(primitives.NewEvent(EventCaught, nil)); err != nil {
					t.Fatal(err)
				}
			}
			sys.Scheduler().Advance(tt.wait)

			snap := egg.Snapshot()
			if snap.Status != core.Done || snap.Output != tt.want {
				t.Fatalf("status %v output %v, want done %q", snap.Status, snap.Output, tt.want)
			}
			m := MotionOf(egg.Context())
			if m.Rotation != tt.rotation || m.Opacity != tt.opacity {
				t.Errorf("motion = %v, want rotation %v opacity %v", m, tt.rotation, tt.opacity)
			}
			if !tt.caught && m.Position.Y != 100 {
				t.Errorf("Y = %v, want 100", m.Position.Y)
			}
			if sys.Len() != 0 {
				t.Errorf("registry = %v, want empty", sys.IDs())
			}
		})
	}
}

func TestHenLaysToParent(t *testing.T) {
	sys := newSystem()
	b := primitives.NewMachineBuilder("coop", "watching")
	b.Atomic("watching").
		Entry(core.ActionFunc(func(a *core.Actor, _ primitives.Event) error {
			_, err := a.Spawn(Hen(Input{Position: cp.Vector{X: 7, Y: 3}, Params: map[string]any{"lay_interval": 100}}), core.SpawnOptions{ID: "hen"})
			return err
		})).
		Transition(EventLay, "", primitives.WithActions(func(ctx *primitives.Context, evt primitives.Event) {
			primitives.Append(ctx, "lays", evt.Data.(LayData))
		}))
	coop := start(t, sys, b.Build(), "coop")

	sys.Scheduler().Advance(100*time.Millisecond + HenLayDuration + 100*time.Millisecond)
	lays := primitives.ValueOr[[]LayData](coop.Context(), "lays", nil)
	if len(lays) != 2 {
		t.Fatalf("lays = %v, want 2", lays)
	}
	if lays[0].Hen != "hen" || lays[0].Position != (cp.Vector{X: 7, Y: 3}) {
		t.Errorf("lay = %+v", lays[0])
	}
	hen, err := sys.Lookup("hen")
	if err != nil {
		t.Fatal(err)
	}
	if laid := primitives.ValueOr(hen.Context(), "laid", 0); laid != 2 {
		t.Errorf("laid = %d, want 2", laid)
	}

	if err := coop.Stop(); err != nil {
		t.Fatal(err)
	}
	if sys.Len() != 0 {
		t.Errorf("registry = %v after stop", sys.IDs())
	}
}

func TestStrollingHenAlternatesSides(t *testing.T) {
	sys := newSystem()
	hen := start(t, sys, HenStrolling(Input{Position: cp.Vector{X: 0}, Params: map[string]any{"lay_interval": "1s"}}), "hen")

	steps := []struct {
		after time.Duration
		want  string
		x     float64
	}{
		{time.Second, "laying", 0},
		{HenLayDuration, "toRight", 0},
		{HenStrollTime, "atRight", HenStroll},
		{time.Second + HenLayDuration + HenStrollTime, "idle", 0},
	}
	for _, s := range steps {
		sys.Scheduler().Advance(s.after)
		if got := hen.Snapshot().Value; got != s.want {
			t.Fatalf("Value = %q, want %q", got, s.want)
		}
		if x := MotionOf(hen.Context()).Position.X; x != s.x {
			t.Errorf("%s: X = %v, want %v", s.want, x, s.x)
		}
	}
	if laid := primitives.ValueOr(hen.Context(), "laid", 0); laid != 2 {
		t.Errorf("laid = %d, want 2", laid)
	}
}

func TestChefPaces(t *testing.T) {
	sys := newSystem()
	chef := start(t, sys, Chef(Input{Position: cp.Vector{X: 100, Y: 200}}), "chef")

	sys.Scheduler().Advance(ChefWalkTime / 4)
	chef.Send(update())
	if x := MotionOf(chef.Context()).Position.X; !near(x, 100+ChefRange/4) {
		t.Errorf("X = %v, want %v", x, 100+ChefRange/4)
	}
	sys.Scheduler().Advance(ChefWalkTime * 3 / 4)
	if !chef.Matches("pauseRight") {
		t.Fatalf("Value = %q", chef.Snapshot().Value)
	}
	sys.Scheduler().Advance(ChefPause + ChefWalkTime)
	if !chef.Matches("pauseLeft") || MotionOf(chef.Context()).Position.X != 100 {
		t.Errorf("Value = %q X = %v", chef.Snapshot().Value, MotionOf(chef.Context()).Position.X)
	}
}

func TestPointsRiseAndFade(t *testing.T) {
	sys := newSystem()
	p := start(t, sys, Points(Input{Position: cp.Vector{X: 5, Y: 50}, Params: map[string]any{"value": 25}}), "p")
	sys.Scheduler().Advance(PointsDuration)

	snap := p.Snapshot()
	if snap.Status != core.Done || snap.Output != 25 {
		t.Fatalf("status %v output %v", snap.Status, snap.Output)
	}
	m := MotionOf(p.Context())
	if m.Position.Y != 50-PointsRise || m.Opacity != 0 {
		t.Errorf("motion = %v", m)
	}
}

func TestCatchBox(t *testing.T) {
	box := CatchBox(cp.Vector{X: 100, Y: 200}, 200)
	tests := []struct {
		p    cp.Vector
		want bool
	}{
		{cp.Vector{X: 100, Y: 190}, true},
		{cp.Vector{X: 60, Y: 200}, true},
		{cp.Vector{X: 100, Y: 150}, false},
		{cp.Vector{X: 141, Y: 190}, false},
	}
	for _, tt := range tests {
		if got := box.ContainsVect(tt.p); got != tt.want {
			t.Errorf("ContainsVect(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestEggCatch(t *testing.T) {
	tests := []struct {
		name    string
		layX    float64
		score   int
		outcome string
	}{
		{"under the chef", 100, PointsValue, Caught},
		{"out of reach", 500, 0, Hatched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newSystem()
			in := Input{
				Position: cp.Vector{X: 100, Y: 20},
				GroundY:  200,
				Params:   map[string]any{"lay_interval": "1h", "range": 0.0},
			}
			game := start(t, sys, EggCatch(in), "game")
			if _, err := sys.Lookup("game.hen"); err != nil {
				t.Fatalf("hen not spawned: %v", err)
			}
			if _, err := sys.Lookup("game.chef"); err != nil {
				t.Fatalf("chef not spawned: %v", err)
			}

			lay := LayData{Hen: "game.hen", Position: cp.Vector{X: tt.layX, Y: 20}}
			if err := game.Send(primitives.NewEvent(EventLay, lay)); err != nil {
				t.Fatal(err)
			}
			egg, err := sys.Lookup("game.egg-1")
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 200; i++ {
				tick(t, sys, game)
			}

			if snap := egg.Snapshot(); snap.Status != core.Done || snap.Output != tt.outcome {
				t.Errorf("egg status %v output %v, want %q", snap.Status, snap.Output, tt.outcome)
			}
			ctx := game.Context()
			if score := primitives.ValueOr(ctx, ScoreKey, -1); score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
			if n := primitives.ValueOr(ctx, OutcomesKey, map[string]int{})[tt.outcome]; n != 1 {
				t.Errorf("outcomes = %v", primitives.ValueOr(ctx, OutcomesKey, map[string]int{}))
			}
			if eggs := primitives.ValueOr[[]*core.Actor](ctx, EggsKey, nil); len(eggs) != 0 {
				t.Errorf("eggs still tracked: %d", len(eggs))
			}
			if _, err := sys.Lookup("game.egg-1.points"); err == nil {
				t.Error("points child still registered after finishing")
			}

			if err := game.Stop(); err != nil {
				t.Fatal(err)
			}
			if sys.Len() != 0 {
				t.Errorf("registry = %v after stop", sys.IDs())
			}
		})
	}
}

func TestEggCatchLaysOnItsOwn(t *testing.T) {
	sys := newSystem()
	game := start(t, sys, EggCatch(Input{
		Position: cp.Vector{X: 100, Y: 20},
		GroundY:  200,
		Params:   map[string]any{"lay_interval": 500, "hen_version": 2},
	}), "game")
	for i := 0; i < 40; i++ {
		tick(t, sys, game)
	}
	if laid := primitives.ValueOr(game.Context(), "laid", 0); laid == 0 {
		t.Error("no eggs laid")
	}
	if _, err := sys.Lookup("game.egg-1"); err != nil {
		t.Errorf("first egg: %v", err)
	}
}

func TestEggCatchUpdateReachesChildrenInOneSend(t *testing.T) {
	sys := newSystem()
	game := start(t, sys, EggCatch(Input{
		Position: cp.Vector{X: 100, Y: 20},
		GroundY:  200,
		Params:   map[string]any{"lay_interval": 500},
	}), "game")

	if err := game.Send(update()); err != nil {
		t.Fatalf("Update error = %v", err)
	}
	for _, id := range []string{"game.hen", "game.chef"} {
		child, err := sys.Lookup(id)
		if err != nil {
			t.Fatalf("Lookup(%s) error = %v", id, err)
		}
		if got := child.Snapshot().Event.Type; got != EventUpdate {
			t.Errorf("%s last event = %q, want %s", id, got, EventUpdate)
		}
	}
	if got := game.Snapshot().Event.Type; got != EventCheckCatch {
		t.Errorf("game last event = %q, want %s", got, EventCheckCatch)
	}
}

func TestMirror(t *testing.T) {
	sys := newSystem()
	in := Input{Position: cp.Vector{X: 1}, GroundY: 30}
	visual := start(t, sys, Chick(in), "visual")
	headless := start(t, sys, Chick(in), "headless")
	stop := Mirror(visual, headless)

	for i := 0; i < 100 && visual.Matches("falling"); i++ {
		visual.Send(update())
	}
	if got, want := headless.Snapshot().Value, visual.Snapshot().Value; got != want {
		t.Fatalf("headless = %q, visual = %q", got, want)
	}
	if MotionOf(headless.Context()) != MotionOf(visual.Context()) {
		t.Errorf("motion diverged: %v vs %v", MotionOf(headless.Context()), MotionOf(visual.Context()))
	}

	stop()
	forwarded := 0
	headless.Subscribe(func(core.Snapshot) { forwarded++ })
	visual.Send(update())
	if forwarded != 0 {
		t.Errorf("mirror forwarded %d events after stop", forwarded)
	}
}
