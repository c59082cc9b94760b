package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/comalice/storybook/internal/catalog"
	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// Session events.
const (
	EventSelectDemo        = "SelectDemo"
	EventPlay              = "Play"
	EventReset             = "Reset"
	EventChangeCanvasWidth = "ChangeCanvasWidth"
)

// Session states.
const (
	StateIdle          = "idle"
	StateLoadingActors = "loadingActors"
	StateLoaded        = "loaded"
	StateReady         = "loaded.ready"
	StatePlaying       = "loaded.playing"
	StateError         = "error"
)

// Context keys of the session machine.
const (
	SelectionKey   = "selection"
	CanvasWidthKey = "canvasWidth"
	LayoutKey      = "layout"
	ActorsKey      = "actors"
	ErrorKey       = "error"
	ResetCountKey  = "resetCount"
	PlayingKey     = "playing"
)

// LoadInvokeID is the id of the loading invocation.
const LoadInvokeID = "load"

func SelectDemo(id string) primitives.Event { return primitives.NewEvent(EventSelectDemo, id) }
func Play() primitives.Event                { return primitives.NewEvent(EventPlay, nil) }
func Reset() primitives.Event               { return primitives.NewEvent(EventReset, nil) }

func ChangeCanvasWidth(width float64) primitives.Event {
	return primitives.NewEvent(EventChangeCanvasWidth, width)
}

// LoadRequest is the input of the loading invocation. Demo is zero when the
// selection no longer exists.
type LoadRequest struct {
	ID     string
	Demo   catalog.DemoSpec
	Layout catalog.Layout
}

// Deps are the collaborators of the session machine.
type Deps struct {
	Find        func(id string) (catalog.DemoSpec, bool)
	Load        func(ctx context.Context, req LoadRequest) ([]*core.Actor, error)
	CanvasWidth float64
}

// Machine builds the DemoSessionMachine.
//
//	idle --SelectDemo[demoExists]--> loadingActors
//	loadingActors --done--> loaded.ready --Play--> loaded.playing
//	loadingActors --error--> error
//	loaded --SelectDemo[demoExists] | ChangeCanvasWidth[hasSelection] | Reset[hasSelection]--> loadingActors
//	error --SelectDemo[demoExists]--> loadingActors, error --Reset--> idle
//
// Every transition out of loaded stops the running actors first.
func Machine(d Deps) *primitives.MachineConfig {
	m := &machine{Deps: d}
	b := primitives.NewMachineBuilder("demoSession", StateIdle).
		Version("1").
		Context(func(any) map[string]any {
			return map[string]any{
				SelectionKey:   "",
				CanvasWidthKey: d.CanvasWidth,
				ActorsKey:      []*core.Actor{},
				ErrorKey:       "",
				ResetCountKey:  0,
				PlayingKey:     false,
			}
		}).
		Guard("demoExists", m.demoExists).
		Guard("hasSelection", `selection != ""`).
		Action("select", m.selectDemo).
		Action("layout", m.layout).
		Action("cleanup", core.ActionFunc(m.cleanup)).
		Action("bumpReset", func(ctx *primitives.Context, _ primitives.Event) {
			ctx.Set(ResetCountKey, primitives.ValueOr(ctx, ResetCountKey, 0)+1)
		}).
		Action("clearError", func(ctx *primitives.Context, _ primitives.Event) {
			ctx.Set(ErrorKey, "")
		})

	b.Atomic(StateIdle).
		Transition(EventSelectDemo, StateLoadingActors,
			primitives.WithGuard("demoExists"),
			primitives.WithActions("select", "layout"))

	b.Atomic(StateLoadingActors).
		Invoke(primitives.InvokeConfig{
			ID:    LoadInvokeID,
			Src:   primitives.PromiseFunc(m.load),
			Input: m.request,
			OnDone: []primitives.TransitionConfig{
				primitives.NewTransition("", StateReady, primitives.WithActions(storeActors)),
			},
			OnError: []primitives.TransitionConfig{
				primitives.NewTransition("", StateError, primitives.WithActions(storeError)),
			},
		})

	b.Compound(StateLoaded, "ready").
		Transition(EventSelectDemo, StateLoadingActors,
			primitives.WithGuard("demoExists"),
			primitives.WithActions("cleanup", "bumpReset", "select", "layout")).
		Transition(EventChangeCanvasWidth, StateLoadingActors,
			primitives.WithGuard("hasSelection"),
			primitives.WithActions("cleanup", storeWidth, "layout")).
		Transition(EventReset, StateLoadingActors,
			primitives.WithGuard("hasSelection"),
			primitives.WithActions("cleanup", "bumpReset")).
		Atomic("ready").
		Transition(EventPlay, "playing", primitives.WithActions(func(ctx *primitives.Context, _ primitives.Event) {
			ctx.Set(PlayingKey, true)
		})).
		Up().
		Atomic("playing").Tag("playing")

	b.Atomic(StateError).Tag("error").
		Transition(EventSelectDemo, StateLoadingActors,
			primitives.WithGuard("demoExists"),
			primitives.WithActions("clearError", "select", "layout")).
		Transition(EventReset, StateIdle, primitives.WithActions("clearError"))

	return b.Build()
}

type machine struct {
	Deps
}

func (m *machine) find(id string) (catalog.DemoSpec, bool) {
	if m.Find == nil {
		return catalog.DemoSpec{}, false
	}
	return m.Find(id)
}

func (m *machine) demoExists(_ *primitives.Context, evt primitives.Event) bool {
	id, _ := evt.Data.(string)
	_, ok := m.find(id)
	return ok
}

func (m *machine) selectDemo(ctx *primitives.Context, evt primitives.Event) {
	id, _ := evt.Data.(string)
	ctx.Set(SelectionKey, id)
}

func (m *machine) layout(ctx *primitives.Context, _ primitives.Event) {
	demo, _ := m.find(primitives.ValueOr(ctx, SelectionKey, ""))
	ctx.Set(LayoutKey, catalog.ComputeLayout(demo, primitives.ValueOr(ctx, CanvasWidthKey, 0.0)))
}

// cleanup stops every running actor of the current demo. Stopping an actor
// stops everything it spawned.
func (m *machine) cleanup(a *core.Actor, _ primitives.Event) error {
	ctx := a.Context()
	var errs []error
	for _, actor := range primitives.ValueOr[[]*core.Actor](ctx, ActorsKey, nil) {
		if err := actor.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", actor.ID(), err))
		}
	}
	ctx.Set(ActorsKey, []*core.Actor{})
	ctx.Set(PlayingKey, false)
	return errors.Join(errs...)
}

func (m *machine) request(ctx *primitives.Context, _ primitives.Event) any {
	id := primitives.ValueOr(ctx, SelectionKey, "")
	demo, _ := m.find(id)
	layout, ok := primitives.Value[catalog.Layout](ctx, LayoutKey)
	if !ok {
		layout = catalog.ComputeLayout(demo, primitives.ValueOr(ctx, CanvasWidthKey, 0.0))
	}
	return LoadRequest{ID: id, Demo: demo, Layout: layout}
}

func (m *machine) load(ctx context.Context, input any) (any, error) {
	req, ok := input.(LoadRequest)
	if !ok {
		return nil, &LoadError{Err: fmt.Errorf("unexpected load input %T", input)}
	}
	if m.Load == nil {
		return nil, &LoadError{Demo: req.ID, Err: errors.New("no loader configured")}
	}
	actors, err := m.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return actors, nil
}

func storeActors(ctx *primitives.Context, evt primitives.Event) {
	actors, _ := evt.Data.([]*core.Actor)
	ctx.Set(ActorsKey, actors)
	ctx.Set(ErrorKey, "")
}

func storeError(ctx *primitives.Context, evt primitives.Event) {
	msg := "load failed"
	if err, ok := evt.Data.(error); ok && err != nil {
		msg = err.Error()
	}
	ctx.Set(ErrorKey, msg)
}

func storeWidth(ctx *primitives.Context, evt primitives.Event) {
	switch w := evt.Data.(type) {
	case float64:
		ctx.Set(CanvasWidthKey, w)
	case int:
		ctx.Set(CanvasWidthKey, float64(w))
	}
}
