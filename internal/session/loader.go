package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/comalice/storybook/internal/catalog"
	"github.com/comalice/storybook/internal/characters"
	"github.com/comalice/storybook/internal/core"
)

const tracerName = "github.com/comalice/storybook/internal/session"

// Loader turns a demo into running actors.
type Loader struct {
	Catalog *catalog.Catalog
	System  *core.System
	// SkipHeadless leaves out actors that only exist for external tooling.
	SkipHeadless bool
	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
	// Restore, when set, resumes every actor from its persisted record.
	Restore core.Persister
}

// Load resolves every actor of req.Demo through the catalog, then creates and
// starts it: visual actors first, then headless ones mirroring them. If any
// actor fails, the ones already started are stopped and a *LoadError is
// returned.
func (l *Loader) Load(ctx context.Context, req LoadRequest) (actors []*core.Actor, err error) {
	tracer := l.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "session.load", trace.WithAttributes(
		attribute.String("demo.id", req.ID),
		attribute.Int("demo.actors", len(req.Demo.Actors)),
		attribute.Float64("layout.scale", req.Layout.Scale),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("demo.started", len(actors)))
		}
		span.End()
	}()

	fail := func(err error) ([]*core.Actor, error) {
		for _, a := range actors {
			_ = a.Stop()
		}
		return nil, &LoadError{Demo: req.ID, Err: err}
	}
	if req.Demo.ID == "" {
		return fail(fmt.Errorf("%w: demo %q", catalog.ErrNotFound, req.ID))
	}
	if l.Catalog == nil || l.System == nil {
		return fail(fmt.Errorf("loader for demo %q is not configured", req.ID))
	}

	started := make(map[string]*core.Actor, len(req.Demo.Actors))
	for _, headless := range []bool{false, true} {
		if headless && l.SkipHeadless {
			break
		}
		for _, spec := range req.Demo.Actors {
			if spec.Headless != headless {
				continue
			}
			entry, err := l.Catalog.Resolve(ctx, spec.Key())
			if err != nil {
				return fail(err)
			}
			opts := []core.ActorOption{core.WithID(spec.ID), core.WithInput(spec)}
			if l.Restore != nil {
				opts = append(opts, core.WithRestore(l.Restore))
			}
			a := l.System.NewActor(entry.New(req.Layout.Input(req.Demo, spec)), opts...)
			if err := a.Start(); err != nil {
				if a.Status() == core.Active {
					actors = append(actors, a)
				}
				return fail(fmt.Errorf("start %s: %w", spec.ID, err))
			}
			actors = append(actors, a)
			started[spec.ID] = a
			if visual, ok := started[spec.Mirror]; ok && spec.Mirror != "" {
				characters.Mirror(visual, a)
			}
		}
	}
	return actors, nil
}
