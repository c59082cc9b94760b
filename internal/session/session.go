// Package session drives the storybook: the DemoSessionMachine decides which
// demo is loaded and the Session owns the actor system everything runs in.
package session

import (
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/comalice/storybook/internal/catalog"
	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/extensibility"
	"github.com/comalice/storybook/internal/primitives"
)

// ActorID is the registry id of the session actor.
const ActorID = "session"

// DefaultCanvasWidth is used when no width is configured.
const DefaultCanvasWidth = 800

// Option configures a Session.
type Option func(*Session)

func WithCanvasWidth(w float64) Option {
	return func(s *Session) { s.width = w }
}

func WithSkipHeadless(skip bool) Option {
	return func(s *Session) { s.loader.SkipHeadless = skip }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Session) { s.loader.Tracer = t }
}

// WithRestore resumes demo actors from the snapshots p saved on an earlier
// run. Pass the same persister to the system with core.WithPersister to keep
// the records current.
func WithRestore(p core.Persister) Option {
	return func(s *Session) { s.loader.Restore = p }
}

// WithSystemOptions passes options to the actor system. The expression
// guard evaluator is installed unless one of them replaces it.
func WithSystemOptions(opts ...core.SystemOption) Option {
	return func(s *Session) { s.sysOpts = append(s.sysOpts, opts...) }
}

// Session owns one actor system, the session actor and the demo actors it
// loads. Methods other than Demos and ReplaceDemos must be called from the
// goroutine that drives the system's scheduler.
type Session struct {
	sys     *core.System
	actor   *core.Actor
	loader  *Loader
	width   float64
	sysOpts []core.SystemOption

	mu    sync.RWMutex
	demos *catalog.DemoSet
}

// New creates the system and starts the session actor in idle.
func New(cat *catalog.Catalog, demos *catalog.DemoSet, opts ...Option) (*Session, error) {
	s := &Session{
		loader: &Loader{Catalog: cat},
		width:  DefaultCanvasWidth,
		demos:  demos,
	}
	for _, opt := range opts {
		opt(s)
	}
	base := []core.SystemOption{core.WithGuardEvaluator(extensibility.NewExpressionGuardEvaluator(nil))}
	s.sys = core.NewSystem(append(base, s.sysOpts...)...)
	s.loader.System = s.sys

	def := Machine(Deps{Find: s.find, Load: s.loader.Load, CanvasWidth: s.width})
	s.actor = s.sys.NewActor(def, core.WithID(ActorID))
	if err := s.actor.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) find(id string) (catalog.DemoSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demos.Find(id)
}

func (s *Session) System() *core.System { return s.sys }
func (s *Session) Actor() *core.Actor   { return s.actor }

func (s *Session) Send(evt primitives.Event) error { return s.actor.Send(evt) }

func (s *Session) Snapshot() core.Snapshot { return s.actor.Snapshot() }

// Subscribe is notified after every session transition.
func (s *Session) Subscribe(fn func(core.Snapshot)) (unsubscribe func()) {
	return s.actor.Subscribe(fn)
}

// Actors returns the running actors of the loaded demo.
func (s *Session) Actors() []*core.Actor {
	return primitives.ValueOr[[]*core.Actor](s.actor.Context(), ActorsKey, nil)
}

// FrameTargets returns the loaded actors that should receive frame events.
// Mirrored twins are left out: they already replay every event their visual
// actor processes.
func (s *Session) FrameTargets() []*core.Actor {
	var out []*core.Actor
	for _, a := range s.Actors() {
		if spec, ok := a.Input().(catalog.ActorSpec); ok && spec.Mirror != "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Error returns the message of the last load failure, if the session is in
// the error state.
func (s *Session) Error() string {
	return primitives.ValueOr(s.actor.Context(), ErrorKey, "")
}

func (s *Session) Demos() *catalog.DemoSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demos
}

// ReplaceDemos swaps the demo set. Running actors are untouched; the next
// SelectDemo or Reset uses the new set.
func (s *Session) ReplaceDemos(set *catalog.DemoSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demos = set
}

// Close stops the session, every demo actor and the system.
func (s *Session) Close() {
	s.sys.Shutdown()
}
