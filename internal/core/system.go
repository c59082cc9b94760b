// Package core provides the runtime tier of the statechart engine: the actor
// System with its registry and virtual-clock Scheduler, and the Actor
// interpreter that runs a primitives.MachineConfig.
//
// A System is driven from one goroutine. Sends issued while an event is being
// processed (from actions, listeners or child actors) are queued and resolved
// before the outermost call returns.
package core

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/comalice/storybook/internal/primitives"
)

// Pluggable component interfaces.

type ActionRunner interface {
	Run(a *Actor, action primitives.ActionRef, evt primitives.Event) error
}

type GuardEvaluator interface {
	Eval(ctx *primitives.Context, guard primitives.GuardRef, evt primitives.Event) (bool, error)
}

type Persister interface {
	Save(ctx context.Context, snapshot MachineSnapshot) error
	Load(ctx context.Context, actorID string) (MachineSnapshot, error)
}

// MachineSnapshot is the serializable record of an actor after a step.
// Actor handles stored in the context are replaced by their ids.
type MachineSnapshot struct {
	ActorID     string         `json:"actorID" yaml:"actorID"`
	MachineID   string         `json:"machineID" yaml:"machineID"`
	Version     string         `json:"version" yaml:"version"`
	Value       string         `json:"value" yaml:"value"`
	Status      string         `json:"status" yaml:"status"`
	ContextData map[string]any `json:"context" yaml:"context"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
}

type MachineMetadata struct {
	ActorID    string    `json:"actorID" yaml:"actorID"`
	MachineID  string    `json:"machineID" yaml:"machineID"`
	Transition string    `json:"transition" yaml:"transition"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event primitives.Event, metadata MachineMetadata) error
	Close() error
}

type Visualizer interface {
	ExportDOT(config *primitives.MachineConfig, active []string) string
	ExportJSON(config *primitives.MachineConfig) ([]byte, error)
}

// SystemOption applies configuration to a System.
type SystemOption func(*System)

// ActorOption applies configuration to an Actor.
type ActorOption func(*Actor)

// System owns every actor created through it: the id registry, the single
// scheduler and the run-to-completion dispatch queue.
type System struct {
	ctx       context.Context
	logger    *log.Logger
	scheduler *Scheduler

	// Pluggable components (nil = defaults)
	actionRunner ActionRunner
	guardEval    GuardEvaluator
	persister    Persister
	publisher    EventPublisher
	visualizer   Visualizer

	mu       sync.RWMutex
	registry map[string]*Actor
	roots    []*Actor

	queue       []envelope
	dispatching bool
}

type envelope struct {
	target *Actor
	event  primitives.Event
}

// NewSystem creates an empty actor system.
func NewSystem(opts ...SystemOption) *System {
	s := &System{
		ctx:      context.Background(),
		logger:   log.Default(),
		registry: make(map[string]*Actor),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = NewScheduler(time.Now())
	}
	if s.actionRunner == nil {
		s.actionRunner = DefaultActionRunner{}
	}
	if s.guardEval == nil {
		s.guardEval = DefaultGuardEvaluator{}
	}
	return s
}

// Scheduler returns the system's timer source.
func (s *System) Scheduler() *Scheduler { return s.scheduler }

// Now is the scheduler's virtual time.
func (s *System) Now() time.Time { return s.scheduler.Now() }

// Logger returns the system logger.
func (s *System) Logger() *log.Logger { return s.logger }

// Send delivers evt to the actor registered under id.
func (s *System) Send(id string, evt primitives.Event) error {
	a, err := s.Lookup(id)
	if err != nil {
		return err
	}
	return a.Send(evt)
}

// Shutdown stops every top-level actor (children stop with their parents)
// and closes the publisher.
func (s *System) Shutdown() {
	s.run(func() error {
		s.mu.RLock()
		roots := append([]*Actor(nil), s.roots...)
		s.mu.RUnlock()
		for _, a := range roots {
			a.stop()
		}
		return nil
	})
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Printf("system: close publisher: %v", err)
		}
	}
}

// dispatch queues evt for target and, unless a dispatch is already running
// further up the stack, drains the queue. Only the error of the caller's own
// event is returned; errors of events it caused are logged.
func (s *System) dispatch(target *Actor, evt primitives.Event) error {
	s.queue = append(s.queue, envelope{target: target, event: evt})
	if s.dispatching {
		return nil
	}
	return s.run(nil)
}

// run executes fn as part of one run-to-completion step and drains whatever
// it queued. Nested calls run fn inline.
func (s *System) run(fn func() error) error {
	if s.dispatching {
		if fn == nil {
			return nil
		}
		return fn()
	}
	s.dispatching = true
	defer func() {
		s.dispatching = false
		if r := recover(); r != nil {
			s.queue = nil
			panic(r)
		}
	}()

	var first error
	if fn != nil {
		first = fn()
	}
	for i := 0; len(s.queue) > 0; i++ {
		env := s.queue[0]
		s.queue = s.queue[1:]
		err := env.target.process(env.event)
		if err == nil {
			continue
		}
		if fn == nil && i == 0 {
			first = err
		} else {
			s.logger.Printf("actor %q: event %q: %v", env.target.id, env.event.Type, err)
		}
	}
	return first
}

func (s *System) addRoot(a *Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = append(s.roots, a)
}

func (s *System) dropRoot(a *Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.roots {
		if r == a {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return
		}
	}
}

// inspect feeds a committed step to the persister and publisher.
func (s *System) inspect(a *Actor, snap Snapshot, from string) {
	if s.persister == nil && s.publisher == nil {
		return
	}
	now := s.scheduler.Now()
	if s.persister != nil {
		rec := MachineSnapshot{
			ActorID:     a.id,
			MachineID:   a.def.ID,
			Version:     primitives.ComputeVersion(a.def),
			Value:       snap.Value,
			Status:      snap.Status.String(),
			ContextData: serializable(snap.Context),
			Timestamp:   now,
		}
		if err := s.persister.Save(s.ctx, rec); err != nil {
			s.logger.Printf("actor %q: persist: %v", a.id, err)
		}
	}
	if s.publisher != nil {
		meta := MachineMetadata{
			ActorID:    a.id,
			MachineID:  a.def.ID,
			Transition: from + " -> " + snap.Value,
			Timestamp:  now,
		}
		if err := s.publisher.Publish(s.ctx, snap.Event, meta); err != nil {
			s.logger.Printf("actor %q: publish: %v", a.id, err)
		}
	}
}

// serializable replaces actor handles with their ids.
func serializable(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case *Actor:
			out[k] = val.ID()
		case []*Actor:
			ids := make([]string, len(val))
			for i, c := range val {
				ids[i] = c.ID()
			}
			out[k] = ids
		case map[string]*Actor:
			ids := make(map[string]string, len(val))
			for key, c := range val {
				ids[key] = c.ID()
			}
			out[k] = ids
		default:
			out[k] = v
		}
	}
	return out
}
