// Options for configuring System and Actor instances.
package core

import (
	"context"
	"log"
	"time"
)

// WithLogger routes runtime diagnostics to l.
func WithLogger(l *log.Logger) SystemOption {
	return func(s *System) {
		s.logger = l
	}
}

// WithActionRunner configures the System with a custom ActionRunner.
func WithActionRunner(r ActionRunner) SystemOption {
	return func(s *System) {
		s.actionRunner = r
	}
}

// WithGuardEvaluator configures the System with a custom GuardEvaluator.
func WithGuardEvaluator(e GuardEvaluator) SystemOption {
	return func(s *System) {
		s.guardEval = e
	}
}

// WithPersister saves a snapshot of every actor after each committed step.
func WithPersister(p Persister) SystemOption {
	return func(s *System) {
		s.persister = p
	}
}

// WithPublisher publishes the triggering event of every committed step.
func WithPublisher(pb EventPublisher) SystemOption {
	return func(s *System) {
		s.publisher = pb
	}
}

// WithVisualizer configures the System with a custom Visualizer.
func WithVisualizer(v Visualizer) SystemOption {
	return func(s *System) {
		s.visualizer = v
	}
}

// WithClock starts the virtual clock at t instead of the wall clock.
func WithClock(t time.Time) SystemOption {
	return func(s *System) {
		s.scheduler = NewScheduler(t)
	}
}

// WithContext sets the parent context handed to invoked promises.
func WithContext(ctx context.Context) SystemOption {
	return func(s *System) {
		s.ctx = ctx
	}
}

// WithID registers the actor under id instead of a generated one.
func WithID(id string) ActorOption {
	return func(a *Actor) {
		a.id = id
	}
}

// WithInput passes input to the definition's context factory and to the
// init event.
func WithInput(input any) ActorOption {
	return func(a *Actor) {
		a.input = input
	}
}

// WithRestore resumes the actor from the record p holds under its id: the
// saved leaf is entered instead of the initial one and saved context values
// override the initial context. Missing or stale records start normally.
func WithRestore(p Persister) ActorOption {
	return func(a *Actor) {
		a.restore = p
	}
}
