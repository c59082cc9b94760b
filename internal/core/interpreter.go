package core

import (
	"context"
	"fmt"

	"github.com/comalice/storybook/internal/primitives"
)

// ActionFunc is an action that needs its actor: to spawn, send to itself or
// its parent, or read the system clock.
type ActionFunc func(a *Actor, evt primitives.Event) error

// GuardFunc is a guard that can fail.
type GuardFunc func(ctx *primitives.Context, evt primitives.Event) (bool, error)

// DefaultActionRunner executes the action shapes the interpreter understands.
type DefaultActionRunner struct{}

func (DefaultActionRunner) Run(a *Actor, action primitives.ActionRef, evt primitives.Event) error {
	switch fn := action.(type) {
	case nil:
		return nil
	case ActionFunc:
		return fn(a, evt)
	case func(*Actor, primitives.Event) error:
		return fn(a, evt)
	case func(*Actor, primitives.Event):
		fn(a, evt)
		return nil
	case func(*primitives.Context, primitives.Event):
		fn(a.Context(), evt)
		return nil
	default:
		return fmt.Errorf("unregistered action: %v", action)
	}
}

// DefaultGuardEvaluator evaluates function guards. String guards that are not
// registered on the definition are an error.
type DefaultGuardEvaluator struct{}

func (DefaultGuardEvaluator) Eval(ctx *primitives.Context, guard primitives.GuardRef, evt primitives.Event) (bool, error) {
	switch g := guard.(type) {
	case nil:
		return true, nil
	case GuardFunc:
		return g(ctx, evt)
	case func(*primitives.Context, primitives.Event) (bool, error):
		return g(ctx, evt)
	case func(*primitives.Context, primitives.Event) bool:
		return g(ctx, evt), nil
	case string:
		return false, fmt.Errorf("guard %q not registered", g)
	default:
		return false, fmt.Errorf("unsupported guard type %T", guard)
	}
}

// transitionDomain returns the node under which exits and entries happen.
// External transitions leave the nearest proper ancestor shared by source
// and target, so a self transition exits and re-enters its source. Internal
// transitions to the source or one of its descendants keep the source.
func transitionDomain(root, source, target *node, internal bool) *node {
	if internal && (target == source || target.isDescendant(source)) {
		return source
	}
	for p := source.parent; p != nil; p = p.parent {
		if target.isDescendant(p) {
			return p
		}
	}
	return root
}

// entryPath lists the nodes entered when moving from domain to target:
// target's ancestors below domain, target itself, then its initial chain.
func entryPath(domain, target *node) []*node {
	var path []*node
	for n := target; n != nil && n != domain; n = n.parent {
		path = append([]*node{n}, path...)
	}
	return append(path, target.initialLeaf()...)
}

// selectTransition searches the active configuration innermost first and
// returns the first transition for evt whose guards all pass. Nothing is
// mutated here, so a guard error leaves the actor untouched.
func (a *Actor) selectTransition(evt primitives.Event) (*primitives.TransitionConfig, *node, error) {
	for i := len(a.config) - 1; i >= 0; i-- {
		n := a.config[i]
		for _, t := range n.handlers[evt.Type] {
			ok, err := a.guardsPass(n, t, evt)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				return t, n, nil
			}
		}
	}
	return nil, nil, nil
}

// selectEventless is selectTransition over the always tables.
func (a *Actor) selectEventless(evt primitives.Event) (*primitives.TransitionConfig, *node, error) {
	for i := len(a.config) - 1; i >= 0; i-- {
		n := a.config[i]
		for _, t := range n.always {
			ok, err := a.guardsPass(n, t, evt)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				return t, n, nil
			}
		}
	}
	return nil, nil, nil
}

func (a *Actor) guardsPass(n *node, t *primitives.TransitionConfig, evt primitives.Event) (bool, error) {
	for _, g := range t.Guards {
		ok, err := a.evalGuard(g, evt)
		if err != nil {
			return false, &GuardEvaluationError{Actor: a.id, State: n.path, Event: evt.Type, Err: err}
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (a *Actor) evalGuard(g primitives.GuardRef, evt primitives.Event) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	if name, isName := g.(string); isName {
		if named, found := a.def.Guards[name]; found {
			g = named
		}
	}
	return a.system.guardEval.Eval(a.ctx, g, evt)
}

func (a *Actor) runActions(actions []primitives.ActionRef, evt primitives.Event) error {
	var errs []error
	for _, action := range actions {
		if err := a.runAction(action, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

func (a *Actor) runAction(action primitives.ActionRef, evt primitives.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor %q: action panic: %v", a.id, r)
		}
	}()
	if name, isName := action.(string); isName {
		named, found := a.def.Actions[name]
		if !found {
			return fmt.Errorf("actor %q: action %q not registered", a.id, name)
		}
		action = named
	}
	if err := a.system.actionRunner.Run(a, action, evt); err != nil {
		return fmt.Errorf("actor %q: %w", a.id, err)
	}
	return nil
}

// runPromise executes an invoked promise, converting a panic into an error
// delivered like any other failure.
func runPromise(ctx context.Context, fn primitives.PromiseFunc, input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("promise panic: %v", r)
		}
	}()
	return fn(ctx, input)
}
