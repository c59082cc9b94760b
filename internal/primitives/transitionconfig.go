// TransitionConfig defines transitions between states with guards and actions.
//
// Targets are dot-separated paths from the machine root (e.g. "loaded.ready")
// or a bare state ID that is unique within the machine. An empty target makes
// a targetless transition: its actions run without leaving the source.
// Guards and Actions are pluggable references (function or string name);
// every guard must pass, in order, for the transition to be enabled.
package primitives

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActionRef references an action: a string name registered on the machine,
// a func(*Context, Event), or an interpreter-specific action function.
type ActionRef any

// GuardRef references a guard condition: a string name or expression, a
// func(*Context, Event) bool, or an interpreter-specific guard function.
type GuardRef any

// TransitionConfig defines a single transition record.
type TransitionConfig struct {
	Event    string      `json:"event,omitempty" yaml:"event,omitempty"`
	Target   string      `json:"target,omitempty" yaml:"target,omitempty"`
	Guards   []GuardRef  `json:"-" yaml:"-"`
	Actions  []ActionRef `json:"-" yaml:"-"`
	Internal bool        `json:"internal,omitempty" yaml:"internal,omitempty"`
}

// TransitionOption configures a TransitionConfig built through the fluent helpers.
type TransitionOption func(*TransitionConfig)

// WithGuard appends guards; all of them must pass.
func WithGuard(guards ...GuardRef) TransitionOption {
	return func(t *TransitionConfig) { t.Guards = append(t.Guards, guards...) }
}

// WithActions appends transition actions, run in declaration order.
func WithActions(actions ...ActionRef) TransitionOption {
	return func(t *TransitionConfig) { t.Actions = append(t.Actions, actions...) }
}

// AsInternal marks the transition internal: a target inside the source does
// not exit and re-enter the source.
func AsInternal() TransitionOption {
	return func(t *TransitionConfig) { t.Internal = true }
}

// NewTransition builds a TransitionConfig from options.
func NewTransition(event, target string, opts ...TransitionOption) TransitionConfig {
	t := TransitionConfig{Event: event, Target: target}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Targetless reports whether the transition only runs actions.
func (t *TransitionConfig) Targetless() bool {
	return t.Target == ""
}

// Validate checks the target path syntax.
func (t *TransitionConfig) Validate() error {
	if t.Target == "" {
		if len(t.Actions) == 0 {
			return errors.New("targetless transition requires actions")
		}
		return nil
	}
	return validatePath(t.Target)
}

func validatePath(path string) error {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return fmt.Errorf("invalid target path %q: empty segment at index %d", path, i)
		}
		for _, r := range seg {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
				return fmt.Errorf("invalid target path %q: invalid character '%c' at index %d", path, r, i)
			}
		}
	}
	return nil
}

// DelayedTransition is one row of a node's delay table: the transition is
// taken Delay after the node is entered, provided the node is still active.
type DelayedTransition struct {
	Delay      time.Duration    `json:"delay" yaml:"delay"`
	Transition TransitionConfig `json:"transition" yaml:"transition"`
}

// PromiseFunc is an asynchronous invoked operation. It runs later, on the
// scheduler goroutine, and its result is delivered back as an event.
type PromiseFunc func(ctx context.Context, input any) (any, error)

// InputFunc computes the input of an invoked child from the parent's context
// and the event that entered the invoking node.
type InputFunc func(ctx *Context, evt Event) any

// OutputFunc computes the output of a final node.
type OutputFunc func(ctx *Context, evt Event) any

// InvokeConfig runs a child for the lifetime of the node that declares it.
// Src is either a *MachineConfig (child actor) or a PromiseFunc.
type InvokeConfig struct {
	ID      string             `json:"id" yaml:"id"`
	Src     any                `json:"-" yaml:"-"`
	Input   InputFunc          `json:"-" yaml:"-"`
	OnDone  []TransitionConfig `json:"onDone,omitempty" yaml:"onDone,omitempty"`
	OnError []TransitionConfig `json:"onError,omitempty" yaml:"onError,omitempty"`
}

// Validate checks the invoke declaration.
func (inv *InvokeConfig) Validate() error {
	if inv.ID == "" {
		return errors.New("invoke ID is required")
	}
	switch inv.Src.(type) {
	case *MachineConfig, PromiseFunc, func(context.Context, any) (any, error):
	case nil:
		return fmt.Errorf("invoke %q requires a source", inv.ID)
	default:
		return fmt.Errorf("invoke %q has unsupported source %T", inv.ID, inv.Src)
	}
	return nil
}
