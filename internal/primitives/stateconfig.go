// StateConfig represents a node of the statechart: atomic, compound or final,
// with transitions, entry/exit actions, tags, a delay table and an optional
// invoked child.
package primitives

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StateType defines the possible types of states in the statechart.
type StateType string

const (
	Atomic   StateType = "atomic"
	Compound StateType = "compound"
	Final    StateType = "final"
)

// StateConfig defines a state configuration, supporting hierarchical nesting.
type StateConfig struct {
	ID       string                        `json:"id" yaml:"id"`
	Type     StateType                     `json:"type" yaml:"type"`
	Initial  string                        `json:"initial,omitempty" yaml:"initial,omitempty"` // Initial child for compound
	On       map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	Always   []TransitionConfig            `json:"always,omitempty" yaml:"always,omitempty"`
	After    []DelayedTransition           `json:"after,omitempty" yaml:"after,omitempty"`
	OnDone   []TransitionConfig            `json:"onDone,omitempty" yaml:"onDone,omitempty"`
	Entry    []ActionRef                   `json:"-" yaml:"-"`
	Exit     []ActionRef                   `json:"-" yaml:"-"`
	Tags     []string                      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Invoke   *InvokeConfig                 `json:"invoke,omitempty" yaml:"invoke,omitempty"`
	Output   OutputFunc                    `json:"-" yaml:"-"`
	Children []*StateConfig                `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewStateConfig creates a new StateConfig with ID and Type.
func NewStateConfig(id string, typ StateType) *StateConfig {
	return &StateConfig{
		ID:   id,
		Type: typ,
	}
}

// WithInitial sets the initial child state ID.
func (s *StateConfig) WithInitial(initial string) *StateConfig {
	s.Initial = initial
	return s
}

// AddTransition adds a transition for an event.
func (s *StateConfig) AddTransition(event string, trans TransitionConfig) *StateConfig {
	if s.On == nil {
		s.On = make(map[string][]TransitionConfig)
	}
	trans.Event = event
	s.On[event] = append(s.On[event], trans)
	return s
}

// Transition adds a transition from event to target.
// Usage: .Transition("evt", "target", WithGuard(fn), WithActions(a)).
func (s *StateConfig) Transition(event, target string, opts ...TransitionOption) *StateConfig {
	return s.AddTransition(event, NewTransition(event, target, opts...))
}

// AddAlways adds an eventless transition, checked after every microstep.
func (s *StateConfig) AddAlways(target string, opts ...TransitionOption) *StateConfig {
	s.Always = append(s.Always, NewTransition("", target, opts...))
	return s
}

// AddAfter adds a delayed transition to the delay table.
func (s *StateConfig) AddAfter(delay time.Duration, target string, opts ...TransitionOption) *StateConfig {
	s.After = append(s.After, DelayedTransition{Delay: delay, Transition: NewTransition("", target, opts...)})
	return s
}

// AddOnDone adds a transition taken when this compound reaches a final child.
func (s *StateConfig) AddOnDone(target string, opts ...TransitionOption) *StateConfig {
	s.OnDone = append(s.OnDone, NewTransition("", target, opts...))
	return s
}

// AddEntry adds entry actions.
func (s *StateConfig) AddEntry(actions ...ActionRef) *StateConfig {
	s.Entry = append(s.Entry, actions...)
	return s
}

// AddExit adds exit actions.
func (s *StateConfig) AddExit(actions ...ActionRef) *StateConfig {
	s.Exit = append(s.Exit, actions...)
	return s
}

// WithChildren sets child states.
func (s *StateConfig) WithChildren(children []*StateConfig) *StateConfig {
	s.Children = children
	return s
}

// AddChild adds a child state.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	return s
}

// State creates and adds a child state (atomic by default, or specified type).
// Returns the child for fluent chaining: parent.State("child").Transition("evt", "target").
func (s *StateConfig) State(id string, typ ...StateType) *StateConfig {
	t := Atomic
	if len(typ) > 0 {
		t = typ[0]
	}
	child := NewStateConfig(id, t)
	s.AddChild(child)
	return child
}

// Child returns the direct child with the given ID, or nil.
func (s *StateConfig) Child(id string) *StateConfig {
	for _, child := range s.Children {
		if child.ID == id {
			return child
		}
	}
	return nil
}

// HasTag reports whether the node carries tag.
func (s *StateConfig) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsAtomic reports whether the node has no children.
func (s *StateConfig) IsAtomic() bool {
	return len(s.Children) == 0
}

// Transitions returns every outgoing transition record of the node.
func (s *StateConfig) Transitions() []TransitionConfig {
	var all []TransitionConfig
	for _, list := range s.On {
		all = append(all, list...)
	}
	all = append(all, s.Always...)
	for _, d := range s.After {
		all = append(all, d.Transition)
	}
	all = append(all, s.OnDone...)
	if s.Invoke != nil {
		all = append(all, s.Invoke.OnDone...)
		all = append(all, s.Invoke.OnError...)
	}
	return all
}

// Validate performs recursive validation of the StateConfig tree.
func (s *StateConfig) Validate() error {
	if s.ID == "" {
		return errors.New("state ID is required")
	}
	if strings.Contains(s.ID, ".") {
		return fmt.Errorf("state ID %q cannot contain '.'", s.ID)
	}

	switch s.Type {
	case Atomic:
		if s.Initial != "" {
			return fmt.Errorf("atomic state %s cannot have Initial", s.ID)
		}
		if len(s.Children) > 0 {
			return fmt.Errorf("atomic state %s cannot have Children", s.ID)
		}
	case Compound:
		if len(s.Children) == 0 {
			return fmt.Errorf("compound state %s requires Children", s.ID)
		}
		if s.Initial == "" {
			return fmt.Errorf("compound state %s requires Initial child", s.ID)
		}
		if s.Child(s.Initial) == nil {
			return fmt.Errorf("initial child %q not found in children of %s", s.Initial, s.ID)
		}
	case Final:
		if len(s.Children) > 0 {
			return fmt.Errorf("final state %s cannot have Children", s.ID)
		}
		if len(s.On) > 0 || len(s.Always) > 0 || len(s.After) > 0 || s.Invoke != nil {
			return fmt.Errorf("final state %s cannot have outgoing transitions or invocations", s.ID)
		}
	default:
		return fmt.Errorf("invalid state type %q for state %s", s.Type, s.ID)
	}

	for event, list := range s.On {
		if strings.TrimSpace(event) == "" {
			return fmt.Errorf("empty event name in On map for state %s", s.ID)
		}
		for i := range list {
			if err := list[i].Validate(); err != nil {
				return fmt.Errorf("state %s event %q transition %d: %w", s.ID, event, i, err)
			}
		}
	}
	for i := range s.Always {
		if err := s.Always[i].Validate(); err != nil {
			return fmt.Errorf("state %s always transition %d: %w", s.ID, i, err)
		}
	}
	for i, d := range s.After {
		if d.Delay < 0 {
			return fmt.Errorf("state %s delayed transition %d: negative delay %s", s.ID, i, d.Delay)
		}
		if err := d.Transition.Validate(); err != nil {
			return fmt.Errorf("state %s delayed transition %d: %w", s.ID, i, err)
		}
	}
	if s.Invoke != nil {
		if err := s.Invoke.Validate(); err != nil {
			return fmt.Errorf("state %s: %w", s.ID, err)
		}
	}

	seen := make(map[string]struct{}, len(s.Children))
	for i, child := range s.Children {
		if _, dup := seen[child.ID]; dup {
			return fmt.Errorf("duplicate child %q in %s", child.ID, s.ID)
		}
		seen[child.ID] = struct{}{}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d (%s) of %s failed validation: %w", i, child.ID, s.ID, err)
		}
	}

	return nil
}
