// MachineConfig represents the top-level definition of a state machine: its
// ID, initial state, ordered top-level states and the named action/guard
// tables that string references resolve against.
//
// The machine itself acts as the root compound node; Root returns that view.
// Paths are dotted from the root and never include the machine ID.

package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// ContextFunc builds an actor's initial context from its creation input.
type ContextFunc func(input any) map[string]any

// MachineConfig defines the complete statechart configuration.
type MachineConfig struct {
	Version string                        `json:"version,omitempty" yaml:"version,omitempty"`
	ID      string                        `json:"id" yaml:"id"`
	Initial string                        `json:"initial" yaml:"initial"`
	States  []*StateConfig                `json:"states" yaml:"states"`
	On      map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	Actions map[string]ActionRef          `json:"-" yaml:"-"`
	Guards  map[string]GuardRef           `json:"-" yaml:"-"`
	Context ContextFunc                   `json:"-" yaml:"-"`
}

// Root returns the machine viewed as its root compound node.
func (m *MachineConfig) Root() *StateConfig {
	return &StateConfig{
		ID:       m.ID,
		Type:     Compound,
		Initial:  m.Initial,
		On:       m.On,
		Children: m.States,
	}
}

// Walk visits every state depth-first in declaration order with its path.
func (m *MachineConfig) Walk(fn func(path string, s *StateConfig)) {
	for _, s := range m.States {
		walk(s, "", fn)
	}
}

func walk(s *StateConfig, prefix string, fn func(path string, s *StateConfig)) {
	path := JoinPath(prefix, s.ID)
	fn(path, s)
	for _, child := range s.Children {
		walk(child, path, fn)
	}
}

// JoinPath joins a parent path and a child ID.
func JoinPath(parent, id string) string {
	if parent == "" {
		return id
	}
	return parent + "." + id
}

// ParentPath returns the path of the parent of path ("" for top-level states).
func ParentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return ""
	}
	return path[:idx]
}

// FindState resolves a state by hierarchical path (e.g. "parent.child.grandchild").
func (m *MachineConfig) FindState(path string) (*StateConfig, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	segments := strings.Split(path, ".")
	var current *StateConfig
	for _, s := range m.States {
		if s.ID == segments[0] {
			current = s
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("state %q not found", segments[0])
	}
	for i := 1; i < len(segments); i++ {
		next := current.Child(segments[i])
		if next == nil {
			prefix := strings.Join(segments[:i], ".")
			return nil, fmt.Errorf("child %q not found in %q", segments[i], prefix)
		}
		current = next
	}
	return current, nil
}

// ResolveTarget turns a transition target into a full path. Dotted targets
// are root-relative paths; bare IDs resolve to a top-level state first and
// otherwise to the single state carrying that ID.
func (m *MachineConfig) ResolveTarget(target string) (string, error) {
	if target == "" {
		return "", errors.New("target cannot be empty")
	}
	if strings.Contains(target, ".") {
		if _, err := m.FindState(target); err != nil {
			return "", err
		}
		return target, nil
	}
	for _, s := range m.States {
		if s.ID == target {
			return target, nil
		}
	}
	var matches []string
	m.Walk(func(path string, s *StateConfig) {
		if s.ID == target {
			matches = append(matches, path)
		}
	})
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("state %q not found", target)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous target %q matches %s", target, strings.Join(matches, ", "))
	}
}

// Validate validates the entire machine configuration:
// - Non-empty ID and Initial, Initial among the top-level states
// - All individual states validate (recursive)
// - All transition targets resolve
// - Named actions exist in the Actions table
// - No orphaned top-level states
func (m *MachineConfig) Validate() error {
	if m.ID == "" {
		return errors.New("machine ID is required")
	}
	if m.Initial == "" {
		return errors.New("initial state ID is required")
	}
	if len(m.States) == 0 {
		return errors.New("states are required and cannot be empty")
	}
	root := m.Root()
	if root.Child(m.Initial) == nil {
		return fmt.Errorf("initial state %q not found in states", m.Initial)
	}
	seen := make(map[string]struct{}, len(m.States))
	for _, s := range m.States {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate state %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("state %q validation failed: %w", s.ID, err)
		}
	}

	reached := map[string]bool{m.Initial: true}
	check := func(owner string, list []TransitionConfig) error {
		for i := range list {
			trans := &list[i]
			if err := trans.Validate(); err != nil {
				return fmt.Errorf("state %q transition %d: %w", owner, i, err)
			}
			for _, a := range trans.Actions {
				if err := m.checkActionRef(a); err != nil {
					return fmt.Errorf("state %q transition %d: %w", owner, i, err)
				}
			}
			if trans.Targetless() {
				continue
			}
			path, err := m.ResolveTarget(trans.Target)
			if err != nil {
				return fmt.Errorf("invalid transition target %q (state %q, transition %d): %w", trans.Target, owner, i, err)
			}
			reached[strings.Split(path, ".")[0]] = true
		}
		return nil
	}

	for event, list := range m.On {
		if err := check("<root:"+event+">", list); err != nil {
			return err
		}
	}
	var walkErr error
	m.Walk(func(path string, s *StateConfig) {
		if walkErr != nil {
			return
		}
		for _, a := range append(append([]ActionRef{}, s.Entry...), s.Exit...) {
			if err := m.checkActionRef(a); err != nil {
				walkErr = fmt.Errorf("state %q: %w", path, err)
				return
			}
		}
		walkErr = check(path, s.Transitions())
	})
	if walkErr != nil {
		return walkErr
	}

	for _, s := range m.States {
		if !reached[s.ID] {
			return fmt.Errorf("orphaned state %q (not reachable from initial %q)", s.ID, m.Initial)
		}
	}
	return nil
}

func (m *MachineConfig) checkActionRef(a ActionRef) error {
	name, ok := a.(string)
	if !ok {
		return nil
	}
	if _, exists := m.Actions[name]; !exists {
		return fmt.Errorf("action %q not registered", name)
	}
	return nil
}
