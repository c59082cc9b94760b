// Helper functions for definition precomputation and path calculations.
// Placed in separate file to organize code.

package core

import (
	"fmt"

	"github.com/comalice/storybook/internal/primitives"
)

// node is a precomputed state of a definition. The root node stands for the
// definition itself and has path "".
type node struct {
	path     string
	config   *primitives.StateConfig
	parent   *node
	depth    int
	children []*node
	initial  *node
	handlers map[string][]*primitives.TransitionConfig
	always   []*primitives.TransitionConfig
}

// machine is a validated definition with every state and target resolved.
type machine struct {
	def     *primitives.MachineConfig
	root    *node
	nodes   map[string]*node
	targets map[string]*node
}

// compile validates def and builds its node tree. Definitions are treated as
// immutable once an actor has started.
func compile(def *primitives.MachineConfig) (*machine, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	m := &machine{
		def:     def,
		nodes:   make(map[string]*node),
		targets: make(map[string]*node),
	}
	m.root = m.precomputePaths(def.Root(), "", nil)

	var resolveErr error
	resolve := func(list []*primitives.TransitionConfig) {
		for _, t := range list {
			if t.Targetless() || resolveErr != nil {
				continue
			}
			if _, ok := m.targets[t.Target]; ok {
				continue
			}
			path, err := def.ResolveTarget(t.Target)
			if err != nil {
				resolveErr = err
				return
			}
			m.targets[t.Target] = m.nodes[path]
		}
	}
	for _, n := range m.nodes {
		for _, list := range n.handlers {
			resolve(list)
		}
		resolve(n.always)
	}
	if resolveErr != nil {
		return nil, resolveErr
	}
	return m, nil
}

// precomputePaths recursively traverses the state hierarchy, recording each
// node under its dotted path along with its handler table.
func (m *machine) precomputePaths(state *primitives.StateConfig, path string, parent *node) *node {
	n := &node{
		path:     path,
		config:   state,
		parent:   parent,
		handlers: make(map[string][]*primitives.TransitionConfig),
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	m.nodes[path] = n

	add := func(event string, list []primitives.TransitionConfig) {
		for i := range list {
			n.handlers[event] = append(n.handlers[event], &list[i])
		}
	}
	for event, list := range state.On {
		add(event, list)
	}
	if parent != nil {
		add(primitives.DoneStateEvent(path), state.OnDone)
	}
	for i := range state.After {
		d := &state.After[i]
		n.handlers[primitives.AfterEvent(path, d.Delay)] = append(n.handlers[primitives.AfterEvent(path, d.Delay)], &d.Transition)
	}
	if inv := state.Invoke; inv != nil {
		add(primitives.DoneInvokeEvent(inv.ID), inv.OnDone)
		add(primitives.ErrorInvokeEvent(inv.ID), inv.OnError)
	}
	for i := range state.Always {
		n.always = append(n.always, &state.Always[i])
	}

	for _, child := range state.Children {
		c := m.precomputePaths(child, primitives.JoinPath(path, child.ID), n)
		n.children = append(n.children, c)
		if child.ID == state.Initial {
			n.initial = c
		}
	}
	return n
}

func (m *machine) target(t *primitives.TransitionConfig) (*node, error) {
	n, ok := m.targets[t.Target]
	if !ok {
		return nil, fmt.Errorf("unresolved target %q", t.Target)
	}
	return n, nil
}

// isDescendant reports whether n is strictly below ancestor.
func (n *node) isDescendant(ancestor *node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// initialLeaf follows declared initial children from n down to an atomic or
// final node, returning the chain below n (n excluded).
func (n *node) initialLeaf() []*node {
	var chain []*node
	for c := n.initial; c != nil; c = c.initial {
		chain = append(chain, c)
	}
	return chain
}
