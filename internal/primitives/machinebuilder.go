// Package primitives includes builder helpers for MachineConfig.
package primitives

import "time"

// MachineBuilder builds hierarchical MachineConfig fluently.
type MachineBuilder struct {
	config *MachineConfig
}

// NewMachineBuilder creates a new MachineBuilder.
func NewMachineBuilder(id, initial string) *MachineBuilder {
	return &MachineBuilder{
		config: &MachineConfig{ID: id, Initial: initial},
	}
}

// Version stamps the definition version.
func (b *MachineBuilder) Version(v string) *MachineBuilder {
	b.config.Version = v
	return b
}

// Context sets the initial context factory.
func (b *MachineBuilder) Context(fn ContextFunc) *MachineBuilder {
	b.config.Context = fn
	return b
}

// Action registers a named action.
func (b *MachineBuilder) Action(name string, action ActionRef) *MachineBuilder {
	if b.config.Actions == nil {
		b.config.Actions = make(map[string]ActionRef)
	}
	b.config.Actions[name] = action
	return b
}

// Guard registers a named guard.
func (b *MachineBuilder) Guard(name string, guard GuardRef) *MachineBuilder {
	if b.config.Guards == nil {
		b.config.Guards = make(map[string]GuardRef)
	}
	b.config.Guards[name] = guard
	return b
}

// On adds a root-level transition, active in every state.
func (b *MachineBuilder) On(event, target string, opts ...TransitionOption) *MachineBuilder {
	if b.config.On == nil {
		b.config.On = make(map[string][]TransitionConfig)
	}
	b.config.On[event] = append(b.config.On[event], NewTransition(event, target, opts...))
	return b
}

func (b *MachineBuilder) add(id string, typ StateType) *StateBuilder {
	s := NewStateConfig(id, typ)
	b.config.States = append(b.config.States, s)
	return &StateBuilder{state: s, mb: b}
}

// Compound starts a top-level compound state.
func (b *MachineBuilder) Compound(id, initial string) *StateBuilder {
	sb := b.add(id, Compound)
	sb.state.Initial = initial
	return sb
}

// Atomic starts a top-level atomic state.
func (b *MachineBuilder) Atomic(id string) *StateBuilder {
	return b.add(id, Atomic)
}

// Final starts a top-level final state.
func (b *MachineBuilder) Final(id string) *StateBuilder {
	return b.add(id, Final)
}

// State sugar for Atomic.
func (b *MachineBuilder) State(id string) *StateBuilder {
	return b.Atomic(id)
}

// Build returns the configuration. Validation happens when an actor starts.
func (b *MachineBuilder) Build() *MachineConfig {
	return b.config
}

// StateBuilder for fluent transitions/nesting.
type StateBuilder struct {
	state  *StateConfig
	parent *StateBuilder
	mb     *MachineBuilder
}

// Config exposes the node under construction.
func (sb *StateBuilder) Config() *StateConfig {
	return sb.state
}

// Transition adds transition.
func (sb *StateBuilder) Transition(event, target string, opts ...TransitionOption) *StateBuilder {
	sb.state.Transition(event, target, opts...)
	return sb
}

// Always adds an eventless transition.
func (sb *StateBuilder) Always(target string, opts ...TransitionOption) *StateBuilder {
	sb.state.AddAlways(target, opts...)
	return sb
}

// After adds a delayed transition.
func (sb *StateBuilder) After(delay time.Duration, target string, opts ...TransitionOption) *StateBuilder {
	sb.state.AddAfter(delay, target, opts...)
	return sb
}

// OnDone adds a completion transition for a compound state.
func (sb *StateBuilder) OnDone(target string, opts ...TransitionOption) *StateBuilder {
	sb.state.AddOnDone(target, opts...)
	return sb
}

// Entry adds entry actions.
func (sb *StateBuilder) Entry(actions ...ActionRef) *StateBuilder {
	sb.state.AddEntry(actions...)
	return sb
}

// Exit adds exit actions.
func (sb *StateBuilder) Exit(actions ...ActionRef) *StateBuilder {
	sb.state.AddExit(actions...)
	return sb
}

// Tag adds tags.
func (sb *StateBuilder) Tag(tags ...string) *StateBuilder {
	sb.state.Tags = append(sb.state.Tags, tags...)
	return sb
}

// Invoke attaches an invoked child.
func (sb *StateBuilder) Invoke(inv InvokeConfig) *StateBuilder {
	sb.state.Invoke = &inv
	return sb
}

// Output sets the output of a final state.
func (sb *StateBuilder) Output(fn OutputFunc) *StateBuilder {
	sb.state.Output = fn
	return sb
}

func (sb *StateBuilder) nest(id string, typ StateType) *StateBuilder {
	if sb.state.Type == Atomic {
		sb.state.Type = Compound
	}
	child := sb.state.State(id, typ)
	return &StateBuilder{state: child, parent: sb, mb: sb.mb}
}

// Compound nests compound child.
func (sb *StateBuilder) Compound(id, initial string) *StateBuilder {
	child := sb.nest(id, Compound)
	child.state.Initial = initial
	return child
}

// Atomic nests atomic child.
func (sb *StateBuilder) Atomic(id string) *StateBuilder {
	return sb.nest(id, Atomic)
}

// Final nests final child.
func (sb *StateBuilder) Final(id string) *StateBuilder {
	return sb.nest(id, Final)
}

// Up returns the builder of the parent state.
func (sb *StateBuilder) Up() *StateBuilder {
	if sb.parent != nil {
		return sb.parent
	}
	return sb
}

// WithInitial sets initial for current compound.
func (sb *StateBuilder) WithInitial(initial string) *StateBuilder {
	sb.state.WithInitial(initial)
	return sb
}

// Done returns the machine builder.
func (sb *StateBuilder) Done() *MachineBuilder {
	return sb.mb
}
