package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/comalice/storybook/internal/primitives"
)

// MaxMicrosteps bounds the eventless and internal transitions taken while
// settling one event. Exceeding it means the definition cycles.
const MaxMicrosteps = 100

// Status is the lifecycle state of an Actor.
type Status int

const (
	NotStarted Status = iota
	Active
	Stopped
	Done
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "notStarted"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	case Done:
		return "done"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Snapshot is an immutable view of an actor after its last committed step.
type Snapshot struct {
	ID      string
	Value   string
	Context map[string]any
	Status  Status
	Output  any
	Tags    []string
	Event   primitives.Event
}

// Matches reports whether path is the active leaf or one of its ancestors.
func (s Snapshot) Matches(path string) bool {
	return s.Value == path || strings.HasPrefix(s.Value, path+".")
}

// HasTag reports whether any active node carries tag.
func (s Snapshot) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SpawnOptions configures a spawned child. An empty ID is generated.
type SpawnOptions struct {
	ID    string
	Input any
}

type listener struct {
	id int
	fn func(Snapshot)
}

type invocation struct {
	id       string
	child    *Actor
	canceled bool
}

// Actor is a running instance of a definition. All mutation happens on the
// goroutine driving its System; Snapshot may be read from anywhere.
type Actor struct {
	id      string
	system  *System
	def     *primitives.MachineConfig
	m       *machine
	input   any
	restore Persister
	parent  *Actor
	doneTag string

	ctx    *primitives.Context
	config []*node // root to leaf
	status Status
	output any
	event  primitives.Event

	children []*Actor
	invoked  map[*node]*invocation
	timers   map[*node][]*Timer
	internal []primitives.Event
	final    bool

	listeners    []listener
	nextListener int
	snap         atomic.Pointer[Snapshot]
}

// NewActor creates an actor for def. It is registered when started.
func (s *System) NewActor(def *primitives.MachineConfig, opts ...ActorOption) *Actor {
	a := &Actor{
		system:  s,
		def:     def,
		ctx:     primitives.NewContext(),
		invoked: make(map[*node]*invocation),
		timers:  make(map[*node][]*Timer),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == "" {
		prefix := "actor"
		if def != nil && def.ID != "" {
			prefix = def.ID
		}
		a.id = prefix + "-" + uuid.NewString()
	}
	a.doneTag = a.id
	a.publishSnapshot()
	return a
}

func (a *Actor) ID() string                             { return a.id }
func (a *Actor) System() *System                        { return a.system }
func (a *Actor) Parent() *Actor                         { return a.parent }
func (a *Actor) Definition() *primitives.MachineConfig { return a.def }

// Input is the value passed with WithInput.
func (a *Actor) Input() any { return a.input }

// Context returns the live extended state. Only actions and guards should
// write to it.
func (a *Actor) Context() *primitives.Context { return a.ctx }

// Status returns the status as of the last committed step.
func (a *Actor) Status() Status { return a.Snapshot().Status }

// Snapshot returns the last committed snapshot.
func (a *Actor) Snapshot() Snapshot { return *a.snap.Load() }

// Matches is shorthand for Snapshot().Matches.
func (a *Actor) Matches(path string) bool { return a.Snapshot().Matches(path) }

// Subscribe registers fn to receive a snapshot after start, after every
// event that took a transition and on completion. Dropped events do not
// notify.
func (a *Actor) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	a.nextListener++
	id := a.nextListener
	a.listeners = append(a.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range a.listeners {
			if l.id == id {
				a.listeners = append(a.listeners[:i:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// Children returns the spawned children that are still active, in spawn order.
func (a *Actor) Children() []*Actor {
	var live []*Actor
	for _, c := range a.children {
		if c.status == Active {
			live = append(live, c)
		}
	}
	return live
}

// Invoked returns the child actor of the active invocation with the given id.
func (a *Actor) Invoked(id string) (*Actor, bool) {
	for _, inv := range a.invoked {
		if inv.id == id && inv.child != nil {
			return inv.child, true
		}
	}
	return nil, false
}

// Start registers the actor, enters the initial configuration and settles
// eventless transitions. A definition error leaves the actor NotStarted and
// unregistered. Starting a started actor is a no-op.
func (a *Actor) Start() error {
	return a.system.run(a.start)
}

// Send delivers evt. It is a no-op unless the actor is Active, and events with
// no enabled transition are dropped.
func (a *Actor) Send(evt primitives.Event) error {
	return a.system.dispatch(a, evt)
}

// SendParent delivers evt to the parent. Does nothing without an active parent.
func (a *Actor) SendParent(evt primitives.Event) {
	p := a.parent
	if p == nil || p.status != Active {
		return
	}
	if err := a.system.dispatch(p, evt); err != nil {
		a.system.logger.Printf("actor %q: send to parent %q: %v", a.id, p.id, err)
	}
}

// Stop exits every active node innermost first, cancels timers and stops
// children. Stopping a stopped or completed actor is a no-op.
func (a *Actor) Stop() error {
	return a.system.run(func() error {
		a.stop()
		return nil
	})
}

// Spawn starts a child actor owned by a. The child is stopped with a and
// reports completion to a as done.invoke.<child id>.
func (a *Actor) Spawn(def *primitives.MachineConfig, opts SpawnOptions) (*Actor, error) {
	if a.status != Active {
		return nil, fmt.Errorf("spawn from actor %q: status %s", a.id, a.status)
	}
	child := a.system.NewActor(def, WithID(opts.ID), WithInput(opts.Input))
	child.parent = a
	err := a.system.run(child.start)
	if child.status == NotStarted {
		return nil, err
	}
	a.children = append(a.Children(), child)
	return child, err
}

// Visualize renders the definition with the active path highlighted.
func (a *Actor) Visualize() string {
	if a.system.visualizer == nil || a.def == nil {
		return ""
	}
	return a.system.visualizer.ExportDOT(a.def, a.activePaths())
}

func (a *Actor) start() error {
	if a.status != NotStarted {
		return nil
	}
	if a.def == nil {
		return &DefinitionError{Machine: a.id, Reason: "nil definition"}
	}
	m, err := compile(a.def)
	if err != nil {
		return &DefinitionError{Machine: a.def.ID, Reason: "invalid definition", Err: err}
	}
	if err := a.system.register(a); err != nil {
		return err
	}
	a.m = m
	var initial map[string]any
	if a.def.Context != nil {
		initial = a.def.Context(a.input)
	}
	a.ctx = primitives.NewContext(initial)
	entry := m.root.initialLeaf()
	if rec, path, ok := a.restored(); ok {
		a.ctx.Restore(restoreContext(initial, rec.ContextData))
		entry = path
	}
	a.status = Active
	if a.parent == nil {
		a.system.addRoot(a)
	}

	evt := primitives.NewEvent(primitives.InitEvent, a.input)
	a.event = evt
	a.config = []*node{m.root}
	var errs []error
	for _, n := range entry {
		a.config = append(a.config, n)
		errs = append(errs, a.enter(n, evt))
	}
	if err := a.settle(evt); err != nil {
		if errors.Is(err, ErrDefinition) {
			a.rollback()
			return err
		}
		errs = append(errs, err)
	}
	a.commit("")
	return joinErrors(errs)
}

// restored loads the actor's persisted record. It is used only when it was
// saved by the same definition version while active in a known leaf; the
// returned path runs from the top-level state down to that leaf.
func (a *Actor) restored() (MachineSnapshot, []*node, bool) {
	if a.restore == nil {
		return MachineSnapshot{}, nil, false
	}
	rec, err := a.restore.Load(a.system.ctx, a.id)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.system.logger.Printf("actor %q: restore: %v", a.id, err)
		}
		return MachineSnapshot{}, nil, false
	}
	if rec.Version != primitives.ComputeVersion(a.def) || rec.Status != Active.String() {
		a.system.logger.Printf("actor %q: restore: skip %s record of version %s", a.id, rec.Status, rec.Version)
		return MachineSnapshot{}, nil, false
	}
	leaf, ok := a.m.nodes[rec.Value]
	if !ok || leaf == a.m.root || len(leaf.children) > 0 {
		a.system.logger.Printf("actor %q: restore: %q is not a leaf", a.id, rec.Value)
		return MachineSnapshot{}, nil, false
	}
	var path []*node
	for n := leaf; n != a.m.root; n = n.parent {
		path = append([]*node{n}, path...)
	}
	return rec, path, true
}

// restoreContext overlays saved values on the initial context. A saved value
// replaces an initial one only when it has the same type, after turning
// decoded numbers back into the initial numeric type.
func restoreContext(initial, saved map[string]any) map[string]any {
	out := make(map[string]any, len(initial)+len(saved))
	for k, v := range initial {
		out[k] = v
	}
	for k, v := range saved {
		cur, exists := out[k]
		if !exists {
			out[k] = v
			continue
		}
		if conv, ok := asTypeOf(cur, v); ok {
			out[k] = conv
		}
	}
	return out
}

func asTypeOf(cur, v any) (any, bool) {
	if reflect.TypeOf(cur) == reflect.TypeOf(v) {
		return v, true
	}
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil, false
	}
	switch cur.(type) {
	case int:
		if f != math.Trunc(f) {
			return nil, false
		}
		return int(f), true
	case float64:
		return f, true
	}
	return nil, false
}

func (a *Actor) rollback() {
	for i := len(a.config) - 1; i >= 0; i-- {
		a.disarm(a.config[i])
	}
	for _, c := range a.children {
		c.stop()
	}
	a.children = nil
	a.system.unregister(a)
	a.system.dropRoot(a)
	a.status = NotStarted
	a.config = nil
	a.internal = nil
	a.final = false
	a.publishSnapshot()
}

// process runs one macrostep: select, take one transition, then settle.
func (a *Actor) process(evt primitives.Event) error {
	if a.status != Active {
		return nil
	}
	t, source, err := a.selectTransition(evt)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	from := a.value()
	a.event = evt
	errs := []error{a.microstep(source, t, evt)}
	errs = append(errs, a.settle(evt))
	a.commit(from)
	return joinErrors(errs)
}

// settle takes eventless transitions, then internally raised events, until
// neither applies. A guard error stops settling at the last committed
// microstep.
func (a *Actor) settle(evt primitives.Event) error {
	var errs []error
	for steps := 0; a.status == Active; {
		if a.final {
			a.complete()
			break
		}
		trigger := evt
		t, source, err := a.selectEventless(evt)
		if err == nil && t == nil && len(a.internal) > 0 {
			trigger = a.internal[0]
			a.internal = a.internal[1:]
			t, source, err = a.selectTransition(trigger)
			if err == nil && t == nil {
				continue
			}
		}
		if err != nil {
			errs = append(errs, err)
			break
		}
		if t == nil {
			break
		}
		steps++
		if steps > MaxMicrosteps {
			errs = append(errs, &DefinitionError{
				Machine: a.def.ID,
				Reason:  fmt.Sprintf("no stable configuration after %d microsteps (at %q)", MaxMicrosteps, a.value()),
			})
			break
		}
		errs = append(errs, a.microstep(source, t, trigger))
	}
	a.internal = nil
	return joinErrors(errs)
}

// microstep exits, runs transition actions, then enters. Action errors are
// collected and the configuration still reaches a leaf.
func (a *Actor) microstep(source *node, t *primitives.TransitionConfig, evt primitives.Event) error {
	if t.Targetless() {
		return a.runActions(t.Actions, evt)
	}
	target, err := a.m.target(t)
	if err != nil {
		return &DefinitionError{Machine: a.def.ID, Reason: "transition", Err: err}
	}
	domain := transitionDomain(a.m.root, source, target, t.Internal)

	var errs []error
	for i := len(a.config) - 1; i > domain.depth; i-- {
		errs = append(errs, a.exit(a.config[i], evt))
	}
	a.config = a.config[:domain.depth+1]
	errs = append(errs, a.runActions(t.Actions, evt))
	for _, n := range entryPath(domain, target) {
		a.config = append(a.config, n)
		errs = append(errs, a.enter(n, evt))
	}
	return joinErrors(errs)
}

func (a *Actor) enter(n *node, evt primitives.Event) error {
	errs := []error{a.runActions(n.config.Entry, evt)}

	armed := make(map[string]bool, len(n.config.After))
	for _, d := range n.config.After {
		tag := primitives.AfterEvent(n.path, d.Delay)
		if armed[tag] {
			continue
		}
		armed[tag] = true
		a.timers[n] = append(a.timers[n], a.system.scheduler.After(d.Delay, func() {
			if a.status != Active || !a.isActive(n) {
				return
			}
			if err := a.system.dispatch(a, primitives.NewEvent(tag, nil)); err != nil {
				a.system.logger.Printf("actor %q: %s: %v", a.id, tag, err)
			}
		}))
	}

	if inv := n.config.Invoke; inv != nil {
		errs = append(errs, a.invoke(n, inv, evt))
	}

	if n.config.Type == primitives.Final {
		var out any
		if n.config.Output != nil {
			out = n.config.Output(a.ctx, evt)
		}
		if n.parent == a.m.root {
			a.output = out
			a.final = true
		} else {
			a.internal = append(a.internal, primitives.NewEvent(primitives.DoneStateEvent(n.parent.path), out))
		}
	}
	return joinErrors(errs)
}

func (a *Actor) exit(n *node, evt primitives.Event) error {
	err := a.runActions(n.config.Exit, evt)
	a.disarm(n)
	return err
}

// disarm cancels the node's timers and its invocation.
func (a *Actor) disarm(n *node) {
	for _, t := range a.timers[n] {
		t.Cancel()
	}
	delete(a.timers, n)
	if inv, ok := a.invoked[n]; ok {
		inv.canceled = true
		if inv.child != nil {
			inv.child.stop()
		}
		delete(a.invoked, n)
	}
}

func (a *Actor) invoke(n *node, inv *primitives.InvokeConfig, evt primitives.Event) error {
	var input any
	if inv.Input != nil {
		input = inv.Input(a.ctx, evt)
	}
	rec := &invocation{id: inv.ID}
	a.invoked[n] = rec
	switch src := inv.Src.(type) {
	case *primitives.MachineConfig:
		child := a.system.NewActor(src, WithID(a.id+"."+inv.ID), WithInput(input))
		child.parent = a
		child.doneTag = inv.ID
		rec.child = child
		return child.start()
	case primitives.PromiseFunc:
		a.post(rec, src, input)
	case func(context.Context, any) (any, error):
		a.post(rec, src, input)
	default:
		return fmt.Errorf("actor %q: invoke %q: unsupported source %T", a.id, inv.ID, inv.Src)
	}
	return nil
}

// post schedules an invoked promise. Its result is dropped if the invoking
// node was exited in the meantime.
func (a *Actor) post(rec *invocation, fn primitives.PromiseFunc, input any) {
	a.system.scheduler.Post(func() {
		if rec.canceled || a.status != Active {
			return
		}
		out, err := runPromise(a.system.ctx, fn, input)
		if rec.canceled || a.status != Active {
			return
		}
		evt := primitives.NewEvent(primitives.DoneInvokeEvent(rec.id), out)
		if err != nil {
			evt = primitives.NewEvent(primitives.ErrorInvokeEvent(rec.id), err)
		}
		if derr := a.system.dispatch(a, evt); derr != nil {
			a.system.logger.Printf("actor %q: %s: %v", a.id, evt.Type, derr)
		}
	})
}

// complete finishes an actor that reached a top-level final node.
func (a *Actor) complete() {
	a.final = false
	for i := len(a.config) - 1; i >= 0; i-- {
		a.disarm(a.config[i])
	}
	for _, c := range a.children {
		c.stop()
	}
	a.children = nil
	a.status = Done
	a.system.unregister(a)
	a.system.dropRoot(a)
	if p := a.parent; p != nil && p.status == Active {
		// queued: complete always runs inside a dispatch
		_ = a.system.dispatch(p, primitives.NewEvent(primitives.DoneInvokeEvent(a.doneTag), a.output))
	}
}

func (a *Actor) stop() {
	switch a.status {
	case NotStarted:
		a.status = Stopped
		a.publishSnapshot()
		return
	case Stopped, Done:
		return
	}
	for _, c := range a.children {
		c.stop()
	}
	a.children = nil
	evt := primitives.NewEvent(primitives.StopEvent, nil)
	for i := len(a.config) - 1; i >= 0; i-- {
		if err := a.exit(a.config[i], evt); err != nil {
			a.system.logger.Printf("actor %q: stop: %v", a.id, err)
		}
	}
	a.status = Stopped
	a.internal = nil
	a.system.unregister(a)
	a.system.dropRoot(a)
	a.publishSnapshot()
}

func (a *Actor) commit(from string) {
	snap := a.publishSnapshot()
	for _, l := range append([]listener(nil), a.listeners...) {
		l.fn(snap)
	}
	a.system.inspect(a, snap, from)
}

func (a *Actor) publishSnapshot() Snapshot {
	snap := Snapshot{
		ID:      a.id,
		Value:   a.value(),
		Context: a.ctx.Snapshot(),
		Status:  a.status,
		Output:  a.output,
		Event:   a.event,
	}
	seen := make(map[string]bool)
	for _, n := range a.config {
		for _, tag := range n.config.Tags {
			if !seen[tag] {
				seen[tag] = true
				snap.Tags = append(snap.Tags, tag)
			}
		}
	}
	a.snap.Store(&snap)
	return snap
}

func (a *Actor) value() string {
	if len(a.config) == 0 {
		return ""
	}
	return a.config[len(a.config)-1].path
}

func (a *Actor) isActive(n *node) bool {
	return n.depth < len(a.config) && a.config[n.depth] == n
}

func (a *Actor) activePaths() []string {
	var paths []string
	for _, n := range a.config[min(1, len(a.config)):] {
		paths = append(paths, n.path)
	}
	return paths
}
