package realtime

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// ErrQueueFull is returned by SendEvent when the batch for the next tick is full.
var ErrQueueFull = errors.New("realtime: event queue full")

// ErrRunning is returned by Start on a runtime that is already ticking.
var ErrRunning = errors.New("realtime: already running")

// Config configures the real-time runtime.
type Config struct {
	TickRate         time.Duration // Fixed tick rate (e.g., 16ms for ~60 FPS)
	MaxEventsPerTick int           // Event queue capacity (default: 1000)

	// Frame is sent to every actor returned by Targets once per tick.
	// A zero Frame disables the broadcast.
	Frame   primitives.Event
	Targets func() []*core.Actor

	// OnTick runs on the tick goroutine after the clock has advanced.
	OnTick func(tick uint64)

	Logger *log.Logger
}

// EventSource is anything that yields events from outside the tick goroutine.
type EventSource interface {
	Events() <-chan primitives.Event
}

// Runtime provides tick-based deterministic execution of an actor system.
type Runtime struct {
	sys    *core.System
	cfg    Config
	logger *log.Logger

	tickNum uint64

	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	runMu      sync.Mutex
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewRuntime creates a tick-based runtime for sys.
func NewRuntime(sys *core.System, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick == 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = sys.Logger()
	}
	return &Runtime{
		sys:        sys,
		cfg:        cfg,
		logger:     logger,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
	}
}

// System returns the driven actor system.
func (rt *Runtime) System() *core.System { return rt.sys }

// Start begins ticking on a new goroutine until ctx is done or Stop is called.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.tickCancel != nil {
		return ErrRunning
	}

	tickCtx, cancel := context.WithCancel(ctx)
	rt.tickCancel = cancel
	rt.stopped = make(chan struct{})
	go rt.tickLoop(tickCtx, rt.stopped)
	return nil
}

// Stop ends the tick loop and waits for it to exit.
// The actor system is left running; shutting it down is the owner's job.
func (rt *Runtime) Stop() {
	rt.runMu.Lock()
	cancel, stopped := rt.tickCancel, rt.stopped
	rt.tickCancel = nil
	rt.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (rt *Runtime) tickLoop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(rt.cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.safeTick()
		}
	}
}

func (rt *Runtime) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Printf("realtime: tick %d panicked: %v", rt.GetTickNumber(), r)
		}
	}()
	rt.processTick()
}

// Step runs exactly one tick on the calling goroutine. It must not be mixed
// with a started runtime.
func (rt *Runtime) Step() {
	rt.processTick()
}

// Do runs fn on the tick goroutine at the start of the next tick.
func (rt *Runtime) Do(fn func()) {
	rt.sys.Scheduler().Post(fn)
}

// SendEvent queues an event for target, delivered on the next tick.
func (rt *Runtime) SendEvent(target string, event primitives.Event) error {
	return rt.SendEventWithPriority(target, event, 0)
}

// SendEventWithPriority queues an event with priority. Within a tick higher
// priorities are delivered first.
func (rt *Runtime) SendEventWithPriority(target string, event primitives.Event, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= rt.cfg.MaxEventsPerTick {
		return ErrQueueFull
	}
	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Target:      target,
		Event:       event,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// Attach forwards every event from src to target until src's channel closes
// or ctx is done. Events that do not fit in the batch are logged and dropped.
func (rt *Runtime) Attach(ctx context.Context, src EventSource, target string) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-src.Events():
				if !ok {
					return
				}
				if err := rt.SendEvent(target, evt); err != nil {
					rt.logger.Printf("realtime: drop %q for %q: %v", evt.Type, target, err)
				}
			}
		}
	}()
}

// GetTickNumber returns the number of completed ticks.
func (rt *Runtime) GetTickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}
