package realtime

// processTick runs one complete tick on the calling goroutine.
func (rt *Runtime) processTick() {
	sched := rt.sys.Scheduler()

	sched.RunPending()

	events := rt.collectEvents()
	sortEvents(events)
	rt.processEvents(events)

	rt.broadcastFrame()

	sched.Advance(rt.cfg.TickRate)

	rt.batchMu.Lock()
	rt.tickNum++
	n := rt.tickNum
	rt.batchMu.Unlock()

	if rt.cfg.OnTick != nil {
		rt.cfg.OnTick(n)
	}
}

// collectEvents atomically retrieves and clears the event batch.
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, rt.cfg.MaxEventsPerTick)
	return events
}

func (rt *Runtime) processEvents(events []EventWithMeta) {
	for _, em := range events {
		if err := rt.sys.Send(em.Target, em.Event); err != nil {
			rt.logger.Printf("realtime: tick %d: event %q to %q: %v", rt.tickNum, em.Event.Type, em.Target, err)
		}
	}
}

func (rt *Runtime) broadcastFrame() {
	if rt.cfg.Frame.Type == "" || rt.cfg.Targets == nil {
		return
	}
	for _, a := range rt.cfg.Targets() {
		if err := a.Send(rt.cfg.Frame); err != nil {
			rt.logger.Printf("realtime: tick %d: frame to %q: %v", rt.tickNum, a.ID(), err)
		}
	}
}
