// Package realtime drives an actor system at a fixed tick rate.
//
// The system's scheduler never looks at the wall clock. A Runtime owns the
// only goroutine that touches the system and, once per tick:
//
//  1. runs deferred scheduler jobs (promise invocations, Do callbacks)
//  2. delivers the events batched since the last tick
//  3. sends the frame event (usually Update) to every target actor
//  4. advances the virtual clock by the tick rate, firing due timers
//  5. calls the OnTick hook
//
// # Event Ordering Guarantees
//
// Events submitted with SendEvent are ordered deterministically using:
//  1. Priority (higher priority processed first)
//  2. Sequence number (FIFO for same priority)
//
// Given the same sequence of SendEvent calls the actors execute the same
// way regardless of which goroutine submitted them.
//
// # Example Usage
//
//	rt := realtime.NewRuntime(sys, realtime.Config{
//		TickRate: 16 * time.Millisecond,
//		Frame:    primitives.NewEvent("Update", nil),
//		Targets:  sess.Actors,
//	})
//	rt.Start(ctx)
//	rt.SendEvent("session", session.Play())
//
// Tests call Step instead of Start to run ticks synchronously.
package realtime
