// Tests for ChannelPublisher delivery and System integration.
package production

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan PublishedEvent, 10)
	p := NewChannelPublisher(ch)

	event := primitives.NewEvent("test-event", "data")
	meta := core.MachineMetadata{
		ActorID:    "a1",
		MachineID:  "test-machine",
		Transition: "s1 -> s2",
		Timestamp:  time.Now(),
	}
	if err := p.Publish(context.Background(), event, meta); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.Event.Type != event.Type {
			t.Errorf("Event type mismatch: got %q, want %q", got.Event.Type, event.Type)
		}
		if got.Metadata != meta {
			t.Errorf("Metadata mismatch: got %+v, want %+v", got.Metadata, meta)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan PublishedEvent, 1)
	p := NewChannelPublisher(ch)
	ch <- PublishedEvent{}

	if err := p.Publish(context.Background(), primitives.NewEvent("drop-test", nil), core.MachineMetadata{}); err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if len(ch) != 1 {
		t.Errorf("len(ch) = %d", len(ch))
	}
}

func TestChannelPublisher_CloseTwice(t *testing.T) {
	ch := make(chan PublishedEvent, 1)
	p := NewChannelPublisher(ch)

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := p.Publish(context.Background(), primitives.NewEvent("late", nil), core.MachineMetadata{}); err != nil {
		t.Errorf("Publish after Close = %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open")
	}
}

func TestChannelPublisher_Integration_Transitions(t *testing.T) {
	ch := make(chan PublishedEvent, 10)
	sys := core.NewSystem(
		core.WithClock(time.Unix(0, 0)),
		core.WithLogger(log.New(io.Discard, "", 0)),
		core.WithPublisher(NewChannelPublisher(ch)),
	)
	b := primitives.NewMachineBuilder("light", "green")
	b.Atomic("green").Transition("TIMER", "yellow")
	b.Atomic("yellow")
	light := sys.NewActor(b.Build(), core.WithID("light"))
	if err := light.Start(); err != nil {
		t.Fatal(err)
	}
	if err := light.Send(primitives.NewEvent("UNKNOWN", nil)); err != nil {
		t.Fatal(err)
	}
	if err := light.Send(primitives.NewEvent("TIMER", nil)); err != nil {
		t.Fatal(err)
	}
	sys.Shutdown()

	var got []PublishedEvent
	for pe := range ch {
		got = append(got, pe)
	}
	if len(got) != 2 {
		t.Fatalf("published %d events, want start and TIMER", len(got))
	}
	if got[0].Event.Type != primitives.InitEvent || got[0].Metadata.Transition != " -> green" {
		t.Errorf("start published %+v", got[0])
	}
	if got[1].Event.Type != "TIMER" || got[1].Metadata.Transition != "green -> yellow" || got[1].Metadata.ActorID != "light" {
		t.Errorf("TIMER published %+v", got[1])
	}
}
