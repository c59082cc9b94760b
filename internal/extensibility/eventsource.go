package extensibility

import (
	"github.com/comalice/storybook/internal/primitives"
)

// ChannelEventSource is an event source backed by a Go channel. It lets code
// outside the scheduler goroutine (input handlers, a UI) feed events into a
// realtime runtime.
type ChannelEventSource struct {
	ch chan primitives.Event
}

// Events returns the receive-only channel for events.
func (s *ChannelEventSource) Events() <-chan primitives.Event {
	return s.ch
}

// Emit queues evt, reporting false when the buffer is full.
func (s *ChannelEventSource) Emit(evt primitives.Event) bool {
	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

// Close closes the channel; the consumer detaches once it drains.
func (s *ChannelEventSource) Close() {
	close(s.ch)
}

// NewChannelEventSource creates a new ChannelEventSource with the given channel.
// The channel should be buffered if backpressure handling is needed.
func NewChannelEventSource(ch chan primitives.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}
