package production

import (
	"context"
	"sync"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// PublishedEvent bundles an event with its machine metadata for publishing.
type PublishedEvent struct {
	Event    primitives.Event
	Metadata core.MachineMetadata
}

// ChannelPublisher forwards committed steps to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch     chan<- PublishedEvent
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- PublishedEvent) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event primitives.Event, metadata core.MachineMetadata) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil
	}
	select {
	case p.ch <- PublishedEvent{Event: event, Metadata: metadata}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // dropped
	}
}

// Close closes the channel. Later publishes are dropped.
func (p *ChannelPublisher) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.ch)
		p.mu.Unlock()
	})
	return nil
}
