package realtime

import (
	"sort"

	"github.com/comalice/storybook/internal/primitives"
)

// EventWithMeta adds routing and sequencing metadata for deterministic ordering.
type EventWithMeta struct {
	Target      string
	Event       primitives.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders events deterministically.
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
