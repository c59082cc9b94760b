// Event provides the immutable event primitive for statechart transitions.
//
// Events are value types: a discriminating Type tag plus an opaque Data
// payload. Once created, Events should not be mutated.
//
// Besides user events the interpreter raises a few synthetic ones whose tags
// are produced by the helpers below (invoke completion, compound completion,
// delayed transitions).
package primitives

import (
	"strings"
	"time"
)

type Event struct {
	Type string
	Data any
}

// NewEvent creates and returns a new immutable Event.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type: eventType,
		Data: data,
	}
}

const (
	// InitEvent is the event seen by entry actions run from Start.
	InitEvent = "init"
	// StopEvent is the event seen by exit actions run from Stop.
	StopEvent = "stop"

	doneInvokePrefix  = "done.invoke."
	errorInvokePrefix = "error.invoke."
	doneStatePrefix   = "done.state."
	afterPrefix       = "after."
)

// DoneInvokeEvent is the tag delivered to a parent when the invoked or
// spawned child with the given id completes.
func DoneInvokeEvent(id string) string {
	return doneInvokePrefix + id
}

// ErrorInvokeEvent is the tag delivered when an invoked promise with the given
// id fails. The event Data carries the error.
func ErrorInvokeEvent(id string) string {
	return errorInvokePrefix + id
}

// DoneStateEvent is the tag raised when a compound node at path reaches one
// of its final children.
func DoneStateEvent(path string) string {
	return doneStatePrefix + path
}

// AfterEvent is the tag of the synthetic event that fires a delayed
// transition armed by the node at path. Distinct delays give distinct tags.
func AfterEvent(path string, delay time.Duration) string {
	return afterPrefix + delay.String() + "." + path
}

// IsSynthetic reports whether evt was raised by the interpreter rather than
// sent by a caller.
func (e Event) IsSynthetic() bool {
	switch e.Type {
	case InitEvent, StopEvent:
		return true
	}
	for _, p := range []string{doneInvokePrefix, errorInvokePrefix, doneStatePrefix, afterPrefix} {
		if strings.HasPrefix(e.Type, p) {
			return true
		}
	}
	return false
}
