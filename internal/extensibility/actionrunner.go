package extensibility

import (
	"log"
	"time"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// LoggingActionRunner wraps an ActionRunner and adds logging around execution.
type LoggingActionRunner struct {
	inner  core.ActionRunner
	logger *log.Logger
}

// NewLoggingActionRunner creates a LoggingActionRunner wrapping inner. A nil
// inner uses core.DefaultActionRunner, a nil logger the standard logger.
func NewLoggingActionRunner(inner core.ActionRunner, logger *log.Logger) *LoggingActionRunner {
	if inner == nil {
		inner = core.DefaultActionRunner{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingActionRunner{inner: inner, logger: logger}
}

// Run logs before and after delegating to the inner runner.
func (r *LoggingActionRunner) Run(a *core.Actor, action primitives.ActionRef, event primitives.Event) error {
	r.logger.Printf("actor %s: action %T for event %q", a.ID(), action, event.Type)
	start := time.Now()
	err := r.inner.Run(a, action, event)
	if err != nil {
		r.logger.Printf("actor %s: action %T failed after %v: %v", a.ID(), action, time.Since(start), err)
	}
	return err
}
