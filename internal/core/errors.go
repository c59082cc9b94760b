package core

import (
	"errors"
	"fmt"
)

var (
	ErrDefinition      = errors.New("definition error")
	ErrGuardEvaluation = errors.New("guard evaluation error")
	ErrDuplicateID     = errors.New("duplicate actor id")
	ErrNotFound        = errors.New("actor not found")
)

// DefinitionError reports a malformed definition or an eventless-transition
// cycle that exceeded MaxMicrosteps.
type DefinitionError struct {
	Machine string
	Reason  string
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("definition %q: %s: %v", e.Machine, e.Reason, e.Err)
	}
	return fmt.Sprintf("definition %q: %s", e.Machine, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

func (e *DefinitionError) Is(target error) bool { return target == ErrDefinition }

// GuardEvaluationError reports a guard that failed or panicked. A guard error
// while selecting the event's transition leaves the configuration unchanged.
// One raised while settling eventless or internal transitions stops at the
// last committed microstep, so the event's own transition stays taken.
type GuardEvaluationError struct {
	Actor string
	State string
	Event string
	Err   error
}

func (e *GuardEvaluationError) Error() string {
	return fmt.Sprintf("actor %q state %q event %q: guard failed: %v", e.Actor, e.State, e.Event, e.Err)
}

func (e *GuardEvaluationError) Unwrap() error { return e.Err }

func (e *GuardEvaluationError) Is(target error) bool { return target == ErrGuardEvaluation }

// joinErrors is errors.Join that returns a lone error unwrapped.
func joinErrors(errs []error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return errors.Join(kept...)
}
