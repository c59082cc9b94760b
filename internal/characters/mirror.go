package characters

import (
	"github.com/comalice/storybook/internal/core"
)

// Mirror keeps a headless twin in step with a visual actor: every event the
// visual actor processes is replayed on headless. Interpreter-raised events
// are skipped since the twin raises its own. The returned func detaches.
func Mirror(visual, headless *core.Actor) (stop func()) {
	return visual.Subscribe(func(snap core.Snapshot) {
		if snap.Event.IsSynthetic() {
			return
		}
		if err := headless.Send(snap.Event); err != nil {
			visual.System().Logger().Printf("mirror %s -> %s: %v", visual.ID(), headless.ID(), err)
		}
	})
}
