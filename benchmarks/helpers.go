// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/extensibility"
	"github.com/comalice/storybook/internal/primitives"
)

// NewSystem returns a quiet system on a fixed virtual clock with expression
// guards enabled.
func NewSystem() *core.System {
	return core.NewSystem(
		core.WithClock(time.Unix(0, 0)),
		core.WithLogger(log.New(io.Discard, "", 0)),
		core.WithGuardEvaluator(extensibility.NewExpressionGuardEvaluator(nil)),
	)
}

// GenFlatConfig creates a flat machine with n atomic states cycling via "tick" events.
func GenFlatConfig(n int) *primitives.MachineConfig {
	if n < 1 {
		n = 1
	}
	mb := primitives.NewMachineBuilder(fmt.Sprintf("flat_%d", n), "s0")
	for i := 0; i < n; i++ {
		mb.Atomic(fmt.Sprintf("s%d", i)).Transition("tick", fmt.Sprintf("s%d", (i+1)%n))
	}
	return mb.Build()
}

// GenDeepConfig creates a deeply nested hierarchy flipping between leaves at the bottom.
func GenDeepConfig(depth int) *primitives.MachineConfig {
	if depth < 1 {
		depth = 1
	}
	mb := primitives.NewMachineBuilder(fmt.Sprintf("deep_%d", depth), "c0")
	sb := mb.Compound("c0", "c1")
	for i := 1; i < depth; i++ {
		sb = sb.Compound(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i+1))
	}
	sb.WithInitial("leaf1")
	sb.Atomic("leaf1").Transition("tick", "leaf2")
	sb.Atomic("leaf2").Transition("tick", "leaf1")
	return mb.Build()
}

// MustStart creates and starts an actor, panicking on definition errors.
func MustStart(sys *core.System, def *primitives.MachineConfig, opts ...core.ActorOption) *core.Actor {
	a := sys.NewActor(def, opts...)
	if err := a.Start(); err != nil {
		panic(err)
	}
	return a
}
