// Package primitives provides the declarative, immutable building blocks of
// a state machine definition.
//
// Nothing here executes: a MachineConfig is a description that the core
// interpreter validates and drives. Definitions are shared between every
// actor created from them and must not be mutated once handed to an actor.
//
// Core invariants:
//   - A node with children always declares exactly one initial child.
//   - Transition records are evaluated in declaration order.
//   - Events are immutable values.
//
// This package uses only the Go standard library.
package primitives
