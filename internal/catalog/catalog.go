// Package catalog maps (type, version) keys to character definitions and
// loads the demo sets the storybook can show.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/comalice/storybook/internal/characters"
	"github.com/comalice/storybook/internal/primitives"
)

var (
	// ErrNotFound is returned for unknown keys and demo ids.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicate is returned when a key is registered twice.
	ErrDuplicate = errors.New("catalog: duplicate key")
)

// Key identifies one version of a character family.
type Key struct {
	Type    string `yaml:"type"`
	Version string `yaml:"version"`
}

func (k Key) String() string { return k.Type + "@" + k.Version }

// Binding is what a renderer needs to draw an actor of the family. The
// engine never reads it.
type Binding struct {
	Sprite string
	Width  float64
	Height float64
}

// Factory builds a definition for one actor.
type Factory func(characters.Input) *primitives.MachineConfig

// Entry is a registered family version.
type Entry struct {
	Key     Key
	New     Factory
	Binding Binding
}

// Catalog is a concurrency-safe registry of entries.
type Catalog struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func New() *Catalog {
	return &Catalog{entries: make(map[Key]Entry)}
}

// Register adds e. Keys are unique.
func (c *Catalog) Register(e Entry) error {
	if e.Key.Type == "" || e.New == nil {
		return fmt.Errorf("catalog: register %s: type and factory required", e.Key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[e.Key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.Key)
	}
	c.entries[e.Key] = e
	return nil
}

// Resolve looks up key. Unknown keys fail with ErrNotFound.
func (c *Catalog) Resolve(ctx context.Context, key Key) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return e, nil
}

// Keys lists the registered keys ordered by type, then version.
func (c *Catalog) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Version < keys[j].Version
	})
	return keys
}

// Default returns a catalog holding every character family.
func Default() *Catalog {
	c := New()
	for _, e := range []Entry{
		{Key{"chick", "1"}, characters.Chick, Binding{Sprite: "chick", Width: 32, Height: 32}},
		{Key{"egg", "1"}, characters.Egg, Binding{Sprite: "egg", Width: 24, Height: 30}},
		{Key{"hen", "1"}, characters.Hen, Binding{Sprite: "hen", Width: 64, Height: 64}},
		{Key{"hen", "2"}, characters.HenStrolling, Binding{Sprite: "hen", Width: 64, Height: 64}},
		{Key{"chef", "1"}, characters.Chef, Binding{Sprite: "chef", Width: 64, Height: 96}},
		{Key{"points", "1"}, characters.Points, Binding{Sprite: "points", Width: 32, Height: 16}},
		{Key{"eggCatch", "1"}, characters.EggCatch, Binding{}},
	} {
		if err := c.Register(e); err != nil {
			panic(err)
		}
	}
	return c
}
