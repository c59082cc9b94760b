// Context provides the private extended state of one actor.
//
// The interpreter mutates it only through executed actions. Values must be
// plain data (numbers, strings, bools, slices, maps, structs) for snapshots
// to be serializable; actor handles stored here are skipped by persisters.
package primitives

import "sync"

// Context is a key-value store using sync.Map so snapshots can be read
// from a rendering goroutine while the scheduler goroutine mutates it.
type Context struct {
	data sync.Map
}

// NewContext creates a new Context, optionally seeded with initial values.
func NewContext(initial ...map[string]any) *Context {
	c := &Context{}
	for _, m := range initial {
		for k, v := range m {
			c.data.Store(k, v)
		}
	}
	return c
}

// Get retrieves a value by key.
func (c *Context) Get(key string) (any, bool) {
	return c.data.Load(key)
}

// Set stores a value by key.
func (c *Context) Set(key string, val any) {
	c.data.Store(key, val)
}

// Delete removes a key-value pair.
func (c *Context) Delete(key string) {
	c.data.Delete(key)
}

// Snapshot returns a copy of the context data.
func (c *Context) Snapshot() map[string]any {
	snap := map[string]any{}
	c.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}

// Restore replaces the context data from a snapshot map.
func (c *Context) Restore(snap map[string]any) {
	c.data.Range(func(k, v any) bool {
		c.data.Delete(k)
		return true
	})
	for k, v := range snap {
		c.data.Store(k, v)
	}
}

// Value is the typed accessor for context values. It reports false when the
// key is missing or holds a value of another type.
func Value[T any](c *Context, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// ValueOr returns the typed value at key, or def when absent.
func ValueOr[T any](c *Context, key string, def T) T {
	if v, ok := Value[T](c, key); ok {
		return v
	}
	return def
}

// Append appends v to the slice stored at key, creating it when missing.
func Append[T any](c *Context, key string, v T) []T {
	list, _ := Value[[]T](c, key)
	next := make([]T, len(list), len(list)+1)
	copy(next, list)
	next = append(next, v)
	c.Set(key, next)
	return next
}
