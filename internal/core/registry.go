package core

import (
	"fmt"
	"sort"
)

// The registry maps actor ids to live actors. An actor is present from a
// successful Start until it stops or completes.

func (s *System) register(a *Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registry[a.id]; exists {
		return fmt.Errorf("register %q: %w", a.id, ErrDuplicateID)
	}
	s.registry[a.id] = a
	return nil
}

func (s *System) unregister(a *Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry[a.id] == a {
		delete(s.registry, a.id)
	}
}

// Lookup returns the live actor registered under id.
func (s *System) Lookup(id string) (*Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.registry[id]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// IDs lists registered actor ids in sorted order.
func (s *System) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.registry))
	for id := range s.registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of registered actors.
func (s *System) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}
