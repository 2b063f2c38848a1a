package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use. Its lock is independent of any engine lock.
type Store struct {
	data map[string]domain.Value
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Value),
	}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (domain.Value, bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return domain.Value{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[k]
	return v, ok, nil
}

// Set stores value under key. Storing the zero Value deletes the key.
func (s *Store) Set(ctx context.Context, key string, value domain.Value) error {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value.IsZero() {
		delete(s.data, k)
		return nil
	}
	s.data[k] = value
	return nil
}

// Toggle flips a boolean entry.
func (s *Store) Toggle(ctx context.Context, key string) (bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.data[k].AsBool()
	s.data[k] = domain.Bool(!cur)
	return !cur, nil
}

// Increment adds delta to an integer entry. Non-integer values restart from zero.
func (s *Store) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := s.data[k].AsInt()
	next := cur + delta
	s.data[k] = domain.Int(next)
	return next, nil
}

// CompareAndSet replaces the entry only if it currently equals old.
func (s *Store) CompareAndSet(ctx context.Context, key string, old, next domain.Value) (bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[k]
	if old.IsZero() {
		if ok {
			return false, nil
		}
	} else if !ok || cur.Kind() != old.Kind() || !cur.Equal(old) {
		return false, nil
	}
	if next.IsZero() {
		delete(s.data, k)
	} else {
		s.data[k] = next
	}
	return true, nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, k)
	return nil
}

// Snapshot returns a copy of all entries.
func (s *Store) Snapshot(ctx context.Context) (map[string]domain.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Value, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}
