package ratelimit

import (
	"sync"
	"time"
)

// Entry tracks attempts for a single key within the current window
type Entry struct {
	Attempts    int
	LastAttempt time.Time
}

// Store is the backing state of a Limiter. The default MemoryStore is
// process-local; a multi-instance deployment can inject an
// implementation backed by a shared cache instead.
type Store interface {
	Get(key string) (Entry, bool)
	Put(key string, e Entry)
	Delete(key string)
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return e, ok
}

func (s *MemoryStore) Put(key string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = e
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}
