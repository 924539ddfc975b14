package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps attempts in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[string][]time.Time)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.attempts[key]...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, attempts []time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key] = append([]time.Time(nil), attempts...)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, key)
	return nil
}
