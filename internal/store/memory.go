package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt int64
}

// MemoryBackend is an in-process Backend. A Limit above zero rejects
// larger values with ErrCapacityExceeded.
type MemoryBackend struct {
	mu      sync.Mutex
	name    string
	limit   int
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryBackend creates an empty MemoryBackend. A nil clock uses time.Now.
func NewMemoryBackend(name string, limit int, now func() time.Time) *MemoryBackend {
	if now == nil {
		now = time.Now
	}
	return &MemoryBackend{
		name:    name,
		limit:   limit,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryBackend) Name() string { return m.name }

func (m *MemoryBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if expired(m.now(), e.expiresAt) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.limit > 0 && len(value) > m.limit {
		return ErrCapacityExceeded
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiry(m.now(), ttl)}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len reports the number of live entries.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := m.now()
	for _, e := range m.entries {
		if !expired(now, e.expiresAt) {
			n++
		}
	}
	return n
}

func (m *MemoryBackend) Close() error { return nil }
