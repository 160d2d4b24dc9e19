// Package cache provides a TTL key-value capability injected into components
// that hold process-wide cached state (ATH estimates, token metadata), so
// tests can substitute a fake clock and deterministic storage.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte-oriented TTL cache. Implementations must be safe for
// concurrent use; duplicate fetches racing on a cold key are acceptable, a
// single winner's value is what later readers see.
type Store interface {
	// Get returns the cached value and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// entry is one in-memory cached value.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store backed by a mutex-guarded map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

// NewMemory creates an in-memory store using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an in-memory store with an injected clock.
func NewMemoryWithClock(clock func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get returns the cached value and true on a live hit. Expired entries are
// removed lazily.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.clock().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := m.entries[key]; ok && m.clock().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a value with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: m.clock().Add(ttl)}
	m.mu.Unlock()
	return nil
}

var _ Store = (*Memory)(nil)
