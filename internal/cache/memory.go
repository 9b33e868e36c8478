package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	fetchedAt time.Time
}

// Memory is an in-process TTL cache. Expiry is checked on read; there
// is no background sweeper. Stale entries simply get overwritten by
// the next successful fetch.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

var _ Cache = (*Memory)(nil)

// Get implements Cache.
func (m *Memory) Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if ok && time.Since(e.fetchedAt) < ttl {
		return e.data, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = entry{data: data, fetchedAt: time.Now()}
	m.mu.Unlock()
	return data, nil
}

// Len reports the number of stored entries, stale ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
