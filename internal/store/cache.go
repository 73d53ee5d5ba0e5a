package store

import (
	"context"
	"sync"
)

// Cache is the durable key-value mirror. Each key holds one whole
// collection; Put replaces the previous value.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: map[string][]byte{}, writes: map[string]int{}}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryCache) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes[key]++
	return nil
}

// Writes returns how many times key has been written.
func (m *MemoryCache) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}
