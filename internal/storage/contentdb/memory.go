package contentdb

import (
	"context"
	"sync"

	"PortalDHT/internal/domain"
)

// Memory is an in-memory content store with the same contract as the
// badger backed Store. It is concurrency safe and intended for unit
// tests and for nodes that do not require persistence.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	size uint64
}

// NewMemory creates an empty in-memory content store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Put inserts or updates the value stored under key.
func (m *Memory) Put(ctx context.Context, key domain.ContentKey, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := string(key)
	if old, ok := m.data[k]; ok {
		m.size -= uint64(len(old))
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[k] = cp
	m.size += uint64(len(cp))
	return nil
}

// Get returns the value stored under key, or (nil, nil) when the key is
// absent.
func (m *Memory) Get(ctx context.Context, key domain.ContentKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *Memory) Delete(ctx context.Context, key domain.ContentKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := string(key)
	if old, ok := m.data[k]; ok {
		m.size -= uint64(len(old))
		delete(m.data, k)
	}
	return nil
}

// SizeBytes reports the summed length of all stored values.
func (m *Memory) SizeBytes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
