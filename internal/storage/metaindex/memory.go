package metaindex

import (
	"bytes"
	"context"
	"sync"

	"PortalDHT/internal/domain"
)

// Memory is an in-memory index with the same ordering semantics as the
// sqlite backed Index. It is concurrency safe and intended for unit
// tests and for nodes that do not require persistence.
type Memory struct {
	mu     sync.RWMutex
	nodeID domain.NodeID
	keys   map[string]struct{}
}

// NewMemory creates an empty in-memory index ranking keys against nodeID.
func NewMemory(nodeID domain.NodeID) *Memory {
	return &Memory{nodeID: nodeID, keys: make(map[string]struct{})}
}

// Insert records key. Re-inserting a present key is a no-op.
func (m *Memory) Insert(ctx context.Context, key domain.ContentKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[string(key)] = struct{}{}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (m *Memory) Remove(ctx context.Context, key domain.ContentKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, string(key))
	return nil
}

// Farthest returns the key with the greatest full-width distance to the
// node id, ties resolving to the smallest raw key bytes. ok is false
// when the index is empty.
func (m *Memory) Farthest(ctx context.Context) (key domain.ContentKey, ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best domain.ContentKey
	var bestDist []byte
	for k := range m.keys {
		candidate := domain.ContentKey(k)
		dist := m.nodeID.XorDistance(candidate)
		if best == nil {
			best, bestDist = candidate, dist
			continue
		}
		switch c := bytes.Compare(dist, bestDist); {
		case c > 0:
			best, bestDist = candidate, dist
		case c == 0 && bytes.Compare(candidate, best) < 0:
			best, bestDist = candidate, dist
		}
	}
	if best == nil {
		return nil, false, nil
	}
	return best.Clone(), true, nil
}

// Count returns the number of indexed keys.
func (m *Memory) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.keys)), nil
}

// Close is a no-op for the in-memory index.
func (m *Memory) Close() error { return nil }
