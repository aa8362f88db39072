// Package storage implements the radius bounded content store of a
// PortalDHT node. Every stored key is tracked in a metadata index
// ordered by XOR distance from the local node identifier; once the
// configured disk budget has been exceeded the engine evicts the
// farthest entry on each store and shrinks the data radius so that
// only strictly closer content keeps being admitted.
package storage

import (
	"context"

	"PortalDHT/internal/domain"
)

// ContentStore is the durable key/value backend holding raw content
// payloads. The engine owns its handle exclusively for the lifetime of
// the engine instance.
type ContentStore interface {
	// Put inserts or overwrites the value stored under key.
	Put(ctx context.Context, key domain.ContentKey, value []byte) error
	// Get returns the value stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key domain.ContentKey) ([]byte, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key domain.ContentKey) error
	// SizeBytes reports the backend's own usage statistic.
	SizeBytes() uint64
	// Close releases the backend.
	Close() error
}

// MetadataIndex records every stored content key together with its XOR
// distance from the local node, so the farthest entry can be retrieved
// in a single query.
type MetadataIndex interface {
	// Insert records key. Re-inserting a present key is a no-op.
	Insert(ctx context.Context, key domain.ContentKey) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key domain.ContentKey) error
	// Farthest returns the indexed key with the greatest distance from
	// the local node. ok is false when the index is empty, which is
	// distinct from a query failure.
	Farthest(ctx context.Context) (key domain.ContentKey, ok bool, err error)
	// Count returns the number of indexed keys.
	Count(ctx context.Context) (int64, error)
	// Close releases the index.
	Close() error
}

// UsageProbe measures the on-disk footprint of a directory in bytes,
// recursively summing file sizes. The engine adds the probe result to
// the content store's own statistic when checking the capacity budget.
type UsageProbe func(path string) (uint64, error)
