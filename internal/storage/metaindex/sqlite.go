// Package metaindex maintains the index of stored content keys, ordered
// by their distance to the local node id. The storage engine consults it
// to find which stored key lies farthest from the node.
package metaindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"PortalDHT/internal/domain"
)

// Index is the sqlite backed metadata index. Each row pairs a content
// key with its full-width XOR distance to the node id, so the farthest
// query orders over the exact 256-bit distance instead of a lossy
// truncation.
type Index struct {
	db     *sql.DB
	nodeID domain.NodeID
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS content_keys (
		content_key BLOB PRIMARY KEY,
		distance    BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS content_keys_by_distance
		ON content_keys (distance DESC, content_key ASC)`,
}

// New opens (or creates) the index database at path and ensures the
// schema exists. Distances are computed against nodeID, which must be
// the same identifier across restarts for the persisted ordering to
// stay meaningful.
func New(path string, nodeID domain.NodeID) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metaindex: open %s: %w", path, err)
	}
	// sqlite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY churn under the engine's serialized access.
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("metaindex: create schema: %w", err)
		}
	}
	return &Index{db: db, nodeID: nodeID}, nil
}

// Insert records key together with its distance to the node id.
// Re-inserting a present key is a no-op.
func (ix *Index) Insert(ctx context.Context, key domain.ContentKey) error {
	dist := ix.nodeID.XorDistance(key)
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO content_keys (content_key, distance) VALUES (?, ?)`,
		[]byte(key), dist)
	if err != nil {
		return fmt.Errorf("metaindex: insert %s: %w", key, err)
	}
	return nil
}

// Remove deletes key from the index. Removing an absent key is not an
// error.
func (ix *Index) Remove(ctx context.Context, key domain.ContentKey) error {
	_, err := ix.db.ExecContext(ctx,
		`DELETE FROM content_keys WHERE content_key = ?`, []byte(key))
	if err != nil {
		return fmt.Errorf("metaindex: remove %s: %w", key, err)
	}
	return nil
}

// Farthest returns the indexed key with the greatest distance to the
// node id. Ties on distance resolve to the smallest raw key bytes.
// ok is false when the index is empty; an empty index is not an error.
func (ix *Index) Farthest(ctx context.Context) (key domain.ContentKey, ok bool, err error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT content_key FROM content_keys ORDER BY distance DESC, content_key ASC LIMIT 1`)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("metaindex: farthest: %w", err)
	}
	return domain.ContentKey(raw), true, nil
}

// Count returns the number of indexed keys.
func (ix *Index) Count(ctx context.Context) (int64, error) {
	row := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_keys`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("metaindex: count: %w", err)
	}
	return n, nil
}

// Close releases the underlying database. The index must not be used
// afterwards.
func (ix *Index) Close() error {
	if err := ix.db.Close(); err != nil {
		return fmt.Errorf("metaindex: close: %w", err)
	}
	return nil
}
